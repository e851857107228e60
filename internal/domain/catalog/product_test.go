package catalog

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

func validDetails() ProductDetails {
	return ProductDetails{
		Designation: "Ciment CPA 45",
		Unit:        "Sac",
		UnitPriceHT: decimal.RequireFromString("12.5"),
		TVARate:     fiscal.TVA19,
		FODEC:       true,
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product successfully", func(t *testing.T) {
		p, err := NewProduct(" cim-45 ", validDetails())
		require.NoError(t, err)
		assert.Equal(t, "CIM-45", p.Reference)
		assert.Equal(t, "Ciment CPA 45", p.Designation)
		assert.Equal(t, "Sac", p.Unit)
		assert.True(t, p.UnitPriceHT.Equal(decimal.RequireFromString("12.500")))
		assert.True(t, p.IsActive())
	})

	t.Run("defaults the unit", func(t *testing.T) {
		d := validDetails()
		d.Unit = ""
		p, err := NewProduct("SRV-1", d)
		require.NoError(t, err)
		assert.Equal(t, DefaultUnit, p.Unit)
	})

	t.Run("rounds the price to the millime", func(t *testing.T) {
		d := validDetails()
		d.UnitPriceHT = decimal.RequireFromString("1.23456")
		p, err := NewProduct("P1", d)
		require.NoError(t, err)
		assert.Equal(t, "1.235", p.UnitPriceHT.String())
	})

	tests := map[string]func(d *ProductDetails){
		"empty designation": func(d *ProductDetails) { d.Designation = " " },
		"negative price":    func(d *ProductDetails) { d.UnitPriceHT = decimal.NewFromInt(-1) },
		"invalid tva rate":  func(d *ProductDetails) { d.TVARate = fiscal.TVARate(18) },
	}
	for name, mutate := range tests {
		t.Run("fails with "+name, func(t *testing.T) {
			d := validDetails()
			mutate(&d)
			_, err := NewProduct("P1", d)
			assert.Error(t, err)
		})
	}

	t.Run("fails with invalid reference", func(t *testing.T) {
		_, err := NewProduct("P 1", validDetails())
		assert.Error(t, err)
		_, err = NewProduct("", validDetails())
		assert.Error(t, err)
	})
}

func TestProduct_Update(t *testing.T) {
	p, err := NewProduct("P1", validDetails())
	require.NoError(t, err)

	d := validDetails()
	d.Designation = "Ciment blanc"
	d.TVARate = fiscal.TVA7
	require.NoError(t, p.Update(d))
	assert.Equal(t, "Ciment blanc", p.Designation)
	assert.Equal(t, fiscal.TVA7, p.TVARate)
	assert.Equal(t, 2, p.Version)
}

func TestProduct_Status(t *testing.T) {
	p, err := NewProduct("P1", validDetails())
	require.NoError(t, err)

	assert.True(t, errors.Is(p.Activate(), shared.ErrInvalidState))
	require.NoError(t, p.Deactivate())
	assert.False(t, p.IsActive())
	require.NoError(t, p.Activate())
}

func TestProduct_UnitPriceTTC(t *testing.T) {
	p, err := NewProduct("P1", ProductDetails{
		Designation: "Article",
		UnitPriceHT: decimal.NewFromInt(100),
		TVARate:     fiscal.TVA19,
		FODEC:       true,
	})
	require.NoError(t, err)
	// 100 + 1 FODEC, TVA 19% on 101
	assert.Equal(t, "120.19", p.UnitPriceTTC(decimal.NewFromInt(1)).String())
}
