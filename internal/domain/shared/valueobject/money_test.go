package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid amount and currency", func(t *testing.T) {
		m, err := NewMoney(decimal.RequireFromString("100.500"), TND)
		require.NoError(t, err)
		assert.Equal(t, TND, m.Currency())
		assert.True(t, m.Amount().Equal(decimal.RequireFromString("100.5")))
	})

	t.Run("returns error for empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "currency cannot be empty")
	})
}

func TestNewMoneyFromString(t *testing.T) {
	t.Run("valid string", func(t *testing.T) {
		m, err := NewMoneyFromString(" 123.456 ", TND)
		require.NoError(t, err)
		assert.Equal(t, "123.456", m.Amount().String())
	})

	t.Run("invalid string", func(t *testing.T) {
		_, err := NewMoneyFromString("not-a-number", TND)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyTND(decimal.RequireFromString("10.125"))
	b := NewMoneyTND(decimal.RequireFromString("2.875"))

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, "13", sum.Amount().String())

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, "7.25", diff.Amount().String())

	_, err = a.Add(Zero(EUR))
	assert.Error(t, err)

	_, err = a.Subtract(Zero(USD))
	assert.Error(t, err)

	gt, err := a.GreaterThan(b)
	require.NoError(t, err)
	assert.True(t, gt)
}

func TestMoney_Percentage(t *testing.T) {
	m := NewMoneyTND(decimal.RequireFromString("1234.567"))

	assert.Equal(t, "234.568", m.Percentage(decimal.NewFromInt(19)).Amount().StringFixed(3))
	assert.Equal(t, "12.346", m.Percentage(decimal.NewFromInt(1)).Amount().StringFixed(3))
	assert.True(t, m.Percentage(decimal.Zero).IsZero())
}

func TestMoney_Round(t *testing.T) {
	assert.Equal(t, "0.002", NewMoneyTND(decimal.RequireFromString("0.0015")).Round().Amount().StringFixed(3))
	assert.Equal(t, "-0.002", NewMoneyTND(decimal.RequireFromString("-0.0015")).Round().Amount().StringFixed(3))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0,000"},
		{"1", "1,000"},
		{"12.5", "12,500"},
		{"999.999", "999,999"},
		{"1000", "1 000,000"},
		{"1234.567", "1 234,567"},
		{"1234567.8915", "1 234 567,892"},
		{"-4500.25", "-4 500,250"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "12,50", FormatDecimal(decimal.RequireFromString("12.5"), 2))
	assert.Equal(t, "1 500", FormatDecimal(decimal.NewFromInt(1500), 0))
}

func TestMoney_JSON(t *testing.T) {
	m := NewMoneyTND(decimal.RequireFromString("42.1"))
	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":"42.100","currency":"TND"}`, string(data))

	var decoded Money
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"7.5"}`), &decoded))
	assert.Equal(t, TND, decoded.Currency())
	assert.True(t, decoded.Amount().Equal(decimal.RequireFromString("7.5")))

	assert.Error(t, json.Unmarshal([]byte(`{"amount":"abc"}`), &decoded))
}

func TestMoney_SQL(t *testing.T) {
	m := NewMoneyTND(decimal.RequireFromString("3.2"))
	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "3.200", v)

	var scanned Money
	require.NoError(t, scanned.Scan("15.750"))
	assert.Equal(t, TND, scanned.Currency())
	assert.Equal(t, "15.75", scanned.Amount().String())

	require.NoError(t, scanned.Scan(nil))
	assert.True(t, scanned.IsZero())

	assert.Error(t, scanned.Scan(struct{}{}))
}

func TestMoney_Format(t *testing.T) {
	m := NewMoneyTND(decimal.RequireFromString("2500.5"))
	assert.Equal(t, "2 500,500", m.Format())
	assert.Equal(t, "2500.500 TND", m.String())
}
