package hr

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

func details() EmployeeDetails {
	return EmployeeDetails{
		FullName:   "Amel Ben Salah",
		CIN:        "01234567",
		CNSSNumber: "12345678-01",
		Position:   "Comptable",
		HireDate:   time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC),
		BaseSalary: decimal.NewFromInt(1500),
	}
}

func TestNewEmployee(t *testing.T) {
	e, err := NewEmployee("emp-01", details())
	require.NoError(t, err)
	assert.Equal(t, "EMP-01", e.Code)
	assert.True(t, e.Active)

	d := details()
	d.CIN = "1234567"
	_, err = NewEmployee("EMP-02", d)
	assert.Error(t, err)

	d = details()
	d.CIN = "1234567A"
	_, err = NewEmployee("EMP-02", d)
	assert.Error(t, err)

	d = details()
	d.FullName = ""
	_, err = NewEmployee("EMP-02", d)
	assert.Error(t, err)

	_, err = NewEmployee("", details())
	assert.Error(t, err)
}

func TestEmployee_Activation(t *testing.T) {
	e, err := NewEmployee("EMP-01", details())
	require.NoError(t, err)
	assert.True(t, errors.Is(e.Activate(), shared.ErrInvalidState))
	require.NoError(t, e.Deactivate())
	assert.False(t, e.Active)
	require.NoError(t, e.Activate())
}

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2026-02")
	require.NoError(t, err)
	assert.Equal(t, 2026, p.Year)
	assert.Equal(t, time.February, p.Month)
	assert.Equal(t, "2026-02", p.String())
	assert.Equal(t, 28, p.End().Day())

	_, err = ParsePeriod("02/2026")
	assert.Error(t, err)
}

func TestNewPayslip(t *testing.T) {
	period := Period{Year: 2026, Month: time.March}

	t.Run("computes contributions and net", func(t *testing.T) {
		p, err := NewPayslip(uuid.New(), period, PayslipInput{
			GrossSalary: decimal.NewFromInt(1500),
			Bonuses:     decimal.NewFromInt(100),
			IRPP:        decimal.RequireFromString("120.5"),
		}, DefaultRates())
		require.NoError(t, err)

		// 1600 x 9.18% = 146.88 ; 1600 x 16.57% = 265.12
		assert.Equal(t, "146.88", p.CNSSEmployee.String())
		assert.Equal(t, "265.12", p.CNSSEmployer.String())
		assert.Equal(t, "1332.62", p.NetSalary.String())
		assert.True(t, p.NetSalary.Equal(p.GrossSalary.Add(p.Bonuses).Sub(p.CNSSEmployee).Sub(p.IRPP)))
		assert.Equal(t, "1865.12", p.EmployerCost().String())
		assert.Equal(t, PayslipStatusDraft, p.Status)
	})

	t.Run("rounds contributions to the millime", func(t *testing.T) {
		p, err := NewPayslip(uuid.New(), period, PayslipInput{GrossSalary: decimal.RequireFromString("1234.567")}, DefaultRates())
		require.NoError(t, err)
		// 1234.567 x 9.18% = 113.333250...
		assert.Equal(t, "113.333", p.CNSSEmployee.String())
	})

	t.Run("net cannot be negative", func(t *testing.T) {
		_, err := NewPayslip(uuid.New(), period, PayslipInput{
			GrossSalary: decimal.NewFromInt(100),
			IRPP:        decimal.NewFromInt(95),
		}, DefaultRates())
		assert.Error(t, err)
	})

	t.Run("requires a gross salary", func(t *testing.T) {
		_, err := NewPayslip(uuid.New(), period, PayslipInput{}, DefaultRates())
		assert.Error(t, err)
		_, err = NewPayslip(uuid.Nil, period, PayslipInput{GrossSalary: decimal.NewFromInt(1)}, DefaultRates())
		assert.Error(t, err)
	})
}

func TestPayslip_MarkAsPaid(t *testing.T) {
	p, err := NewPayslip(uuid.New(), Period{Year: 2026, Month: time.January}, PayslipInput{GrossSalary: decimal.NewFromInt(1000)}, DefaultRates())
	require.NoError(t, err)

	require.NoError(t, p.MarkAsPaid(time.Time{}))
	assert.Equal(t, PayslipStatusPaid, p.Status)
	assert.NotNil(t, p.PaidAt)
	assert.True(t, errors.Is(p.MarkAsPaid(time.Now()), shared.ErrInvalidState))
}
