package hr

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// Rates are the social security contribution rates, in percent
type Rates struct {
	CNSSEmployee decimal.Decimal
	CNSSEmployer decimal.Decimal
}

// DefaultRates returns the CNSS rates of the general scheme
func DefaultRates() Rates {
	return Rates{
		CNSSEmployee: decimal.RequireFromString("9.18"),
		CNSSEmployer: decimal.RequireFromString("16.57"),
	}
}

// PayslipStatus represents the status of a payslip
type PayslipStatus string

const (
	PayslipStatusDraft PayslipStatus = "DRAFT"
	PayslipStatusPaid  PayslipStatus = "PAID"
)

// Period is a payroll month
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses a YYYY-MM period
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, shared.NewDomainError("INVALID_PERIOD", "Period must be formatted as YYYY-MM")
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// String returns the period as YYYY-MM
func (p Period) String() string {
	return p.Start().Format("2006-01")
}

// Start returns the first day of the period
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// End returns the last day of the period
func (p Period) End() time.Time {
	return p.Start().AddDate(0, 1, -1)
}

// PayslipInput holds the entered amounts of a payslip
type PayslipInput struct {
	GrossSalary decimal.Decimal
	Bonuses     decimal.Decimal
	IRPP        decimal.Decimal // income tax withheld
}

// Payslip is the salary of one employee for one month
type Payslip struct {
	shared.BaseAggregateRoot
	EmployeeID   uuid.UUID
	Period       Period
	GrossSalary  decimal.Decimal
	Bonuses      decimal.Decimal
	IRPP         decimal.Decimal
	CNSSEmployee decimal.Decimal
	CNSSEmployer decimal.Decimal
	NetSalary    decimal.Decimal
	Status       PayslipStatus
	PaidAt       *time.Time
}

// NewPayslip computes a draft payslip
func NewPayslip(employeeID uuid.UUID, period Period, in PayslipInput, rates Rates) (*Payslip, error) {
	if employeeID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_EMPLOYEE", "Employee is required")
	}
	if period.Year < 2000 || period.Month < time.January || period.Month > time.December {
		return nil, shared.NewDomainError("INVALID_PERIOD", "Period is not valid")
	}
	if !in.GrossSalary.IsPositive() {
		return nil, shared.NewDomainError("INVALID_SALARY", "Gross salary must be positive")
	}
	if in.Bonuses.IsNegative() || in.IRPP.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SALARY", "Bonuses and IRPP cannot be negative")
	}

	gross := valueobject.RoundMillimes(in.GrossSalary)
	bonuses := valueobject.RoundMillimes(in.Bonuses)
	irpp := valueobject.RoundMillimes(in.IRPP)
	subject := gross.Add(bonuses)
	hundred := decimal.NewFromInt(100)
	cnssEmployee := valueobject.RoundMillimes(subject.Mul(rates.CNSSEmployee).Div(hundred))
	cnssEmployer := valueobject.RoundMillimes(subject.Mul(rates.CNSSEmployer).Div(hundred))
	net := subject.Sub(cnssEmployee).Sub(irpp)
	if net.IsNegative() {
		return nil, shared.NewDomainError("INVALID_SALARY", "Net salary cannot be negative")
	}

	return &Payslip{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		EmployeeID:        employeeID,
		Period:            period,
		GrossSalary:       gross,
		Bonuses:           bonuses,
		IRPP:              irpp,
		CNSSEmployee:      cnssEmployee,
		CNSSEmployer:      cnssEmployer,
		NetSalary:         net,
		Status:            PayslipStatusDraft,
	}, nil
}

// EmployerCost is what the payslip costs the company
func (p *Payslip) EmployerCost() decimal.Decimal {
	return p.GrossSalary.Add(p.Bonuses).Add(p.CNSSEmployer)
}

// MarkAsPaid records the salary payment
func (p *Payslip) MarkAsPaid(paidAt time.Time) error {
	if p.Status == PayslipStatusPaid {
		return shared.NewInvalidStateError("Payslip %s is already paid", p.Period)
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	p.Status = PayslipStatusPaid
	p.PaidAt = &paidAt
	p.IncrementVersion()
	return nil
}
