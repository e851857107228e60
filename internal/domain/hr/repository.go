package hr

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// EmployeeFilter narrows employee listings
type EmployeeFilter struct {
	shared.Filter
	Active *bool
}

// EmployeeRepository defines the interface for employee persistence
type EmployeeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	FindAll(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	Count(ctx context.Context, filter EmployeeFilter) (int64, error)
	Save(ctx context.Context, employee *Employee) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}

// PayslipFilter narrows payslip listings
type PayslipFilter struct {
	shared.Filter
	EmployeeID *uuid.UUID
	Period     *Period
}

// PayrollTotals sums payslips over a date range
type PayrollTotals struct {
	Gross        decimal.Decimal
	Bonuses      decimal.Decimal
	CNSSEmployer decimal.Decimal
	Count        int64
}

// PayslipRepository defines the interface for payslip persistence
type PayslipRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payslip, error)
	FindAll(ctx context.Context, filter PayslipFilter) ([]Payslip, error)
	Count(ctx context.Context, filter PayslipFilter) (int64, error)
	Save(ctx context.Context, payslip *Payslip) error

	// ExistsForPeriod checks the one-payslip-per-employee-and-month rule
	ExistsForPeriod(ctx context.Context, employeeID uuid.UUID, period Period) (bool, error)

	// SumByPeriodRange sums payslips whose period starts within [from, to]
	SumByPeriodRange(ctx context.Context, from, to time.Time) (PayrollTotals, error)
}
