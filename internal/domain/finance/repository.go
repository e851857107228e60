package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// ExpenseFilter narrows expense listings
type ExpenseFilter struct {
	shared.Filter
	Category      ExpenseCategory
	Status        ExpenseStatus
	PaymentStatus PaymentStatus
	SupplierID    *uuid.UUID
	ProjectID     *uuid.UUID
	From          *time.Time
	To            *time.Time
}

// CategoryTotal is the sum of approved expenses in one category
type CategoryTotal struct {
	Category  ExpenseCategory
	AmountHT  decimal.Decimal
	TVAAmount decimal.Decimal
	Count     int64
}

// ExpenseRepository defines the interface for expense persistence
type ExpenseRepository interface {
	// FindByID finds an expense by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Expense, error)

	// FindAll finds all expenses matching the filter
	FindAll(ctx context.Context, filter ExpenseFilter) ([]Expense, error)

	// Count counts expenses matching the filter
	Count(ctx context.Context, filter ExpenseFilter) (int64, error)

	// Save creates or updates an expense
	Save(ctx context.Context, expense *Expense) error

	// Delete deletes an expense
	Delete(ctx context.Context, id uuid.UUID) error

	// NextNumber returns the next expense number for the month of t
	NextNumber(ctx context.Context, t time.Time) (string, error)

	// SumApprovedByCategory sums approved expenses incurred in [from, to]
	SumApprovedByCategory(ctx context.Context, from, to time.Time) ([]CategoryTotal, error)

	// SumApprovedByProject sums approved expenses of a project
	SumApprovedByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error)
}
