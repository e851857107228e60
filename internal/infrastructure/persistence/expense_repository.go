package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/finance"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
	"github.com/tn-gestion/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExpenseRepository implements finance.ExpenseRepository using GORM
type GormExpenseRepository struct {
	db *gorm.DB
}

// NewGormExpenseRepository creates a new GormExpenseRepository
func NewGormExpenseRepository(db *gorm.DB) *GormExpenseRepository {
	return &GormExpenseRepository{db: db}
}

// FindByID finds an expense by its ID
func (r *GormExpenseRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	var model models.ExpenseModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all expenses matching the filter
func (r *GormExpenseRepository) FindAll(ctx context.Context, filter finance.ExpenseFilter) ([]finance.Expense, error) {
	var expenseModels []models.ExpenseModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter)

	if err := query.Find(&expenseModels).Error; err != nil {
		return nil, err
	}

	expenses := make([]finance.Expense, len(expenseModels))
	for i := range expenseModels {
		expenses[i] = *expenseModels[i].ToDomain()
	}
	return expenses, nil
}

// Count counts expenses matching the filter
func (r *GormExpenseRepository) Count(ctx context.Context, filter finance.ExpenseFilter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.ExpenseModel{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an expense
func (r *GormExpenseRepository) Save(ctx context.Context, expense *finance.Expense) error {
	return r.db.WithContext(ctx).Save(models.ExpenseModelFromDomain(expense)).Error
}

// Delete deletes an expense
func (r *GormExpenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ExpenseModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// NextNumber generates the next expense number for the month of t,
// format DEP-YYYYMM-00001
func (r *GormExpenseRepository) NextNumber(ctx context.Context, t time.Time) (string, error) {
	var numbers []string
	prefix := "DEP-" + t.Format("200601") + "-%"
	if err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Where("number LIKE ?", prefix).
		Pluck("number", &numbers).Error; err != nil {
		return "", err
	}
	return finance.FormatExpenseNumber(t, highestSequence(numbers)+1), nil
}

type categorySumRow struct {
	Category  string
	AmountHT  decimal.Decimal
	TVAAmount decimal.Decimal
	Count     int64
}

// SumApprovedByCategory sums approved expenses incurred in [from, to]
func (r *GormExpenseRepository) SumApprovedByCategory(ctx context.Context, from, to time.Time) ([]finance.CategoryTotal, error) {
	var rows []categorySumRow
	if err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Select("category, COALESCE(SUM(amount_ht), 0) AS amount_ht, COALESCE(SUM(tva_amount), 0) AS tva_amount, COUNT(*) AS count").
		Where("status = ? AND incurred_at >= ? AND incurred_at <= ?", finance.ExpenseStatusApproved, from, to).
		Group("category").
		Order("category").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	totals := make([]finance.CategoryTotal, len(rows))
	for i, row := range rows {
		totals[i] = finance.CategoryTotal{
			Category:  finance.ExpenseCategory(row.Category),
			AmountHT:  valueobject.RoundMillimes(row.AmountHT),
			TVAAmount: valueobject.RoundMillimes(row.TVAAmount),
			Count:     row.Count,
		}
	}
	return totals, nil
}

// SumApprovedByProject sums the HT amount of approved expenses of a project
func (r *GormExpenseRepository) SumApprovedByProject(ctx context.Context, projectID uuid.UUID) (decimal.Decimal, error) {
	var row struct{ Total decimal.Decimal }
	if err := r.db.WithContext(ctx).
		Model(&models.ExpenseModel{}).
		Select("COALESCE(SUM(amount_ht), 0) AS total").
		Where("project_id = ? AND status = ?", projectID, finance.ExpenseStatusApproved).
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return valueobject.RoundMillimes(row.Total), nil
}

func (r *GormExpenseRepository) applyFilter(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)
	f := filter.Normalize()
	return query.
		Order(orderClause(f.OrderBy, f.OrderDir, ExpenseSortFields, "incurred_at")).
		Offset(f.Offset()).
		Limit(f.PageSize)
}

func (r *GormExpenseRepository) applyFilterWithoutPagination(query *gorm.DB, filter finance.ExpenseFilter) *gorm.DB {
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(number) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.From != nil {
		query = query.Where("incurred_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("incurred_at <= ?", *filter.To)
	}
	return query
}

// Ensure GormExpenseRepository implements finance.ExpenseRepository
var _ finance.ExpenseRepository = (*GormExpenseRepository)(nil)
