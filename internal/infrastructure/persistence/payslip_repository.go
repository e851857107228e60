package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/hr"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
	"github.com/tn-gestion/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPayslipRepository implements hr.PayslipRepository using GORM
type GormPayslipRepository struct {
	db *gorm.DB
}

// NewGormPayslipRepository creates a new GormPayslipRepository
func NewGormPayslipRepository(db *gorm.DB) *GormPayslipRepository {
	return &GormPayslipRepository{db: db}
}

// FindByID finds a payslip by its ID
func (r *GormPayslipRepository) FindByID(ctx context.Context, id uuid.UUID) (*hr.Payslip, error) {
	var model models.PayslipModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all payslips matching the filter, latest period first by default
func (r *GormPayslipRepository) FindAll(ctx context.Context, filter hr.PayslipFilter) ([]hr.Payslip, error) {
	var payslipModels []models.PayslipModel
	f := filter.Normalize()
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.PayslipModel{}), filter).
		Order(orderClause(f.OrderBy, f.OrderDir, PayslipSortFields, "period_start")).
		Offset(f.Offset()).
		Limit(f.PageSize)

	if err := query.Find(&payslipModels).Error; err != nil {
		return nil, err
	}

	payslips := make([]hr.Payslip, len(payslipModels))
	for i := range payslipModels {
		payslips[i] = *payslipModels[i].ToDomain()
	}
	return payslips, nil
}

// Count counts payslips matching the filter
func (r *GormPayslipRepository) Count(ctx context.Context, filter hr.PayslipFilter) (int64, error) {
	var count int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.PayslipModel{}), filter).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a payslip
func (r *GormPayslipRepository) Save(ctx context.Context, payslip *hr.Payslip) error {
	return r.db.WithContext(ctx).Save(models.PayslipModelFromDomain(payslip)).Error
}

// ExistsForPeriod checks whether the employee already has a payslip for the period
func (r *GormPayslipRepository) ExistsForPeriod(ctx context.Context, employeeID uuid.UUID, period hr.Period) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PayslipModel{}).
		Where("employee_id = ? AND period_year = ? AND period_month = ?", employeeID, period.Year, int(period.Month)).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

type payrollSumRow struct {
	Gross        decimal.Decimal
	Bonuses      decimal.Decimal
	CNSSEmployer decimal.Decimal
	Count        int64
}

// SumByPeriodRange sums payslips whose period starts within [from, to]
func (r *GormPayslipRepository) SumByPeriodRange(ctx context.Context, from, to time.Time) (hr.PayrollTotals, error) {
	var row payrollSumRow
	if err := r.db.WithContext(ctx).
		Model(&models.PayslipModel{}).
		Select("COALESCE(SUM(gross_salary), 0) AS gross, COALESCE(SUM(bonuses), 0) AS bonuses, "+
			"COALESCE(SUM(cnss_employer), 0) AS cnss_employer, COUNT(*) AS count").
		Where("period_start >= ? AND period_start <= ?", from, to).
		Scan(&row).Error; err != nil {
		return hr.PayrollTotals{}, err
	}
	return hr.PayrollTotals{
		Gross:        valueobject.RoundMillimes(row.Gross),
		Bonuses:      valueobject.RoundMillimes(row.Bonuses),
		CNSSEmployer: valueobject.RoundMillimes(row.CNSSEmployer),
		Count:        row.Count,
	}, nil
}

func (r *GormPayslipRepository) applyFilter(query *gorm.DB, filter hr.PayslipFilter) *gorm.DB {
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.Period != nil {
		query = query.Where("period_year = ? AND period_month = ?", filter.Period.Year, int(filter.Period.Month))
	}
	return query
}

// Ensure GormPayslipRepository implements hr.PayslipRepository
var _ hr.PayslipRepository = (*GormPayslipRepository)(nil)
