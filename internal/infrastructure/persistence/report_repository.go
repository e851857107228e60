package persistence

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/report"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
	"github.com/tn-gestion/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// reportedStatuses are the statuses of documents that count in reports.
// Drafts have no number yet, cancelled and rejected documents never took effect.
var reportedStatuses = []document.Status{
	document.StatusValidated,
	document.StatusAccepted,
	document.StatusConverted,
}

// GormReportRepository implements report.Repository using GORM
type GormReportRepository struct {
	db *gorm.DB
}

// NewGormReportRepository creates a new GormReportRepository
func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

type documentSumRow struct {
	Count    int64
	NetHT    decimal.Decimal
	FODEC    decimal.Decimal
	TVA      decimal.Decimal
	Stamps   decimal.Decimal
	TTC      decimal.Decimal
	NetToPay decimal.Decimal
	Paid     decimal.Decimal
}

// SumDocuments sums the totals of the reported documents matching the query
func (r *GormReportRepository) SumDocuments(ctx context.Context, q report.DocumentQuery) (report.DocumentSums, error) {
	var row documentSumRow
	query := r.scope(r.db.WithContext(ctx).Model(&models.DocumentModel{}), q, "").
		Select(`COUNT(*) AS count,
			COALESCE(SUM(total_net_ht), 0) AS net_ht,
			COALESCE(SUM(total_fodec), 0) AS fodec,
			COALESCE(SUM(total_tva), 0) AS tva,
			COALESCE(SUM(stamp), 0) AS stamps,
			COALESCE(SUM(total_ttc), 0) AS ttc,
			COALESCE(SUM(net_to_pay), 0) AS net_to_pay,
			COALESCE(SUM(paid_amount), 0) AS paid`)
	if err := query.Scan(&row).Error; err != nil {
		return report.DocumentSums{}, err
	}
	return report.DocumentSums{
		Count:    row.Count,
		NetHT:    valueobject.RoundMillimes(row.NetHT),
		FODEC:    valueobject.RoundMillimes(row.FODEC),
		TVA:      valueobject.RoundMillimes(row.TVA),
		Stamps:   valueobject.RoundMillimes(row.Stamps),
		TTC:      valueobject.RoundMillimes(row.TTC),
		NetToPay: valueobject.RoundMillimes(row.NetToPay),
		Paid:     valueobject.RoundMillimes(row.Paid),
	}, nil
}

type tvaSumRow struct {
	Rate   int
	Base   decimal.Decimal
	Amount decimal.Decimal
}

// SumTVAByRate sums the TVA breakdown of the reported documents per rate
func (r *GormReportRepository) SumTVAByRate(ctx context.Context, q report.DocumentQuery) ([]report.TVASum, error) {
	var rows []tvaSumRow
	query := r.scope(
		r.db.WithContext(ctx).
			Table("document_tva_lines AS t").
			Joins("JOIN documents AS d ON d.id = t.document_id"),
		q, "d.").
		Select("t.rate AS rate, COALESCE(SUM(t.base), 0) AS base, COALESCE(SUM(t.amount), 0) AS amount").
		Group("t.rate").
		Order("t.rate")
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}

	sums := make([]report.TVASum, len(rows))
	for i, row := range rows {
		sums[i] = report.TVASum{
			Rate:   fiscal.TVARate(row.Rate),
			Base:   valueobject.RoundMillimes(row.Base),
			Amount: valueobject.RoundMillimes(row.Amount),
		}
	}
	return sums, nil
}

// scope restricts a query to the reported documents of the query. prefix
// qualifies document columns when the documents table is joined.
func (r *GormReportRepository) scope(query *gorm.DB, q report.DocumentQuery, prefix string) *gorm.DB {
	query = query.Where(prefix+"type = ? AND "+prefix+"status IN ?", q.Type, reportedStatuses)
	if q.From != nil {
		query = query.Where(prefix+"issue_date >= ?", *q.From)
	}
	if q.To != nil {
		query = query.Where(prefix+"issue_date <= ?", *q.To)
	}
	if q.ProjectID != nil {
		query = query.Where(prefix+"project_id = ?", *q.ProjectID)
	}
	return query
}

// Ensure GormReportRepository implements report.Repository
var _ report.Repository = (*GormReportRepository)(nil)
