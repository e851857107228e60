package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/finance"
	"github.com/tn-gestion/backend/internal/domain/hr"
	"github.com/tn-gestion/backend/internal/domain/project"
	"github.com/tn-gestion/backend/internal/domain/report"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// ReportService builds the accounting reports from aggregate queries
type ReportService struct {
	repo     report.Repository
	expenses finance.ExpenseRepository
	payslips hr.PayslipRepository
	projects project.Repository
}

// NewReportService creates a new ReportService
func NewReportService(
	repo report.Repository,
	expenses finance.ExpenseRepository,
	payslips hr.PayslipRepository,
	projects project.Repository,
) *ReportService {
	return &ReportService{
		repo:     repo,
		expenses: expenses,
		payslips: payslips,
		projects: projects,
	}
}

// SalesSummary sums the invoices of the period, credit notes deducted
func (s *ReportService) SalesSummary(ctx context.Context, req PeriodRequest) (*report.SalesSummary, error) {
	period, err := parsePeriod(req)
	if err != nil {
		return nil, err
	}
	invoices, credits, err := s.sumInvoicesAndCredits(ctx, period)
	if err != nil {
		return nil, err
	}
	summary := report.NewSalesSummary(period, invoices, credits)
	return &summary, nil
}

// TVADeclaration nets collected TVA against the TVA deductible on approved
// expenses
func (s *ReportService) TVADeclaration(ctx context.Context, req PeriodRequest) (*report.TVADeclaration, error) {
	period, err := parsePeriod(req)
	if err != nil {
		return nil, err
	}
	invoices, credits, err := s.sumInvoicesAndCredits(ctx, period)
	if err != nil {
		return nil, err
	}

	invoiceRates, err := s.repo.SumTVAByRate(ctx, documentQuery(document.TypeInvoice, period))
	if err != nil {
		return nil, fmt.Errorf("failed to sum invoice TVA: %w", err)
	}
	creditRates, err := s.repo.SumTVAByRate(ctx, documentQuery(document.TypeCreditNote, period))
	if err != nil {
		return nil, fmt.Errorf("failed to sum credit note TVA: %w", err)
	}

	categories, err := s.expenses.SumApprovedByCategory(ctx, period.From, endOfDay(period.To))
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	deductible := decimal.Zero
	for _, c := range categories {
		deductible = deductible.Add(c.TVAAmount)
	}

	declaration := report.NewTVADeclaration(period, invoiceRates, creditRates, deductible, invoices, credits)
	return &declaration, nil
}

// ProfitAndLoss compares revenue with expenses and payroll cost
func (s *ReportService) ProfitAndLoss(ctx context.Context, req PeriodRequest) (*report.ProfitAndLoss, error) {
	period, err := parsePeriod(req)
	if err != nil {
		return nil, err
	}
	invoices, credits, err := s.sumInvoicesAndCredits(ctx, period)
	if err != nil {
		return nil, err
	}

	categories, err := s.expenses.SumApprovedByCategory(ctx, period.From, endOfDay(period.To))
	if err != nil {
		return nil, fmt.Errorf("failed to sum expenses: %w", err)
	}
	lines := make([]report.ExpenseLine, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, report.ExpenseLine{
			Category: string(c.Category),
			Label:    c.Category.DisplayName(),
			AmountHT: c.AmountHT,
		})
	}

	payroll, err := s.payslips.SumByPeriodRange(ctx, period.From, period.To)
	if err != nil {
		return nil, fmt.Errorf("failed to sum payroll: %w", err)
	}
	payrollCost := payroll.Gross.Add(payroll.Bonuses).Add(payroll.CNSSEmployer)

	pnl := report.NewProfitAndLoss(period, invoices.NetHT.Sub(credits.NetHT), lines, payrollCost)
	return &pnl, nil
}

// ProjectProfitability compares what a project invoiced with its expenses
// and budget
func (s *ReportService) ProjectProfitability(ctx context.Context, projectID uuid.UUID) (*report.ProjectProfitability, error) {
	p, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Project")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	invoices, err := s.repo.SumDocuments(ctx, report.DocumentQuery{Type: document.TypeInvoice, ProjectID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to sum project invoices: %w", err)
	}
	credits, err := s.repo.SumDocuments(ctx, report.DocumentQuery{Type: document.TypeCreditNote, ProjectID: &p.ID})
	if err != nil {
		return nil, fmt.Errorf("failed to sum project credit notes: %w", err)
	}
	expensesHT, err := s.expenses.SumApprovedByProject(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum project expenses: %w", err)
	}

	result := report.NewProjectProfitability(p.ID, p.Code, p.Name, p.Budget, invoices.NetHT.Sub(credits.NetHT), expensesHT)
	return &result, nil
}

func (s *ReportService) sumInvoicesAndCredits(ctx context.Context, period report.Period) (report.DocumentSums, report.DocumentSums, error) {
	invoices, err := s.repo.SumDocuments(ctx, documentQuery(document.TypeInvoice, period))
	if err != nil {
		return report.DocumentSums{}, report.DocumentSums{}, fmt.Errorf("failed to sum invoices: %w", err)
	}
	credits, err := s.repo.SumDocuments(ctx, documentQuery(document.TypeCreditNote, period))
	if err != nil {
		return report.DocumentSums{}, report.DocumentSums{}, fmt.Errorf("failed to sum credit notes: %w", err)
	}
	return invoices, credits, nil
}

func documentQuery(t document.Type, period report.Period) report.DocumentQuery {
	from, to := period.From, period.To
	return report.DocumentQuery{Type: t, From: &from, To: &to}
}

func parsePeriod(req PeriodRequest) (report.Period, error) {
	from, err := time.Parse(time.DateOnly, req.From)
	if err != nil {
		return report.Period{}, shared.NewDomainError(shared.CodeInvalidInput, "from must be a date (YYYY-MM-DD)")
	}
	to, err := time.Parse(time.DateOnly, req.To)
	if err != nil {
		return report.Period{}, shared.NewDomainError(shared.CodeInvalidInput, "to must be a date (YYYY-MM-DD)")
	}
	return report.NewPeriod(from, to)
}

// endOfDay makes a date bound inclusive for timestamps
func endOfDay(t time.Time) time.Time {
	return t.Add(24*time.Hour - time.Nanosecond)
}
