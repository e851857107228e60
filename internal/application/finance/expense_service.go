package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/finance"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/project"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ExpenseService handles expense-related business operations
type ExpenseService struct {
	repo     finance.ExpenseRepository
	partners partner.Repository
	projects project.Repository
	logger   *zap.Logger
	now      func() time.Time
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(
	repo finance.ExpenseRepository,
	partners partner.Repository,
	projects project.Repository,
	logger *zap.Logger,
) *ExpenseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpenseService{
		repo:     repo,
		partners: partners,
		projects: projects,
		logger:   logger,
		now:      time.Now,
	}
}

// Create creates a new draft expense
func (s *ExpenseService) Create(ctx context.Context, req CreateExpenseRequest) (*ExpenseResponse, error) {
	if err := s.checkLinks(ctx, req.SupplierID, req.ProjectID); err != nil {
		return nil, err
	}

	number, err := s.repo.NextNumber(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to allocate expense number: %w", err)
	}

	expense, err := finance.NewExpense(
		number,
		finance.ExpenseCategory(req.Category),
		finance.ExpenseAmounts{AmountHT: req.AmountHT, TVAAmount: req.TVAAmount},
		req.Description,
		req.IncurredAt,
	)
	if err != nil {
		return nil, err
	}
	if req.SupplierID != nil || req.ProjectID != nil {
		expense.SetLinks(req.SupplierID, req.ProjectID)
	}
	if req.Remark != "" {
		expense.SetRemark(req.Remark)
	}

	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.logger.Info("expense created",
		zap.String("expense_id", expense.ID.String()),
		zap.String("number", expense.Number),
		zap.String("amount_ttc", expense.AmountTTC.StringFixed(3)),
	)

	response := ToExpenseResponse(expense)
	return &response, nil
}

// GetByID retrieves an expense by ID
func (s *ExpenseService) GetByID(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// List retrieves a paginated list of expenses
func (s *ExpenseService) List(ctx context.Context, filter ExpenseListFilter) ([]ExpenseResponse, int64, error) {
	domainFilter, err := toExpenseFilter(filter)
	if err != nil {
		return nil, 0, err
	}

	expenses, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	responses := make([]ExpenseResponse, len(expenses))
	for i := range expenses {
		responses[i] = ToExpenseResponse(&expenses[i])
	}
	return responses, total, nil
}

// Update updates a draft expense
func (s *ExpenseService) Update(ctx context.Context, id uuid.UUID, req UpdateExpenseRequest) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	category := expense.Category
	if req.Category != nil {
		category = finance.ExpenseCategory(*req.Category)
	}
	amounts := finance.ExpenseAmounts{AmountHT: expense.AmountHT, TVAAmount: expense.TVAAmount}
	if req.AmountHT != nil {
		amounts.AmountHT = *req.AmountHT
	}
	if req.TVAAmount != nil {
		amounts.TVAAmount = *req.TVAAmount
	}
	description := expense.Description
	if req.Description != nil {
		description = *req.Description
	}
	incurredAt := expense.IncurredAt
	if req.IncurredAt != nil {
		incurredAt = *req.IncurredAt
	}

	if err := expense.Update(category, amounts, description, incurredAt); err != nil {
		return nil, err
	}

	if req.SupplierID != nil || req.ProjectID != nil {
		supplierID, projectID := expense.SupplierID, expense.ProjectID
		if req.SupplierID != nil {
			supplierID = req.SupplierID
		}
		if req.ProjectID != nil {
			projectID = req.ProjectID
		}
		if err := s.checkLinks(ctx, req.SupplierID, req.ProjectID); err != nil {
			return nil, err
		}
		expense.SetLinks(supplierID, projectID)
	}
	if req.Remark != nil {
		expense.SetRemark(*req.Remark)
	}

	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}
	response := ToExpenseResponse(expense)
	return &response, nil
}

// Delete deletes a draft expense
func (s *ExpenseService) Delete(ctx context.Context, id uuid.UUID) error {
	expense, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if !expense.IsDraft() {
		return shared.NewInvalidStateError("Only draft expenses can be deleted")
	}
	if err := s.repo.Delete(ctx, expense.ID); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}

// Submit submits a draft expense for approval
func (s *ExpenseService) Submit(ctx context.Context, id uuid.UUID) (*ExpenseResponse, error) {
	return s.transition(ctx, id, "submitted", (*finance.Expense).Submit)
}

// Approve approves a pending expense
func (s *ExpenseService) Approve(ctx context.Context, id uuid.UUID, req ApproveExpenseRequest) (*ExpenseResponse, error) {
	return s.transition(ctx, id, "approved", func(e *finance.Expense) error {
		return e.Approve(req.Remark)
	})
}

// Reject rejects a pending expense
func (s *ExpenseService) Reject(ctx context.Context, id uuid.UUID, req ReasonRequest) (*ExpenseResponse, error) {
	return s.transition(ctx, id, "rejected", func(e *finance.Expense) error {
		return e.Reject(req.Reason)
	})
}

// Cancel cancels an expense that is not yet approved
func (s *ExpenseService) Cancel(ctx context.Context, id uuid.UUID, req ReasonRequest) (*ExpenseResponse, error) {
	return s.transition(ctx, id, "cancelled", func(e *finance.Expense) error {
		return e.Cancel(req.Reason)
	})
}

// Pay marks an approved expense as paid
func (s *ExpenseService) Pay(ctx context.Context, id uuid.UUID, req PayExpenseRequest) (*ExpenseResponse, error) {
	return s.transition(ctx, id, "paid", func(e *finance.Expense) error {
		return e.MarkAsPaid(document.PaymentMethod(req.Method))
	})
}

func (s *ExpenseService) transition(
	ctx context.Context,
	id uuid.UUID,
	action string,
	apply func(*finance.Expense) error,
) (*ExpenseResponse, error) {
	expense, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(expense); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, expense); err != nil {
		return nil, fmt.Errorf("failed to save expense: %w", err)
	}

	s.logger.Info("expense "+action,
		zap.String("expense_id", expense.ID.String()),
		zap.String("number", expense.Number),
		zap.String("status", string(expense.Status)),
	)

	response := ToExpenseResponse(expense)
	return &response, nil
}

// checkLinks verifies that a referenced supplier and project exist
func (s *ExpenseService) checkLinks(ctx context.Context, supplierID, projectID *uuid.UUID) error {
	if supplierID != nil {
		supplier, err := s.partners.FindByID(ctx, *supplierID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Supplier")
			}
			return fmt.Errorf("failed to get supplier: %w", err)
		}
		if !supplier.IsSupplier() {
			return shared.NewDomainError(shared.CodeInvalidInput,
				fmt.Sprintf("Partner %s is not a supplier", supplier.Code))
		}
	}
	if projectID != nil {
		if _, err := s.projects.FindByID(ctx, *projectID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewNotFoundError("Project")
			}
			return fmt.Errorf("failed to get project: %w", err)
		}
	}
	return nil
}

func (s *ExpenseService) find(ctx context.Context, id uuid.UUID) (*finance.Expense, error) {
	expense, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Expense")
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

func toExpenseFilter(filter ExpenseListFilter) (finance.ExpenseFilter, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "incurred_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := finance.ExpenseFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Category:      finance.ExpenseCategory(filter.Category),
		Status:        finance.ExpenseStatus(filter.Status),
		PaymentStatus: finance.PaymentStatus(filter.PaymentStatus),
	}

	var err error
	if domainFilter.SupplierID, err = parseOptionalUUID(filter.SupplierID, "supplier_id"); err != nil {
		return domainFilter, err
	}
	if domainFilter.ProjectID, err = parseOptionalUUID(filter.ProjectID, "project_id"); err != nil {
		return domainFilter, err
	}
	if domainFilter.From, err = parseOptionalDate(filter.From, "from"); err != nil {
		return domainFilter, err
	}
	if domainFilter.To, err = parseOptionalDate(filter.To, "to"); err != nil {
		return domainFilter, err
	}
	if domainFilter.To != nil {
		// inclusive upper bound
		end := domainFilter.To.Add(24*time.Hour - time.Nanosecond)
		domainFilter.To = &end
	}
	if domainFilter.From != nil && domainFilter.To != nil && domainFilter.To.Before(*domainFilter.From) {
		return domainFilter, shared.NewDomainError(shared.CodeInvalidInput, "from must not be after to")
	}
	return domainFilter, nil
}

func parseOptionalUUID(value, field string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, field+" must be a valid UUID")
	}
	return &id, nil
}

func parseOptionalDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, field+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}
