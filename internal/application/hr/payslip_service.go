package hr

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/hr"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// PayslipService computes and pays monthly payslips
type PayslipService struct {
	repo      hr.PayslipRepository
	employees hr.EmployeeRepository
	rates     hr.Rates
	logger    *zap.Logger
	now       func() time.Time
}

// NewPayslipService creates a new PayslipService with the given CNSS rates
func NewPayslipService(
	repo hr.PayslipRepository,
	employees hr.EmployeeRepository,
	rates hr.Rates,
	logger *zap.Logger,
) *PayslipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PayslipService{
		repo:      repo,
		employees: employees,
		rates:     rates,
		logger:    logger,
		now:       time.Now,
	}
}

// Rates returns the CNSS rates applied to new payslips
func (s *PayslipService) Rates() hr.Rates {
	return s.rates
}

// Create computes a draft payslip for an active employee
func (s *PayslipService) Create(ctx context.Context, req CreatePayslipRequest) (*PayslipResponse, error) {
	period, err := hr.ParsePeriod(req.Period)
	if err != nil {
		return nil, err
	}

	employee, err := s.employees.FindByID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Employee")
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	if !employee.Active {
		return nil, shared.NewInvalidStateError("Employee %s is inactive", employee.Code)
	}

	exists, err := s.repo.ExistsForPeriod(ctx, employee.ID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to check payslip period: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Employee %s already has a payslip for %s", employee.Code, period))
	}

	gross := req.GrossSalary
	if gross.IsZero() {
		gross = employee.BaseSalary
	}
	payslip, err := hr.NewPayslip(employee.ID, period, hr.PayslipInput{
		GrossSalary: gross,
		Bonuses:     req.Bonuses,
		IRPP:        req.IRPP,
	}, s.rates)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, payslip); err != nil {
		return nil, fmt.Errorf("failed to save payslip: %w", err)
	}

	s.logger.Info("payslip created",
		zap.String("payslip_id", payslip.ID.String()),
		zap.String("employee", employee.Code),
		zap.String("period", period.String()),
		zap.String("net_salary", payslip.NetSalary.StringFixed(3)),
	)

	response := ToPayslipResponse(payslip)
	return &response, nil
}

// GetByID retrieves a payslip by ID
func (s *PayslipService) GetByID(ctx context.Context, id uuid.UUID) (*PayslipResponse, error) {
	payslip, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPayslipResponse(payslip)
	return &response, nil
}

// List retrieves a paginated list of payslips
func (s *PayslipService) List(ctx context.Context, filter PayslipListFilter) ([]PayslipResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "period_start"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := hr.PayslipFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
		}.Normalize(),
	}
	if filter.EmployeeID != "" {
		id, err := uuid.Parse(filter.EmployeeID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "employee_id must be a valid UUID")
		}
		domainFilter.EmployeeID = &id
	}
	if filter.Period != "" {
		period, err := hr.ParsePeriod(filter.Period)
		if err != nil {
			return nil, 0, err
		}
		domainFilter.Period = &period
	}

	payslips, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payslips: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count payslips: %w", err)
	}

	responses := make([]PayslipResponse, len(payslips))
	for i := range payslips {
		responses[i] = ToPayslipResponse(&payslips[i])
	}
	return responses, total, nil
}

// Pay marks a payslip as paid, today unless a date is given
func (s *PayslipService) Pay(ctx context.Context, id uuid.UUID, req PayPayslipRequest) (*PayslipResponse, error) {
	payslip, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	paidAt := s.now()
	if req.PaidAt != nil {
		paidAt = *req.PaidAt
	}
	if err := payslip.MarkAsPaid(paidAt); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, payslip); err != nil {
		return nil, fmt.Errorf("failed to save payslip: %w", err)
	}

	s.logger.Info("payslip paid",
		zap.String("payslip_id", payslip.ID.String()),
		zap.String("period", payslip.Period.String()),
	)

	response := ToPayslipResponse(payslip)
	return &response, nil
}

func (s *PayslipService) find(ctx context.Context, id uuid.UUID) (*hr.Payslip, error) {
	payslip, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Payslip")
		}
		return nil, fmt.Errorf("failed to get payslip: %w", err)
	}
	return payslip, nil
}
