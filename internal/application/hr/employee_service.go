package hr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/hr"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// EmployeeService handles employee-related business operations
type EmployeeService struct {
	repo     hr.EmployeeRepository
	payslips hr.PayslipRepository
}

// NewEmployeeService creates a new EmployeeService
func NewEmployeeService(repo hr.EmployeeRepository, payslips hr.PayslipRepository) *EmployeeService {
	return &EmployeeService{
		repo:     repo,
		payslips: payslips,
	}
}

// Create creates a new employee
func (s *EmployeeService) Create(ctx context.Context, req CreateEmployeeRequest) (*EmployeeResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check employee code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Employee with code %s already exists", code))
	}

	employee, err := hr.NewEmployee(code, hr.EmployeeDetails{
		FullName:   req.FullName,
		CIN:        req.CIN,
		CNSSNumber: req.CNSSNumber,
		Position:   req.Position,
		HireDate:   req.HireDate,
		BaseSalary: req.BaseSalary,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	response := ToEmployeeResponse(employee)
	return &response, nil
}

// GetByID retrieves an employee by ID
func (s *EmployeeService) GetByID(ctx context.Context, id uuid.UUID) (*EmployeeResponse, error) {
	employee, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToEmployeeResponse(employee)
	return &response, nil
}

// List retrieves a paginated list of employees
func (s *EmployeeService) List(ctx context.Context, filter EmployeeListFilter) ([]EmployeeResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "full_name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := hr.EmployeeFilter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Active: filter.Active,
	}

	employees, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list employees: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count employees: %w", err)
	}

	responses := make([]EmployeeResponse, len(employees))
	for i := range employees {
		responses[i] = ToEmployeeResponse(&employees[i])
	}
	return responses, total, nil
}

// Update updates an employee. Active toggles the employment status.
func (s *EmployeeService) Update(ctx context.Context, id uuid.UUID, req UpdateEmployeeRequest) (*EmployeeResponse, error) {
	employee, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	details := hr.EmployeeDetails{
		FullName:   employee.FullName,
		CIN:        employee.CIN,
		CNSSNumber: employee.CNSSNumber,
		Position:   employee.Position,
		HireDate:   employee.HireDate,
		BaseSalary: employee.BaseSalary,
	}
	if req.FullName != nil {
		details.FullName = *req.FullName
	}
	if req.CIN != nil {
		details.CIN = *req.CIN
	}
	if req.CNSSNumber != nil {
		details.CNSSNumber = *req.CNSSNumber
	}
	if req.Position != nil {
		details.Position = *req.Position
	}
	if req.HireDate != nil {
		details.HireDate = *req.HireDate
	}
	if req.BaseSalary != nil {
		details.BaseSalary = *req.BaseSalary
	}

	if err := employee.Update(details); err != nil {
		return nil, err
	}
	if req.Active != nil && *req.Active != employee.Active {
		if *req.Active {
			err = employee.Activate()
		} else {
			err = employee.Deactivate()
		}
		if err != nil {
			return nil, err
		}
	}

	if err := s.repo.Save(ctx, employee); err != nil {
		return nil, fmt.Errorf("failed to save employee: %w", err)
	}
	response := ToEmployeeResponse(employee)
	return &response, nil
}

// Delete deletes an employee without payslips. Employees with a payroll
// history can only be deactivated.
func (s *EmployeeService) Delete(ctx context.Context, id uuid.UUID) error {
	employee, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	count, err := s.payslips.Count(ctx, hr.PayslipFilter{EmployeeID: &employee.ID})
	if err != nil {
		return fmt.Errorf("failed to count payslips: %w", err)
	}
	if count > 0 {
		return shared.NewInvalidStateError("Employee %s has %d payslips, deactivate instead", employee.Code, count)
	}

	if err := s.repo.Delete(ctx, employee.ID); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

func (s *EmployeeService) find(ctx context.Context, id uuid.UUID) (*hr.Employee, error) {
	employee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Employee")
		}
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	return employee, nil
}
