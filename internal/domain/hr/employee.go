// Package hr holds employees and their monthly payslips.
package hr

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// Employee is a member of staff
type Employee struct {
	shared.BaseAggregateRoot
	Code       string
	FullName   string
	CIN        string // carte d'identité nationale, 8 digits
	CNSSNumber string
	Position   string
	HireDate   time.Time
	BaseSalary decimal.Decimal
	Active     bool
}

// EmployeeDetails are the editable fields of an employee
type EmployeeDetails struct {
	FullName   string
	CIN        string
	CNSSNumber string
	Position   string
	HireDate   time.Time
	BaseSalary decimal.Decimal
}

// NewEmployee creates a new active employee
func NewEmployee(code string, details EmployeeDetails) (*Employee, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Employee code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Employee code cannot exceed 50 characters")
	}
	e := &Employee{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Active:            true,
	}
	if err := e.apply(details); err != nil {
		return nil, err
	}
	return e, nil
}

// Update replaces the editable fields
func (e *Employee) Update(details EmployeeDetails) error {
	if err := e.apply(details); err != nil {
		return err
	}
	e.IncrementVersion()
	return nil
}

func (e *Employee) apply(d EmployeeDetails) error {
	name := strings.TrimSpace(d.FullName)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Employee name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Employee name cannot exceed 200 characters")
	}
	cin := strings.TrimSpace(d.CIN)
	if err := ValidateCIN(cin); err != nil {
		return err
	}
	if d.HireDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Hire date is required")
	}
	if d.BaseSalary.IsNegative() {
		return shared.NewDomainError("INVALID_SALARY", "Base salary cannot be negative")
	}

	e.FullName = name
	e.CIN = cin
	e.CNSSNumber = strings.TrimSpace(d.CNSSNumber)
	e.Position = strings.TrimSpace(d.Position)
	e.HireDate = d.HireDate
	e.BaseSalary = valueobject.RoundMillimes(d.BaseSalary)
	return nil
}

// Deactivate marks the employee as having left the company
func (e *Employee) Deactivate() error {
	if !e.Active {
		return shared.NewInvalidStateError("Employee %s is already inactive", e.Code)
	}
	e.Active = false
	e.IncrementVersion()
	return nil
}

// Activate marks the employee as active again
func (e *Employee) Activate() error {
	if e.Active {
		return shared.NewInvalidStateError("Employee %s is already active", e.Code)
	}
	e.Active = true
	e.IncrementVersion()
	return nil
}

// ValidateCIN checks a national identity card number: exactly 8 digits
func ValidateCIN(cin string) error {
	if len(cin) != 8 {
		return shared.NewDomainError("INVALID_CIN", "CIN must have exactly 8 digits")
	}
	for _, r := range cin {
		if r < '0' || r > '9' {
			return shared.NewDomainError("INVALID_CIN", "CIN must have exactly 8 digits")
		}
	}
	return nil
}
