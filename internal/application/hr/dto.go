package hr

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/hr"
)

// CreateEmployeeRequest represents a request to create an employee
type CreateEmployeeRequest struct {
	Code       string          `json:"code" binding:"required,min=1,max=50"`
	FullName   string          `json:"full_name" binding:"required,min=1,max=200"`
	CIN        string          `json:"cin" binding:"required,len=8,numeric"`
	CNSSNumber string          `json:"cnss_number" binding:"max=20"`
	Position   string          `json:"position" binding:"max=100"`
	HireDate   time.Time       `json:"hire_date" binding:"required"`
	BaseSalary decimal.Decimal `json:"base_salary"`
}

// UpdateEmployeeRequest represents a request to update an employee. Nil
// fields keep their current value.
type UpdateEmployeeRequest struct {
	FullName   *string          `json:"full_name" binding:"omitempty,min=1,max=200"`
	CIN        *string          `json:"cin" binding:"omitempty,len=8,numeric"`
	CNSSNumber *string          `json:"cnss_number" binding:"omitempty,max=20"`
	Position   *string          `json:"position" binding:"omitempty,max=100"`
	HireDate   *time.Time       `json:"hire_date"`
	BaseSalary *decimal.Decimal `json:"base_salary"`
	Active     *bool            `json:"active"`
}

// EmployeeListFilter represents filter options for employee lists
type EmployeeListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// EmployeeResponse represents an employee in API responses
type EmployeeResponse struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	FullName   string          `json:"full_name"`
	CIN        string          `json:"cin"`
	CNSSNumber string          `json:"cnss_number,omitempty"`
	Position   string          `json:"position,omitempty"`
	HireDate   time.Time       `json:"hire_date"`
	BaseSalary decimal.Decimal `json:"base_salary"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Version    int             `json:"version"`
}

// ToEmployeeResponse converts a domain Employee to EmployeeResponse
func ToEmployeeResponse(e *hr.Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:         e.ID,
		Code:       e.Code,
		FullName:   e.FullName,
		CIN:        e.CIN,
		CNSSNumber: e.CNSSNumber,
		Position:   e.Position,
		HireDate:   e.HireDate,
		BaseSalary: e.BaseSalary,
		Active:     e.Active,
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		Version:    e.Version,
	}
}

// CreatePayslipRequest represents a request to compute a payslip. A zero
// gross salary falls back to the employee's base salary.
type CreatePayslipRequest struct {
	EmployeeID  uuid.UUID       `json:"employee_id" binding:"required"`
	Period      string          `json:"period" binding:"required,datetime=2006-01"`
	GrossSalary decimal.Decimal `json:"gross_salary"`
	Bonuses     decimal.Decimal `json:"bonuses"`
	IRPP        decimal.Decimal `json:"irpp"`
}

// PayPayslipRequest carries the optional payment date of a payslip
type PayPayslipRequest struct {
	PaidAt *time.Time `json:"paid_at"`
}

// PayslipListFilter represents filter options for payslip lists
type PayslipListFilter struct {
	EmployeeID string `form:"employee_id" binding:"omitempty,uuid"`
	Period     string `form:"period" binding:"omitempty,datetime=2006-01"`
	Page       int    `form:"page" binding:"min=0"`
	PageSize   int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string `form:"order_by"`
	OrderDir   string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// PayslipResponse represents a payslip in API responses
type PayslipResponse struct {
	ID           uuid.UUID       `json:"id"`
	EmployeeID   uuid.UUID       `json:"employee_id"`
	Period       string          `json:"period"`
	GrossSalary  decimal.Decimal `json:"gross_salary"`
	Bonuses      decimal.Decimal `json:"bonuses"`
	CNSSEmployee decimal.Decimal `json:"cnss_employee"`
	CNSSEmployer decimal.Decimal `json:"cnss_employer"`
	IRPP         decimal.Decimal `json:"irpp"`
	NetSalary    decimal.Decimal `json:"net_salary"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
	Status       string          `json:"status"`
	PaidAt       *time.Time      `json:"paid_at,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	Version      int             `json:"version"`
}

// ToPayslipResponse converts a domain Payslip to PayslipResponse
func ToPayslipResponse(p *hr.Payslip) PayslipResponse {
	return PayslipResponse{
		ID:           p.ID,
		EmployeeID:   p.EmployeeID,
		Period:       p.Period.String(),
		GrossSalary:  p.GrossSalary,
		Bonuses:      p.Bonuses,
		CNSSEmployee: p.CNSSEmployee,
		CNSSEmployer: p.CNSSEmployer,
		IRPP:         p.IRPP,
		NetSalary:    p.NetSalary,
		EmployerCost: p.EmployerCost(),
		Status:       string(p.Status),
		PaidAt:       p.PaidAt,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Version:      p.Version,
	}
}
