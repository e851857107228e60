package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/hr"
)

// EmployeeModel is the persistence model for employees
type EmployeeModel struct {
	AggregateModel
	Code       string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	FullName   string          `gorm:"type:varchar(200);not null"`
	CIN        string          `gorm:"column:cin;type:varchar(8)"`
	CNSSNumber string          `gorm:"column:cnss_number;type:varchar(20)"`
	Position   string          `gorm:"type:varchar(100)"`
	HireDate   time.Time       `gorm:"type:date;not null"`
	BaseSalary decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Active     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (EmployeeModel) TableName() string {
	return "employees"
}

// ToDomain converts the persistence model to a domain Employee
func (m *EmployeeModel) ToDomain() *hr.Employee {
	return &hr.Employee{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		FullName:          m.FullName,
		CIN:               m.CIN,
		CNSSNumber:        m.CNSSNumber,
		Position:          m.Position,
		HireDate:          m.HireDate,
		BaseSalary:        m.BaseSalary,
		Active:            m.Active,
	}
}

// EmployeeModelFromDomain creates a persistence model from a domain Employee
func EmployeeModelFromDomain(e *hr.Employee) *EmployeeModel {
	m := &EmployeeModel{
		Code:       e.Code,
		FullName:   e.FullName,
		CIN:        e.CIN,
		CNSSNumber: e.CNSSNumber,
		Position:   e.Position,
		HireDate:   e.HireDate,
		BaseSalary: e.BaseSalary,
		Active:     e.Active,
	}
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	return m
}

// PayslipModel is the persistence model for monthly payslips. PeriodStart
// duplicates year and month as a date for range queries.
type PayslipModel struct {
	AggregateModel
	EmployeeID   uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_payslip_employee_period,priority:1"`
	PeriodYear   int              `gorm:"not null;uniqueIndex:idx_payslip_employee_period,priority:2"`
	PeriodMonth  int              `gorm:"not null;uniqueIndex:idx_payslip_employee_period,priority:3"`
	PeriodStart  time.Time        `gorm:"type:date;not null;index"`
	GrossSalary  decimal.Decimal  `gorm:"type:decimal(18,3);not null"`
	Bonuses      decimal.Decimal  `gorm:"type:decimal(18,3);not null;default:0"`
	IRPP         decimal.Decimal  `gorm:"column:irpp;type:decimal(18,3);not null;default:0"`
	CNSSEmployee decimal.Decimal  `gorm:"column:cnss_employee;type:decimal(18,3);not null"`
	CNSSEmployer decimal.Decimal  `gorm:"column:cnss_employer;type:decimal(18,3);not null"`
	NetSalary    decimal.Decimal  `gorm:"type:decimal(18,3);not null"`
	Status       hr.PayslipStatus `gorm:"type:varchar(20);not null;default:'DRAFT'"`
	PaidAt       *time.Time
}

// TableName returns the table name for GORM
func (PayslipModel) TableName() string {
	return "payslips"
}

// ToDomain converts the persistence model to a domain Payslip
func (m *PayslipModel) ToDomain() *hr.Payslip {
	return &hr.Payslip{
		BaseAggregateRoot: m.ToAggregateRoot(),
		EmployeeID:        m.EmployeeID,
		Period:            hr.Period{Year: m.PeriodYear, Month: time.Month(m.PeriodMonth)},
		GrossSalary:       m.GrossSalary,
		Bonuses:           m.Bonuses,
		IRPP:              m.IRPP,
		CNSSEmployee:      m.CNSSEmployee,
		CNSSEmployer:      m.CNSSEmployer,
		NetSalary:         m.NetSalary,
		Status:            m.Status,
		PaidAt:            m.PaidAt,
	}
}

// PayslipModelFromDomain creates a persistence model from a domain Payslip
func PayslipModelFromDomain(p *hr.Payslip) *PayslipModel {
	m := &PayslipModel{
		EmployeeID:   p.EmployeeID,
		PeriodYear:   p.Period.Year,
		PeriodMonth:  int(p.Period.Month),
		PeriodStart:  p.Period.Start(),
		GrossSalary:  p.GrossSalary,
		Bonuses:      p.Bonuses,
		IRPP:         p.IRPP,
		CNSSEmployee: p.CNSSEmployee,
		CNSSEmployer: p.CNSSEmployer,
		NetSalary:    p.NetSalary,
		Status:       p.Status,
		PaidAt:       p.PaidAt,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}
