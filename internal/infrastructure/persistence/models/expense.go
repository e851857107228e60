package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/finance"
)

// ExpenseModel is the persistence model for operating expenses
type ExpenseModel struct {
	AggregateModel
	Number          string                  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Category        finance.ExpenseCategory `gorm:"type:varchar(30);not null;index"`
	AmountHT        decimal.Decimal         `gorm:"type:decimal(18,3);not null"`
	TVAAmount       decimal.Decimal         `gorm:"type:decimal(18,3);not null;default:0"`
	AmountTTC       decimal.Decimal         `gorm:"type:decimal(18,3);not null"`
	Description     string                  `gorm:"type:text;not null"`
	IncurredAt      time.Time               `gorm:"type:date;not null;index"`
	SupplierID      *uuid.UUID              `gorm:"type:uuid;index"`
	ProjectID       *uuid.UUID              `gorm:"type:uuid;index"`
	Status          finance.ExpenseStatus   `gorm:"type:varchar(20);not null;default:'DRAFT';index"`
	PaymentStatus   finance.PaymentStatus   `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	PaymentMethod   *document.PaymentMethod `gorm:"type:varchar(20)"`
	PaidAt          *time.Time
	Remark          string `gorm:"type:text"`
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovalRemark  string `gorm:"type:text"`
	RejectedAt      *time.Time
	RejectionReason string `gorm:"type:text"`
	CancelledAt     *time.Time
	CancelReason    string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ExpenseModel) TableName() string {
	return "expenses"
}

// ToDomain converts the persistence model to a domain Expense
func (m *ExpenseModel) ToDomain() *finance.Expense {
	return &finance.Expense{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Number:            m.Number,
		Category:          m.Category,
		AmountHT:          m.AmountHT,
		TVAAmount:         m.TVAAmount,
		AmountTTC:         m.AmountTTC,
		Description:       m.Description,
		IncurredAt:        m.IncurredAt,
		SupplierID:        m.SupplierID,
		ProjectID:         m.ProjectID,
		Status:            m.Status,
		PaymentStatus:     m.PaymentStatus,
		PaymentMethod:     m.PaymentMethod,
		PaidAt:            m.PaidAt,
		Remark:            m.Remark,
		SubmittedAt:       m.SubmittedAt,
		ApprovedAt:        m.ApprovedAt,
		ApprovalRemark:    m.ApprovalRemark,
		RejectedAt:        m.RejectedAt,
		RejectionReason:   m.RejectionReason,
		CancelledAt:       m.CancelledAt,
		CancelReason:      m.CancelReason,
	}
}

// FromDomain populates the persistence model from a domain Expense
func (m *ExpenseModel) FromDomain(e *finance.Expense) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.Number = e.Number
	m.Category = e.Category
	m.AmountHT = e.AmountHT
	m.TVAAmount = e.TVAAmount
	m.AmountTTC = e.AmountTTC
	m.Description = e.Description
	m.IncurredAt = e.IncurredAt
	m.SupplierID = e.SupplierID
	m.ProjectID = e.ProjectID
	m.Status = e.Status
	m.PaymentStatus = e.PaymentStatus
	m.PaymentMethod = e.PaymentMethod
	m.PaidAt = e.PaidAt
	m.Remark = e.Remark
	m.SubmittedAt = e.SubmittedAt
	m.ApprovedAt = e.ApprovedAt
	m.ApprovalRemark = e.ApprovalRemark
	m.RejectedAt = e.RejectedAt
	m.RejectionReason = e.RejectionReason
	m.CancelledAt = e.CancelledAt
	m.CancelReason = e.CancelReason
}

// ExpenseModelFromDomain creates a persistence model from a domain Expense
func ExpenseModelFromDomain(e *finance.Expense) *ExpenseModel {
	m := &ExpenseModel{}
	m.FromDomain(e)
	return m
}
