package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/finance"
)

// CreateExpenseRequest represents a request to create an expense
type CreateExpenseRequest struct {
	Category    string          `json:"category" binding:"required,oneof=RENT UTILITIES SUPPLIES TRANSPORT TELECOM TAXES SERVICES OTHER"`
	AmountHT    decimal.Decimal `json:"amount_ht"`
	TVAAmount   decimal.Decimal `json:"tva_amount"`
	Description string          `json:"description" binding:"required,max=500"`
	IncurredAt  time.Time       `json:"incurred_at" binding:"required"`
	SupplierID  *uuid.UUID      `json:"supplier_id"`
	ProjectID   *uuid.UUID      `json:"project_id"`
	Remark      string          `json:"remark" binding:"max=500"`
}

// UpdateExpenseRequest represents a request to update a draft expense.
// Nil fields keep their current value.
type UpdateExpenseRequest struct {
	Category    *string          `json:"category" binding:"omitempty,oneof=RENT UTILITIES SUPPLIES TRANSPORT TELECOM TAXES SERVICES OTHER"`
	AmountHT    *decimal.Decimal `json:"amount_ht"`
	TVAAmount   *decimal.Decimal `json:"tva_amount"`
	Description *string          `json:"description" binding:"omitempty,max=500"`
	IncurredAt  *time.Time       `json:"incurred_at"`
	SupplierID  *uuid.UUID       `json:"supplier_id"`
	ProjectID   *uuid.UUID       `json:"project_id"`
	Remark      *string          `json:"remark" binding:"omitempty,max=500"`
}

// ApproveExpenseRequest carries an optional approval remark
type ApproveExpenseRequest struct {
	Remark string `json:"remark" binding:"max=500"`
}

// ReasonRequest carries the reason of a rejection or a cancellation
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// PayExpenseRequest represents a request to mark an expense as paid
type PayExpenseRequest struct {
	Method string `json:"method" binding:"required,oneof=CASH CHEQUE TRANSFER CARD TRAITE"`
}

// ExpenseListFilter represents filter options for expense lists
type ExpenseListFilter struct {
	Search        string `form:"search"`
	Category      string `form:"category" binding:"omitempty,oneof=RENT UTILITIES SUPPLIES TRANSPORT TELECOM TAXES SERVICES OTHER"`
	Status        string `form:"status" binding:"omitempty,oneof=DRAFT PENDING APPROVED REJECTED CANCELLED"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=UNPAID PAID"`
	SupplierID    string `form:"supplier_id" binding:"omitempty,uuid"`
	ProjectID     string `form:"project_id" binding:"omitempty,uuid"`
	From          string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To            string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Page          int    `form:"page" binding:"min=0"`
	PageSize      int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy       string `form:"order_by"`
	OrderDir      string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ExpenseResponse represents an expense in API responses
type ExpenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          string          `json:"number"`
	Category        string          `json:"category"`
	CategoryName    string          `json:"category_name"`
	AmountHT        decimal.Decimal `json:"amount_ht"`
	TVAAmount       decimal.Decimal `json:"tva_amount"`
	AmountTTC       decimal.Decimal `json:"amount_ttc"`
	Description     string          `json:"description"`
	IncurredAt      time.Time       `json:"incurred_at"`
	SupplierID      *uuid.UUID      `json:"supplier_id,omitempty"`
	ProjectID       *uuid.UUID      `json:"project_id,omitempty"`
	Status          string          `json:"status"`
	PaymentStatus   string          `json:"payment_status"`
	PaymentMethod   *string         `json:"payment_method,omitempty"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	Remark          string          `json:"remark,omitempty"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	ApprovalRemark  string          `json:"approval_remark,omitempty"`
	RejectedAt      *time.Time      `json:"rejected_at,omitempty"`
	RejectionReason string          `json:"rejection_reason,omitempty"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty"`
	CancelReason    string          `json:"cancel_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Version         int             `json:"version"`
}

// ToExpenseResponse converts a domain Expense to ExpenseResponse
func ToExpenseResponse(e *finance.Expense) ExpenseResponse {
	resp := ExpenseResponse{
		ID:              e.ID,
		Number:          e.Number,
		Category:        string(e.Category),
		CategoryName:    e.Category.DisplayName(),
		AmountHT:        e.AmountHT,
		TVAAmount:       e.TVAAmount,
		AmountTTC:       e.AmountTTC,
		Description:     e.Description,
		IncurredAt:      e.IncurredAt,
		SupplierID:      e.SupplierID,
		ProjectID:       e.ProjectID,
		Status:          string(e.Status),
		PaymentStatus:   string(e.PaymentStatus),
		PaidAt:          e.PaidAt,
		Remark:          e.Remark,
		SubmittedAt:     e.SubmittedAt,
		ApprovedAt:      e.ApprovedAt,
		ApprovalRemark:  e.ApprovalRemark,
		RejectedAt:      e.RejectedAt,
		RejectionReason: e.RejectionReason,
		CancelledAt:     e.CancelledAt,
		CancelReason:    e.CancelReason,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
		Version:         e.Version,
	}
	if e.PaymentMethod != nil {
		method := string(*e.PaymentMethod)
		resp.PaymentMethod = &method
	}
	return resp
}
