// Package finance tracks the company's operating expenses.
package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// ExpenseCategory represents the category of an expense
type ExpenseCategory string

const (
	ExpenseCategoryRent      ExpenseCategory = "RENT"      // Loyer
	ExpenseCategoryUtilities ExpenseCategory = "UTILITIES" // Eau, électricité, gaz
	ExpenseCategorySupplies  ExpenseCategory = "SUPPLIES"  // Fournitures
	ExpenseCategoryTransport ExpenseCategory = "TRANSPORT" // Transport et déplacements
	ExpenseCategoryTelecom   ExpenseCategory = "TELECOM"   // Téléphone et internet
	ExpenseCategoryTaxes     ExpenseCategory = "TAXES"     // Impôts et taxes
	ExpenseCategoryServices  ExpenseCategory = "SERVICES"  // Honoraires et services
	ExpenseCategoryOther     ExpenseCategory = "OTHER"     // Autres charges
)

// AllExpenseCategories returns every category in display order
func AllExpenseCategories() []ExpenseCategory {
	return []ExpenseCategory{
		ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySupplies, ExpenseCategoryTransport,
		ExpenseCategoryTelecom, ExpenseCategoryTaxes, ExpenseCategoryServices, ExpenseCategoryOther,
	}
}

// IsValid checks if the category is a valid ExpenseCategory
func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySupplies, ExpenseCategoryTransport,
		ExpenseCategoryTelecom, ExpenseCategoryTaxes, ExpenseCategoryServices, ExpenseCategoryOther:
		return true
	}
	return false
}

// String returns the string representation of ExpenseCategory
func (c ExpenseCategory) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the category
func (c ExpenseCategory) DisplayName() string {
	switch c {
	case ExpenseCategoryRent:
		return "Loyer"
	case ExpenseCategoryUtilities:
		return "Eau et électricité"
	case ExpenseCategorySupplies:
		return "Fournitures"
	case ExpenseCategoryTransport:
		return "Transport"
	case ExpenseCategoryTelecom:
		return "Télécommunications"
	case ExpenseCategoryTaxes:
		return "Impôts et taxes"
	case ExpenseCategoryServices:
		return "Honoraires et services"
	case ExpenseCategoryOther:
		return "Autres charges"
	default:
		return string(c)
	}
}

// ExpenseStatus represents the status of an expense
type ExpenseStatus string

const (
	ExpenseStatusDraft     ExpenseStatus = "DRAFT"     // Draft, not yet submitted
	ExpenseStatusPending   ExpenseStatus = "PENDING"   // Submitted, pending approval
	ExpenseStatusApproved  ExpenseStatus = "APPROVED"  // Approved
	ExpenseStatusRejected  ExpenseStatus = "REJECTED"  // Rejected
	ExpenseStatusCancelled ExpenseStatus = "CANCELLED" // Cancelled
)

// IsValid checks if the status is a valid ExpenseStatus
func (s ExpenseStatus) IsValid() bool {
	switch s {
	case ExpenseStatusDraft, ExpenseStatusPending, ExpenseStatusApproved,
		ExpenseStatusRejected, ExpenseStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ExpenseStatus
func (s ExpenseStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the expense is in a terminal state
func (s ExpenseStatus) IsTerminal() bool {
	return s == ExpenseStatusApproved || s == ExpenseStatusRejected || s == ExpenseStatusCancelled
}

// CanSubmit returns true if the expense can be submitted for approval
func (s ExpenseStatus) CanSubmit() bool {
	return s == ExpenseStatusDraft
}

// CanApprove returns true if the expense can be approved/rejected
func (s ExpenseStatus) CanApprove() bool {
	return s == ExpenseStatusPending
}

// CanCancel returns true if the expense can be cancelled
func (s ExpenseStatus) CanCancel() bool {
	return s == ExpenseStatusDraft || s == ExpenseStatusPending
}

// PaymentStatus represents whether the expense has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
)

// FormatExpenseNumber builds an expense number such as DEP-202603-00001
func FormatExpenseNumber(month time.Time, seq int) string {
	return fmt.Sprintf("DEP-%s-%05d", month.Format("200601"), seq)
}

// ExpenseAmounts are the amounts of an expense. TVA is the deductible
// TVA shown on the supplier's invoice.
type ExpenseAmounts struct {
	AmountHT  decimal.Decimal
	TVAAmount decimal.Decimal
}

// Expense represents an operating expense aggregate root
type Expense struct {
	shared.BaseAggregateRoot
	Number          string
	Category        ExpenseCategory
	AmountHT        decimal.Decimal
	TVAAmount       decimal.Decimal
	AmountTTC       decimal.Decimal
	Description     string
	IncurredAt      time.Time
	SupplierID      *uuid.UUID
	ProjectID       *uuid.UUID
	Status          ExpenseStatus
	PaymentStatus   PaymentStatus
	PaymentMethod   *document.PaymentMethod
	PaidAt          *time.Time
	Remark          string
	SubmittedAt     *time.Time
	ApprovedAt      *time.Time
	ApprovalRemark  string
	RejectedAt      *time.Time
	RejectionReason string
	CancelledAt     *time.Time
	CancelReason    string
}

// NewExpense creates a new draft expense
func NewExpense(
	number string,
	category ExpenseCategory,
	amounts ExpenseAmounts,
	description string,
	incurredAt time.Time,
) (*Expense, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_EXPENSE_NUMBER", "Expense number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_EXPENSE_NUMBER", "Expense number cannot exceed 50 characters")
	}

	expense := &Expense{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		Status:            ExpenseStatusDraft,
		PaymentStatus:     PaymentStatusUnpaid,
	}
	if err := expense.apply(category, amounts, description, incurredAt); err != nil {
		return nil, err
	}
	return expense, nil
}

func (e *Expense) apply(category ExpenseCategory, amounts ExpenseAmounts, description string, incurredAt time.Time) error {
	if !category.IsValid() {
		return shared.NewDomainError("INVALID_CATEGORY", "Expense category is not valid")
	}
	if !amounts.AmountHT.IsPositive() {
		return shared.NewDomainError("INVALID_AMOUNT", "Amount must be positive")
	}
	if amounts.TVAAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "TVA amount cannot be negative")
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot be empty")
	}
	if len(description) > 500 {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Description cannot exceed 500 characters")
	}
	if incurredAt.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Expense date is required")
	}

	e.Category = category
	e.AmountHT = valueobject.RoundMillimes(amounts.AmountHT)
	e.TVAAmount = valueobject.RoundMillimes(amounts.TVAAmount)
	e.AmountTTC = e.AmountHT.Add(e.TVAAmount)
	e.Description = description
	e.IncurredAt = incurredAt
	return nil
}

// Update updates the expense details (only allowed in draft status)
func (e *Expense) Update(
	category ExpenseCategory,
	amounts ExpenseAmounts,
	description string,
	incurredAt time.Time,
) error {
	if e.Status != ExpenseStatusDraft {
		return shared.NewInvalidStateError("Can only update expense in draft status")
	}
	if err := e.apply(category, amounts, description, incurredAt); err != nil {
		return err
	}
	e.IncrementVersion()
	return nil
}

// SetLinks attaches the expense to a supplier and a project
func (e *Expense) SetLinks(supplierID, projectID *uuid.UUID) {
	e.SupplierID = supplierID
	e.ProjectID = projectID
	e.Touch()
}

// SetRemark sets the remark
func (e *Expense) SetRemark(remark string) {
	e.Remark = remark
	e.Touch()
}

// Submit submits the expense for approval
func (e *Expense) Submit() error {
	if !e.Status.CanSubmit() {
		return shared.NewInvalidStateError("Cannot submit expense in %s status", e.Status)
	}

	now := time.Now()
	e.Status = ExpenseStatusPending
	e.SubmittedAt = &now
	e.IncrementVersion()
	return nil
}

// Approve approves the expense
func (e *Expense) Approve(remark string) error {
	if !e.Status.CanApprove() {
		return shared.NewInvalidStateError("Cannot approve expense in %s status", e.Status)
	}

	now := time.Now()
	e.Status = ExpenseStatusApproved
	e.ApprovedAt = &now
	e.ApprovalRemark = remark
	e.IncrementVersion()
	return nil
}

// Reject rejects the expense
func (e *Expense) Reject(reason string) error {
	if !e.Status.CanApprove() {
		return shared.NewInvalidStateError("Cannot reject expense in %s status", e.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Rejection reason is required")
	}

	now := time.Now()
	e.Status = ExpenseStatusRejected
	e.RejectedAt = &now
	e.RejectionReason = reason
	e.IncrementVersion()
	return nil
}

// Cancel cancels the expense
func (e *Expense) Cancel(reason string) error {
	if !e.Status.CanCancel() {
		return shared.NewInvalidStateError("Cannot cancel expense in %s status", e.Status)
	}
	if strings.TrimSpace(reason) == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	e.Status = ExpenseStatusCancelled
	e.CancelledAt = &now
	e.CancelReason = reason
	e.IncrementVersion()
	return nil
}

// MarkAsPaid marks the expense as paid
func (e *Expense) MarkAsPaid(method document.PaymentMethod) error {
	if e.Status != ExpenseStatusApproved {
		return shared.NewInvalidStateError("Only approved expenses can be marked as paid")
	}
	if e.PaymentStatus == PaymentStatusPaid {
		return shared.NewDomainError("ALREADY_PAID", "Expense is already paid")
	}
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}

	now := time.Now()
	e.PaymentStatus = PaymentStatusPaid
	e.PaymentMethod = &method
	e.PaidAt = &now
	e.IncrementVersion()
	return nil
}

// AmountMoney returns the TTC amount as Money
func (e *Expense) AmountMoney() valueobject.Money {
	return valueobject.NewMoneyTND(e.AmountTTC)
}

// IsDraft returns true if expense is in draft status
func (e *Expense) IsDraft() bool {
	return e.Status == ExpenseStatusDraft
}

// IsApproved returns true if expense is approved
func (e *Expense) IsApproved() bool {
	return e.Status == ExpenseStatusApproved
}

// IsPaid returns true if expense is paid
func (e *Expense) IsPaid() bool {
	return e.PaymentStatus == PaymentStatusPaid
}
