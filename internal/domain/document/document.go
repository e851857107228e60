package document

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// PartnerSnapshot is the partner identity as printed on the document. It is
// copied at creation so later partner edits do not change issued documents.
type PartnerSnapshot struct {
	PartnerID       uuid.UUID
	Name            string
	MatriculeFiscal string
	Address         string
	City            string
	Phone           string
}

// SnapshotOf copies the printable identity of a partner
func SnapshotOf(p *partner.Partner) PartnerSnapshot {
	return PartnerSnapshot{
		PartnerID:       p.ID,
		Name:            p.Name,
		MatriculeFiscal: p.MatriculeFiscal,
		Address:         p.Address,
		City:            p.City,
		Phone:           p.Phone,
	}
}

// Header holds the document fields that are not lines
type Header struct {
	IssueDate       time.Time
	DueDate         *time.Time // invoices
	ValidUntil      *time.Time // quotes
	ProjectID       *uuid.UUID
	ApplyStamp      bool
	WithholdingRate decimal.Decimal
	Notes           string
}

// DefaultHeader returns the header defaults for a document type
func DefaultHeader(t Type, issueDate time.Time) Header {
	return Header{
		IssueDate:       issueDate,
		ApplyStamp:      t.DefaultApplyStamp(),
		WithholdingRate: decimal.Zero,
	}
}

// Document is a commercial document aggregate root
type Document struct {
	shared.BaseAggregateRoot
	Type             Type
	Number           string
	Status           Status
	IssueDate        time.Time
	DueDate          *time.Time
	ValidUntil       *time.Time
	Partner          PartnerSnapshot
	ProjectID        *uuid.UUID
	Lines            []Line
	ApplyStamp       bool
	WithholdingRate  decimal.Decimal
	Totals           fiscal.Totals
	Notes            string
	SourceDocumentID *uuid.UUID
	PaidAmount       decimal.Decimal
	PaymentStatus    PaymentStatus
	Payments         []Payment
	ValidatedAt      *time.Time
	CancelledAt      *time.Time
	CancelReason     string
}

// NewDocument creates a draft document and computes its totals
func NewDocument(
	docType Type,
	number string,
	snapshot PartnerSnapshot,
	header Header,
	lines []LineInput,
	calc *fiscal.Calculator,
) (*Document, error) {
	if !docType.IsValid() {
		return nil, shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Document type is not valid")
	}
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Document number cannot be empty")
	}
	if len(number) > 50 {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Document number cannot exceed 50 characters")
	}
	if snapshot.PartnerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner is required")
	}
	if strings.TrimSpace(snapshot.Name) == "" {
		return nil, shared.NewDomainError("INVALID_PARTNER", "Partner name is required")
	}

	doc := &Document{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              docType,
		Number:            number,
		Status:            StatusDraft,
		Partner:           snapshot,
		PaidAmount:        decimal.Zero,
		PaymentStatus:     PaymentStatusUnpaid,
	}
	if err := doc.applyHeader(header); err != nil {
		return nil, err
	}
	if err := doc.setLines(lines); err != nil {
		return nil, err
	}
	if err := doc.Recalculate(calc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ReplaceLines replaces every line and recomputes the totals (draft only)
func (d *Document) ReplaceLines(lines []LineInput, calc *fiscal.Calculator) error {
	if err := d.requireDraft("edit lines of"); err != nil {
		return err
	}
	previous := d.Lines
	if err := d.setLines(lines); err != nil {
		return err
	}
	if err := d.Recalculate(calc); err != nil {
		d.Lines = previous
		return err
	}
	d.IncrementVersion()
	return nil
}

// UpdateHeader replaces the header fields and recomputes the totals (draft only)
func (d *Document) UpdateHeader(header Header, calc *fiscal.Calculator) error {
	if err := d.requireDraft("edit"); err != nil {
		return err
	}
	if err := d.applyHeader(header); err != nil {
		return err
	}
	if err := d.Recalculate(calc); err != nil {
		return err
	}
	d.IncrementVersion()
	return nil
}

// UpdatePartner refreshes the partner snapshot (draft only)
func (d *Document) UpdatePartner(snapshot PartnerSnapshot) error {
	if err := d.requireDraft("change the partner of"); err != nil {
		return err
	}
	if snapshot.PartnerID == uuid.Nil || strings.TrimSpace(snapshot.Name) == "" {
		return shared.NewDomainError("INVALID_PARTNER", "Partner is required")
	}
	d.Partner = snapshot
	d.IncrementVersion()
	return nil
}

// Recalculate recomputes line amounts and totals from the current lines
func (d *Document) Recalculate(calc *fiscal.Calculator) error {
	inputs := make([]fiscal.LineInput, len(d.Lines))
	for i, l := range d.Lines {
		inputs[i] = l.fiscalInput()
	}
	totals, amounts, err := calc.ComputeTotals(inputs, fiscal.Options{
		ApplyStamp:      d.ApplyStamp,
		WithholdingRate: d.WithholdingRate,
	})
	if err != nil {
		return err
	}
	for i := range d.Lines {
		d.Lines[i].Amounts = amounts[i]
	}
	d.Totals = totals
	return nil
}

func (d *Document) applyHeader(h Header) error {
	if h.IssueDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Issue date is required")
	}
	if h.DueDate != nil && h.DueDate.Before(h.IssueDate) {
		return shared.NewDomainError("INVALID_DATE", "Due date cannot be before the issue date")
	}
	if h.ValidUntil != nil && h.ValidUntil.Before(h.IssueDate) {
		return shared.NewDomainError("INVALID_DATE", "Validity date cannot be before the issue date")
	}
	if !h.WithholdingRate.IsZero() && !d.Type.AllowsWithholding() {
		return shared.NewDomainError("INVALID_WITHHOLDING", "Withholding only applies to invoices")
	}
	if len(h.Notes) > 2000 {
		return shared.NewDomainError("INVALID_NOTES", "Notes cannot exceed 2000 characters")
	}

	d.IssueDate = h.IssueDate
	d.DueDate = nil
	d.ValidUntil = nil
	if d.Type == TypeInvoice {
		d.DueDate = h.DueDate
	}
	if d.Type == TypeQuote {
		d.ValidUntil = h.ValidUntil
	}
	d.ProjectID = h.ProjectID
	d.ApplyStamp = h.ApplyStamp
	d.WithholdingRate = h.WithholdingRate
	d.Notes = h.Notes
	return nil
}

func (d *Document) setLines(inputs []LineInput) error {
	if len(inputs) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Document must have at least one line")
	}
	lines := make([]Line, len(inputs))
	for i, in := range inputs {
		l, err := newLine(i+1, in)
		if err != nil {
			return err
		}
		lines[i] = l
	}
	d.Lines = lines
	return nil
}

// Header returns the current header fields
func (d *Document) Header() Header {
	return Header{
		IssueDate:       d.IssueDate,
		DueDate:         d.DueDate,
		ValidUntil:      d.ValidUntil,
		ProjectID:       d.ProjectID,
		ApplyStamp:      d.ApplyStamp,
		WithholdingRate: d.WithholdingRate,
		Notes:           d.Notes,
	}
}

// Validate freezes a draft document
func (d *Document) Validate() error {
	if err := d.requireDraft("validate"); err != nil {
		return err
	}
	if len(d.Lines) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Document must have at least one line")
	}
	now := time.Now()
	d.Status = StatusValidated
	d.ValidatedAt = &now
	d.IncrementVersion()
	return nil
}

// Accept marks a validated quote as accepted by the customer
func (d *Document) Accept() error {
	if d.Type != TypeQuote {
		return shared.NewInvalidStateError("Only quotes can be accepted")
	}
	if d.Status != StatusValidated {
		return shared.NewInvalidStateError("Cannot accept quote in %s status", d.Status)
	}
	d.Status = StatusAccepted
	d.IncrementVersion()
	return nil
}

// Reject marks a validated quote as refused by the customer
func (d *Document) Reject() error {
	if d.Type != TypeQuote {
		return shared.NewInvalidStateError("Only quotes can be rejected")
	}
	if d.Status != StatusValidated {
		return shared.NewInvalidStateError("Cannot reject quote in %s status", d.Status)
	}
	d.Status = StatusRejected
	d.IncrementVersion()
	return nil
}

// Cancel cancels a draft or a validated document without payments
func (d *Document) Cancel(reason string) error {
	switch d.Status {
	case StatusDraft:
	case StatusValidated:
		if d.PaidAmount.IsPositive() || len(d.Payments) > 0 {
			return shared.NewInvalidStateError("Cannot cancel document %s: payments are recorded", d.Number)
		}
	default:
		return shared.NewInvalidStateError("Cannot cancel document in %s status", d.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	d.Status = StatusCancelled
	d.CancelledAt = &now
	d.CancelReason = reason
	d.IncrementVersion()
	return nil
}

// RegisterPayment records a payment against a validated invoice
func (d *Document) RegisterPayment(amount decimal.Decimal, method PaymentMethod, paidAt time.Time, reference string) (*Payment, error) {
	if d.Type != TypeInvoice {
		return nil, shared.NewInvalidStateError("Payments can only be recorded on invoices")
	}
	if d.Status != StatusValidated {
		return nil, shared.NewInvalidStateError("Cannot record a payment on an invoice in %s status", d.Status)
	}
	amount = valueobject.RoundMillimes(amount)
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method is not valid")
	}
	if amount.GreaterThan(d.RemainingAmount()) {
		return nil, shared.NewDomainError("PAYMENT_EXCEEDS_BALANCE",
			"Payment of "+valueobject.FormatAmount(amount)+" exceeds the remaining "+valueobject.FormatAmount(d.RemainingAmount()))
	}
	if paidAt.IsZero() {
		paidAt = time.Now()
	}
	if len(reference) > 100 {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Payment reference cannot exceed 100 characters")
	}

	p := Payment{
		ID:        uuid.New(),
		Amount:    amount,
		Method:    method,
		PaidAt:    paidAt,
		Reference: strings.TrimSpace(reference),
	}
	d.Payments = append(d.Payments, p)
	d.PaidAmount = d.PaidAmount.Add(amount)
	d.refreshPaymentStatus()
	d.IncrementVersion()
	return &d.Payments[len(d.Payments)-1], nil
}

func (d *Document) refreshPaymentStatus() {
	switch {
	case !d.PaidAmount.IsPositive():
		d.PaymentStatus = PaymentStatusUnpaid
	case d.PaidAmount.GreaterThanOrEqual(d.Totals.NetToPay):
		d.PaymentStatus = PaymentStatusPaid
	default:
		d.PaymentStatus = PaymentStatusPartial
	}
}

// RemainingAmount returns the net to pay not yet covered by payments
func (d *Document) RemainingAmount() decimal.Decimal {
	r := d.Totals.NetToPay.Sub(d.PaidAmount)
	if r.IsNegative() {
		return decimal.Zero
	}
	return r
}

// IsDraft returns true if the document is a draft
func (d *Document) IsDraft() bool {
	return d.Status == StatusDraft
}

// CanDelete returns true if the document may be deleted
func (d *Document) CanDelete() bool {
	return d.Status == StatusDraft
}

// IsOverdue returns true for an unpaid invoice past its due date
func (d *Document) IsOverdue(now time.Time) bool {
	return d.Type == TypeInvoice &&
		d.Status == StatusValidated &&
		d.PaymentStatus != PaymentStatusPaid &&
		d.DueDate != nil && d.DueDate.Before(now)
}

func (d *Document) requireDraft(action string) error {
	if d.Status != StatusDraft {
		return shared.NewInvalidStateError("Cannot %s document in %s status", action, d.Status)
	}
	return nil
}
