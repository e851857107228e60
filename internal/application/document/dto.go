package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
)

// =============================================================================
// Requests
// =============================================================================

// LineRequest is one document line as sent by clients
type LineRequest struct {
	ProductID    *uuid.UUID      `json:"product_id"`
	Reference    string          `json:"reference" binding:"max=50"`
	Designation  string          `json:"designation" binding:"required,max=1000"`
	Unit         string          `json:"unit" binding:"max=20"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceHT  decimal.Decimal `json:"unit_price_ht"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TVARate      int             `json:"tva_rate" binding:"tva_rate"`
	FODEC        bool            `json:"fodec"`
}

// CreateDocumentRequest represents a request to create a draft document
type CreateDocumentRequest struct {
	Type            string           `json:"type" binding:"required,oneof=QUOTE INVOICE DELIVERY_NOTE PURCHASE_ORDER CREDIT_NOTE"`
	PartnerID       uuid.UUID        `json:"partner_id" binding:"required"`
	IssueDate       *time.Time       `json:"issue_date"`
	DueDate         *time.Time       `json:"due_date"`
	ValidUntil      *time.Time       `json:"valid_until"`
	ProjectID       *uuid.UUID       `json:"project_id"`
	ApplyStamp      *bool            `json:"apply_stamp"`
	WithholdingRate *decimal.Decimal `json:"withholding_rate"`
	Notes           string           `json:"notes" binding:"max=2000"`
	Lines           []LineRequest    `json:"lines" binding:"required,min=1,dive"`
}

// UpdateDocumentRequest represents a request to edit a draft document. Nil
// fields keep their current value; a non-empty Lines replaces every line.
type UpdateDocumentRequest struct {
	// Version, when set, must match the stored version
	Version         *int             `json:"version"`
	PartnerID       *uuid.UUID       `json:"partner_id"`
	IssueDate       *time.Time       `json:"issue_date"`
	DueDate         *time.Time       `json:"due_date"`
	ValidUntil      *time.Time       `json:"valid_until"`
	ProjectID       *uuid.UUID       `json:"project_id"`
	ApplyStamp      *bool            `json:"apply_stamp"`
	WithholdingRate *decimal.Decimal `json:"withholding_rate"`
	Notes           *string          `json:"notes" binding:"omitempty,max=2000"`
	Lines           []LineRequest    `json:"lines" binding:"omitempty,dive"`
}

// CancelDocumentRequest carries the mandatory cancellation reason
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ConvertDocumentRequest asks for a conversion to another document type
type ConvertDocumentRequest struct {
	TargetType string     `json:"target_type" binding:"required,oneof=INVOICE DELIVERY_NOTE CREDIT_NOTE"`
	IssueDate  *time.Time `json:"issue_date"`
}

// RegisterPaymentRequest records a payment against an invoice
type RegisterPaymentRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method" binding:"required,oneof=CASH CHEQUE TRANSFER CARD TRAITE"`
	PaidAt    *time.Time      `json:"paid_at"`
	Reference string          `json:"reference" binding:"max=100"`
}

// DocumentListFilter represents filter options for document lists. Dates
// use the YYYY-MM-DD format.
type DocumentListFilter struct {
	Type      string `form:"type" binding:"omitempty,oneof=QUOTE INVOICE DELIVERY_NOTE PURCHASE_ORDER CREDIT_NOTE"`
	Status    string `form:"status" binding:"omitempty,oneof=DRAFT VALIDATED ACCEPTED REJECTED CONVERTED CANCELLED"`
	PartnerID string `form:"partner_id" binding:"omitempty,uuid"`
	ProjectID string `form:"project_id" binding:"omitempty,uuid"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Search    string `form:"search"`
	Page      int    `form:"page" binding:"min=0"`
	PageSize  int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy   string `form:"order_by"`
	OrderDir  string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// =============================================================================
// Responses
// =============================================================================

// PartnerSnapshotResponse is the partner identity frozen on a document
type PartnerSnapshotResponse struct {
	PartnerID       uuid.UUID `json:"partner_id"`
	Name            string    `json:"name"`
	MatriculeFiscal string    `json:"matricule_fiscal"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Phone           string    `json:"phone"`
}

// LineResponse is one document line with its computed amounts
type LineResponse struct {
	ID           uuid.UUID          `json:"id"`
	Position     int                `json:"position"`
	ProductID    *uuid.UUID         `json:"product_id,omitempty"`
	Reference    string             `json:"reference"`
	Designation  string             `json:"designation"`
	Unit         string             `json:"unit"`
	Quantity     decimal.Decimal    `json:"quantity"`
	UnitPriceHT  decimal.Decimal    `json:"unit_price_ht"`
	DiscountRate decimal.Decimal    `json:"discount_rate"`
	TVARate      int                `json:"tva_rate"`
	FODEC        bool               `json:"fodec"`
	Amounts      fiscal.LineAmounts `json:"amounts"`
}

// PaymentResponse is one recorded payment
type PaymentResponse struct {
	ID        uuid.UUID       `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Method    string          `json:"method"`
	PaidAt    time.Time       `json:"paid_at"`
	Reference string          `json:"reference"`
}

// DocumentResponse represents a full document in API responses
type DocumentResponse struct {
	ID               uuid.UUID               `json:"id"`
	Type             string                  `json:"type"`
	TypeName         string                  `json:"type_name"`
	Number           string                  `json:"number"`
	Status           string                  `json:"status"`
	IssueDate        time.Time               `json:"issue_date"`
	DueDate          *time.Time              `json:"due_date,omitempty"`
	ValidUntil       *time.Time              `json:"valid_until,omitempty"`
	Partner          PartnerSnapshotResponse `json:"partner"`
	ProjectID        *uuid.UUID              `json:"project_id,omitempty"`
	Lines            []LineResponse          `json:"lines"`
	ApplyStamp       bool                    `json:"apply_stamp"`
	WithholdingRate  decimal.Decimal         `json:"withholding_rate"`
	Totals           fiscal.Totals           `json:"totals"`
	Notes            string                  `json:"notes"`
	SourceDocumentID *uuid.UUID              `json:"source_document_id,omitempty"`
	PaidAmount       decimal.Decimal         `json:"paid_amount"`
	RemainingAmount  decimal.Decimal         `json:"remaining_amount"`
	PaymentStatus    string                  `json:"payment_status"`
	Payments         []PaymentResponse       `json:"payments"`
	Overdue          bool                    `json:"overdue"`
	ValidatedAt      *time.Time              `json:"validated_at,omitempty"`
	CancelledAt      *time.Time              `json:"cancelled_at,omitempty"`
	CancelReason     string                  `json:"cancel_reason,omitempty"`
	ConversionTypes  []string                `json:"conversion_types"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
	Version          int                     `json:"version"`
}

// DocumentListItem is the document summary used in lists
type DocumentListItem struct {
	ID            uuid.UUID       `json:"id"`
	Type          string          `json:"type"`
	Number        string          `json:"number"`
	Status        string          `json:"status"`
	IssueDate     time.Time       `json:"issue_date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	PartnerID     uuid.UUID       `json:"partner_id"`
	PartnerName   string          `json:"partner_name"`
	ProjectID     *uuid.UUID      `json:"project_id,omitempty"`
	TotalHT       decimal.Decimal `json:"total_ht"`
	TotalTTC      decimal.Decimal `json:"total_ttc"`
	NetToPay      decimal.Decimal `json:"net_to_pay"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus string          `json:"payment_status"`
	Overdue       bool            `json:"overdue"`
	Version       int             `json:"version"`
}

// ToLineInputs converts request lines to domain line inputs
func ToLineInputs(lines []LineRequest) []document.LineInput {
	inputs := make([]document.LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = document.LineInput{
			ProductID:    l.ProductID,
			Reference:    l.Reference,
			Designation:  l.Designation,
			Unit:         l.Unit,
			Quantity:     l.Quantity,
			UnitPriceHT:  l.UnitPriceHT,
			DiscountRate: l.DiscountRate,
			TVARate:      fiscal.TVARate(l.TVARate),
			FODEC:        l.FODEC,
		}
	}
	return inputs
}

// ToDocumentResponse converts a domain Document to DocumentResponse
func ToDocumentResponse(d *document.Document, now time.Time) DocumentResponse {
	lines := make([]LineResponse, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = LineResponse{
			ID:           l.ID,
			Position:     l.Position,
			ProductID:    l.ProductID,
			Reference:    l.Reference,
			Designation:  l.Designation,
			Unit:         l.Unit,
			Quantity:     l.Quantity,
			UnitPriceHT:  l.UnitPriceHT,
			DiscountRate: l.DiscountRate,
			TVARate:      int(l.TVARate),
			FODEC:        l.FODEC,
			Amounts:      l.Amounts,
		}
	}
	payments := make([]PaymentResponse, len(d.Payments))
	for i, p := range d.Payments {
		payments[i] = PaymentResponse{
			ID:        p.ID,
			Amount:    p.Amount,
			Method:    string(p.Method),
			PaidAt:    p.PaidAt,
			Reference: p.Reference,
		}
	}
	targets := []string{}
	for _, t := range d.Type.ConversionTargets() {
		if d.CanConvert(t) == nil {
			targets = append(targets, string(t))
		}
	}

	return DocumentResponse{
		ID:         d.ID,
		Type:       string(d.Type),
		TypeName:   d.Type.DisplayName(),
		Number:     d.Number,
		Status:     string(d.Status),
		IssueDate:  d.IssueDate,
		DueDate:    d.DueDate,
		ValidUntil: d.ValidUntil,
		Partner: PartnerSnapshotResponse{
			PartnerID:       d.Partner.PartnerID,
			Name:            d.Partner.Name,
			MatriculeFiscal: d.Partner.MatriculeFiscal,
			Address:         d.Partner.Address,
			City:            d.Partner.City,
			Phone:           d.Partner.Phone,
		},
		ProjectID:        d.ProjectID,
		Lines:            lines,
		ApplyStamp:       d.ApplyStamp,
		WithholdingRate:  d.WithholdingRate,
		Totals:           d.Totals,
		Notes:            d.Notes,
		SourceDocumentID: d.SourceDocumentID,
		PaidAmount:       d.PaidAmount,
		RemainingAmount:  d.RemainingAmount(),
		PaymentStatus:    string(d.PaymentStatus),
		Payments:         payments,
		Overdue:          d.IsOverdue(now),
		ValidatedAt:      d.ValidatedAt,
		CancelledAt:      d.CancelledAt,
		CancelReason:     d.CancelReason,
		ConversionTypes:  targets,
		CreatedAt:        d.CreatedAt,
		UpdatedAt:        d.UpdatedAt,
		Version:          d.Version,
	}
}

// ToDocumentListItem converts a domain Document to DocumentListItem
func ToDocumentListItem(d *document.Document, now time.Time) DocumentListItem {
	return DocumentListItem{
		ID:            d.ID,
		Type:          string(d.Type),
		Number:        d.Number,
		Status:        string(d.Status),
		IssueDate:     d.IssueDate,
		DueDate:       d.DueDate,
		PartnerID:     d.Partner.PartnerID,
		PartnerName:   d.Partner.Name,
		ProjectID:     d.ProjectID,
		TotalHT:       d.Totals.TotalNetHT,
		TotalTTC:      d.Totals.TotalTTC,
		NetToPay:      d.Totals.NetToPay,
		PaidAmount:    d.PaidAmount,
		PaymentStatus: string(d.PaymentStatus),
		Overdue:       d.IsOverdue(now),
		Version:       d.Version,
	}
}
