package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// conversions lists, per source type, the target types it may become
var conversions = map[Type][]Type{
	TypeQuote:        {TypeInvoice, TypeDeliveryNote},
	TypeDeliveryNote: {TypeInvoice},
	TypeInvoice:      {TypeCreditNote},
}

// CanConvertTo reports whether the document type may be converted to target
func (t Type) CanConvertTo(target Type) bool {
	for _, allowed := range conversions[t] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ConversionTargets returns the types a document of type t may be converted to
func (t Type) ConversionTargets() []Type {
	return append([]Type(nil), conversions[t]...)
}

// CanConvert checks that the document may be converted to target in its
// current status
func (d *Document) CanConvert(target Type) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_DOCUMENT_TYPE", "Target document type is not valid")
	}
	if !d.Type.CanConvertTo(target) {
		return shared.NewInvalidStateError("A %s cannot be converted to a %s", d.Type.DisplayName(), target.DisplayName())
	}
	switch d.Type {
	case TypeQuote:
		if d.Status != StatusValidated && d.Status != StatusAccepted {
			return shared.NewInvalidStateError("Cannot convert quote in %s status", d.Status)
		}
	default:
		if d.Status != StatusValidated {
			return shared.NewInvalidStateError("Cannot convert document in %s status", d.Status)
		}
	}
	return nil
}

// ConvertTo creates a new draft document of the target type carrying the
// same partner and lines. A converted quote or delivery note moves to
// CONVERTED so it cannot be converted twice. Invoices stay VALIDATED for
// payments; their credit notes are capped by CheckCredit instead.
func (d *Document) ConvertTo(target Type, number string, issueDate time.Time, calc *fiscal.Calculator) (*Document, error) {
	if err := d.CanConvert(target); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		issueDate = time.Now()
	}

	header := DefaultHeader(target, issueDate)
	header.ProjectID = d.ProjectID
	header.Notes = d.Notes

	lines := make([]LineInput, len(d.Lines))
	for i, l := range d.Lines {
		lines[i] = l.Input()
	}

	converted, err := NewDocument(target, number, d.Partner, header, lines, calc)
	if err != nil {
		return nil, err
	}
	sourceID := d.ID
	converted.SourceDocumentID = &sourceID

	if d.Type == TypeQuote || d.Type == TypeDeliveryNote {
		d.Status = StatusConverted
		d.IncrementVersion()
	}
	return converted, nil
}

// CreditableAmount is the TTC a credit note may give back: the stamp duty
// is not refunded
func (d *Document) CreditableAmount() decimal.Decimal {
	return d.Totals.TotalTTC.Sub(d.Totals.Stamp)
}

// RemainingCredit returns the part of the invoice's creditable amount not
// yet covered by the validated credit notes among notes. The note skip is
// left out.
func (d *Document) RemainingCredit(notes []Document, skip uuid.UUID) decimal.Decimal {
	remaining := d.CreditableAmount()
	for _, n := range notes {
		if n.ID == skip || n.Type != TypeCreditNote || n.Status != StatusValidated {
			continue
		}
		if n.SourceDocumentID == nil || *n.SourceDocumentID != d.ID {
			continue
		}
		remaining = remaining.Sub(n.CreditableAmount())
	}
	return remaining
}

// CheckCreditable refuses a new credit note against an invoice that is
// already fully credited
func (d *Document) CheckCreditable(notes []Document) error {
	if !d.RemainingCredit(notes, uuid.Nil).IsPositive() {
		return shared.NewInvalidStateError("Invoice %s is already fully credited", d.Number)
	}
	return nil
}

// CheckCredit refuses validating note when it would take the credited
// total of the invoice beyond its creditable amount
func (d *Document) CheckCredit(note *Document, notes []Document) error {
	remaining := d.RemainingCredit(notes, note.ID)
	if note.CreditableAmount().GreaterThan(remaining) {
		return shared.NewInvalidStateError("Credit note %s exceeds the %s left to credit on invoice %s",
			note.Number, remaining.StringFixed(3), d.Number)
	}
	return nil
}
