// Package document holds the commercial documents issued or received by the
// company: quotes, invoices, delivery notes, purchase orders and credit
// notes. All of them share one aggregate, one numbering scheme and one
// status machine.
package document

import (
	"fmt"

	"github.com/tn-gestion/backend/internal/domain/partner"
)

// Type is the kind of a commercial document
type Type string

const (
	TypeQuote         Type = "QUOTE"          // devis
	TypeInvoice       Type = "INVOICE"        // facture
	TypeDeliveryNote  Type = "DELIVERY_NOTE"  // bon de livraison
	TypePurchaseOrder Type = "PURCHASE_ORDER" // bon de commande
	TypeCreditNote    Type = "CREDIT_NOTE"    // avoir
)

// AllTypes returns every document type
func AllTypes() []Type {
	return []Type{TypeQuote, TypeInvoice, TypeDeliveryNote, TypePurchaseOrder, TypeCreditNote}
}

// IsValid checks if the type is a valid Type
func (t Type) IsValid() bool {
	switch t {
	case TypeQuote, TypeInvoice, TypeDeliveryNote, TypePurchaseOrder, TypeCreditNote:
		return true
	}
	return false
}

// String returns the string representation of Type
func (t Type) String() string {
	return string(t)
}

// Prefix returns the numbering prefix of the type
func (t Type) Prefix() string {
	switch t {
	case TypeQuote:
		return "DV"
	case TypeInvoice:
		return "FA"
	case TypeDeliveryNote:
		return "BL"
	case TypePurchaseOrder:
		return "BC"
	case TypeCreditNote:
		return "AV"
	default:
		return "XX"
	}
}

// DisplayName returns the title printed on the document
func (t Type) DisplayName() string {
	switch t {
	case TypeQuote:
		return "Devis"
	case TypeInvoice:
		return "Facture"
	case TypeDeliveryNote:
		return "Bon de livraison"
	case TypePurchaseOrder:
		return "Bon de commande"
	case TypeCreditNote:
		return "Avoir"
	default:
		return string(t)
	}
}

// IsFeminine is used for the French agreement of "Arrêté(e)"
func (t Type) IsFeminine() bool {
	return t == TypeInvoice
}

// ShowsPrices returns false for documents printed without prices
func (t Type) ShowsPrices() bool {
	return t != TypeDeliveryNote
}

// PartnerKind returns the kind of partner the document is addressed to
func (t Type) PartnerKind() partner.Kind {
	if t == TypePurchaseOrder {
		return partner.KindSupplier
	}
	return partner.KindCustomer
}

// DefaultApplyStamp tells whether the timbre fiscal applies by default
func (t Type) DefaultApplyStamp() bool {
	return t == TypeInvoice
}

// AllowsWithholding tells whether a withholding rate may be set
func (t Type) AllowsWithholding() bool {
	return t == TypeInvoice
}

// FormatNumber builds a document number such as FA-2026-0001
func FormatNumber(t Type, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", t.Prefix(), year, seq)
}

// NumberPattern returns the LIKE pattern matching the numbers of a type and year
func NumberPattern(t Type, year int) string {
	return fmt.Sprintf("%s-%d-%%", t.Prefix(), year)
}

// Status represents the status of a document
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusValidated Status = "VALIDATED"
	StatusAccepted  Status = "ACCEPTED"
	StatusRejected  Status = "REJECTED"
	StatusConverted Status = "CONVERTED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusValidated, StatusAccepted, StatusRejected, StatusConverted, StatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true when no further transition is possible
func (s Status) IsTerminal() bool {
	return s == StatusConverted || s == StatusRejected || s == StatusCancelled
}

// DisplayName returns the French label of the status
func (s Status) DisplayName() string {
	switch s {
	case StatusDraft:
		return "Brouillon"
	case StatusValidated:
		return "Validé"
	case StatusAccepted:
		return "Accepté"
	case StatusRejected:
		return "Refusé"
	case StatusConverted:
		return "Converti"
	case StatusCancelled:
		return "Annulé"
	default:
		return string(s)
	}
}

// PaymentStatus tracks how much of an invoice has been paid
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "UNPAID"
	PaymentStatusPartial PaymentStatus = "PARTIAL"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "CASH"
	PaymentMethodCheque   PaymentMethod = "CHEQUE"
	PaymentMethodTransfer PaymentMethod = "TRANSFER"
	PaymentMethodCard     PaymentMethod = "CARD"
	PaymentMethodTraite   PaymentMethod = "TRAITE" // bill of exchange
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodCheque, PaymentMethodTransfer, PaymentMethodCard, PaymentMethodTraite:
		return true
	}
	return false
}

// DisplayName returns the French label of the method
func (m PaymentMethod) DisplayName() string {
	switch m {
	case PaymentMethodCash:
		return "Espèces"
	case PaymentMethodCheque:
		return "Chèque"
	case PaymentMethodTransfer:
		return "Virement"
	case PaymentMethodCard:
		return "Carte bancaire"
	case PaymentMethodTraite:
		return "Traite"
	default:
		return string(m)
	}
}
