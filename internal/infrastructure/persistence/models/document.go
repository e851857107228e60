package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// DocumentModel is the persistence model for the Document aggregate root.
// Lines, payments and the TVA breakdown live in child tables.
type DocumentModel struct {
	AggregateModel
	Type   document.Type   `gorm:"type:varchar(30);not null;index:idx_document_type_date,priority:1"`
	Number string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Status document.Status `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	IssueDate  time.Time  `gorm:"type:date;not null;index:idx_document_type_date,priority:2"`
	DueDate    *time.Time `gorm:"type:date"`
	ValidUntil *time.Time `gorm:"type:date"`

	PartnerID              uuid.UUID `gorm:"type:uuid;not null;index"`
	PartnerName            string    `gorm:"type:varchar(200);not null"`
	PartnerMatriculeFiscal string    `gorm:"type:varchar(30)"`
	PartnerAddress         string    `gorm:"type:text"`
	PartnerCity            string    `gorm:"type:varchar(100)"`
	PartnerPhone           string    `gorm:"type:varchar(50)"`

	ProjectID        *uuid.UUID `gorm:"type:uuid;index"`
	SourceDocumentID *uuid.UUID `gorm:"type:uuid;index"`

	ApplyStamp      bool            `gorm:"not null;default:false"`
	WithholdingRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`

	TotalGrossHT  decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	TotalDiscount decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	TotalNetHT    decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	TotalFODEC    decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	TotalTVA      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	Stamp         decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	TotalTTC      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	Withholding   decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	NetToPay      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`

	PaidAmount    decimal.Decimal        `gorm:"type:decimal(18,3);not null;default:0"`
	PaymentStatus document.PaymentStatus `gorm:"type:varchar(20);not null;default:'UNPAID'"`

	Notes        string `gorm:"type:text"`
	ValidatedAt  *time.Time
	CancelledAt  *time.Time
	CancelReason string `gorm:"type:text"`

	Lines    []DocumentLineModel    `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	Payments []DocumentPaymentModel `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
	TVALines []DocumentTVALineModel `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for GORM
func (DocumentModel) TableName() string {
	return "documents"
}

// DocumentLineModel is one table row of a document
type DocumentLineModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	DocumentID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Position     int             `gorm:"not null"`
	ProductID    *uuid.UUID      `gorm:"type:uuid"`
	Reference    string          `gorm:"type:varchar(50)"`
	Designation  string          `gorm:"type:text;not null"`
	Unit         string          `gorm:"type:varchar(20)"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	UnitPriceHT  decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	DiscountRate decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TVARate      int             `gorm:"not null"`
	FODEC        bool            `gorm:"not null;default:false"`
	GrossHT      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Discount     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	NetHT        decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	FODECAmount  decimal.Decimal `gorm:"column:fodec_amount;type:decimal(18,3);not null"`
	TVABase      decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	TVA          decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	TotalTTC     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (DocumentLineModel) TableName() string {
	return "document_lines"
}

// DocumentPaymentModel is a payment registered against an invoice
type DocumentPaymentModel struct {
	ID         uuid.UUID              `gorm:"type:uuid;primary_key"`
	DocumentID uuid.UUID              `gorm:"type:uuid;not null;index"`
	Amount     decimal.Decimal        `gorm:"type:decimal(18,3);not null"`
	Method     document.PaymentMethod `gorm:"type:varchar(20);not null"`
	PaidAt     time.Time              `gorm:"not null"`
	Reference  string                 `gorm:"type:varchar(100)"`
}

// TableName returns the table name for GORM
func (DocumentPaymentModel) TableName() string {
	return "document_payments"
}

// DocumentTVALineModel is one rate of the TVA breakdown, kept so that the
// TVA declaration can be summed in SQL.
type DocumentTVALineModel struct {
	DocumentID uuid.UUID       `gorm:"type:uuid;primary_key"`
	Rate       int             `gorm:"primary_key;autoIncrement:false"`
	Base       decimal.Decimal `gorm:"type:decimal(18,3);not null"`
	Amount     decimal.Decimal `gorm:"type:decimal(18,3);not null"`
}

// TableName returns the table name for GORM
func (DocumentTVALineModel) TableName() string {
	return "document_tva_lines"
}

// ToDomain converts the persistence model to a domain Document. Lines and
// payments are mapped only when they were loaded.
func (m *DocumentModel) ToDomain() *document.Document {
	d := &document.Document{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		Type:       m.Type,
		Number:     m.Number,
		Status:     m.Status,
		IssueDate:  m.IssueDate,
		DueDate:    m.DueDate,
		ValidUntil: m.ValidUntil,
		Partner: document.PartnerSnapshot{
			PartnerID:       m.PartnerID,
			Name:            m.PartnerName,
			MatriculeFiscal: m.PartnerMatriculeFiscal,
			Address:         m.PartnerAddress,
			City:            m.PartnerCity,
			Phone:           m.PartnerPhone,
		},
		ProjectID:       m.ProjectID,
		ApplyStamp:      m.ApplyStamp,
		WithholdingRate: m.WithholdingRate,
		Totals: fiscal.Totals{
			TotalGrossHT:  m.TotalGrossHT,
			TotalDiscount: m.TotalDiscount,
			TotalNetHT:    m.TotalNetHT,
			TotalFODEC:    m.TotalFODEC,
			TotalTVA:      m.TotalTVA,
			Stamp:         m.Stamp,
			TotalTTC:      m.TotalTTC,
			Withholding:   m.Withholding,
			NetToPay:      m.NetToPay,
		},
		Notes:            m.Notes,
		SourceDocumentID: m.SourceDocumentID,
		PaidAmount:       m.PaidAmount,
		PaymentStatus:    m.PaymentStatus,
		ValidatedAt:      m.ValidatedAt,
		CancelledAt:      m.CancelledAt,
		CancelReason:     m.CancelReason,
	}

	if len(m.TVALines) > 0 {
		d.Totals.TVABreakdown = make([]fiscal.TVALine, len(m.TVALines))
		for i, t := range m.TVALines {
			d.Totals.TVABreakdown[i] = fiscal.TVALine{Rate: fiscal.TVARate(t.Rate), Base: t.Base, Amount: t.Amount}
		}
	}
	if len(m.Lines) > 0 {
		d.Lines = make([]document.Line, len(m.Lines))
		for i := range m.Lines {
			d.Lines[i] = m.Lines[i].ToDomain()
		}
	}
	if len(m.Payments) > 0 {
		d.Payments = make([]document.Payment, len(m.Payments))
		for i, p := range m.Payments {
			d.Payments[i] = document.Payment{
				ID:        p.ID,
				Amount:    p.Amount,
				Method:    p.Method,
				PaidAt:    p.PaidAt,
				Reference: p.Reference,
			}
		}
	}
	return d
}

// ToDomain converts a line row to a domain Line
func (l *DocumentLineModel) ToDomain() document.Line {
	return document.Line{
		ID:           l.ID,
		Position:     l.Position,
		ProductID:    l.ProductID,
		Reference:    l.Reference,
		Designation:  l.Designation,
		Unit:         l.Unit,
		Quantity:     l.Quantity,
		UnitPriceHT:  l.UnitPriceHT,
		DiscountRate: l.DiscountRate,
		TVARate:      fiscal.TVARate(l.TVARate),
		FODEC:        l.FODEC,
		Amounts: fiscal.LineAmounts{
			GrossHT:  l.GrossHT,
			Discount: l.Discount,
			NetHT:    l.NetHT,
			FODEC:    l.FODECAmount,
			TVABase:  l.TVABase,
			TVA:      l.TVA,
			TotalTTC: l.TotalTTC,
		},
	}
}

// FromDomain populates the persistence model and its children from a
// domain Document
func (m *DocumentModel) FromDomain(d *document.Document) {
	m.FromDomainAggregateRoot(d.BaseAggregateRoot)
	m.Type = d.Type
	m.Number = d.Number
	m.Status = d.Status
	m.IssueDate = d.IssueDate
	m.DueDate = d.DueDate
	m.ValidUntil = d.ValidUntil
	m.PartnerID = d.Partner.PartnerID
	m.PartnerName = d.Partner.Name
	m.PartnerMatriculeFiscal = d.Partner.MatriculeFiscal
	m.PartnerAddress = d.Partner.Address
	m.PartnerCity = d.Partner.City
	m.PartnerPhone = d.Partner.Phone
	m.ProjectID = d.ProjectID
	m.SourceDocumentID = d.SourceDocumentID
	m.ApplyStamp = d.ApplyStamp
	m.WithholdingRate = d.WithholdingRate
	m.TotalGrossHT = d.Totals.TotalGrossHT
	m.TotalDiscount = d.Totals.TotalDiscount
	m.TotalNetHT = d.Totals.TotalNetHT
	m.TotalFODEC = d.Totals.TotalFODEC
	m.TotalTVA = d.Totals.TotalTVA
	m.Stamp = d.Totals.Stamp
	m.TotalTTC = d.Totals.TotalTTC
	m.Withholding = d.Totals.Withholding
	m.NetToPay = d.Totals.NetToPay
	m.PaidAmount = d.PaidAmount
	m.PaymentStatus = d.PaymentStatus
	m.Notes = d.Notes
	m.ValidatedAt = d.ValidatedAt
	m.CancelledAt = d.CancelledAt
	m.CancelReason = d.CancelReason

	m.Lines = make([]DocumentLineModel, len(d.Lines))
	for i, l := range d.Lines {
		m.Lines[i] = DocumentLineModel{
			ID:           l.ID,
			DocumentID:   d.ID,
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
			GrossHT:      l.Amounts.GrossHT,
			Discount:     l.Amounts.Discount,
			NetHT:        l.Amounts.NetHT,
			FODECAmount:  l.Amounts.FODEC,
			TVABase:      l.Amounts.TVABase,
			TVA:          l.Amounts.TVA,
			TotalTTC:     l.Amounts.TotalTTC,
		}
	}

	m.Payments = make([]DocumentPaymentModel, len(d.Payments))
	for i, p := range d.Payments {
		m.Payments[i] = DocumentPaymentModel{
			ID:         p.ID,
			DocumentID: d.ID,
			Amount:     p.Amount,
			Method:     p.Method,
			PaidAt:     p.PaidAt,
			Reference:  p.Reference,
		}
	}

	m.TVALines = make([]DocumentTVALineModel, len(d.Totals.TVABreakdown))
	for i, t := range d.Totals.TVABreakdown {
		m.TVALines[i] = DocumentTVALineModel{
			DocumentID: d.ID,
			Rate:       int(t.Rate),
			Base:       t.Base,
			Amount:     t.Amount,
		}
	}
}

// DocumentModelFromDomain creates a persistence model from a domain Document
func DocumentModelFromDomain(d *document.Document) *DocumentModel {
	m := &DocumentModel{}
	m.FromDomain(d)
	return m
}
