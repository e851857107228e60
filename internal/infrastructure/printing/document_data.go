package printing

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/amountwords"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/printing"
	"github.com/tn-gestion/backend/internal/infrastructure/config"
)

// DocumentData is what the document template is executed with
type DocumentData struct {
	Company CompanyInfo  `json:"company"`
	Partner PartnerInfo  `json:"partner"`
	Meta    DocumentMeta `json:"meta"`
	Page    PageFormat   `json:"page"`
	Pages   []PageData   `json:"pages"`

	// ShowPrices is false for delivery notes, whose carried sums are quantities
	ShowPrices    bool            `json:"showPrices"`
	CarryLabel    string          `json:"carryLabel"`
	TVABreakdown  []fiscal.TVALine `json:"tvaBreakdown"`
	Totals        fiscal.Totals   `json:"totals"`
	TotalQuantity decimal.Decimal `json:"totalQuantity"`
	// AmountInWords is the closing sentence, e.g. "Arrêtée la présente
	// facture à la somme de : Cent dinars"
	AmountInWords string    `json:"amountInWords"`
	PrintedAt     time.Time `json:"printedAt"`
}

// CompanyInfo is the issuer identity printed in the header and footer
type CompanyInfo struct {
	Name            string `json:"name"`
	LegalForm       string `json:"legalForm"`
	MatriculeFiscal string `json:"matriculeFiscal"`
	RegistryNumber  string `json:"registryNumber"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Phone           string `json:"phone"`
	Email           string `json:"email"`
	Website         string `json:"website"`
	Bank            string `json:"bank"`
	RIB             string `json:"rib"`
	Logo            string `json:"logo"`
}

// CompanyFromConfig copies the configured issuer identity
func CompanyFromConfig(c config.CompanyConfig) CompanyInfo {
	return CompanyInfo{
		Name:            c.Name,
		LegalForm:       c.LegalForm,
		MatriculeFiscal: c.MatriculeFiscal,
		RegistryNumber:  c.RegistryNumber,
		Address:         c.Address,
		City:            c.City,
		Phone:           c.Phone,
		Email:           c.Email,
		Website:         c.Website,
		Bank:            c.Bank,
		RIB:             c.RIB,
		Logo:            c.LogoPath,
	}
}

// PartnerInfo is the partner box of the first page
type PartnerInfo struct {
	Label           string `json:"label"`
	Name            string `json:"name"`
	MatriculeFiscal string `json:"matriculeFiscal"`
	Address         string `json:"address"`
	City            string `json:"city"`
	Phone           string `json:"phone"`
}

// DocumentMeta is the document identification block
type DocumentMeta struct {
	Type       document.Type `json:"type"`
	Title      string        `json:"title"`
	Number     string        `json:"number"`
	Status     string        `json:"status"`
	IssueDate  time.Time     `json:"issueDate"`
	DueDate    *time.Time    `json:"dueDate,omitempty"`
	ValidUntil *time.Time    `json:"validUntil,omitempty"`
	Notes      string        `json:"notes"`
	Draft      bool          `json:"draft"`
	Version    int           `json:"version"`
}

// PageFormat carries the geometry the stylesheet needs, in millimeters
type PageFormat struct {
	Paper        printing.PaperSize   `json:"paper"`
	Orientation  printing.Orientation `json:"orientation"`
	Width        float64              `json:"width"`
	Height       float64              `json:"height"`
	Margins      printing.Margins     `json:"margins"`
	FirstHeader  float64              `json:"firstHeader"`
	NextHeader   float64              `json:"nextHeader"`
	TableHeader  float64              `json:"tableHeader"`
	Footer       float64              `json:"footer"`
	CarryRow     float64              `json:"carryRow"`
	RowBase      float64              `json:"rowBase"`
	RowLineExtra float64              `json:"rowLineExtra"`
}

// PageData is one printed page
type PageData struct {
	Number      int             `json:"number"`
	Of          int             `json:"of"`
	Rows        []LineData      `json:"rows"`
	CarriedIn   decimal.Decimal `json:"carriedIn"`
	PageTotal   decimal.Decimal `json:"pageTotal"`
	CarriedOut  decimal.Decimal `json:"carriedOut"`
	IsFirst     bool            `json:"isFirst"`
	IsLast      bool            `json:"isLast"`
	ShowTotals  bool            `json:"showTotals"`
	HasCarryIn  bool            `json:"hasCarryIn"`
	HasCarryOut bool            `json:"hasCarryOut"`
}

// LineData is one table row
type LineData struct {
	Index        int             `json:"index"`
	Reference    string          `json:"reference"`
	Designation  []string        `json:"designation"`
	Unit         string          `json:"unit"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceHT  decimal.Decimal `json:"unitPriceHt"`
	DiscountRate decimal.Decimal `json:"discountRate"`
	TVARate      fiscal.TVARate  `json:"tvaRate"`
	FODEC        bool            `json:"fodec"`
	NetHT        decimal.Decimal `json:"netHt"`
	Height       float64         `json:"height"`
}

// DocumentDataBuilder turns a document into the template view model
type DocumentDataBuilder struct {
	company CompanyInfo
	now     func() time.Time
}

// NewDocumentDataBuilder creates a builder printing documents for company
func NewDocumentDataBuilder(company CompanyInfo) *DocumentDataBuilder {
	return &DocumentDataBuilder{company: company, now: time.Now}
}

// Build paginates the document lines for the layout and fills in the
// header, totals and amount in words.
func (b *DocumentDataBuilder) Build(doc *document.Document, layout printing.LayoutSpec) *DocumentData {
	showPrices := doc.Type.ShowsPrices()

	rows := make([]printing.Row[document.Line], len(doc.Lines))
	totalQty := decimal.Zero
	for i, l := range doc.Lines {
		amount := l.Amounts.NetHT
		if !showPrices {
			amount = l.Quantity
		}
		totalQty = totalQty.Add(l.Quantity)
		rows[i] = printing.Row[document.Line]{
			Designation: l.Designation,
			Amount:      amount,
			Item:        l,
		}
	}

	pages := printing.Paginate(rows, layout)
	data := &DocumentData{
		Company: b.company,
		Partner: partnerInfo(doc),
		Meta: DocumentMeta{
			Type:       doc.Type,
			Title:      doc.Type.DisplayName(),
			Number:     doc.Number,
			Status:     doc.Status.DisplayName(),
			IssueDate:  doc.IssueDate,
			DueDate:    doc.DueDate,
			ValidUntil: doc.ValidUntil,
			Notes:      doc.Notes,
			Draft:      doc.IsDraft(),
			Version:    doc.Version,
		},
		Page:          pageFormat(layout),
		Pages:         make([]PageData, len(pages)),
		ShowPrices:    showPrices,
		CarryLabel:    "Total HT",
		TVABreakdown:  doc.Totals.TVABreakdown,
		Totals:        doc.Totals,
		TotalQuantity: totalQty,
		PrintedAt:     b.now(),
	}
	if showPrices {
		data.AmountInWords = ClosingSentence(doc.Type, doc.Totals.TotalTTC)
	} else {
		data.CarryLabel = "Quantité"
	}

	for i, p := range pages {
		pd := PageData{
			Number:      p.Number,
			Of:          p.Of,
			Rows:        make([]LineData, len(p.Rows)),
			CarriedIn:   p.CarriedIn,
			PageTotal:   p.PageTotal,
			CarriedOut:  p.CarriedOut,
			IsFirst:     p.IsFirst,
			IsLast:      p.IsLast,
			ShowTotals:  p.ShowTotals,
			HasCarryIn:  p.HasCarryIn(),
			HasCarryOut: p.HasCarryOut(),
		}
		for j, r := range p.Rows {
			l := r.Item
			pd.Rows[j] = LineData{
				Index:        r.Index,
				Reference:    l.Reference,
				Designation:  r.Lines,
				Unit:         l.Unit,
				Quantity:     l.Quantity,
				UnitPriceHT:  l.UnitPriceHT,
				DiscountRate: l.DiscountRate,
				TVARate:      l.TVARate,
				FODEC:        l.FODEC,
				NetHT:        l.Amounts.NetHT,
				Height:       r.Height,
			}
		}
		data.Pages[i] = pd
	}
	return data
}

// ClosingSentence is the legal sentence stating the total in words, with
// the past participle agreeing with the document title.
func ClosingSentence(t document.Type, amount decimal.Decimal) string {
	title := strings.ToLower(t.DisplayName())
	prefix := "Arrêté le présent " + title
	if t.IsFeminine() {
		prefix = "Arrêtée la présente " + title
	}
	return prefix + " à la somme de : " + amountwords.Capitalize(amountwords.Dinars(amount))
}

func partnerInfo(doc *document.Document) PartnerInfo {
	label := "Client"
	if doc.Type.PartnerKind() == partner.KindSupplier {
		label = "Fournisseur"
	}
	p := doc.Partner
	return PartnerInfo{
		Label:           label,
		Name:            p.Name,
		MatriculeFiscal: p.MatriculeFiscal,
		Address:         p.Address,
		City:            p.City,
		Phone:           p.Phone,
	}
}

func pageFormat(l printing.LayoutSpec) PageFormat {
	w, h := printing.PageDimensions(l.Paper, l.Orientation)
	return PageFormat{
		Paper:        l.Paper,
		Orientation:  l.Orientation,
		Width:        w,
		Height:       h,
		Margins:      l.Margins,
		FirstHeader:  l.FirstHeader,
		NextHeader:   l.NextHeader,
		TableHeader:  l.TableHeader,
		Footer:       l.Footer,
		CarryRow:     l.CarryRow,
		RowBase:      l.RowBase,
		RowLineExtra: l.RowLineExtra,
	}
}
