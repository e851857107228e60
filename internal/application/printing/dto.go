package printing

import (
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
)

// PrintOptions selects the rendition of a document. An empty paper size
// uses the configured default; Force renders even when a cached PDF exists.
type PrintOptions struct {
	PaperSize string `json:"paper_size" form:"paper" binding:"omitempty,oneof=A4 A5"`
	Force     bool   `json:"force" form:"force"`
}

// PrintResult describes a rendered and stored PDF
type PrintResult struct {
	StorageKey string `json:"storage_key"`
	URL        string `json:"url"`
	PageCount  int    `json:"page_count"`
	SizeBytes  int64  `json:"size_bytes"`
	Cached     bool   `json:"cached"`
}

// PDFFile is a downloadable PDF
type PDFFile struct {
	Filename  string
	Data      []byte
	PageCount int
}

// AmountInWordsResponse spells an amount in French
type AmountInWordsResponse struct {
	Amount decimal.Decimal `json:"amount"`
	Words  string          `json:"words"`
}

// TotalsLineRequest is one priced line of a totals simulation
type TotalsLineRequest struct {
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPriceHT  decimal.Decimal `json:"unit_price_ht"`
	DiscountRate decimal.Decimal `json:"discount_rate"`
	TVARate      int             `json:"tva_rate" binding:"tva_rate"`
	FODEC        bool            `json:"fodec"`
}

// TotalsRequest computes document totals without saving anything
type TotalsRequest struct {
	Lines           []TotalsLineRequest `json:"lines" binding:"required,min=1,dive"`
	ApplyStamp      bool                `json:"apply_stamp"`
	WithholdingRate decimal.Decimal     `json:"withholding_rate"`
}

// TotalsResponse carries the computed totals and the amount in words
type TotalsResponse struct {
	Totals        fiscal.Totals        `json:"totals"`
	Lines         []fiscal.LineAmounts `json:"lines"`
	AmountInWords string               `json:"amount_in_words"`
}
