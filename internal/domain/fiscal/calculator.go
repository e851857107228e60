package fiscal

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

var hundred = decimal.NewFromInt(100)

// Settings holds the configurable parts of the tax rules
type Settings struct {
	// FODECRate is the FODEC levy in percent
	FODECRate decimal.Decimal
	// StampAmount is the timbre fiscal charged per document
	StampAmount decimal.Decimal
}

// DefaultSettings returns the rates in force: FODEC 1% and a 1.000 TND stamp
func DefaultSettings() Settings {
	return Settings{
		FODECRate:   decimal.NewFromInt(1),
		StampAmount: decimal.NewFromInt(1),
	}
}

// LineInput is the priced part of a document line
type LineInput struct {
	Quantity     decimal.Decimal
	UnitPriceHT  decimal.Decimal
	DiscountRate decimal.Decimal // percent
	TVARate      TVARate
	FODEC        bool
}

// LineAmounts are the computed amounts of one line
type LineAmounts struct {
	GrossHT  decimal.Decimal `json:"gross_ht"`
	Discount decimal.Decimal `json:"discount"`
	NetHT    decimal.Decimal `json:"net_ht"`
	FODEC    decimal.Decimal `json:"fodec"`
	TVABase  decimal.Decimal `json:"tva_base"`
	TVA      decimal.Decimal `json:"tva"`
	TotalTTC decimal.Decimal `json:"total_ttc"`
}

// TVALine is one row of the TVA breakdown
type TVALine struct {
	Rate   TVARate         `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// Options are document-level switches that affect totals
type Options struct {
	ApplyStamp      bool
	WithholdingRate decimal.Decimal // percent of TTC, zero when not applicable
}

// Totals are the document totals printed in the totals block
type Totals struct {
	TotalGrossHT  decimal.Decimal `json:"total_gross_ht"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalNetHT    decimal.Decimal `json:"total_net_ht"`
	TotalFODEC    decimal.Decimal `json:"total_fodec"`
	TVABreakdown  []TVALine       `json:"tva_breakdown"`
	TotalTVA      decimal.Decimal `json:"total_tva"`
	Stamp         decimal.Decimal `json:"stamp"`
	TotalTTC      decimal.Decimal `json:"total_ttc"`
	Withholding   decimal.Decimal `json:"withholding"`
	NetToPay      decimal.Decimal `json:"net_to_pay"`
}

// Calculator computes line and document amounts
type Calculator struct {
	settings Settings
}

// NewCalculator creates a calculator for the given settings
func NewCalculator(settings Settings) *Calculator {
	return &Calculator{settings: settings}
}

// Settings returns the calculator settings
func (c *Calculator) Settings() Settings {
	return c.settings
}

// ValidateLine checks the priced fields of a line
func ValidateLine(l LineInput) error {
	if !l.Quantity.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than zero")
	}
	if l.UnitPriceHT.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Unit price cannot be negative")
	}
	if l.DiscountRate.IsNegative() || l.DiscountRate.GreaterThan(hundred) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Discount rate must be between 0 and 100")
	}
	if !l.TVARate.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unsupported TVA rate: %d", int(l.TVARate)))
	}
	return nil
}

// ComputeLine computes the amounts of a single line. Every amount is
// rounded to the millime.
func (c *Calculator) ComputeLine(l LineInput) (LineAmounts, error) {
	if err := ValidateLine(l); err != nil {
		return LineAmounts{}, err
	}

	gross := valueobject.RoundMillimes(l.Quantity.Mul(l.UnitPriceHT))
	discount := percentOf(gross, l.DiscountRate)
	net := gross.Sub(discount)

	fodec := decimal.Zero
	if l.FODEC {
		fodec = percentOf(net, c.settings.FODECRate)
	}
	base := net.Add(fodec)
	tva := percentOf(base, l.TVARate.Percent())

	return LineAmounts{
		GrossHT:  gross,
		Discount: discount,
		NetHT:    net,
		FODEC:    fodec,
		TVABase:  base,
		TVA:      tva,
		TotalTTC: base.Add(tva),
	}, nil
}

// ComputeTotals computes every line and the document totals. TVA is
// computed once per rate on the summed base, not summed from lines.
func (c *Calculator) ComputeTotals(lines []LineInput, opts Options) (Totals, []LineAmounts, error) {
	if len(lines) == 0 {
		return Totals{}, nil, shared.NewDomainError(shared.CodeInvalidInput, "Document must have at least one line")
	}
	if opts.WithholdingRate.IsNegative() || opts.WithholdingRate.GreaterThan(hundred) {
		return Totals{}, nil, shared.NewDomainError(shared.CodeInvalidInput, "Withholding rate must be between 0 and 100")
	}

	amounts := make([]LineAmounts, len(lines))
	totals := Totals{
		TotalGrossHT:  decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalNetHT:    decimal.Zero,
		TotalFODEC:    decimal.Zero,
		TotalTVA:      decimal.Zero,
		Stamp:         decimal.Zero,
		Withholding:   decimal.Zero,
	}
	bases := make(map[TVARate]decimal.Decimal)

	for i, l := range lines {
		a, err := c.ComputeLine(l)
		if err != nil {
			return Totals{}, nil, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Line %d: %s", i+1, err.Error()))
		}
		amounts[i] = a
		totals.TotalGrossHT = totals.TotalGrossHT.Add(a.GrossHT)
		totals.TotalDiscount = totals.TotalDiscount.Add(a.Discount)
		totals.TotalNetHT = totals.TotalNetHT.Add(a.NetHT)
		totals.TotalFODEC = totals.TotalFODEC.Add(a.FODEC)
		bases[l.TVARate] = bases[l.TVARate].Add(a.TVABase)
	}

	totals.TVABreakdown = make([]TVALine, 0, len(bases))
	for rate, base := range bases {
		totals.TVABreakdown = append(totals.TVABreakdown, TVALine{
			Rate:   rate,
			Base:   base,
			Amount: percentOf(base, rate.Percent()),
		})
	}
	sort.Slice(totals.TVABreakdown, func(i, j int) bool {
		return totals.TVABreakdown[i].Rate < totals.TVABreakdown[j].Rate
	})
	for _, tl := range totals.TVABreakdown {
		totals.TotalTVA = totals.TotalTVA.Add(tl.Amount)
	}

	if opts.ApplyStamp {
		totals.Stamp = valueobject.RoundMillimes(c.settings.StampAmount)
	}

	totals.TotalTTC = totals.TotalNetHT.
		Add(totals.TotalFODEC).
		Add(totals.TotalTVA).
		Add(totals.Stamp)
	totals.Withholding = percentOf(totals.TotalTTC, opts.WithholdingRate)
	totals.NetToPay = totals.TotalTTC.Sub(totals.Withholding)

	return totals, amounts, nil
}

// percentOf returns rate percent of amount rounded to the millime
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	if rate.IsZero() {
		return decimal.Zero
	}
	return valueobject.RoundMillimes(amount.Mul(rate).Div(hundred))
}
