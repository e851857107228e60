// Package report holds the read models of the accounting reports and the
// arithmetic that turns raw sums into them.
package report

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// Period is an inclusive date range
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewPeriod validates a date range
func NewPeriod(from, to time.Time) (Period, error) {
	if from.IsZero() || to.IsZero() {
		return Period{}, shared.NewDomainError(shared.CodeInvalidInput, "Both from and to dates are required")
	}
	if to.Before(from) {
		return Period{}, shared.NewDomainError(shared.CodeInvalidInput, "The end date cannot be before the start date")
	}
	return Period{From: from, To: to}, nil
}

// DocumentSums are the summed totals of a set of documents
type DocumentSums struct {
	Count    int64
	NetHT    decimal.Decimal
	FODEC    decimal.Decimal
	TVA      decimal.Decimal
	Stamps   decimal.Decimal
	TTC      decimal.Decimal
	NetToPay decimal.Decimal
	Paid     decimal.Decimal
}

// TVASum is the summed TVA breakdown of one rate
type TVASum struct {
	Rate   fiscal.TVARate  `json:"rate"`
	Base   decimal.Decimal `json:"base"`
	Amount decimal.Decimal `json:"amount"`
}

// SalesSummary sums invoicing over a period, credit notes deducted
type SalesSummary struct {
	Period          Period          `json:"period"`
	InvoiceCount    int64           `json:"invoice_count"`
	CreditNoteCount int64           `json:"credit_note_count"`
	InvoicedHT      decimal.Decimal `json:"invoiced_ht"`
	CreditedHT      decimal.Decimal `json:"credited_ht"`
	TotalHT         decimal.Decimal `json:"total_ht"`
	TotalFODEC      decimal.Decimal `json:"total_fodec"`
	TotalTVA        decimal.Decimal `json:"total_tva"`
	TotalStamps     decimal.Decimal `json:"total_stamps"`
	TotalTTC        decimal.Decimal `json:"total_ttc"`
	Paid            decimal.Decimal `json:"paid"`
	Outstanding     decimal.Decimal `json:"outstanding"`
}

// NewSalesSummary builds the summary from invoice and credit note sums
func NewSalesSummary(p Period, invoices, credits DocumentSums) SalesSummary {
	outstanding := invoices.NetToPay.Sub(invoices.Paid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return SalesSummary{
		Period:          p,
		InvoiceCount:    invoices.Count,
		CreditNoteCount: credits.Count,
		InvoicedHT:      invoices.NetHT,
		CreditedHT:      credits.NetHT,
		TotalHT:         invoices.NetHT.Sub(credits.NetHT),
		TotalFODEC:      invoices.FODEC.Sub(credits.FODEC),
		TotalTVA:        invoices.TVA.Sub(credits.TVA),
		TotalStamps:     invoices.Stamps.Sub(credits.Stamps),
		TotalTTC:        invoices.TTC.Sub(credits.TTC),
		Paid:            invoices.Paid,
		Outstanding:     outstanding,
	}
}

// TVADeclaration is the monthly TVA return: collected minus deductible
type TVADeclaration struct {
	Period          Period          `json:"period"`
	Collected       []TVASum        `json:"collected"`
	TotalCollected  decimal.Decimal `json:"total_collected"`
	Deductible      decimal.Decimal `json:"deductible"`
	Payable         decimal.Decimal `json:"payable"` // negative is a TVA credit
	FODECCollected  decimal.Decimal `json:"fodec_collected"`
	StampsCollected decimal.Decimal `json:"stamps_collected"`
}

// NewTVADeclaration nets credit note TVA off invoice TVA, rate by rate
func NewTVADeclaration(p Period, invoiceRates, creditRates []TVASum, deductible decimal.Decimal, invoices, credits DocumentSums) TVADeclaration {
	byRate := make(map[fiscal.TVARate]TVASum)
	for _, s := range invoiceRates {
		cur := byRate[s.Rate]
		cur.Rate = s.Rate
		cur.Base = cur.Base.Add(s.Base)
		cur.Amount = cur.Amount.Add(s.Amount)
		byRate[s.Rate] = cur
	}
	for _, s := range creditRates {
		cur := byRate[s.Rate]
		cur.Rate = s.Rate
		cur.Base = cur.Base.Sub(s.Base)
		cur.Amount = cur.Amount.Sub(s.Amount)
		byRate[s.Rate] = cur
	}

	collected := make([]TVASum, 0, len(byRate))
	total := decimal.Zero
	for _, s := range byRate {
		collected = append(collected, s)
		total = total.Add(s.Amount)
	}
	sort.Slice(collected, func(i, j int) bool { return collected[i].Rate < collected[j].Rate })

	return TVADeclaration{
		Period:          p,
		Collected:       collected,
		TotalCollected:  total,
		Deductible:      deductible,
		Payable:         total.Sub(deductible),
		FODECCollected:  invoices.FODEC.Sub(credits.FODEC),
		StampsCollected: invoices.Stamps.Sub(credits.Stamps),
	}
}

// ExpenseLine is the HT total of one expense category
type ExpenseLine struct {
	Category string          `json:"category"`
	Label    string          `json:"label"`
	AmountHT decimal.Decimal `json:"amount_ht"`
}

// ProfitAndLoss compares revenue with expenses and payroll
type ProfitAndLoss struct {
	Period        Period          `json:"period"`
	RevenueHT     decimal.Decimal `json:"revenue_ht"`
	Expenses      []ExpenseLine   `json:"expenses"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	PayrollCost   decimal.Decimal `json:"payroll_cost"`
	NetResult     decimal.Decimal `json:"net_result"`
}

// NewProfitAndLoss sums expenses and computes the net result
func NewProfitAndLoss(p Period, revenueHT decimal.Decimal, expenses []ExpenseLine, payrollCost decimal.Decimal) ProfitAndLoss {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.AmountHT)
	}
	if expenses == nil {
		expenses = []ExpenseLine{}
	}
	return ProfitAndLoss{
		Period:        p,
		RevenueHT:     revenueHT,
		Expenses:      expenses,
		TotalExpenses: total,
		PayrollCost:   payrollCost,
		NetResult:     revenueHT.Sub(total).Sub(payrollCost),
	}
}

// ProjectProfitability compares what a project invoiced with what it cost
type ProjectProfitability struct {
	ProjectID  uuid.UUID       `json:"project_id"`
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	Budget     decimal.Decimal `json:"budget"`
	InvoicedHT decimal.Decimal `json:"invoiced_ht"`
	ExpensesHT decimal.Decimal `json:"expenses_ht"`
	Margin     decimal.Decimal `json:"margin"`
	// BudgetConsumption is expenses over budget in percent, zero without budget
	BudgetConsumption decimal.Decimal `json:"budget_consumption"`
}

// NewProjectProfitability computes margin and budget consumption
func NewProjectProfitability(id uuid.UUID, code, name string, budget, invoicedHT, expensesHT decimal.Decimal) ProjectProfitability {
	consumption := decimal.Zero
	if budget.IsPositive() {
		consumption = expensesHT.Mul(decimal.NewFromInt(100)).Div(budget).Round(2)
	}
	return ProjectProfitability{
		ProjectID:         id,
		Code:              code,
		Name:              name,
		Budget:            budget,
		InvoicedHT:        invoicedHT,
		ExpensesHT:        expensesHT,
		Margin:            valueobject.RoundMillimes(invoicedHT.Sub(expensesHT)),
		BudgetConsumption: consumption,
	}
}
