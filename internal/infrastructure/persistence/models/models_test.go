package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/hr"
	"github.com/tn-gestion/backend/internal/domain/partner"
)

func TestDocumentModel_RoundTrip(t *testing.T) {
	customer, err := partner.NewCustomer("C001", "Société Atlas", "")
	require.NoError(t, err)

	calc := fiscal.NewCalculator(fiscal.DefaultSettings())
	issue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	doc, err := document.NewDocument(document.TypeInvoice, "FA-2026-0001", document.SnapshotOf(customer),
		document.DefaultHeader(document.TypeInvoice, issue),
		[]document.LineInput{
			{Designation: "Maintenance", Quantity: decimal.NewFromInt(2), UnitPriceHT: decimal.NewFromInt(100), TVARate: fiscal.TVA19},
			{Designation: "Pièces", Quantity: decimal.NewFromInt(1), UnitPriceHT: decimal.NewFromInt(50), TVARate: fiscal.TVA7, FODEC: true},
		}, calc)
	require.NoError(t, err)

	m := DocumentModelFromDomain(doc)
	require.Len(t, m.Lines, 2)
	require.Len(t, m.TVALines, 2)
	assert.Equal(t, doc.ID, m.Lines[0].DocumentID)
	assert.Equal(t, "Société Atlas", m.PartnerName)

	back := m.ToDomain()
	assert.Equal(t, doc.Number, back.Number)
	assert.Equal(t, doc.Partner, back.Partner)
	assert.True(t, doc.Totals.TotalTTC.Equal(back.Totals.TotalTTC))
	require.Len(t, back.Lines, 2)
	assert.Equal(t, "Pièces", back.Lines[1].Designation)
	assert.True(t, doc.Lines[1].Amounts.FODEC.Equal(back.Lines[1].Amounts.FODEC))
	assert.Equal(t, fiscal.TVA7, back.Totals.TVABreakdown[0].Rate)
}

func TestPayslipModel_Period(t *testing.T) {
	p, err := hr.NewPayslip(uuid.New(), hr.Period{Year: 2026, Month: time.February},
		hr.PayslipInput{GrossSalary: decimal.NewFromInt(1500)}, hr.DefaultRates())
	require.NoError(t, err)

	m := PayslipModelFromDomain(p)
	assert.Equal(t, 2, m.PeriodMonth)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), m.PeriodStart)
	assert.Equal(t, p.Period, m.ToDomain().Period)
}
