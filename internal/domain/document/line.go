package document

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// LineInput describes a line to add to a document
type LineInput struct {
	ProductID    *uuid.UUID
	Reference    string
	Designation  string
	Unit         string
	Quantity     decimal.Decimal
	UnitPriceHT  decimal.Decimal
	DiscountRate decimal.Decimal
	TVARate      fiscal.TVARate
	FODEC        bool
}

// Line is one row of the document table
type Line struct {
	ID           uuid.UUID
	Position     int
	ProductID    *uuid.UUID
	Reference    string
	Designation  string
	Unit         string
	Quantity     decimal.Decimal
	UnitPriceHT  decimal.Decimal
	DiscountRate decimal.Decimal
	TVARate      fiscal.TVARate
	FODEC        bool
	Amounts      fiscal.LineAmounts
}

func newLine(position int, in LineInput) (Line, error) {
	designation := strings.TrimSpace(in.Designation)
	if designation == "" {
		return Line{}, shared.NewDomainError(shared.CodeInvalidInput, "Line designation cannot be empty")
	}
	if len(designation) > 1000 {
		return Line{}, shared.NewDomainError(shared.CodeInvalidInput, "Line designation cannot exceed 1000 characters")
	}
	l := Line{
		ID:           uuid.New(),
		Position:     position,
		ProductID:    in.ProductID,
		Reference:    strings.TrimSpace(in.Reference),
		Designation:  designation,
		Unit:         strings.TrimSpace(in.Unit),
		Quantity:     valueobject.RoundMillimes(in.Quantity),
		UnitPriceHT:  valueobject.RoundMillimes(in.UnitPriceHT),
		DiscountRate: in.DiscountRate,
		TVARate:      in.TVARate,
		FODEC:        in.FODEC,
	}
	if err := fiscal.ValidateLine(l.fiscalInput()); err != nil {
		return Line{}, shared.NewDomainError(shared.CodeInvalidInput, "Line "+strconv.Itoa(position)+": "+err.Error())
	}
	return l, nil
}

func (l Line) fiscalInput() fiscal.LineInput {
	return fiscal.LineInput{
		Quantity:     l.Quantity,
		UnitPriceHT:  l.UnitPriceHT,
		DiscountRate: l.DiscountRate,
		TVARate:      l.TVARate,
		FODEC:        l.FODEC,
	}
}

// Input returns the line as an input, for copying it to another document
func (l Line) Input() LineInput {
	return LineInput{
		ProductID:    l.ProductID,
		Reference:    l.Reference,
		Designation:  l.Designation,
		Unit:         l.Unit,
		Quantity:     l.Quantity,
		UnitPriceHT:  l.UnitPriceHT,
		DiscountRate: l.DiscountRate,
		TVARate:      l.TVARate,
		FODEC:        l.FODEC,
	}
}

// Payment is a payment received against an invoice
type Payment struct {
	ID        uuid.UUID
	Amount    decimal.Decimal
	Method    PaymentMethod
	PaidAt    time.Time
	Reference string
}
