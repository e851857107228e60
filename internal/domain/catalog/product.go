// Package catalog holds the products and services that appear on document lines.
package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// ProductStatus represents the status of a product
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// IsValid checks if the status is a valid ProductStatus
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// DefaultUnit is used when a product is created without a unit
const DefaultUnit = "U"

// Product is a product or service sold or bought by the company
type Product struct {
	shared.BaseAggregateRoot
	Reference   string
	Designation string
	Unit        string
	UnitPriceHT decimal.Decimal
	TVARate     fiscal.TVARate
	// FODEC marks products subject to the FODEC levy
	FODEC  bool
	Status ProductStatus
}

// ProductDetails are the editable fields of a product
type ProductDetails struct {
	Designation string
	Unit        string
	UnitPriceHT decimal.Decimal
	TVARate     fiscal.TVARate
	FODEC       bool
}

// NewProduct creates a new active product
func NewProduct(reference string, details ProductDetails) (*Product, error) {
	reference = strings.ToUpper(strings.TrimSpace(reference))
	if err := validateReference(reference); err != nil {
		return nil, err
	}
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Reference:         reference,
		Status:            ProductStatusActive,
	}
	if err := p.apply(details); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields of the product
func (p *Product) Update(details ProductDetails) error {
	if err := p.apply(details); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Product) apply(d ProductDetails) error {
	designation := strings.TrimSpace(d.Designation)
	if designation == "" {
		return shared.NewDomainError("INVALID_DESIGNATION", "Product designation cannot be empty")
	}
	if len(designation) > 500 {
		return shared.NewDomainError("INVALID_DESIGNATION", "Product designation cannot exceed 500 characters")
	}
	unit := strings.TrimSpace(d.Unit)
	if unit == "" {
		unit = DefaultUnit
	}
	if len(unit) > 20 {
		return shared.NewDomainError("INVALID_UNIT", "Unit cannot exceed 20 characters")
	}
	if d.UnitPriceHT.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if !d.TVARate.IsValid() {
		return shared.NewDomainError("INVALID_TVA_RATE", "TVA rate must be 0, 7, 13 or 19")
	}

	p.Designation = designation
	p.Unit = unit
	p.UnitPriceHT = valueobject.RoundMillimes(d.UnitPriceHT)
	p.TVARate = d.TVARate
	p.FODEC = d.FODEC
	return nil
}

// Activate activates the product
func (p *Product) Activate() error {
	if p.Status == ProductStatusActive {
		return shared.NewInvalidStateError("Product %s is already active", p.Reference)
	}
	p.Status = ProductStatusActive
	p.IncrementVersion()
	return nil
}

// Deactivate deactivates the product
func (p *Product) Deactivate() error {
	if p.Status == ProductStatusInactive {
		return shared.NewInvalidStateError("Product %s is already inactive", p.Reference)
	}
	p.Status = ProductStatusInactive
	p.IncrementVersion()
	return nil
}

// IsActive returns true if the product is active
func (p *Product) IsActive() bool {
	return p.Status == ProductStatusActive
}

// UnitPriceTTC returns the unit price including FODEC and TVA, for display
func (p *Product) UnitPriceTTC(fodecRate decimal.Decimal) decimal.Decimal {
	base := p.UnitPriceHT
	if p.FODEC {
		base = base.Add(valueobject.RoundMillimes(base.Mul(fodecRate).Div(decimal.NewFromInt(100))))
	}
	tva := valueobject.RoundMillimes(base.Mul(p.TVARate.Ratio()))
	return base.Add(tva)
}

func validateReference(ref string) error {
	if ref == "" {
		return shared.NewDomainError("INVALID_REFERENCE", "Product reference cannot be empty")
	}
	if len(ref) > 50 {
		return shared.NewDomainError("INVALID_REFERENCE", "Product reference cannot exceed 50 characters")
	}
	for _, r := range ref {
		if !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' || r == '.') {
			return shared.NewDomainError("INVALID_REFERENCE", "Product reference can only contain letters, numbers, dots, underscores, and hyphens")
		}
	}
	return nil
}
