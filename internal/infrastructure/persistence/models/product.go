package models

import (
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/catalog"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
)

// ProductModel is the persistence model for catalog products
type ProductModel struct {
	AggregateModel
	Reference   string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Designation string                `gorm:"type:text;not null"`
	Unit        string                `gorm:"type:varchar(20);not null;default:'U'"`
	UnitPriceHT decimal.Decimal       `gorm:"type:decimal(18,3);not null;default:0"`
	TVARate     int                   `gorm:"not null;default:19"`
	FODEC       bool                  `gorm:"not null;default:false"`
	Status      catalog.ProductStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Reference:         m.Reference,
		Designation:       m.Designation,
		Unit:              m.Unit,
		UnitPriceHT:       m.UnitPriceHT,
		TVARate:           fiscal.TVARate(m.TVARate),
		FODEC:             m.FODEC,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Reference = p.Reference
	m.Designation = p.Designation
	m.Unit = p.Unit
	m.UnitPriceHT = p.UnitPriceHT
	m.TVARate = int(p.TVARate)
	m.FODEC = p.FODEC
	m.Status = p.Status
}

// ProductModelFromDomain creates a persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}
