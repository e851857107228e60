package models

import (
	"github.com/tn-gestion/backend/internal/domain/partner"
)

// PartnerModel is the persistence model for customers and suppliers.
// Codes are unique per kind.
type PartnerModel struct {
	AggregateModel
	Kind            partner.Kind   `gorm:"type:varchar(20);not null;uniqueIndex:idx_partner_kind_code,priority:1"`
	Code            string         `gorm:"type:varchar(50);not null;uniqueIndex:idx_partner_kind_code,priority:2"`
	Name            string         `gorm:"type:varchar(200);not null"`
	MatriculeFiscal string         `gorm:"type:varchar(30)"`
	Address         string         `gorm:"type:text"`
	City            string         `gorm:"type:varchar(100)"`
	Phone           string         `gorm:"type:varchar(50)"`
	Email           string         `gorm:"type:varchar(200)"`
	Status          partner.Status `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	Notes           string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PartnerModel) TableName() string {
	return "partners"
}

// ToDomain converts the persistence model to a domain Partner
func (m *PartnerModel) ToDomain() *partner.Partner {
	return &partner.Partner{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Kind:              m.Kind,
		Code:              m.Code,
		Name:              m.Name,
		MatriculeFiscal:   m.MatriculeFiscal,
		Address:           m.Address,
		City:              m.City,
		Phone:             m.Phone,
		Email:             m.Email,
		Status:            m.Status,
		Notes:             m.Notes,
	}
}

// FromDomain populates the persistence model from a domain Partner
func (m *PartnerModel) FromDomain(p *partner.Partner) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Kind = p.Kind
	m.Code = p.Code
	m.Name = p.Name
	m.MatriculeFiscal = p.MatriculeFiscal
	m.Address = p.Address
	m.City = p.City
	m.Phone = p.Phone
	m.Email = p.Email
	m.Status = p.Status
	m.Notes = p.Notes
}

// PartnerModelFromDomain creates a persistence model from a domain Partner
func PartnerModelFromDomain(p *partner.Partner) *PartnerModel {
	m := &PartnerModel{}
	m.FromDomain(p)
	return m
}
