package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/project"
)

// ProjectModel is the persistence model for customer projects
type ProjectModel struct {
	AggregateModel
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	CustomerID  *uuid.UUID      `gorm:"type:uuid;index"`
	Budget      decimal.Decimal `gorm:"type:decimal(18,3);not null;default:0"`
	StartDate   time.Time       `gorm:"type:date;not null"`
	EndDate     *time.Time      `gorm:"type:date"`
	Status      project.Status  `gorm:"type:varchar(20);not null;default:'PLANNED'"`
	Description string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *project.Project {
	return &project.Project{
		BaseAggregateRoot: m.ToAggregateRoot(),
		Code:              m.Code,
		Name:              m.Name,
		CustomerID:        m.CustomerID,
		Budget:            m.Budget,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Status:            m.Status,
		Description:       m.Description,
	}
}

// ProjectModelFromDomain creates a persistence model from a domain Project
func ProjectModelFromDomain(p *project.Project) *ProjectModel {
	m := &ProjectModel{
		Code:        p.Code,
		Name:        p.Name,
		CustomerID:  p.CustomerID,
		Budget:      p.Budget,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Status:      p.Status,
		Description: p.Description,
	}
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	return m
}

// AllModels lists every persistence model, in dependency order, for
// AutoMigrate in tests and development.
func AllModels() []any {
	return []any{
		&PartnerModel{},
		&ProductModel{},
		&ProjectModel{},
		&DocumentModel{},
		&DocumentLineModel{},
		&DocumentPaymentModel{},
		&DocumentTVALineModel{},
		&ExpenseModel{},
		&EmployeeModel{},
		&PayslipModel{},
	}
}
