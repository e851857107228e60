// Package project groups documents and expenses under customer projects so
// their profitability can be reported.
package project

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/domain/shared/valueobject"
)

// Status represents the status of a project
type Status string

const (
	StatusPlanned   Status = "PLANNED"
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is a valid Status
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if the project is closed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Details are the editable fields of a project
type Details struct {
	Name        string
	CustomerID  *uuid.UUID
	Budget      decimal.Decimal
	StartDate   time.Time
	EndDate     *time.Time
	Description string
}

// Project is a customer engagement that documents and expenses can be attached to
type Project struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	CustomerID  *uuid.UUID
	Budget      decimal.Decimal
	StartDate   time.Time
	EndDate     *time.Time
	Status      Status
	Description string
}

// NewProject creates a planned project
func NewProject(code string, details Details) (*Project, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Project code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewDomainError("INVALID_CODE", "Project code cannot exceed 50 characters")
	}
	p := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Status:            StatusPlanned,
	}
	if err := p.apply(details); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces the editable fields of an open project
func (p *Project) Update(details Details) error {
	if p.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot update project in %s status", p.Status)
	}
	if err := p.apply(details); err != nil {
		return err
	}
	p.IncrementVersion()
	return nil
}

func (p *Project) apply(d Details) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Project name cannot exceed 200 characters")
	}
	if d.Budget.IsNegative() {
		return shared.NewDomainError("INVALID_BUDGET", "Budget cannot be negative")
	}
	if d.StartDate.IsZero() {
		return shared.NewDomainError("INVALID_DATE", "Start date is required")
	}
	if d.EndDate != nil && d.EndDate.Before(d.StartDate) {
		return shared.NewDomainError("INVALID_DATE", "End date cannot be before the start date")
	}

	p.Name = name
	p.CustomerID = d.CustomerID
	p.Budget = valueobject.RoundMillimes(d.Budget)
	p.StartDate = d.StartDate
	p.EndDate = d.EndDate
	p.Description = strings.TrimSpace(d.Description)
	return nil
}

// Start moves a planned project to active
func (p *Project) Start() error {
	if p.Status != StatusPlanned {
		return shared.NewInvalidStateError("Cannot start project in %s status", p.Status)
	}
	p.Status = StatusActive
	p.IncrementVersion()
	return nil
}

// Complete closes an active project. The end date defaults to now.
func (p *Project) Complete(endDate time.Time) error {
	if p.Status != StatusActive {
		return shared.NewInvalidStateError("Cannot complete project in %s status", p.Status)
	}
	if endDate.IsZero() {
		endDate = time.Now()
	}
	if endDate.Before(p.StartDate) {
		return shared.NewDomainError("INVALID_DATE", "End date cannot be before the start date")
	}
	p.Status = StatusCompleted
	p.EndDate = &endDate
	p.IncrementVersion()
	return nil
}

// Cancel cancels a project that is not closed yet
func (p *Project) Cancel() error {
	if p.Status.IsTerminal() {
		return shared.NewInvalidStateError("Cannot cancel project in %s status", p.Status)
	}
	p.Status = StatusCancelled
	p.IncrementVersion()
	return nil
}
