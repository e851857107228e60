package project

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/project"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// ProjectService handles project-related business operations
type ProjectService struct {
	repo     project.Repository
	partners partner.Repository
	now      func() time.Time
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo project.Repository, partners partner.Repository) *ProjectService {
	return &ProjectService{
		repo:     repo,
		partners: partners,
		now:      time.Now,
	}
}

// Create creates a planned project
func (s *ProjectService) Create(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	exists, err := s.repo.ExistsByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to check project code: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("Project with code %s already exists", code))
	}
	if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}

	p, err := project.NewProject(code, project.Details{
		Name:        req.Name,
		CustomerID:  req.CustomerID,
		Budget:      req.Budget,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// GetByID retrieves a project by ID
func (s *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// List retrieves a paginated list of projects
func (s *ProjectService) List(ctx context.Context, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	if filter.OrderBy == "" {
		filter.OrderBy = "start_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := project.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  filter.OrderBy,
			OrderDir: filter.OrderDir,
			Search:   filter.Search,
		}.Normalize(),
		Status: project.Status(filter.Status),
	}
	if filter.CustomerID != "" {
		id, err := uuid.Parse(filter.CustomerID)
		if err != nil {
			return nil, 0, shared.NewDomainError(shared.CodeInvalidInput, "customer_id must be a valid UUID")
		}
		domainFilter.CustomerID = &id
	}

	projects, err := s.repo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	total, err := s.repo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = ToProjectResponse(&projects[i])
	}
	return responses, total, nil
}

// Update updates an open project
func (s *ProjectService) Update(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	details := project.Details{
		Name:        p.Name,
		CustomerID:  p.CustomerID,
		Budget:      p.Budget,
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		Description: p.Description,
	}
	if req.Name != nil {
		details.Name = *req.Name
	}
	if req.CustomerID != nil {
		if err := s.checkCustomer(ctx, req.CustomerID); err != nil {
			return nil, err
		}
		details.CustomerID = req.CustomerID
	}
	if req.Budget != nil {
		details.Budget = *req.Budget
	}
	if req.StartDate != nil {
		details.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		details.EndDate = req.EndDate
	}
	if req.Description != nil {
		details.Description = *req.Description
	}

	if err := p.Update(details); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	response := ToProjectResponse(p)
	return &response, nil
}

// Delete deletes a planned or cancelled project. Linked documents and
// expenses are detached.
func (s *ProjectService) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if p.Status == project.StatusActive || p.Status == project.StatusCompleted {
		return shared.NewInvalidStateError("Cannot delete project in %s status", p.Status)
	}
	if err := s.repo.Delete(ctx, p.ID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return nil
}

// Start moves a planned project to active
func (s *ProjectService) Start(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	return s.transition(ctx, id, (*project.Project).Start)
}

// Complete closes an active project, today unless an end date is given
func (s *ProjectService) Complete(ctx context.Context, id uuid.UUID, req CompleteProjectRequest) (*ProjectResponse, error) {
	endDate := s.now()
	if req.EndDate != nil {
		endDate = *req.EndDate
	}
	return s.transition(ctx, id, func(p *project.Project) error {
		return p.Complete(endDate)
	})
}

// Cancel cancels an open project
func (s *ProjectService) Cancel(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	return s.transition(ctx, id, (*project.Project).Cancel)
}

func (s *ProjectService) transition(ctx context.Context, id uuid.UUID, apply func(*project.Project) error) (*ProjectResponse, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save project: %w", err)
	}
	response := ToProjectResponse(p)
	return &response, nil
}

func (s *ProjectService) checkCustomer(ctx context.Context, customerID *uuid.UUID) error {
	if customerID == nil {
		return nil
	}
	customer, err := s.partners.FindByID(ctx, *customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewNotFoundError("Customer")
		}
		return fmt.Errorf("failed to get customer: %w", err)
	}
	if !customer.IsCustomer() {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Partner %s is not a customer", customer.Code))
	}
	return nil
}

func (s *ProjectService) find(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("Project")
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}
