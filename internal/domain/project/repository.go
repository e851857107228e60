package project

import (
	"context"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// Filter narrows project listings
type Filter struct {
	shared.Filter
	Status     Status
	CustomerID *uuid.UUID
}

// Repository defines the interface for project persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter Filter) ([]Project, error)
	Count(ctx context.Context, filter Filter) (int64, error)
	Save(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	ExistsByCode(ctx context.Context, code string) (bool, error)
}
