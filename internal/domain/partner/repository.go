package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// Filter narrows partner listings
type Filter struct {
	shared.Filter
	Kind   Kind
	Status Status
}

// Repository defines the interface for partner persistence
type Repository interface {
	// FindByID finds a partner by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Partner, error)

	// FindByCode finds a partner of the given kind by its code
	FindByCode(ctx context.Context, kind Kind, code string) (*Partner, error)

	// FindAll finds all partners matching the filter
	FindAll(ctx context.Context, filter Filter) ([]Partner, error)

	// Count counts partners matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save creates or updates a partner
	Save(ctx context.Context, partner *Partner) error

	// Delete deletes a partner
	Delete(ctx context.Context, id uuid.UUID) error

	// ExistsByCode checks if a partner of the given kind already uses the code
	ExistsByCode(ctx context.Context, kind Kind, code string) (bool, error)
}
