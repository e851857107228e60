package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// Filter narrows document listings
type Filter struct {
	shared.Filter
	Type      Type
	Status    Status
	PartnerID *uuid.UUID
	ProjectID *uuid.UUID
	SourceID  *uuid.UUID // conversion origin
	From      *time.Time // issue date, inclusive
	To        *time.Time // issue date, inclusive
}

// Repository defines the interface for document persistence
type Repository interface {
	// FindByID finds a document with its lines and payments
	FindByID(ctx context.Context, id uuid.UUID) (*Document, error)

	// FindByNumber finds a document by its number
	FindByNumber(ctx context.Context, number string) (*Document, error)

	// FindAll finds documents matching the filter, without lines and payments
	FindAll(ctx context.Context, filter Filter) ([]Document, error)

	// Count counts documents matching the filter
	Count(ctx context.Context, filter Filter) (int64, error)

	// Save creates or updates a document, replacing its lines and payments
	// in one transaction
	Save(ctx context.Context, doc *Document) error

	// SaveWithLock saves a document only if its stored version still is
	// loadedVersion, the version it had when it was read
	SaveWithLock(ctx context.Context, doc *Document, loadedVersion int) error

	// Delete deletes a document with its lines and payments
	Delete(ctx context.Context, id uuid.UUID) error

	// NextNumber returns the next free number for a type and year
	NextNumber(ctx context.Context, docType Type, year int) (string, error)
}
