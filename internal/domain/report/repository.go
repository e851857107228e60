package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tn-gestion/backend/internal/domain/document"
)

// DocumentQuery selects the validated documents of one type
type DocumentQuery struct {
	Type      document.Type
	From      *time.Time
	To        *time.Time
	ProjectID *uuid.UUID
}

// Repository runs the aggregate queries the reports are built from
type Repository interface {
	// SumDocuments sums the totals of validated documents
	SumDocuments(ctx context.Context, q DocumentQuery) (DocumentSums, error)

	// SumTVAByRate sums the TVA breakdown of validated documents per rate
	SumTVAByRate(ctx context.Context, q DocumentQuery) ([]TVASum, error)
}
