package persistence

import (
	"context"

	"github.com/tn-gestion/backend/internal/domain/document"
	"gorm.io/gorm"
)

// GormDocumentTransactionScope runs document work inside one database
// transaction. Conversions use it to save the source and the new document
// together.
type GormDocumentTransactionScope struct {
	db *gorm.DB
}

// NewGormDocumentTransactionScope creates a new GormDocumentTransactionScope
func NewGormDocumentTransactionScope(db *gorm.DB) *GormDocumentTransactionScope {
	return &GormDocumentTransactionScope{db: db}
}

// Execute runs fn with a document repository bound to a transaction. The
// transaction is rolled back when fn returns an error.
func (s *GormDocumentTransactionScope) Execute(ctx context.Context, fn func(repo document.Repository) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormDocumentRepository(tx))
	})
}
