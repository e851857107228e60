package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

func TestGormDocumentTransactionScope_Commit(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormDocumentTransactionScope(db)
	doc := newTestInvoice(t, "FA-2026-0001", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	err := scope.Execute(ctx, func(repo document.Repository) error {
		return repo.Save(ctx, doc)
	})
	require.NoError(t, err)

	found, err := NewGormDocumentRepository(db).FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "FA-2026-0001", found.Number)
}

func TestGormDocumentTransactionScope_Rollback(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	scope := NewGormDocumentTransactionScope(db)
	doc := newTestInvoice(t, "FA-2026-0002", time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	boom := errors.New("boom")

	err := scope.Execute(ctx, func(repo document.Repository) error {
		if err := repo.Save(ctx, doc); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = NewGormDocumentRepository(db).FindByID(ctx, doc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
