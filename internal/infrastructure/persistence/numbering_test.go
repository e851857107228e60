package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestHighestSequence(t *testing.T) {
	assert.Equal(t, 0, highestSequence(nil))
	assert.Equal(t, 42, highestSequence([]string{"FA-2026-0007", "FA-2026-0042", "FA-2026-0009"}))
	assert.Equal(t, 3, highestSequence([]string{"DEP-202603-00003", "DEP-202603-draft", "broken"}))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(fmt.Errorf("save: %w", &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "idx_documents_number",
	})))

	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("connection reset")))
	assert.False(t, isUniqueViolation(nil))
}
