package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDatabase_PingAndClose(t *testing.T) {
	db := &Database{DB: newSQLiteDB(t)}

	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())
	assert.Error(t, db.Ping(context.Background()))
}

func TestDatabase_Stats(t *testing.T) {
	db := &Database{DB: newSQLiteDB(t)}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)
	assert.Equal(t, stats.InUse+stats.Idle, stats.OpenConnections)
}

func TestDatabase_Transaction(t *testing.T) {
	ctx := context.Background()
	db := &Database{DB: newSQLiteDB(t)}
	require.NoError(t, db.DB.Exec("CREATE TABLE counters (name TEXT PRIMARY KEY, value INTEGER)").Error)

	t.Run("commits on success", func(t *testing.T) {
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			return tx.Exec("INSERT INTO counters (name, value) VALUES (?, ?)", "ok", 1).Error
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.DB.Table("counters").Where("name = ?", "ok").Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := db.Transaction(ctx, func(tx *gorm.DB) error {
			if err := tx.Exec("INSERT INTO counters (name, value) VALUES (?, ?)", "ko", 1).Error; err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		var count int64
		require.NoError(t, db.DB.Table("counters").Where("name = ?", "ko").Count(&count).Error)
		assert.Zero(t, count)
	})
}

func TestDatabase_AutoMigrate(t *testing.T) {
	db := &Database{DB: newSQLiteDB(t)}
	require.NoError(t, db.AutoMigrate())

	for _, table := range []string{"partners", "products", "documents", "document_lines", "document_payments",
		"document_tva_lines", "expenses", "employees", "payslips", "projects"} {
		assert.True(t, db.DB.Migrator().HasTable(table), table)
	}
}
