package persistence

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/infrastructure/migration"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newPostgresDB starts a PostgreSQL container and applies the embedded
// migrations. Skipped with -short.
func newPostgresDB(t *testing.T) *gorm.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("gestion_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	db, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	migrator, err := migration.New(sqlDB, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	return db
}

func TestPostgres_DocumentLifecycle(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()
	partners := NewGormPartnerRepository(db)
	documents := NewGormDocumentRepository(db)
	calc := fiscal.NewCalculator(fiscal.DefaultSettings())

	customer, err := partner.NewCustomer("C001", "Société Atlas", "")
	require.NoError(t, err)
	require.NoError(t, partners.Save(ctx, customer))

	issue := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	number, err := documents.NextNumber(ctx, document.TypeInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, "FA-2026-0001", number)

	doc, err := document.NewDocument(document.TypeInvoice, number, document.SnapshotOf(customer),
		document.DefaultHeader(document.TypeInvoice, issue),
		[]document.LineInput{
			{Designation: "Maintenance", Quantity: decimal.NewFromInt(2), UnitPriceHT: decimal.NewFromInt(100), TVARate: fiscal.TVA19},
			{Designation: "Pièces", Quantity: decimal.NewFromInt(1), UnitPriceHT: decimal.NewFromInt(50), TVARate: fiscal.TVA7},
		}, calc)
	require.NoError(t, err)
	require.NoError(t, documents.Save(ctx, doc))

	next, err := documents.NextNumber(ctx, document.TypeInvoice, 2026)
	require.NoError(t, err)
	assert.Equal(t, "FA-2026-0002", next)

	// a number allocated twice is refused by the unique index
	clash, err := document.NewDocument(document.TypeInvoice, number, document.SnapshotOf(customer),
		document.DefaultHeader(document.TypeInvoice, issue),
		[]document.LineInput{{Designation: "Audit", Quantity: decimal.NewFromInt(1), UnitPriceHT: decimal.NewFromInt(10), TVARate: fiscal.TVA19}},
		calc)
	require.NoError(t, err)
	assert.ErrorIs(t, documents.Save(ctx, clash), shared.ErrAlreadyExists)

	found, err := documents.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, number, found.Number)
	require.Len(t, found.Lines, 2)
	require.Len(t, found.Totals.TVABreakdown, 2)
	assert.True(t, doc.Totals.TotalTTC.Equal(found.Totals.TotalTTC))

	// a stale version is refused
	err = documents.SaveWithLock(ctx, found, found.Version+1)
	assert.Error(t, err)

	// a customer with documents cannot be removed
	count, err := documents.Count(ctx, document.Filter{PartnerID: &customer.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.NoError(t, documents.Delete(ctx, doc.ID))
	_, err = documents.FindByID(ctx, doc.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
