package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/catalog"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"gorm.io/gorm"
)

func TestGormPartnerRepository_FindByID(t *testing.T) {
	t.Run("finds existing partner", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPartnerRepository(db)

		id := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "kind", "code", "name", "matricule_fiscal", "status", "version"}).
			AddRow(id, "CUSTOMER", "C001", "Société Atlas", "1234567A/M/A/000", "ACTIVE", 1)
		mock.ExpectQuery(`SELECT \* FROM "partners" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnRows(rows)

		p, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, partner.KindCustomer, p.Kind)
		assert.Equal(t, "Société Atlas", p.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrNotFound for unknown partner", func(t *testing.T) {
		db, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		repo := NewGormPartnerRepository(db)

		id := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "partners" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(id, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		p, err := repo.FindByID(context.Background(), id)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPartnerRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormPartnerRepository(newSQLiteDB(t))

	customer, err := partner.NewCustomer("c001", "Société Atlas", "")
	require.NoError(t, err)
	supplier, err := partner.NewSupplier("C001", "Atlas Fournitures", "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, customer))
	require.NoError(t, repo.Save(ctx, supplier))

	found, err := repo.FindByCode(ctx, partner.KindSupplier, "c001")
	require.NoError(t, err)
	assert.Equal(t, supplier.ID, found.ID)

	exists, err := repo.ExistsByCode(ctx, partner.KindCustomer, "C001")
	require.NoError(t, err)
	assert.True(t, exists)

	list, err := repo.FindAll(ctx, partner.Filter{Filter: shared.Filter{Search: "atlas"}, Kind: partner.KindCustomer})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, customer.ID, list[0].ID)

	count, err := repo.Count(ctx, partner.Filter{Filter: shared.Filter{Search: "atlas"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	require.NoError(t, repo.Delete(ctx, customer.ID))
	assert.ErrorIs(t, repo.Delete(ctx, customer.ID), shared.ErrNotFound)
}

func TestGormProductRepository_SQLite(t *testing.T) {
	ctx := context.Background()
	repo := NewGormProductRepository(newSQLiteDB(t))

	p, err := catalog.NewProduct("ref-100", catalog.ProductDetails{
		Designation: "Câble réseau Cat6",
		Unit:        "m",
		UnitPriceHT: decimal.RequireFromString("1.250"),
		TVARate:     fiscal.TVA19,
		FODEC:       true,
	})
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, p))

	found, err := repo.FindByReference(ctx, "REF-100")
	require.NoError(t, err)
	assert.Equal(t, fiscal.TVA19, found.TVARate)
	assert.True(t, found.FODEC)
	assert.True(t, decimal.RequireFromString("1.25").Equal(found.UnitPriceHT))

	exists, err := repo.ExistsByReference(ctx, "ref-100")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, p.Deactivate())
	require.NoError(t, repo.Save(ctx, p))
	count, err := repo.Count(ctx, catalog.ProductFilter{Status: catalog.ProductStatusActive})
	require.NoError(t, err)
	assert.Zero(t, count)
}
