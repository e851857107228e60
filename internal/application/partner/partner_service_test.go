package partner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/domain/document"
	"github.com/tn-gestion/backend/internal/domain/partner"
	"github.com/tn-gestion/backend/internal/domain/shared"
)

// MockPartnerRepository is a mock implementation of partner.Repository
type MockPartnerRepository struct {
	mock.Mock
}

func (m *MockPartnerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Partner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindByCode(ctx context.Context, kind partner.Kind, code string) (*partner.Partner, error) {
	args := m.Called(ctx, kind, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) FindAll(ctx context.Context, filter partner.Filter) ([]partner.Partner, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Partner), args.Error(1)
}

func (m *MockPartnerRepository) Count(ctx context.Context, filter partner.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPartnerRepository) Save(ctx context.Context, p *partner.Partner) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPartnerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPartnerRepository) ExistsByCode(ctx context.Context, kind partner.Kind, code string) (bool, error) {
	args := m.Called(ctx, kind, code)
	return args.Bool(0), args.Error(1)
}

// MockDocumentCounter is a mock implementation of DocumentCounter
type MockDocumentCounter struct {
	mock.Mock
}

func (m *MockDocumentCounter) Count(ctx context.Context, filter document.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func newTestCustomer(t *testing.T) *partner.Partner {
	t.Helper()
	p, err := partner.NewCustomer("C001", "Société Carthage", "1234567A/A/M/000")
	require.NoError(t, err)
	return p
}

func TestPartnerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewCustomerService(repo, nil)

		repo.On("ExistsByCode", ctx, partner.KindCustomer, "C001").Return(false, nil)
		repo.On("Save", ctx, mock.AnythingOfType("*partner.Partner")).Return(nil)

		resp, err := svc.Create(ctx, CreatePartnerRequest{
			Code:            "c001",
			Name:            "Société Carthage",
			MatriculeFiscal: "1234567aam000",
			City:            "Sfax",
			Email:           "contact@carthage.tn",
		})
		require.NoError(t, err)
		assert.Equal(t, "C001", resp.Code)
		assert.Equal(t, "CUSTOMER", resp.Kind)
		assert.Equal(t, "ACTIVE", resp.Status)
		assert.Equal(t, "1234567A/A/M/000", resp.MatriculeFiscal)
		assert.Equal(t, "Sfax", resp.City)
		assert.Equal(t, 1, resp.Version)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate code", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewSupplierService(repo, nil)

		repo.On("ExistsByCode", ctx, partner.KindSupplier, "F001").Return(true, nil)

		_, err := svc.Create(ctx, CreatePartnerRequest{Code: "F001", Name: "Fournisseur"})
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		assert.Contains(t, err.Error(), "Supplier")
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("invalid matricule", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewCustomerService(repo, nil)

		repo.On("ExistsByCode", ctx, partner.KindCustomer, "C002").Return(false, nil)

		_, err := svc.Create(ctx, CreatePartnerRequest{Code: "C002", Name: "X", MatriculeFiscal: "1234567I/A/M/000"})
		require.Error(t, err)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("repository error is wrapped", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewCustomerService(repo, nil)

		repo.On("ExistsByCode", ctx, partner.KindCustomer, "C003").Return(false, errors.New("db down"))

		_, err := svc.Create(ctx, CreatePartnerRequest{Code: "C003", Name: "X"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to check code")
	})
}

func TestPartnerService_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewCustomerService(repo, nil)
		p := newTestCustomer(t)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		resp, err := svc.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, p.ID, resp.ID)
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewCustomerService(repo, nil)
		id := uuid.New()

		repo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.GetByID(ctx, id)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, "Customer not found", err.Error())
	})

	t.Run("other kind is hidden", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		svc := NewSupplierService(repo, nil)
		p := newTestCustomer(t)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.GetByID(ctx, p.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestPartnerService_List(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepository)
	svc := NewCustomerService(repo, nil)
	p := newTestCustomer(t)

	expected := partner.Filter{
		Filter: shared.Filter{Page: 1, PageSize: 20, OrderBy: "code", OrderDir: "asc", Search: "carth"},
		Kind:   partner.KindCustomer,
		Status: partner.StatusActive,
	}
	repo.On("FindAll", ctx, expected).Return([]partner.Partner{*p}, nil)
	repo.On("Count", ctx, expected).Return(int64(1), nil)

	items, total, err := svc.List(ctx, PartnerListFilter{Search: "carth", Status: "ACTIVE"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "C001", items[0].Code)
	repo.AssertExpectations(t)
}

func TestPartnerService_Update(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepository)
	svc := NewCustomerService(repo, nil)
	p := newTestCustomer(t)
	p.City = "Sfax"

	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("Save", ctx, p).Return(nil)

	name := "Carthage Distribution"
	phone := "+216 71 000 000"
	resp, err := svc.Update(ctx, p.ID, UpdatePartnerRequest{Name: &name, Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, name, resp.Name)
	assert.Equal(t, phone, resp.Phone)
	assert.Equal(t, "Sfax", resp.City)
	assert.Equal(t, "1234567A/A/M/000", resp.MatriculeFiscal)
	assert.Equal(t, 2, resp.Version)
}

func TestPartnerService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes unused partner", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		docs := new(MockDocumentCounter)
		svc := NewCustomerService(repo, docs)
		p := newTestCustomer(t)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		docs.On("Count", ctx, document.Filter{PartnerID: &p.ID}).Return(int64(0), nil)
		repo.On("Delete", ctx, p.ID).Return(nil)

		require.NoError(t, svc.Delete(ctx, p.ID))
		repo.AssertExpectations(t)
	})

	t.Run("refuses partner with documents", func(t *testing.T) {
		repo := new(MockPartnerRepository)
		docs := new(MockDocumentCounter)
		svc := NewCustomerService(repo, docs)
		p := newTestCustomer(t)

		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		docs.On("Count", ctx, mock.AnythingOfType("document.Filter")).Return(int64(3), nil)

		err := svc.Delete(ctx, p.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestPartnerService_ActivateDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := new(MockPartnerRepository)
	svc := NewCustomerService(repo, nil)
	p := newTestCustomer(t)

	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("Save", ctx, p).Return(nil)

	_, err := svc.Activate(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	resp, err := svc.Deactivate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", resp.Status)

	resp, err = svc.Activate(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resp.Status)
	repo.AssertNumberOfCalls(t, "Save", 2)
}
