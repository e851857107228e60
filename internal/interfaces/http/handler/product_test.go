package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	catalogapp "github.com/tn-gestion/backend/internal/application/catalog"
	"github.com/tn-gestion/backend/internal/domain/catalog"
	"github.com/tn-gestion/backend/internal/domain/fiscal"
	"github.com/tn-gestion/backend/internal/domain/shared"
	"github.com/tn-gestion/backend/internal/interfaces/http/dto"
)

// MockProductRepository implements catalog.ProductRepository for testing
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByReference(ctx context.Context, reference string) (*catalog.Product, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter catalog.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	args := m.Called(ctx, reference)
	return args.Bool(0), args.Error(1)
}

func setupProductRouter(repo *MockProductRepository) *gin.Engine {
	h := NewProductHandler(catalogapp.NewProductService(repo, nil))
	r := gin.New()
	g := r.Group("/catalog/products")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/deactivate", h.Deactivate)
	return r
}

func newTestProduct(t *testing.T) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("SRV-001", catalog.ProductDetails{
		Designation: "Maintenance annuelle",
		UnitPriceHT: decimal.NewFromInt(100),
		TVARate:     fiscal.TVA19,
	})
	require.NoError(t, err)
	return p
}

func doJSON(r http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestProductHandler_Create(t *testing.T) {
	t.Run("creates product", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByReference", mock.Anything, "SRV-002").Return(false, nil)
		repo.On("Save", mock.Anything, mock.AnythingOfType("*catalog.Product")).Return(nil)

		w := doJSON(setupProductRouter(repo), http.MethodPost, "/catalog/products", map[string]any{
			"reference":     "srv-002",
			"designation":   "Installation réseau",
			"unit_price_ht": "250.000",
			"tva_rate":      19,
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		resp := decodeResponse(t, w)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "SRV-002", data["reference"])
		ttc, err := decimal.NewFromString(data["unit_price_ttc"].(string))
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("297.5").Equal(ttc))
		repo.AssertExpectations(t)
	})

	t.Run("rejects illegal TVA rate before reaching the service", func(t *testing.T) {
		repo := new(MockProductRepository)

		w := doJSON(setupProductRouter(repo), http.MethodPost, "/catalog/products", map[string]any{
			"reference":   "SRV-003",
			"designation": "Audit",
			"tva_rate":    12,
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "tva_rate", resp.Error.Details[0].Field)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate reference", func(t *testing.T) {
		repo := new(MockProductRepository)
		repo.On("ExistsByReference", mock.Anything, "SRV-001").Return(true, nil)

		w := doJSON(setupProductRouter(repo), http.MethodPost, "/catalog/products", map[string]any{
			"reference":   "SRV-001",
			"designation": "Maintenance",
			"tva_rate":    19,
		})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeAlreadyExists, decodeResponse(t, w).Error.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		r := setupProductRouter(new(MockProductRepository))
		req := httptest.NewRequest(http.MethodPost, "/catalog/products", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeInvalidJSON, decodeResponse(t, w).Error.Code)
	})
}

func TestProductHandler_GetByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo := new(MockProductRepository)
		p := newTestProduct(t)
		repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)

		w := doJSON(setupProductRouter(repo), http.MethodGet, "/catalog/products/"+p.ID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, p.ID.String(), decodeResponse(t, w).Data.(map[string]any)["id"])
	})

	t.Run("not found", func(t *testing.T) {
		repo := new(MockProductRepository)
		id := uuid.New()
		repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

		w := doJSON(setupProductRouter(repo), http.MethodGet, "/catalog/products/"+id.String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decodeResponse(t, w).Error.Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockProductRepository)
		id := uuid.New()
		repo.On("FindByID", mock.Anything, id).Return(nil, errors.New("connection reset"))

		w := doJSON(setupProductRouter(repo), http.MethodGet, "/catalog/products/"+id.String(), nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})

	t.Run("invalid id", func(t *testing.T) {
		w := doJSON(setupProductRouter(new(MockProductRepository)), http.MethodGet, "/catalog/products/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProductHandler_List(t *testing.T) {
	repo := new(MockProductRepository)
	products := []catalog.Product{*newTestProduct(t)}
	repo.On("FindAll", mock.Anything, mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return f.Page == 2 && f.PageSize == 10 && f.Status == catalog.ProductStatusActive
	})).Return(products, nil)
	repo.On("Count", mock.Anything, mock.Anything).Return(int64(11), nil)

	w := doJSON(setupProductRouter(repo), http.MethodGet, "/catalog/products?page=2&page_size=10&status=ACTIVE", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(11), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
	assert.Len(t, resp.Data.([]any), 1)

	t.Run("rejects unknown status", func(t *testing.T) {
		w := doJSON(setupProductRouter(new(MockProductRepository)), http.MethodGet, "/catalog/products?status=ARCHIVED", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decodeResponse(t, w).Error.Code)
	})
}

func TestProductHandler_DeleteAndDeactivate(t *testing.T) {
	repo := new(MockProductRepository)
	p := newTestProduct(t)
	repo.On("FindByID", mock.Anything, p.ID).Return(p, nil)
	repo.On("Delete", mock.Anything, p.ID).Return(nil)
	repo.On("Save", mock.Anything, p).Return(nil)
	r := setupProductRouter(repo)

	w := doJSON(r, http.MethodPost, "/catalog/products/"+p.ID.String()+"/deactivate", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "INACTIVE", decodeResponse(t, w).Data.(map[string]any)["status"])

	w = doJSON(r, http.MethodDelete, "/catalog/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}
