package router

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/interfaces/http/handler"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.BasePath())
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.BasePath())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("test", "/test")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/test/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestDomainGroup(t *testing.T) {
	t.Run("name and prefix", func(t *testing.T) {
		g := NewDomainGroup("catalog", "/catalog")
		assert.Equal(t, "catalog", g.Name())
		assert.Equal(t, "/catalog", g.Prefix())
	})

	t.Run("registers every method", func(t *testing.T) {
		engine := gin.New()
		ok := func(c *gin.Context) { c.String(http.StatusOK, c.Request.Method) }
		g := NewDomainGroup("test", "/test").
			GET("/items", ok).
			POST("/items", ok).
			PUT("/items/:id", ok).
			PATCH("/items/:id", ok).
			DELETE("/items/:id", ok)
		g.RegisterRoutes(engine.Group("/api/v1"))

		for _, tc := range []struct{ method, path string }{
			{http.MethodGet, "/api/v1/test/items"},
			{http.MethodPost, "/api/v1/test/items"},
			{http.MethodPut, "/api/v1/test/items/1"},
			{http.MethodPatch, "/api/v1/test/items/1"},
			{http.MethodDelete, "/api/v1/test/items/1"},
		} {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tc.method, tc.path, nil))
			assert.Equal(t, http.StatusOK, w.Code, tc.method)
			assert.Equal(t, tc.method, w.Body.String())
		}
	})

	t.Run("group middleware and subgroups", func(t *testing.T) {
		engine := gin.New()
		g := NewDomainGroup("finance", "/finance").Use(func(c *gin.Context) {
			c.Header("X-Group", "finance")
			c.Next()
		})
		g.Group("expenses", "/expenses").GET("", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		g.RegisterRoutes(engine.Group("/api/v1"))

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/finance/expenses", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "finance", w.Header().Get("X-Group"))
		assert.Equal(t, 1, g.RouteCount())
	})
}

func TestRegisterAPI(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	groups := RegisterAPI(r, Handlers{
		Customers: handler.NewPartnerHandler(nil),
		Suppliers: handler.NewPartnerHandler(nil),
		Products:  handler.NewProductHandler(nil),
		Documents: handler.NewDocumentHandler(nil, nil),
		Tools:     handler.NewToolsHandler(nil),
		Expenses:  handler.NewExpenseHandler(nil),
		HR:        handler.NewHRHandler(nil, nil),
		Projects:  handler.NewProjectHandler(nil),
		Reports:   handler.NewReportHandler(nil),
		System:    handler.NewSystemHandler("test", nil),
	})
	r.Setup()
	RegisterRoot(engine, handler.NewSystemHandler("test", nil), http.NotFoundHandler(), "")

	require.Len(t, groups, 9)

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	expected := []string{
		"GET /health",
		"GET /metrics",
		"GET /api/v1/partners/customers",
		"POST /api/v1/partners/suppliers/:id/deactivate",
		"PUT /api/v1/catalog/products/:id",
		"POST /api/v1/documents/:id/validate",
		"POST /api/v1/documents/:id/convert",
		"POST /api/v1/documents/:id/payments",
		"POST /api/v1/documents/:id/print",
		"GET /api/v1/documents/:id/pdf",
		"GET /api/v1/documents/:id/preview",
		"GET /api/v1/tools/amount-in-words",
		"POST /api/v1/tools/totals",
		"POST /api/v1/finance/expenses/:id/pay",
		"DELETE /api/v1/hr/employees/:id",
		"GET /api/v1/hr/payslips/rates",
		"POST /api/v1/hr/payslips/:id/pay",
		"POST /api/v1/projects/:id/complete",
		"GET /api/v1/reports/tva",
		"GET /api/v1/reports/projects/:id/profitability",
		"GET /api/v1/system/info",
	}
	var missing []string
	for _, route := range expected {
		if !registered[route] {
			missing = append(missing, route)
		}
	}
	sort.Strings(missing)
	assert.Empty(t, missing)
}

func TestRegisterRoot_WithoutMetrics(t *testing.T) {
	engine := gin.New()
	RegisterRoot(engine, handler.NewSystemHandler("test", nil), nil, "")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
