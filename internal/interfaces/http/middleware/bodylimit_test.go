package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tn-gestion/backend/internal/interfaces/http/dto"
)

// newBodyLimitRouter mounts a partner-creation style endpoint behind the
// request ID and body limit middleware
func newBodyLimitRouter(limit int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID(), BodyLimit(limit))
	router.POST("/api/v1/partners", func(c *gin.Context) {
		var req struct {
			Code string `json:"code"`
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			if IsBodyTooLarge(err) {
				AbortBodyTooLarge(c)
				return
			}
			c.JSON(http.StatusBadRequest, dto.NewErrorResponse(dto.ErrCodeInvalidJSON, err.Error()))
			return
		}
		c.JSON(http.StatusCreated, dto.NewSuccessResponse(req))
	})
	return router
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBodyLimit(t *testing.T) {
	oversized := `{"code":"C001","name":"` + strings.Repeat("Société Atlas ", 20) + `"}`

	t.Run("passes a partner payload under the limit", func(t *testing.T) {
		router := newBodyLimitRouter(1024)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/partners", strings.NewReader(`{"code":"C001","name":"Atlas"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.True(t, decodeEnvelope(t, w).Success)
	})

	t.Run("refuses a declared oversized body with the request id", func(t *testing.T) {
		router := newBodyLimitRouter(128)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/partners", strings.NewReader(oversized))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-413")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeEnvelope(t, w)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
		assert.Equal(t, "req-413", resp.Error.RequestID)
		assert.Equal(t, "req-413", w.Header().Get(RequestIDHeader))
	})

	t.Run("cuts a chunked body while binding", func(t *testing.T) {
		router := newBodyLimitRouter(128)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/partners", strings.NewReader(oversized))
		req.Header.Set("Content-Type", "application/json")
		req.ContentLength = -1
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		resp := decodeEnvelope(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeRequestTooLarge, resp.Error.Code)
		assert.Equal(t, w.Header().Get(RequestIDHeader), resp.Error.RequestID)
		assert.NotEmpty(t, resp.Error.RequestID)
	})

	t.Run("leaves bodyless reads alone", func(t *testing.T) {
		router := newBodyLimitRouter(8)
		router.GET("/api/v1/partners", func(c *gin.Context) {
			c.JSON(http.StatusOK, dto.NewSuccessResponse([]string{}))
		})

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/partners", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
