package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func setupCompanyRouter(cfg CompanyMiddlewareConfig) (*gin.Engine, *string) {
	gin.SetMode(gin.TestMode)
	var captured string
	r := gin.New()
	r.Use(CompanyMiddlewareWithConfig(cfg))
	r.GET("/api/v1/contracts", func(c *gin.Context) {
		captured = GetCompanyID(c)
		c.Status(http.StatusOK)
	})
	r.GET("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r, &captured
}

func TestCompanyMiddleware_HeaderExtraction(t *testing.T) {
	companyID := uuid.New().String()
	r, captured := setupCompanyRouter(DefaultCompanyConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set(CompanyHeaderKey, companyID)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, companyID, *captured)
}

func TestCompanyMiddleware_MissingCompanyRejected(t *testing.T) {
	r, _ := setupCompanyRouter(DefaultCompanyConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Company identification required")
}

func TestCompanyMiddleware_InvalidFormatRejected(t *testing.T) {
	r, _ := setupCompanyRouter(DefaultCompanyConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set(CompanyHeaderKey, "not-a-uuid")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid company ID format")
}

func TestCompanyMiddleware_DefaultCompanyFallback(t *testing.T) {
	defaultID := uuid.New().String()
	cfg := DefaultCompanyConfig()
	cfg.DefaultCompanyID = defaultID
	r, captured := setupCompanyRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, defaultID, *captured)
}

func TestCompanyMiddleware_HeaderOverridesDefault(t *testing.T) {
	headerID := uuid.New().String()
	cfg := DefaultCompanyConfig()
	cfg.DefaultCompanyID = uuid.New().String()
	r, captured := setupCompanyRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set(CompanyHeaderKey, headerID)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, headerID, *captured)
}

func TestCompanyMiddleware_SkipPaths(t *testing.T) {
	r, _ := setupCompanyRouter(DefaultCompanyConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

type stubCompanyValidator struct {
	err error
}

func (v *stubCompanyValidator) ValidateCompany(companyID string) error {
	return v.err
}

func TestCompanyMiddleware_ValidatorRejects(t *testing.T) {
	cfg := DefaultCompanyConfig()
	cfg.Validator = &stubCompanyValidator{err: errors.New("company suspended")}
	r, _ := setupCompanyRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	req.Header.Set(CompanyHeaderKey, uuid.New().String())
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or inactive company")
}

func TestCompanyMiddleware_NotRequired(t *testing.T) {
	cfg := DefaultCompanyConfig()
	cfg.Required = false
	r, captured := setupCompanyRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/contracts", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", *captured)
}
