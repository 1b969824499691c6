package middleware

import (
	"net/http"
	"strings"

	"github.com/condoerp/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Keys used to store company information in gin.Context
const (
	CompanyIDKey     = "company_id"
	CompanyHeaderKey = "X-Company-ID"
)

// CompanyValidator checks that a company exists and is active
type CompanyValidator interface {
	ValidateCompany(companyID string) error
}

// CompanyMiddlewareConfig holds configuration for company middleware
type CompanyMiddlewareConfig struct {
	// HeaderEnabled enables X-Company-ID header extraction
	HeaderEnabled bool
	// DefaultCompanyID is used when the header is absent. Useful for
	// single-company deployments where clients never send the header.
	DefaultCompanyID string
	// SkipPaths are paths that don't require company context (e.g. health check)
	SkipPaths []string
	// Required determines if company context is mandatory
	Required bool
	// Validator is an optional validator to check if the company exists
	Validator CompanyValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultCompanyConfig returns default company middleware configuration
func DefaultCompanyConfig() CompanyMiddlewareConfig {
	return CompanyMiddlewareConfig{
		HeaderEnabled:    true,
		DefaultCompanyID: "",
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/api/v1/health"},
		Required:         true,
		Validator:        nil,
		Logger:           nil,
	}
}

// CompanyMiddleware extracts company information from the request
func CompanyMiddleware() gin.HandlerFunc {
	return CompanyMiddlewareWithConfig(DefaultCompanyConfig())
}

// CompanyMiddlewareWithConfig returns company middleware with custom configuration.
// Extraction order: X-Company-ID header > configured default.
func CompanyMiddlewareWithConfig(cfg CompanyMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var companyID string

		if cfg.HeaderEnabled {
			if headerCompanyID := c.GetHeader(CompanyHeaderKey); headerCompanyID != "" {
				companyID = headerCompanyID
			}
		}

		if companyID == "" && cfg.DefaultCompanyID != "" {
			companyID = cfg.DefaultCompanyID
		}

		if companyID != "" {
			if _, err := uuid.Parse(companyID); err != nil {
				respondCompanyRequired(c, "Invalid company ID format")
				return
			}
		}

		if companyID == "" && cfg.Required {
			respondCompanyRequired(c, "Company identification required")
			return
		}

		if companyID != "" && cfg.Validator != nil {
			if err := cfg.Validator.ValidateCompany(companyID); err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Company validation failed",
					zap.String("company_id", companyID),
					zap.Error(err),
				)
				respondCompanyRequired(c, "Invalid or inactive company")
				return
			}
		}

		if companyID != "" {
			c.Set(CompanyIDKey, companyID)

			// Set in request context so service layer logs carry the company
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithCompanyID(ctx, log, companyID)
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}

// respondCompanyRequired sends an unauthorized response
func respondCompanyRequired(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetCompanyID retrieves the company ID from gin.Context
func GetCompanyID(c *gin.Context) string {
	if companyID, exists := c.Get(CompanyIDKey); exists {
		if id, ok := companyID.(string); ok {
			return id
		}
	}
	return ""
}
