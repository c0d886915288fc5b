package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/phoneshop/backend/internal/infrastructure/logger"
	"github.com/phoneshop/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantConfig holds configuration for tenant middleware
type TenantConfig struct {
	// SkipPaths are paths that don't require tenant context (e.g., health check)
	SkipPaths []string
	Logger    *zap.Logger
}

// DefaultTenantConfig returns default tenant middleware configuration
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/api/v1/health"},
	}
}

// Tenant requires a UUID X-Tenant-ID header on every request outside SkipPaths
// and stores the parsed tenant in the gin and request contexts.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		raw := strings.TrimSpace(c.GetHeader(TenantHeaderKey))
		if raw == "" {
			abortTenant(c, "X-Tenant-ID header is required")
			return
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil || tenantID == uuid.Nil {
			log.Debug("Rejected tenant header", zap.String("value", truncate(raw, 64)))
			abortTenant(c, "X-Tenant-ID must be a valid UUID")
			return
		}

		c.Set(TenantIDKey, tenantID)

		ctx := c.Request.Context()
		reqLog := logger.FromContext(ctx, log).With(zap.String("tenant_id", tenantID.String()))
		c.Request = c.Request.WithContext(logger.WithContext(ctx, reqLog))

		c.Next()
	}
}

// GetTenantID returns the tenant stored by Tenant
func GetTenantID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(TenantIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func abortTenant(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
		dto.ErrCodeMissingTenant,
		message,
		GetRequestID(c),
	))
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
