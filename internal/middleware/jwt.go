package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/beasiswa-status-api/internal/models"
	appErrors "github.com/noah-isme/beasiswa-status-api/pkg/errors"
	"github.com/noah-isme/beasiswa-status-api/pkg/logger"
	"github.com/noah-isme/beasiswa-status-api/pkg/response"
)

// ContextAdminKey is the gin context key storing the authenticated administrator.
const ContextAdminKey = "currentAdmin"

type tokenAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*models.AdminInfo, error)
}

// JWT protects routes by requiring a bearer token whose subject is an existing administrator.
func JWT(auth tokenAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing bearer token"))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header"))
			c.Abort()
			return
		}

		admin, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(parts[1]))
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextAdminKey, admin)
		c.Set(logger.SubjectKey, admin.Username)
		c.Next()
	}
}

// CurrentAdmin returns the administrator attached by JWT.
func CurrentAdmin(c *gin.Context) (*models.AdminInfo, bool) {
	value, exists := c.Get(ContextAdminKey)
	if !exists {
		return nil, false
	}
	admin, ok := value.(*models.AdminInfo)
	return admin, ok && admin != nil
}
