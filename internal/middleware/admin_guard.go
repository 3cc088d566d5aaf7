package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"authgate/internal/model"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

// Headers a fronting proxy uses to assert an operator session.
const (
	HeaderAdminUserID = "X-Admin-User-Id"
	HeaderAdminEmail  = "X-Admin-Email"
)

// Gin context keys.
const (
	ContextSellerID = "sellerID"
	ContextAdminID  = "adminID"
)

// TrustedHeaderSession attaches an operator session asserted by the upstream proxy.
// Mount it only when that proxy strips these headers from client requests.
func TrustedHeaderSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderAdminUserID))
		if userID != "" {
			admin := principal.Admin{
				UserID:        userID,
				Email:         strings.TrimSpace(c.GetHeader(HeaderAdminEmail)),
				Authenticated: true,
				Source:        principal.SourceSession,
			}
			c.Request = c.Request.WithContext(principal.WithAdmin(c.Request.Context(), admin))
		}
		c.Next()
	}
}

// AdminGuard admits an authenticated operator session, or a request bearing staticSecret.
// An empty staticSecret disables the bearer path.
func AdminGuard(staticSecret string) gin.HandlerFunc {
	secret := []byte(staticSecret)
	return func(c *gin.Context) {
		if admin, ok := principal.AdminFrom(c.Request.Context()); ok && admin.Authenticated {
			c.Set(ContextAdminID, admin.AuditID())
			c.Next()
			return
		}

		if len(secret) > 0 {
			presented := []byte(BearerToken(c.GetHeader("Authorization")))
			if len(presented) > 0 && subtle.ConstantTimeCompare(presented, secret) == 1 {
				admin := principal.Admin{Authenticated: true, Source: principal.SourceStaticBearer}
				c.Request = c.Request.WithContext(principal.WithAdmin(c.Request.Context(), admin))
				c.Set(ContextAdminID, admin.AuditID())
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "admin authentication required"))
	}
}

// AdminRoleLookup returns the roles a user holds, one entry per assignment.
type AdminRoleLookup interface {
	GetRolesForUser(ctx context.Context, userID string) ([]model.AdminRole, error)
}

// RequireAdminPermission runs after AdminGuard. Session operators must hold code through their
// roles, scoped by the domain_id query parameter when present. Superusers always pass.
func RequireAdminPermission(roles AdminRoleLookup, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		admin, ok := principal.AdminFrom(c.Request.Context())
		if !ok || !admin.Authenticated {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "admin authentication required"))
			return
		}
		if admin.IsSuperuser() {
			c.Next()
			return
		}

		held, err := roles.GetRolesForUser(c.Request.Context(), admin.UserID)
		if err != nil {
			slog.ErrorContext(c.Request.Context(), "resolve admin permissions", "user_id", admin.UserID, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "failed to verify permissions"))
			return
		}
		if !permission.ForAdmin(held, c.Query("domain_id")).Allows(code) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "access denied: missing permission '"+code+"'"))
			return
		}
		c.Next()
	}
}
