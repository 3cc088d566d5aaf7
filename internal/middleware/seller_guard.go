package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"authgate/internal/apperror"
	"authgate/internal/principal"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

// LegacyTokenHeader carries the bare token for clients that predate the Authorization header.
const LegacyTokenHeader = "X-Seller-Token"

// SellerAuthenticator turns a bearer token into a seller principal.
type SellerAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*principal.Seller, error)
}

// SellerGuard authenticates seller dashboard requests.
type SellerGuard struct {
	auth   SellerAuthenticator
	bypass map[string]struct{}
	logger *slog.Logger
}

// NewSellerGuard builds a guard. Requests whose path is in bypassPaths pass through untouched.
func NewSellerGuard(auth SellerAuthenticator, logger *slog.Logger, bypassPaths ...string) *SellerGuard {
	if logger == nil {
		logger = slog.Default()
	}
	bypass := make(map[string]struct{}, len(bypassPaths))
	for _, p := range bypassPaths {
		bypass[p] = struct{}{}
	}
	return &SellerGuard{auth: auth, bypass: bypass, logger: logger}
}

// Authenticate admits any seller holding a valid token.
func (g *SellerGuard) Authenticate() gin.HandlerFunc {
	return g.handle("")
}

// Require admits sellers whose resolved permissions contain code.
func (g *SellerGuard) Require(code string) gin.HandlerFunc {
	return g.handle(code)
}

func (g *SellerGuard) handle(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := g.bypass[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		tokenString := ExtractSellerToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "token missing"))
			return
		}

		seller, err := g.auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			switch apperror.KindOf(err) {
			case apperror.KindInvalidToken, apperror.KindAuthentication:
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid token"))
			default:
				g.logger.ErrorContext(c.Request.Context(), "seller authentication failed", "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
			}
			return
		}

		c.Request = c.Request.WithContext(principal.WithSeller(c.Request.Context(), seller))
		c.Set(ContextSellerID, seller.ID)

		if required != "" && !seller.Allows(required) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "access denied: missing permission '"+required+"'"))
			return
		}
		c.Next()
	}
}

// RequireService checks a permission on a seller already admitted by the guard.
func RequireService(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		seller, ok := principal.SellerFrom(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "token missing"))
			return
		}
		if !seller.Allows(code) {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "access denied: missing permission '"+code+"'"))
			return
		}
		c.Next()
	}
}

// ExtractSellerToken reads "Authorization: Bearer <token>", falling back to LegacyTokenHeader.
func ExtractSellerToken(c *gin.Context) string {
	if token := BearerToken(c.GetHeader("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(c.GetHeader(LegacyTokenHeader))
}

// BearerToken returns the credential of a "Bearer <token>" header value, or "".
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
