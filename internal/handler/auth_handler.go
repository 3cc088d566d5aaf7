package handler

import (
	"net/http"

	"authgate/internal/apperror"
	"authgate/internal/middleware"
	"authgate/internal/permission"
	"authgate/internal/service"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

// Paths the seller guard lets through without a token.
const (
	PathLogin        = "/login"
	PathMe           = "/me"
	PathTokenRefresh = "/token/refresh"
)

// PublicSellerPaths lists the routes that obtain or inspect a token themselves.
var PublicSellerPaths = []string{PathLogin, PathMe, PathTokenRefresh}

type AuthHandler struct {
	authService service.SellerAuthService
}

func NewAuthHandler(authService service.SellerAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRoutes binds the seller credential endpoints
func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST(PathLogin, h.Login)
	router.GET(PathMe, h.GetMe)
	router.POST(PathTokenRefresh, h.Refresh)
}

// MeResponse is the fresh profile plus the snapshot carried by the presented token.
type MeResponse struct {
	service.ProfileResponse
	TokenPermissions []string `json:"token_permissions"`
	TokenFormat      string   `json:"token_format"`
	Stale            bool     `json:"stale"`
}

// Login handles POST /login
// @Summary      Seller login
// @Description  Exchanges seller email and password for a signed token carrying the resolved permissions
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.LoginRequest  true  "Login Credentials"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// GetMe handles GET /me
// @Summary      Current seller
// @Description  Returns the seller profile with permissions resolved from the store, and whether the token's snapshot is stale
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=handler.MeResponse}
// @Failure      401      {object}  response.Response
// @Router       /me [get]
func (h *AuthHandler) GetMe(c *gin.Context) {
	tokenString := middleware.ExtractSellerToken(c)
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "token missing"))
		return
	}
	seller, err := h.authService.Authenticate(c.Request.Context(), tokenString)
	if err != nil {
		if apperror.HTTPStatus(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid token"))
			return
		}
		respondError(c, err)
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), seller.ID)
	if err != nil {
		if apperror.KindOf(err) == apperror.KindNotFound {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid token"))
			return
		}
		respondError(c, err)
		return
	}

	snapshot := seller.Permissions.Slice()
	c.JSON(http.StatusOK, response.Success(http.StatusOK, MeResponse{
		ProfileResponse:  *profile,
		TokenPermissions: snapshot,
		TokenFormat:      seller.TokenFormat,
		Stale:            !seller.Permissions.Equal(permission.NewSet(profile.Permissions...)),
	}))
}

// Refresh handles POST /token/refresh
// @Summary      Refresh token
// @Description  Exchanges a valid current or legacy token for a fresh current-format token. Legacy tokens need an exp claim, or an iat no older than LEGACY_TOKEN_MAX_AGE.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.RefreshRequest  false  "Token (or send it as a Bearer header)"
// @Success      200      {object}  response.Response{data=service.LoginResponse}
// @Failure      401      {object}  response.Response
// @Router       /token/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	tokenString := middleware.ExtractSellerToken(c)
	if tokenString == "" {
		var req service.RefreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			tokenString = req.Token
		}
	}
	if tokenString == "" {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "token missing"))
		return
	}

	res, err := h.authService.Refresh(c.Request.Context(), tokenString)
	if err != nil {
		if apperror.HTTPStatus(err) == http.StatusUnauthorized {
			c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid token"))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}
