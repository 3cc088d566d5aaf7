package handler

import (
	"net/http"

	"authgate/internal/middleware"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

// SellerHandler serves the guarded seller dashboard surface.
type SellerHandler struct {
	guard *middleware.SellerGuard
}

func NewSellerHandler(guard *middleware.SellerGuard) *SellerHandler {
	return &SellerHandler{guard: guard}
}

type ServiceAccessResponse struct {
	Service          string   `json:"service"`
	SellerID         string   `json:"seller_id"`
	SubscriptionPlan string   `json:"subscription_plan"`
	Permissions      []string `json:"permissions"`
}

// RegisterRoutes mounts one access-check route per known service, each behind Require(code).
func (h *SellerHandler) RegisterRoutes(router *gin.RouterGroup) {
	seller := router.Group("/seller")
	seller.GET("/services", h.guard.Authenticate(), h.ListServices)
	for _, code := range permission.KnownServices {
		seller.GET("/services/"+code, h.guard.Require(code), h.serviceAccess(code))
	}
}

// ListServices handles GET /seller/services
// @Summary      Seller services
// @Description  Lists the service codes the presented token grants
// @Tags         seller
// @Produce      json
// @Security     BearerAuth
// @Success      200      {object}  response.Response{data=handler.ServiceAccessResponse}
// @Failure      401      {object}  response.Response
// @Router       /seller/services [get]
func (h *SellerHandler) ListServices(c *gin.Context) {
	seller, _ := principal.SellerFrom(c.Request.Context())
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ServiceAccessResponse{
		SellerID:         seller.ID,
		SubscriptionPlan: seller.SubscriptionPlan,
		Permissions:      seller.Permissions.Slice(),
	}))
}

// serviceAccess handles GET /seller/services/{code}
// @Summary      Check access to a seller service
// @Description  Succeeds only when the token grants the service code
// @Tags         seller
// @Produce      json
// @Security     BearerAuth
// @Param        code  path      string  true  "Service code"
// @Success      200   {object}  response.Response{data=handler.ServiceAccessResponse}
// @Failure      401   {object}  response.Response
// @Failure      403   {object}  response.Response
// @Router       /seller/services/{code} [get]
func (h *SellerHandler) serviceAccess(code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		seller, _ := principal.SellerFrom(c.Request.Context())
		c.JSON(http.StatusOK, response.Success(http.StatusOK, ServiceAccessResponse{
			Service:          code,
			SellerID:         seller.ID,
			SubscriptionPlan: seller.SubscriptionPlan,
			Permissions:      seller.Permissions.Slice(),
		}))
	}
}
