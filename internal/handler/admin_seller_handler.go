package handler

import (
	"net/http"
	"strings"

	"authgate/internal/middleware"
	"authgate/internal/model"
	"authgate/internal/permission"
	"authgate/internal/repository"
	"authgate/internal/service"
	"authgate/pkg/pagination"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminSellerHandler struct {
	sellerService service.SellerService
	roles         middleware.AdminRoleLookup
}

func NewAdminSellerHandler(sellerService service.SellerService, roles middleware.AdminRoleLookup) *AdminSellerHandler {
	return &AdminSellerHandler{sellerService: sellerService, roles: roles}
}

// RegisterRoutes expects router to already sit behind middleware.AdminGuard.
func (h *AdminSellerHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequireAdminPermission(h.roles, permission.AdminSellersRead)
	manage := middleware.RequireAdminPermission(h.roles, permission.AdminSellersManage)

	sellers := router.Group("/sellers")
	{
		sellers.GET("", read, h.ListSellers)
		sellers.GET("/:id", read, h.GetSeller)
		sellers.POST("", manage, h.CreateSeller)
		sellers.PUT("/:id", manage, h.UpdateSeller)
		sellers.DELETE("/:id", manage, h.DeleteSeller)
		sellers.PUT("/:id/password", manage, h.SetPassword)
		sellers.PUT("/:id/allowed-services", manage, h.UpdateAllowedServices)
		sellers.PUT("/:id/subscription-plan", manage, h.UpdateSubscriptionPlan)
	}
}

// ListSellers handles GET /admin/sellers
// @Summary      List sellers
// @Tags         admin-sellers
// @Produce      json
// @Security     AdminBearer
// @Param        page               query     int     false  "Page number (default 1)"
// @Param        limit              query     int     false  "Items per page (default 20, max 100)"
// @Param        status             query     string  false  "active, suspended or disabled"
// @Param        subscription_plan  query     string  false  "FREE, BASIC, PRO or ENTERPRISE"
// @Success      200                {object}  response.Response{data=response.Page{items=[]service.SellerResponse}}
// @Router       /admin/sellers [get]
func (h *AdminSellerHandler) ListSellers(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.SellerFilter{
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
		Plan:   model.SubscriptionPlan(strings.ToUpper(strings.TrimSpace(c.Query("subscription_plan")))),
	}

	sellers, total, err := h.sellerService.ListSellers(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, sellers, total, p.Page, p.Limit))
}

// GetSeller handles GET /admin/sellers/{id}
// @Summary      Get a seller
// @Tags         admin-sellers
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Seller ID"
// @Success      200  {object}  response.Response{data=service.SellerResponse}
// @Failure      404  {object}  response.Response
// @Router       /admin/sellers/{id} [get]
func (h *AdminSellerHandler) GetSeller(c *gin.Context) {
	seller, err := h.sellerService.GetSeller(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, seller))
}

// CreateSeller handles POST /admin/sellers
// @Summary      Create a seller
// @Description  Email is unique case-insensitively. Plan defaults to FREE.
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        payload  body      service.CreateSellerRequest  true  "Seller"
// @Success      201      {object}  response.Response{data=service.SellerResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/sellers [post]
func (h *AdminSellerHandler) CreateSeller(c *gin.Context) {
	var req service.CreateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	seller, err := h.sellerService.CreateSeller(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, seller))
}

// UpdateSeller handles PUT /admin/sellers/{id}
// @Summary      Update a seller
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        id       path      string                       true  "Seller ID"
// @Param        payload  body      service.UpdateSellerRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=service.SellerResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/sellers/{id} [put]
func (h *AdminSellerHandler) UpdateSeller(c *gin.Context) {
	var req service.UpdateSellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	seller, err := h.sellerService.UpdateSeller(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, seller))
}

// DeleteSeller handles DELETE /admin/sellers/{id}
// @Summary      Delete a seller
// @Tags         admin-sellers
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Seller ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/sellers/{id} [delete]
func (h *AdminSellerHandler) DeleteSeller(c *gin.Context) {
	if err := h.sellerService.DeleteSeller(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Seller deleted successfully"}))
}

// SetPassword handles PUT /admin/sellers/{id}/password
// @Summary      Set a seller password
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        id       path      string                      true  "Seller ID"
// @Param        payload  body      service.SetPasswordRequest  true  "Password (min 6 characters)"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /admin/sellers/{id}/password [put]
func (h *AdminSellerHandler) SetPassword(c *gin.Context) {
	var req service.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if err := h.sellerService.SetPassword(c.Request.Context(), actor(c), c.Param("id"), req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Password updated successfully"}))
}

// UpdateAllowedServices replaces the explicit service set; an empty list restores plan defaults
// @Summary      Set a seller's services
// @Description  The '*' wildcard is rejected. An empty list restores the plan defaults.
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        id       path      string                                true  "Seller ID"
// @Param        payload  body      service.UpdateAllowedServicesRequest  true  "Services"
// @Success      200      {object}  response.Response{data=service.SellerResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /admin/sellers/{id}/allowed-services [put]
func (h *AdminSellerHandler) UpdateAllowedServices(c *gin.Context) {
	var req service.UpdateAllowedServicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	seller, err := h.sellerService.UpdateAllowedServices(c.Request.Context(), actor(c), c.Param("id"), req.AllowedServices)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, seller))
}

// UpdateSubscriptionPlan handles PUT /admin/sellers/{id}/subscription-plan
// @Summary      Change a seller's plan
// @Description  Resets allowed_services to the new plan's defaults
// @Tags         admin-sellers
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        id       path      string                                 true  "Seller ID"
// @Param        payload  body      service.UpdateSubscriptionPlanRequest  true  "Plan"
// @Success      200      {object}  response.Response{data=service.SellerResponse}
// @Failure      400      {object}  response.Response
// @Router       /admin/sellers/{id}/subscription-plan [put]
func (h *AdminSellerHandler) UpdateSubscriptionPlan(c *gin.Context) {
	var req service.UpdateSubscriptionPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	seller, err := h.sellerService.UpdateSubscriptionPlan(c.Request.Context(), actor(c), c.Param("id"), req.SubscriptionPlan)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, seller))
}
