package handler

import (
	"net/http"

	"authgate/internal/middleware"
	"authgate/internal/permission"
	"authgate/internal/repository"
	"authgate/internal/service"
	"authgate/pkg/pagination"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
	roles        middleware.AdminRoleLookup
}

func NewAuditHandler(auditService service.AuditService, roles middleware.AdminRoleLookup) *AuditHandler {
	return &AuditHandler{auditService: auditService, roles: roles}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireAdminPermission(h.roles, permission.AdminAuditRead))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves paginated records, newest first
// @Summary      Get audit logs
// @Description  Lists recorded admin mutations and failed seller logins
// @Tags         audit
// @Security     AdminBearer
// @Produce      json
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Param        actor_id     query     string  false  "Filter by actor"
// @Param        entity_type  query     string  false  "Filter by entity type"
// @Param        entity_id    query     string  false  "Filter by entity id"
// @Success      200          {object}  response.Response{data=response.Page{items=[]service.AuditLogResponse}}
// @Router       /admin/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	p := pagination.Parse(c)
	filter := repository.AuditFilter{
		ActorID:    c.Query("actor_id"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
	}

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), filter, p.Page, p.Limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, p.Page, p.Limit))
}
