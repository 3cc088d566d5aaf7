package handler

import (
	"net/http"

	"authgate/internal/middleware"
	"authgate/internal/permission"
	"authgate/internal/service"
	"authgate/pkg/response"

	"github.com/gin-gonic/gin"
)

type AdminRoleHandler struct {
	roleService service.AdminRoleService
}

func NewAdminRoleHandler(roleService service.AdminRoleService) *AdminRoleHandler {
	return &AdminRoleHandler{roleService: roleService}
}

// RegisterRoutes expects router to already sit behind middleware.AdminGuard.
func (h *AdminRoleHandler) RegisterRoutes(router *gin.RouterGroup) {
	read := middleware.RequireAdminPermission(h.roleService, permission.AdminRolesRead)
	manage := middleware.RequireAdminPermission(h.roleService, permission.AdminRolesManage)
	domains := middleware.RequireAdminPermission(h.roleService, permission.AdminDomainsManage)

	roles := router.Group("/roles")
	{
		roles.GET("", read, h.ListRoles)
		roles.GET("/:id", read, h.GetRole)
		roles.POST("", manage, h.CreateRole)
		roles.PUT("/:id", manage, h.UpdateRole)
		roles.DELETE("/:id", manage, h.DeleteRole)
	}

	assignments := router.Group("/role-assignments")
	{
		assignments.GET("", read, h.ListAssignments)
		assignments.POST("", manage, h.AssignRole)
		assignments.DELETE("/:id", manage, h.RemoveAssignment)
	}

	users := router.Group("/users/:user_id")
	{
		users.GET("/roles", read, h.GetUserRoles)
		// Queried by the session provider to decide can_login.
		users.GET("/permissions", read, h.GetUserPermissions)
	}

	d := router.Group("/domains")
	{
		d.GET("", read, h.ListDomains)
		d.POST("", domains, h.CreateDomain)
		d.DELETE("/:id", domains, h.DeleteDomain)
	}
}

// ListRoles returns every admin role ordered by name
// @Summary      List admin roles
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Success      200  {object}  response.Response{data=[]service.RoleResponse}
// @Router       /admin/roles [get]
func (h *AdminRoleHandler) ListRoles(c *gin.Context) {
	roles, err := h.roleService.ListRoles(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetRole returns a single role by ID
// @Summary      Get an admin role
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response{data=service.RoleResponse}
// @Failure      404  {object}  response.Response
// @Router       /admin/roles/{id} [get]
func (h *AdminRoleHandler) GetRole(c *gin.Context) {
	role, err := h.roleService.GetRole(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// CreateRole creates a role, or updates the role whose key the name normalizes to
// @Summary      Create or update an admin role
// @Description  Upserts by role key: a name that normalizes to an existing key updates that role
// @Tags         admin-roles
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        payload  body      service.CreateRoleRequest  true  "Role"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Success      201      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Router       /admin/roles [post]
func (h *AdminRoleHandler) CreateRole(c *gin.Context) {
	var req service.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, created, err := h.roleService.CreateRole(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, response.Success(status, role))
}

// UpdateRole updates name, description, login flag, permissions or domains
// @Summary      Update an admin role
// @Description  Omitted fields are left unchanged. Renaming re-derives the role key.
// @Tags         admin-roles
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        id       path      string                     true  "Role ID"
// @Param        payload  body      service.UpdateRoleRequest  true  "Changes"
// @Success      200      {object}  response.Response{data=service.RoleResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/roles/{id} [put]
func (h *AdminRoleHandler) UpdateRole(c *gin.Context) {
	var req service.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	role, err := h.roleService.UpdateRole(c.Request.Context(), actor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, role))
}

// DeleteRole deletes a role and all of its assignments
// @Summary      Delete an admin role
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Role ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/roles/{id} [delete]
func (h *AdminRoleHandler) DeleteRole(c *gin.Context) {
	if err := h.roleService.DeleteRole(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Role deleted successfully"}))
}

// ListAssignments handles GET /admin/role-assignments?user_id=
// @Summary      List role assignments
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Param        user_id  query     string  false  "Only this user's assignments"
// @Success      200      {object}  response.Response{data=[]service.AssignmentResponse}
// @Router       /admin/role-assignments [get]
func (h *AdminRoleHandler) ListAssignments(c *gin.Context) {
	list, err := h.roleService.ListRoleAssignments(c.Request.Context(), c.Query("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// AssignRole handles POST /admin/role-assignments
// @Summary      Assign a role
// @Description  Idempotent: re-assigning the same (user, role, domain) returns the existing assignment
// @Tags         admin-roles
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        payload  body      service.AssignRoleRequest  true  "Assignment"
// @Success      200      {object}  response.Response{data=service.AssignmentResponse}
// @Success      201      {object}  response.Response{data=service.AssignmentResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /admin/role-assignments [post]
func (h *AdminRoleHandler) AssignRole(c *gin.Context) {
	var req service.AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	a, created, err := h.roleService.AssignRole(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, response.Success(status, a))
}

// RemoveAssignment handles DELETE /admin/role-assignments/{id}
// @Summary      Remove a role assignment
// @Description  Operators cannot remove their own last login-enabled assignment
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Assignment ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /admin/role-assignments/{id} [delete]
func (h *AdminRoleHandler) RemoveAssignment(c *gin.Context) {
	if err := h.roleService.RemoveAssignment(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Assignment removed successfully"}))
}

// GetUserRoles handles GET /admin/users/{user_id}/roles
// @Summary      Roles held by a user
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Param        user_id  path      string  true  "User ID"
// @Success      200      {object}  response.Response
// @Router       /admin/users/{user_id}/roles [get]
func (h *AdminRoleHandler) GetUserRoles(c *gin.Context) {
	roles, err := h.roleService.GetRolesForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// GetUserPermissions handles GET /admin/users/{user_id}/permissions?domain_id=
// @Summary      Effective admin permissions
// @Tags         admin-roles
// @Produce      json
// @Security     AdminBearer
// @Param        user_id    path      string  true   "User ID"
// @Param        domain_id  query     string  false  "Only roles covering this domain contribute"
// @Success      200        {object}  response.Response{data=service.EffectivePermissionsResponse}
// @Router       /admin/users/{user_id}/permissions [get]
func (h *AdminRoleHandler) GetUserPermissions(c *gin.Context) {
	res, err := h.roleService.EffectivePermissions(c.Request.Context(), c.Param("user_id"), c.Query("domain_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, res))
}

// ListDomains handles GET /admin/domains
// @Summary      List domains
// @Tags         admin-domains
// @Produce      json
// @Security     AdminBearer
// @Success      200  {object}  response.Response{data=[]service.DomainResponse}
// @Router       /admin/domains [get]
func (h *AdminRoleHandler) ListDomains(c *gin.Context) {
	list, err := h.roleService.ListDomains(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, list))
}

// CreateDomain handles POST /admin/domains
// @Summary      Create a domain
// @Description  The slug is derived from the name when omitted
// @Tags         admin-domains
// @Accept       json
// @Produce      json
// @Security     AdminBearer
// @Param        payload  body      service.CreateDomainRequest  true  "Domain"
// @Success      201      {object}  response.Response{data=service.DomainResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /admin/domains [post]
func (h *AdminRoleHandler) CreateDomain(c *gin.Context) {
	var req service.CreateDomainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	d, err := h.roleService.CreateDomain(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, d))
}

// DeleteDomain removes a domain and every assignment scoped to it
// @Summary      Delete a domain
// @Description  Refused with 409 while any role still lists the domain
// @Tags         admin-domains
// @Produce      json
// @Security     AdminBearer
// @Param        id   path      string  true  "Domain ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /admin/domains/{id} [delete]
func (h *AdminRoleHandler) DeleteDomain(c *gin.Context) {
	if err := h.roleService.DeleteDomain(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"message": "Domain deleted successfully"}))
}
