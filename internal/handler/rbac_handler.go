package handler

import (
	"net/http"

	"accessapi/internal/service"
	"accessapi/pkg/response"

	"github.com/gin-gonic/gin"
)

type RBACHandler struct {
	rbacService service.RBACService
}

func NewRBACHandler(rbacService service.RBACService) *RBACHandler {
	return &RBACHandler{rbacService: rbacService}
}

// RegisterRoutes binds the read-only RBAC catalogue. These routes are open.
func (h *RBACHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/roles/", h.ListRoles)
	router.GET("/modules/", h.ListModules)
	router.GET("/resources/", h.ListResources)
	router.GET("/permissions/", h.ListPermissions)
	router.GET("/role/:id/permissions/", h.PermissionsForRole)
}

// ListRoles returns all roles
// @Summary      List roles
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Role}
// @Router       /roles/ [get]
func (h *RBACHandler) ListRoles(c *gin.Context) {
	roles, err := h.rbacService.ListRoles(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch roles")
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, roles))
}

// ListModules returns all modules
// @Summary      List modules
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Module}
// @Router       /modules/ [get]
func (h *RBACHandler) ListModules(c *gin.Context) {
	modules, err := h.rbacService.ListModules(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch modules")
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, modules))
}

// ListResources returns all resources
// @Summary      List resources
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Resource}
// @Router       /resources/ [get]
func (h *RBACHandler) ListResources(c *gin.Context) {
	resources, err := h.rbacService.ListResources(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch resources")
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, resources))
}

// ListPermissions returns all permissions
// @Summary      List permissions
// @Tags         rbac
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Permission}
// @Router       /permissions/ [get]
func (h *RBACHandler) ListPermissions(c *gin.Context) {
	perms, err := h.rbacService.ListPermissions(c.Request.Context())
	if err != nil {
		writeError(c, err, "Failed to fetch permissions")
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}

// PermissionsForRole returns the (resource, permission) pairs granted to a role
// @Summary      Permissions of a role
// @Description  An unknown role yields an empty list
// @Tags         rbac
// @Produce      json
// @Param        id   path      int  true  "Role ID"
// @Success      200  {object}  response.Response{data=[]model.ResourcePermission}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /role/{id}/permissions/ [get]
func (h *RBACHandler) PermissionsForRole(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	perms, err := h.rbacService.PermissionsForRole(c.Request.Context(), id)
	if err != nil {
		writeError(c, err, "Failed to fetch role permissions")
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, perms))
}
