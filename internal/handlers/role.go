package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/constants"
	"github.com/pmsworkflow/pms-api/internal/database"
	"github.com/pmsworkflow/pms-api/internal/dto"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/services"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

// RoleHandler serves the /api/roles resource and the permission catalog
type RoleHandler struct {
	roles *services.RoleService
}

func NewRoleHandler(roles *services.RoleService) *RoleHandler {
	return &RoleHandler{roles: roles}
}

func (h *RoleHandler) CreateRole(c *gin.Context) {
	type CreateRoleRequest struct {
		Name        string `json:"name" binding:"required,max=100"`
		Description string `json:"description" binding:"max=500"`
		Permissions string `json:"permissions" binding:"required"`
	}

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	role := &models.Role{
		Name:        req.Name,
		Description: req.Description,
		Permissions: req.Permissions,
	}
	respondResult(c, h.roles.CreateRole(c.Request.Context(), role), "Role created successfully", nil)
}

func (h *RoleHandler) ListRoles(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	res := h.roles.FindAll(c.Request.Context(), listFilters(c), database.NewestFirst, database.Paginate(params))
	respondList(c, res, "All roles")
}

func (h *RoleHandler) GetRole(c *gin.Context) {
	respondResult(c, h.roles.FindOne(c.Request.Context(), c.Param("id")), "", nil)
}

type updateRoleRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Permissions *string `json:"permissions" binding:"omitempty,min=1"`
}

func (r *updateRoleRequest) changes() map[string]any {
	changes := map[string]any{}
	setIf(changes, "name", r.Name)
	setIf(changes, "description", r.Description)
	setIf(changes, "permissions", r.Permissions)
	return changes
}

func (h *RoleHandler) UpdateRole(c *gin.Context) {
	fields, ok := bindPatch(c, &updateRoleRequest{})
	if !ok {
		return
	}
	respondResult(c, h.roles.UpdateRole(c.Request.Context(), c.Param("id"), fields), "Role updated successfully", nil)
}

func (h *RoleHandler) DeleteRole(c *gin.Context) {
	res := h.roles.Delete(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(http.StatusOK, successMessage("Role deleted successfully"))
}

// ListPermissions returns every grantable permission grouped by resource
func (h *RoleHandler) ListPermissions(c *gin.Context) {
	c.JSON(http.StatusOK, dto.Success(http.StatusOK, constants.PermissionCatalog, "All permissions"))
}
