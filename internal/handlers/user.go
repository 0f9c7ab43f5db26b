package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/database"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/services"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

// UserHandler serves the /api/users resource
type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// CreateUser registers a user under an existing role
func (h *UserHandler) CreateUser(c *gin.Context) {
	type CreateUserRequest struct {
		Username string `json:"username" binding:"required,min=3,max=50"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		RoleID   string `json:"role_id" binding:"required"`
	}

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	res := h.users.CreateUser(c.Request.Context(), services.CreateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		RoleID:   req.RoleID,
	})
	respondResult(c, res, "User created successfully", nil)
}

// ListUsers returns users matching the query filters
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filters := listFilters(c)
	for _, key := range []string{"username", "email"} {
		if v, ok := filters[key]; ok {
			filters[key] = services.NormalizeIdentifier(v)
		}
	}
	res := h.users.FindAll(c.Request.Context(), filters, database.NewestFirst, database.Paginate(params))
	respondList(c, res, "All Users")
}

func (h *UserHandler) GetUser(c *gin.Context) {
	respondResult(c, h.users.FindOne(c.Request.Context(), c.Param("id")), "", nil)
}

type updateUserRequest struct {
	RoleID *string `json:"role_id" binding:"omitempty,min=1"`
}

func (r *updateUserRequest) changes() map[string]any {
	changes := map[string]any{}
	setIf(changes, "role_id", r.RoleID)
	return changes
}

// UpdateUser changes a user's role
func (h *UserHandler) UpdateUser(c *gin.Context) {
	fields, ok := bindPatch(c, &updateUserRequest{})
	if !ok {
		return
	}
	respondResult(c, h.users.UpdateUser(c.Request.Context(), c.Param("id"), fields), "User updated successfully", nil)
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	res := h.users.Delete(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(http.StatusOK, successMessage("User deleted successfully"))
}
