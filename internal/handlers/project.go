package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/database"
	"github.com/pmsworkflow/pms-api/internal/dto"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"github.com/pmsworkflow/pms-api/internal/services"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

// ProjectHandler serves the /api/projects resource. Responses carry member
// usernames instead of raw member ids.
type ProjectHandler struct {
	projects *services.ProjectService
}

func NewProjectHandler(projects *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Name        string    `json:"name" binding:"required,max=30"`
		Description string    `json:"description" binding:"max=500"`
		UserIDs     []string  `json:"user_ids"`
		StartTime   time.Time `json:"start_time" binding:"required,gt"`
		EndTime     time.Time `json:"end_time" binding:"required,gtfield=StartTime"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	project := &models.Project{
		Name:        req.Name,
		Description: req.Description,
		UserIDs:     models.IDList(req.UserIDs),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}
	h.respondProject(c, h.projects.CreateProject(c.Request.Context(), project), "Project created successfully")
}

// ListProjects returns projects matching the query filters
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	res := h.projects.FindAll(c.Request.Context(), listFilters(c), database.NewestFirst, database.Paginate(params))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}

	shaped, err := h.projects.Shape(c.Request.Context(), res.Data)
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.List(http.StatusOK, shaped, "All projects"))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	h.respondProject(c, h.projects.FindOne(c.Request.Context(), c.Param("id")), "")
}

type updateProjectRequest struct {
	Name        *string    `json:"name" binding:"omitempty,min=1,max=30"`
	Description *string    `json:"description" binding:"omitempty,max=500"`
	UserIDs     []string   `json:"user_ids" binding:"omitempty,dive,required"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

func (r *updateProjectRequest) changes() map[string]any {
	changes := map[string]any{}
	setIf(changes, "name", r.Name)
	setIf(changes, "description", r.Description)
	setIf(changes, "start_time", r.StartTime)
	setIf(changes, "end_time", r.EndTime)
	if r.UserIDs != nil {
		changes["user_ids"] = models.IDList(r.UserIDs)
	}
	return changes
}

// UpdateProject applies a partial update; the merged window must stay ordered
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	fields, ok := bindPatch(c, &updateProjectRequest{})
	if !ok {
		return
	}

	h.respondProject(c, h.projects.UpdateProject(c.Request.Context(), c.Param("id"), fields), "Project updated")
}

func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	res := h.projects.Delete(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(http.StatusOK, successMessage("Project deleted"))
}

func (h *ProjectHandler) respondProject(c *gin.Context, res repository.Result[*models.Project], message string) {
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}

	shaped, err := h.projects.Shape(c.Request.Context(), []models.Project{*res.Data})
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(res.StatusCode, dto.Success(res.StatusCode, shaped[0], message))
}
