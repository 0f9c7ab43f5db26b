package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/dto"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"github.com/pmsworkflow/pms-api/internal/services"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

type TaskHandler struct {
	tasks *services.TaskService
}

func NewTaskHandler(tasks *services.TaskService) *TaskHandler {
	return &TaskHandler{
		tasks: tasks,
	}
}

// ListTasks returns tasks with their project and assignee embedded.
// Supports username and projectname substring filters and an exact project_id.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	filter := repository.TaskFilter{
		Username:    c.Query("username"),
		ProjectName: c.Query("projectname"),
		ProjectID:   c.Query("project_id"),
	}

	if params := utils.GetPaginationParams(c); params.Requested {
		filter.Page = params.Page
		filter.PageSize = params.Limit
	}

	respondList(c, h.tasks.FindAll(c.Request.Context(), filter), "All tasks")
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	respondResult(c, h.tasks.FindOne(c.Request.Context(), c.Param("id")), "", nil)
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	type CreateTaskRequest struct {
		Name               string     `json:"name" binding:"required,max=100"`
		Description        string     `json:"description" binding:"max=500"`
		ProjectID          string     `json:"project_id" binding:"required"`
		UserID             string     `json:"user_id" binding:"required"`
		EstimatedStartTime time.Time  `json:"estimated_start_time" binding:"required,gt"`
		EstimatedEndTime   time.Time  `json:"estimated_end_time" binding:"required,gtfield=EstimatedStartTime"`
		ActualStartTime    *time.Time `json:"actual_start_time"`
		ActualEndTime      *time.Time `json:"actual_end_time"`
		Status             string     `json:"status" binding:"omitempty,oneof=Not-Started In-Progress Completed"`
		Priority           string     `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	task := &models.Task{
		Name:               req.Name,
		Description:        req.Description,
		ProjectID:          req.ProjectID,
		UserID:             req.UserID,
		EstimatedStartTime: req.EstimatedStartTime,
		EstimatedEndTime:   req.EstimatedEndTime,
		ActualStartTime:    req.ActualStartTime,
		ActualEndTime:      req.ActualEndTime,
		Status:             models.TaskStatus(req.Status),
		Priority:           models.TaskPriority(req.Priority),
	}

	respondResult(c, h.tasks.CreateTask(c.Request.Context(), task), "Task created successfully", nil)
}

type updateTaskRequest struct {
	Name               *string    `json:"name" binding:"omitempty,min=1,max=100"`
	Description        *string    `json:"description" binding:"omitempty,max=500"`
	ProjectID          *string    `json:"project_id" binding:"omitempty,min=1"`
	UserID             *string    `json:"user_id" binding:"omitempty,min=1"`
	EstimatedStartTime *time.Time `json:"estimated_start_time"`
	EstimatedEndTime   *time.Time `json:"estimated_end_time"`
	ActualStartTime    *time.Time `json:"actual_start_time"`
	ActualEndTime      *time.Time `json:"actual_end_time"`
	Status             *string    `json:"status" binding:"omitempty,oneof=Not-Started In-Progress Completed"`
	Priority           *string    `json:"priority" binding:"omitempty,oneof=Low Medium High"`
}

func (r *updateTaskRequest) changes() map[string]any {
	changes := map[string]any{}
	setIf(changes, "name", r.Name)
	setIf(changes, "description", r.Description)
	setIf(changes, "project_id", r.ProjectID)
	setIf(changes, "user_id", r.UserID)
	setIf(changes, "estimated_start_time", r.EstimatedStartTime)
	setIf(changes, "estimated_end_time", r.EstimatedEndTime)
	setIf(changes, "actual_start_time", r.ActualStartTime)
	setIf(changes, "actual_end_time", r.ActualEndTime)
	setIf(changes, "status", r.Status)
	setIf(changes, "priority", r.Priority)
	return changes
}

// UpdateTask updates an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	fields, ok := bindPatch(c, &updateTaskRequest{}, "actual_start_time", "actual_end_time")
	if !ok {
		return
	}

	respondResult(c, h.tasks.UpdateTask(c.Request.Context(), c.Param("id"), fields), "Task updated successfully", nil)
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	res := h.tasks.Delete(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(http.StatusOK, dto.Success(http.StatusOK, nil, "Task deleted successfully"))
}
