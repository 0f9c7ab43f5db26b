package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/database"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/middleware"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/services"
	"github.com/pmsworkflow/pms-api/internal/utils"
)

// CommentHandler serves the /api/comments resource
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// CreateComment posts a comment on a task as the authenticated user
func (h *CommentHandler) CreateComment(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateCommentRequest struct {
		Comment        string   `json:"comment" binding:"required"`
		TaskID         string   `json:"task_id" binding:"required"`
		SupportedFiles []string `json:"supported_files"`
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.ValidationFailed(c, err)
		return
	}

	comment := &models.Comment{
		Comment:        req.Comment,
		UserID:         principal.UserID,
		TaskID:         req.TaskID,
		SupportedFiles: models.IDList(req.SupportedFiles),
	}
	respondResult(c, h.comments.CreateComment(c.Request.Context(), comment), "Comment created successfully", nil)
}

func (h *CommentHandler) ListComments(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	res := h.comments.FindAll(c.Request.Context(), listFilters(c), database.NewestFirst, database.Paginate(params))
	respondList(c, res, "All comments")
}

func (h *CommentHandler) GetComment(c *gin.Context) {
	respondResult(c, h.comments.FindOne(c.Request.Context(), c.Param("id")), "", nil)
}

type updateCommentRequest struct {
	Comment        *string  `json:"comment" binding:"omitempty,min=1"`
	SupportedFiles []string `json:"supported_files" binding:"omitempty,dive,required"`
}

func (r *updateCommentRequest) changes() map[string]any {
	changes := map[string]any{}
	setIf(changes, "comment", r.Comment)
	if r.SupportedFiles != nil {
		changes["supported_files"] = models.IDList(r.SupportedFiles)
	}
	return changes
}

func (h *CommentHandler) UpdateComment(c *gin.Context) {
	fields, ok := bindPatch(c, &updateCommentRequest{})
	if !ok {
		return
	}
	respondResult(c, h.comments.UpdateComment(c.Request.Context(), c.Param("id"), fields), "Comment updated successfully", nil)
}

func (h *CommentHandler) DeleteComment(c *gin.Context) {
	res := h.comments.Delete(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}
	c.JSON(http.StatusOK, successMessage("Comment deleted successfully"))
}
