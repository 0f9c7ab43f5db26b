package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/constants"
	apierrors "github.com/pmsworkflow/pms-api/internal/errors"
	"github.com/pmsworkflow/pms-api/internal/middleware"
	"github.com/pmsworkflow/pms-api/internal/services"
)

// FileHandler accepts comment attachments and serves them back
type FileHandler struct {
	files *services.FileService
}

func NewFileHandler(files *services.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// UploadFile stores the multipart "file" field
func (h *FileHandler) UploadFile(c *gin.Context) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	header, err := c.FormFile(constants.UploadFormField)
	if err != nil {
		apierrors.BadRequest(c, "File is required")
		return
	}

	respondResult(c, h.files.Upload(c.Request.Context(), header, principal.UserID), "File uploaded successfully", nil)
}

// DownloadFile streams a stored attachment
func (h *FileHandler) DownloadFile(c *gin.Context) {
	res := h.files.FindOne(c.Request.Context(), c.Param("id"))
	if !res.OK() {
		apierrors.Respond(c, res.StatusCode, res.Message)
		return
	}

	file := res.Data
	c.Header("Content-Type", file.MimeType)
	c.File(h.files.Path(file.FileName))
}
