package services

import (
	"context"
	"net/http"

	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
)

const (
	msgInvalidTaskID  = "Invalid Task ID"
	msgInvalidFileIDs = "Invalid File IDs"
)

// CommentService handles comment business logic
type CommentService struct {
	repository.Repository[models.Comment]
	tasks *TaskService
	files *FileService
}

// NewCommentService creates a new CommentService
func NewCommentService(repo repository.Repository[models.Comment], tasks *TaskService, files *FileService) *CommentService {
	return &CommentService{Repository: repo, tasks: tasks, files: files}
}

// CreateComment checks the task and attachments before inserting
func (s *CommentService) CreateComment(ctx context.Context, comment *models.Comment) repository.Result[*models.Comment] {
	if res := s.tasks.TaskRepository.FindOne(ctx, comment.TaskID); !res.OK() {
		if res.StatusCode == http.StatusNotFound {
			return repository.Failure[*models.Comment](http.StatusBadRequest, msgInvalidTaskID)
		}
		return repository.Failure[*models.Comment](res.StatusCode, res.Message)
	}

	comment.SupportedFiles = models.IDList(uniqueIDs(comment.SupportedFiles))
	if res, ok := s.checkFiles(ctx, comment.SupportedFiles); !ok {
		return res
	}
	return s.Create(ctx, comment)
}

// UpdateComment validates a replaced attachment list
func (s *CommentService) UpdateComment(ctx context.Context, id string, fields map[string]any) repository.Result[*models.Comment] {
	if raw, ok := fields["supported_files"]; ok {
		ids, ok := raw.(models.IDList)
		if !ok {
			return repository.Failure[*models.Comment](http.StatusBadRequest, msgInvalidFileIDs)
		}
		ids = models.IDList(uniqueIDs(ids))
		if res, ok := s.checkFiles(ctx, ids); !ok {
			return res
		}
		fields["supported_files"] = ids
	}
	return s.Update(ctx, id, fields)
}

func (s *CommentService) checkFiles(ctx context.Context, ids []string) (repository.Result[*models.Comment], bool) {
	if len(ids) == 0 {
		return repository.Result[*models.Comment]{}, true
	}
	res := s.files.FindByIDs(ctx, ids)
	if !res.OK() {
		return repository.Failure[*models.Comment](res.StatusCode, res.Message), false
	}
	if len(res.Data) != len(ids) {
		return repository.Failure[*models.Comment](http.StatusBadRequest, msgInvalidFileIDs), false
	}
	return repository.Result[*models.Comment]{}, true
}
