package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/pmsworkflow/pms-api/internal/dto"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"gorm.io/gorm"
)

const (
	msgInvalidProjectID = "Invalid Project ID"
	msgInvalidUserID    = "Invalid User ID"
)

// TaskService handles task business logic. FindAll and FindOne are replaced
// by join queries that embed the project and assignee.
type TaskService struct {
	repository.TaskRepository
	projects *ProjectService
	users    *UserService
}

// NewTaskService creates a new TaskService
func NewTaskService(repo repository.TaskRepository, projects *ProjectService, users *UserService) *TaskService {
	return &TaskService{TaskRepository: repo, projects: projects, users: users}
}

// FindAll lists tasks with projectDetails and userDetails
func (s *TaskService) FindAll(ctx context.Context, filter repository.TaskFilter) repository.Result[[]dto.TaskDTO] {
	rows, err := s.ListWithDetails(ctx, filter)
	if err != nil {
		return repository.Failure[[]dto.TaskDTO](http.StatusInternalServerError, repository.MsgInternalError)
	}
	return repository.Success(http.StatusOK, dto.ToTaskDTOs(rows))
}

// FindOne returns a single task with projectDetails and userDetails
func (s *TaskService) FindOne(ctx context.Context, id string) repository.Result[*dto.TaskDTO] {
	row, err := s.FindWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return repository.NotFound[*dto.TaskDTO]("")
		}
		return repository.Failure[*dto.TaskDTO](http.StatusInternalServerError, repository.MsgInternalError)
	}
	task := dto.ToTaskDTO(*row)
	return repository.Success(http.StatusOK, &task)
}

// CreateTask checks the referenced project and user before inserting
func (s *TaskService) CreateTask(ctx context.Context, task *models.Task) repository.Result[*models.Task] {
	if !task.EstimatedStartTime.Before(task.EstimatedEndTime) {
		return repository.Failure[*models.Task](http.StatusBadRequest, ErrInvalidTimeWindow.Error())
	}
	if res, ok := s.checkReferences(ctx, task.ProjectID, task.UserID); !ok {
		return res
	}
	return s.Create(ctx, task)
}

// UpdateTask validates changed references and the merged estimate window
func (s *TaskService) UpdateTask(ctx context.Context, id string, fields map[string]any) repository.Result[*models.Task] {
	existing := s.TaskRepository.FindOne(ctx, id)
	if !existing.OK() {
		return existing
	}

	projectID, _ := fields["project_id"].(string)
	userID, _ := fields["user_id"].(string)
	if _, ok := fields["project_id"]; ok && projectID == "" {
		return repository.Failure[*models.Task](http.StatusBadRequest, msgInvalidProjectID)
	}
	if _, ok := fields["user_id"]; ok && userID == "" {
		return repository.Failure[*models.Task](http.StatusBadRequest, msgInvalidUserID)
	}
	if res, ok := s.checkReferences(ctx, projectID, userID); !ok {
		return res
	}

	if raw, ok := fields["status"]; ok {
		status, _ := raw.(string)
		if !models.TaskStatus(status).Valid() {
			return repository.Failure[*models.Task](http.StatusBadRequest, "Invalid status")
		}
	}
	if raw, ok := fields["priority"]; ok {
		priority, _ := raw.(string)
		if !models.TaskPriority(priority).Valid() {
			return repository.Failure[*models.Task](http.StatusBadRequest, "Invalid priority")
		}
	}

	if !mergedWindowValid(existing.Data.EstimatedStartTime, existing.Data.EstimatedEndTime, fields,
		"estimated_start_time", "estimated_end_time") {
		return repository.Failure[*models.Task](http.StatusBadRequest, ErrInvalidTimeWindow.Error())
	}
	return s.Update(ctx, id, fields)
}

// checkReferences validates non-empty ids only
func (s *TaskService) checkReferences(ctx context.Context, projectID, userID string) (repository.Result[*models.Task], bool) {
	if projectID != "" {
		if res := s.projects.FindOne(ctx, projectID); !res.OK() {
			if res.StatusCode == http.StatusNotFound {
				return repository.Failure[*models.Task](http.StatusBadRequest, msgInvalidProjectID), false
			}
			return repository.Failure[*models.Task](res.StatusCode, res.Message), false
		}
	}
	if userID != "" {
		if res := s.users.FindOne(ctx, userID); !res.OK() {
			if res.StatusCode == http.StatusNotFound {
				return repository.Failure[*models.Task](http.StatusBadRequest, msgInvalidUserID), false
			}
			return repository.Failure[*models.Task](res.StatusCode, res.Message), false
		}
	}
	return repository.Result[*models.Task]{}, true
}
