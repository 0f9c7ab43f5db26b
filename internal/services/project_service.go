package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pmsworkflow/pms-api/internal/dto"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
)

var ErrInvalidTimeWindow = errors.New("end time must be after start time")

const msgInvalidUserIDs = "Invalid User IDs"

// ProjectService handles project business logic
type ProjectService struct {
	repository.Repository[models.Project]
	users *UserService
}

// NewProjectService creates a new ProjectService
func NewProjectService(repo repository.Repository[models.Project], users *UserService) *ProjectService {
	return &ProjectService{Repository: repo, users: users}
}

// CreateProject checks member ids and the time window before inserting
func (s *ProjectService) CreateProject(ctx context.Context, project *models.Project) repository.Result[*models.Project] {
	if !project.StartTime.Before(project.EndTime) {
		return repository.Failure[*models.Project](http.StatusBadRequest, ErrInvalidTimeWindow.Error())
	}

	project.UserIDs = models.IDList(uniqueIDs(project.UserIDs))
	if res, ok := s.checkMembers(ctx, project.UserIDs); !ok {
		return res
	}
	return s.Create(ctx, project)
}

// UpdateProject validates members and the merged time window
func (s *ProjectService) UpdateProject(ctx context.Context, id string, fields map[string]any) repository.Result[*models.Project] {
	existing := s.FindOne(ctx, id)
	if !existing.OK() {
		return existing
	}

	if raw, ok := fields["user_ids"]; ok {
		ids, ok := raw.(models.IDList)
		if !ok {
			return repository.Failure[*models.Project](http.StatusBadRequest, msgInvalidUserIDs)
		}
		ids = models.IDList(uniqueIDs(ids))
		if res, ok := s.checkMembers(ctx, ids); !ok {
			return res
		}
		fields["user_ids"] = ids
	}

	if !mergedWindowValid(existing.Data.StartTime, existing.Data.EndTime, fields, "start_time", "end_time") {
		return repository.Failure[*models.Project](http.StatusBadRequest, ErrInvalidTimeWindow.Error())
	}
	return s.Update(ctx, id, fields)
}

// Shape replaces member ids with usernames for each project
func (s *ProjectService) Shape(ctx context.Context, projects []models.Project) ([]dto.ProjectDTO, error) {
	var ids []string
	for _, p := range projects {
		ids = append(ids, p.UserIDs...)
	}
	names, err := s.users.UsernamesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.ProjectDTO, len(projects))
	for i, p := range projects {
		out[i] = dto.ToProjectDTO(p, names)
	}
	return out, nil
}

func (s *ProjectService) checkMembers(ctx context.Context, ids []string) (repository.Result[*models.Project], bool) {
	if len(ids) == 0 {
		return repository.Result[*models.Project]{}, true
	}
	valid, err := s.users.CheckValidUserIDs(ctx, ids)
	if err != nil {
		return repository.Failure[*models.Project](http.StatusInternalServerError, repository.MsgInternalError), false
	}
	if !valid {
		return repository.Failure[*models.Project](http.StatusBadRequest, msgInvalidUserIDs), false
	}
	return repository.Result[*models.Project]{}, true
}

// mergedWindowValid applies any start/end values present in fields over the
// stored window and reports whether start is still before end.
func mergedWindowValid(start, end time.Time, fields map[string]any, startKey, endKey string) bool {
	if v, ok := fields[startKey].(time.Time); ok {
		start = v
	}
	if v, ok := fields[endKey].(time.Time); ok {
		end = v
	}
	return start.Before(end)
}
