package dto

import (
	"time"

	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
)

// UserSummary is the user as embedded in task responses
type UserSummary struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProjectRef is the project as embedded in task responses
type ProjectRef struct {
	ProjectID string `json:"project_id"`
	Name      string `json:"name"`
}

// TaskDTO represents a task with its project and assignee in place of the raw foreign keys
type TaskDTO struct {
	TaskID             string              `json:"task_id"`
	Name               string              `json:"name"`
	Description        string              `json:"description"`
	EstimatedStartTime time.Time           `json:"estimated_start_time"`
	EstimatedEndTime   time.Time           `json:"estimated_end_time"`
	ActualStartTime    *time.Time          `json:"actual_start_time"`
	ActualEndTime      *time.Time          `json:"actual_end_time"`
	Status             models.TaskStatus   `json:"status"`
	Priority           models.TaskPriority `json:"priority"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
	ProjectDetails     *ProjectRef         `json:"projectDetails"`
	UserDetails        *UserSummary        `json:"userDetails"`
}

// ToTaskDTO converts a joined task row
func ToTaskDTO(row repository.TaskDetailsRow) TaskDTO {
	out := TaskDTO{
		TaskID:             row.TaskID,
		Name:               row.Name,
		Description:        row.Description,
		EstimatedStartTime: row.EstimatedStartTime,
		EstimatedEndTime:   row.EstimatedEndTime,
		ActualStartTime:    row.ActualStartTime,
		ActualEndTime:      row.ActualEndTime,
		Status:             row.Status,
		Priority:           row.Priority,
		CreatedAt:          row.CreatedAt,
		UpdatedAt:          row.UpdatedAt,
	}
	if row.JoinedProjectID != nil {
		out.ProjectDetails = &ProjectRef{ProjectID: *row.JoinedProjectID, Name: deref(row.ProjectName)}
	}
	if row.JoinedUserID != nil {
		out.UserDetails = &UserSummary{
			UserID:   *row.JoinedUserID,
			Username: deref(row.Username),
			Email:    deref(row.UserEmail),
		}
	}
	return out
}

// ToTaskDTOs converts a list of joined task rows
func ToTaskDTOs(rows []repository.TaskDetailsRow) []TaskDTO {
	out := make([]TaskDTO, len(rows))
	for i, row := range rows {
		out[i] = ToTaskDTO(row)
	}
	return out
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
