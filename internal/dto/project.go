package dto

import (
	"time"

	"github.com/pmsworkflow/pms-api/internal/models"
)

// UserRef is a project member
type UserRef struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// ProjectDTO replaces the stored member IDs with member references
type ProjectDTO struct {
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Users       []UserRef `json:"users"`
}

// ToProjectDTO resolves member IDs against usernames. IDs without a user are
// dropped.
func ToProjectDTO(p models.Project, usernames map[string]string) ProjectDTO {
	users := make([]UserRef, 0, len(p.UserIDs))
	for _, id := range p.UserIDs {
		if name, ok := usernames[id]; ok {
			users = append(users, UserRef{UserID: id, Username: name})
		}
	}
	return ProjectDTO{
		ProjectID:   p.ProjectID,
		Name:        p.Name,
		Description: p.Description,
		StartTime:   p.StartTime,
		EndTime:     p.EndTime,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Users:       users,
	}
}
