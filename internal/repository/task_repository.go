package repository

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pmsworkflow/pms-api/internal/models"
	"gorm.io/gorm"
)

// TaskRepository adds the project/user join queries to the generic task store
type TaskRepository interface {
	Repository[models.Task]

	// ListWithDetails lists tasks joined with their project and assignee
	ListWithDetails(ctx context.Context, filter TaskFilter) ([]TaskDetailsRow, error)

	// FindWithDetails finds one task joined with its project and assignee
	FindWithDetails(ctx context.Context, id string) (*TaskDetailsRow, error)
}

// TaskDetailsRow is a task row plus the joined project and user columns.
// Joined columns are nil when the referenced row no longer exists.
type TaskDetailsRow struct {
	models.Task
	JoinedProjectID *string `gorm:"column:p_project_id"`
	ProjectName     *string `gorm:"column:p_name"`
	JoinedUserID    *string `gorm:"column:u_user_id"`
	Username        *string `gorm:"column:u_username"`
	UserEmail       *string `gorm:"column:u_email"`
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	*GormRepository[models.Task]
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB, logger *slog.Logger) *GormTaskRepository {
	return &GormTaskRepository{GormRepository: NewRepository[models.Task](db, logger)}
}

func (r *GormTaskRepository) detailsQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Table("tasks").
		Select("tasks.*, " +
			"p.project_id AS p_project_id, p.name AS p_name, " +
			"u.user_id AS u_user_id, u.username AS u_username, u.email AS u_email").
		Joins("LEFT JOIN projects AS p ON p.project_id = tasks.project_id").
		Joins("LEFT JOIN users AS u ON u.user_id = tasks.user_id")
}

// ListWithDetails retrieves tasks with optional username/project name substring
// filters (case-insensitive) and an exact project filter
func (r *GormTaskRepository) ListWithDetails(ctx context.Context, filter TaskFilter) ([]TaskDetailsRow, error) {
	query := r.detailsQuery(ctx)

	if filter.Username != "" {
		query = query.Where(`LOWER(u.username) LIKE ? ESCAPE '!'`, likePattern(filter.Username))
	}
	if filter.ProjectName != "" {
		query = query.Where(`LOWER(p.name) LIKE ? ESCAPE '!'`, likePattern(filter.ProjectName))
	}
	if filter.ProjectID != "" {
		query = query.Where("tasks.project_id = ?", filter.ProjectID)
	}

	query = query.Order("tasks.created_at DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	rows := []TaskDetailsRow{}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// FindWithDetails returns gorm.ErrRecordNotFound when no task matches
func (r *GormTaskRepository) FindWithDetails(ctx context.Context, id string) (*TaskDetailsRow, error) {
	var rows []TaskDetailsRow
	if err := r.detailsQuery(ctx).Where("tasks.task_id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// Pairs with the ESCAPE '!' clause in ListWithDetails
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern builds a substring match where % and _ in s are literal
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
