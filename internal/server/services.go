package server

import (
	"log/slog"

	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/config"
	"github.com/pmsworkflow/pms-api/internal/mail"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"github.com/pmsworkflow/pms-api/internal/services"
	"gorm.io/gorm"
)

// Services bundles the business layer shared by the router and the CLI.
type Services struct {
	Auth     *services.AuthService
	Users    *services.UserService
	Roles    *services.RoleService
	Projects *services.ProjectService
	Tasks    *services.TaskService
	Comments *services.CommentService
	Files    *services.FileService
}

// NewServices wires repositories and services over one connection pool.
func NewServices(db *gorm.DB, cfg *config.Config, mailer mail.Mailer, logger *slog.Logger) *Services {
	roles := services.NewRoleService(repository.NewRepository[models.Role](db, logger))
	users := services.NewUserService(repository.NewRepository[models.User](db, logger), roles)
	projects := services.NewProjectService(repository.NewRepository[models.Project](db, logger), users)
	tasks := services.NewTaskService(repository.NewTaskRepository(db, logger), projects, users)
	files := services.NewFileService(repository.NewRepository[models.File](db, logger), cfg.Uploads.Dir, cfg.Uploads.MaxBytes, logger)
	comments := services.NewCommentService(repository.NewRepository[models.Comment](db, logger), tasks, files)

	tokens := auth.NewTokenService(cfg.Auth)
	authService := services.NewAuthService(users, roles, tokens, mailer, cfg.FrontAppURL, logger)

	return &Services{
		Auth:     authService,
		Users:    users,
		Roles:    roles,
		Projects: projects,
		Tasks:    tasks,
		Comments: comments,
		Files:    files,
	}
}
