package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pmsworkflow/pms-api/internal/config"
	"github.com/pmsworkflow/pms-api/internal/constants"
	"github.com/pmsworkflow/pms-api/internal/handlers"
	"github.com/pmsworkflow/pms-api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// NewRouter registers every route on a fresh gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, svc *Services, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestLogger(logger),
		middleware.Recovery(logger),
		middleware.Metrics(),
	)
	r.MaxMultipartMemory = cfg.Uploads.MaxBytes

	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "ping!")
	})
	r.GET("/health", healthHandler(db))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handlers.NewAuthHandler(svc.Auth)
	userHandler := handlers.NewUserHandler(svc.Users)
	roleHandler := handlers.NewRoleHandler(svc.Roles)
	projectHandler := handlers.NewProjectHandler(svc.Projects)
	taskHandler := handlers.NewTaskHandler(svc.Tasks)
	commentHandler := handlers.NewCommentHandler(svc.Comments)
	fileHandler := handlers.NewFileHandler(svc.Files)

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	requireAuth := middleware.Authorize(svc.Auth)
	can := middleware.RequirePermission

	api := r.Group("/api")
	{
		// Credential routes (public)
		public := api.Group("")
		public.Use(limiter.Middleware())
		{
			public.POST("/login", authHandler.Login)
			public.POST("/refresh-token", authHandler.RefreshToken)
			public.POST("/forgot-password", authHandler.ForgotPassword)
			public.POST("/reset-password", authHandler.ResetPassword)
		}

		protected := api.Group("")
		protected.Use(requireAuth)

		users := protected.Group("/users")
		{
			users.POST("", can(constants.PermAddUser), userHandler.CreateUser)
			users.GET("", can(constants.PermGetAllUser), userHandler.ListUsers)
			users.GET("/:id", can(constants.PermGetDetailsUser), userHandler.GetUser)
			users.PUT("/:id", can(constants.PermEditUser), userHandler.UpdateUser)
			users.DELETE("/:id", can(constants.PermDeleteUser), userHandler.DeleteUser)
			users.PUT("/:id/password", authHandler.ChangePassword)
		}

		roles := protected.Group("/roles")
		{
			roles.POST("", can(constants.PermAddRole), roleHandler.CreateRole)
			roles.GET("", can(constants.PermGetAllRole), roleHandler.ListRoles)
			roles.GET("/:id", can(constants.PermGetDetailsRole), roleHandler.GetRole)
			roles.PUT("/:id", can(constants.PermEditRole), roleHandler.UpdateRole)
			roles.DELETE("/:id", can(constants.PermDeleteRole), roleHandler.DeleteRole)
		}
		protected.GET("/permissions", can(constants.PermGetAllRole), roleHandler.ListPermissions)

		projects := protected.Group("/projects")
		{
			projects.POST("", can(constants.PermAddProject), projectHandler.CreateProject)
			projects.GET("", can(constants.PermGetAllProject), projectHandler.ListProjects)
			projects.GET("/:id", can(constants.PermGetDetailsProject), projectHandler.GetProject)
			projects.PUT("/:id", can(constants.PermEditProject), projectHandler.UpdateProject)
			projects.DELETE("/:id", can(constants.PermDeleteProject), projectHandler.DeleteProject)
		}

		tasks := protected.Group("/tasks")
		{
			tasks.POST("", can(constants.PermAddTask), taskHandler.CreateTask)
			tasks.GET("", can(constants.PermGetAllTask), taskHandler.ListTasks)
			tasks.GET("/:id", can(constants.PermGetDetailsTask), taskHandler.GetTask)
			tasks.PUT("/:id", can(constants.PermEditTask), taskHandler.UpdateTask)
			tasks.DELETE("/:id", can(constants.PermDeleteTask), taskHandler.DeleteTask)
		}

		comments := protected.Group("/comments")
		{
			comments.POST("", can(constants.PermAddComment), commentHandler.CreateComment)
			comments.GET("", can(constants.PermGetAllComment), commentHandler.ListComments)
			comments.GET("/:id", can(constants.PermGetDetailsComment), commentHandler.GetComment)
			comments.PUT("/:id", can(constants.PermEditComment), commentHandler.UpdateComment)
			comments.DELETE("/:id", can(constants.PermDeleteComment), commentHandler.DeleteComment)
		}

		// Attachments belong to comments
		files := protected.Group("/files")
		{
			files.POST("", can(constants.PermAddComment), fileHandler.UploadFile)
			files.GET("/:id", can(constants.PermGetDetailsComment), fileHandler.DownloadFile)
		}
	}

	return r
}

func healthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "error",
				"message": "database unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "PMS API is running",
		})
	}
}
