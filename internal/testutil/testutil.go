// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/config"
	"github.com/pmsworkflow/pms-api/internal/database"
	"github.com/pmsworkflow/pms-api/internal/logging"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private, migrated in-memory SQLite database that is closed
// when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A second connection would see a different in-memory database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, logging.Discard()))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// Config returns a valid configuration for the sqlite test database with
// uploads going to a temporary directory.
func Config(t *testing.T) *config.Config {
	t.Helper()

	return &config.Config{
		Server: config.ServerConfig{Port: "0", GinMode: "test"},
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
		},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret",
			AccessTokenTTL:  time.Hour,
			RefreshTokenTTL: 24 * time.Hour,
			ResetTokenTTL:   time.Hour,
		},
		Uploads: config.UploadConfig{
			Dir:      t.TempDir(),
			MaxBytes: 5 << 20,
		},
		RateLimit: config.RateLimitConfig{
			RequestsPerSecond: 1000,
			Burst:             1000,
		},
		FrontAppURL: "http://localhost:3000",
	}
}

// CreateRole inserts a role holding perms.
func CreateRole(t *testing.T, db *gorm.DB, name string, perms ...string) *models.Role {
	t.Helper()

	role := &models.Role{Name: name, Permissions: strings.Join(perms, ",")}
	require.NoError(t, db.Create(role).Error)
	return role
}

// CreateUser inserts a user with a bcrypt hash of password.
func CreateUser(t *testing.T, db *gorm.DB, username, password, roleID string) *models.User {
	t.Helper()

	hashed, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		RoleID:   roleID,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateProject inserts a project running from tomorrow for a week.
func CreateProject(t *testing.T, db *gorm.DB, name string, members ...string) *models.Project {
	t.Helper()

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	project := &models.Project{
		Name:      name,
		UserIDs:   models.IDList(members),
		StartTime: start,
		EndTime:   start.Add(7 * 24 * time.Hour),
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a task in project assigned to userID.
func CreateTask(t *testing.T, db *gorm.DB, name, projectID, userID string) *models.Task {
	t.Helper()

	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	task := &models.Task{
		Name:               name,
		ProjectID:          projectID,
		UserID:             userID,
		EstimatedStartTime: start,
		EstimatedEndTime:   start.Add(8 * time.Hour),
	}
	require.NoError(t, db.Create(task).Error)
	return task
}
