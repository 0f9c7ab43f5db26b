package database

import (
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"
)

// AddIndexes adds the composite and lookup indexes used by list and join queries
func AddIndexes(db *gorm.DB, log *slog.Logger) error {
	indexes := []struct {
		table   string
		name    string
		columns []string
	}{
		{"tasks", "idx_tasks_project_status", []string{"project_id", "status"}},
		{"tasks", "idx_tasks_created_at", []string{"created_at"}},
		{"comments", "idx_comments_task_created", []string{"task_id", "created_at"}},
		{"files", "idx_files_created_by", []string{"created_by"}},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug("index already exists, skipping", "index", idx.name)
			continue
		}

		stmt := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Info("created index", "index", idx.name, "table", idx.table)
	}

	return nil
}
