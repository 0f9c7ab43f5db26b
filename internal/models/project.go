package models

import (
	"time"

	"gorm.io/gorm"
)

type Project struct {
	ProjectID   string    `gorm:"column:project_id;primaryKey;size:36" json:"project_id"`
	Name        string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	UserIDs     IDList    `gorm:"column:user_ids" json:"user_ids"`
	StartTime   time.Time `gorm:"not null" json:"start_time"`
	EndTime     time.Time `gorm:"not null" json:"end_time"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	newID(&p.ProjectID)
	return nil
}

func (Project) Schema() Schema {
	return Schema{
		Table:      "projects",
		PrimaryKey: "project_id",
		Columns:    []string{"project_id", "name", "description", "user_ids", "start_time", "end_time", "created_at", "updated_at"},
		Mutable:    []string{"name", "description", "user_ids", "start_time", "end_time"},
		Filterable: []string{"project_id", "name"},
	}
}
