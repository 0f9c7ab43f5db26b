package models

import (
	"time"

	"gorm.io/gorm"
)

type Comment struct {
	CommentID      string    `gorm:"column:comment_id;primaryKey;size:36" json:"comment_id"`
	Comment        string    `gorm:"type:text;not null" json:"comment"`
	UserID         string    `gorm:"size:36;not null;index" json:"user_id"`
	TaskID         string    `gorm:"size:36;not null;index" json:"task_id"`
	SupportedFiles IDList    `gorm:"column:supported_files" json:"supported_files"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	newID(&c.CommentID)
	return nil
}

func (Comment) Schema() Schema {
	return Schema{
		Table:      "comments",
		PrimaryKey: "comment_id",
		Columns:    []string{"comment_id", "comment", "user_id", "task_id", "supported_files", "created_at", "updated_at"},
		Mutable:    []string{"comment", "supported_files"},
		Filterable: []string{"comment_id", "user_id", "task_id"},
	}
}
