package models

import (
	"time"

	"gorm.io/gorm"
)

// File records an uploaded attachment stored on local disk under FileName.
type File struct {
	FileID    string    `gorm:"column:file_id;primaryKey;size:36" json:"file_id"`
	FileName  string    `gorm:"type:varchar(255);not null" json:"file_name"`
	MimeType  string    `gorm:"type:varchar(100);not null" json:"mime_type"`
	CreatedBy *string   `gorm:"size:36" json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *File) BeforeCreate(tx *gorm.DB) error {
	newID(&f.FileID)
	return nil
}

func (File) Schema() Schema {
	return Schema{
		Table:      "files",
		PrimaryKey: "file_id",
		Columns:    []string{"file_id", "file_name", "mime_type", "created_by", "created_at", "updated_at"},
		Filterable: []string{"file_id", "created_by"},
	}
}
