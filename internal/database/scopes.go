package database

import (
	"gorm.io/gorm"

	"github.com/pmsworkflow/pms-api/internal/utils"
)

// Paginate applies offset/limit when the caller asked for a page; otherwise
// the full result set is returned.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if !params.Requested {
			return db
		}
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NewestFirst orders rows by creation time, most recent first.
func NewestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC")
}
