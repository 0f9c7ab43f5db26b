package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role grants a comma separated list of permission tokens to its users.
type Role struct {
	RoleID      string    `gorm:"column:role_id;primaryKey;size:36" json:"role_id"`
	Name        string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:varchar(500)" json:"description"`
	Permissions string    `gorm:"type:text;not null" json:"permissions"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	newID(&r.RoleID)
	return nil
}

func (Role) Schema() Schema {
	return Schema{
		Table:      "roles",
		PrimaryKey: "role_id",
		Columns:    []string{"role_id", "name", "description", "permissions", "created_at", "updated_at"},
		Mutable:    []string{"name", "description", "permissions"},
		Filterable: []string{"role_id", "name"},
	}
}

// PermissionList splits the stored permissions, trimming blanks.
func (r Role) PermissionList() []string {
	var perms []string
	for _, p := range strings.Split(r.Permissions, ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	return perms
}
