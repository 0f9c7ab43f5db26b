package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	UserID    string    `gorm:"column:user_id;primaryKey;size:36" json:"user_id"`
	Username  string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"`
	RoleID    string    `gorm:"size:36;not null;index" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	newID(&u.UserID)
	return nil
}

// Email, username and password are changed only through the dedicated
// credential flows.
func (User) Schema() Schema {
	return Schema{
		Table:      "users",
		PrimaryKey: "user_id",
		Columns:    []string{"user_id", "username", "email", "password", "role_id", "created_at", "updated_at"},
		Mutable:    []string{"role_id"},
		Filterable: []string{"user_id", "username", "email", "role_id"},
	}
}
