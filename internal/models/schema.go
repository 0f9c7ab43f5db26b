package models

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Schema describes how the generic repository may touch an entity's table.
// Mutable lists the columns accepted by the public update path, Filterable
// the columns accepted as equality filters on list queries.
type Schema struct {
	Table      string
	PrimaryKey string
	Columns    []string
	Mutable    []string
	Filterable []string
}

// HasColumn reports whether col is a declared column of the table.
func (s Schema) HasColumn(col string) bool {
	return contains(s.Columns, col)
}

// IsMutable reports whether col may be changed through the public update path.
func (s Schema) IsMutable(col string) bool {
	return contains(s.Mutable, col)
}

// IsFilterable reports whether col may be used as a list filter.
func (s Schema) IsFilterable(col string) bool {
	return contains(s.Filterable, col)
}

// Entity is implemented by every persisted model.
type Entity interface {
	Schema() Schema
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

// newID assigns a fresh UUID when the key is still empty.
func newID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// IDList is a list of entity IDs stored as a text array on Postgres and as
// the same array literal in a text column elsewhere.
type IDList []string

// Value implements driver.Valuer.
func (l IDList) Value() (driver.Value, error) {
	if l == nil {
		return pq.StringArray{}.Value()
	}
	return pq.StringArray(l).Value()
}

// Scan implements sql.Scanner.
func (l *IDList) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return fmt.Errorf("scan id list: %w", err)
	}
	*l = IDList(arr)
	return nil
}

// GormDBDataType picks the column type per dialect.
func (IDList) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}
