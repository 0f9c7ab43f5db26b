package repository

import (
	"context"
	"net/http"

	"github.com/pmsworkflow/pms-api/internal/models"
	"gorm.io/gorm"
)

// Envelope status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Messages shared by every entity kind
const (
	MsgEntityNotFound       = "Entity not found"
	MsgEntityNotFoundOrData = "Entity not found or Invalid data"
	MsgInternalError        = "Internal server error"
)

// Result is the uniform outcome of a data-access operation. Callers trust
// StatusCode and never inspect driver errors themselves.
type Result[D any] struct {
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
	Data       D      `json:"data,omitempty"`
	Message    string `json:"message,omitempty"`
}

// OK reports whether the operation succeeded.
func (r Result[D]) OK() bool {
	return r.Status == StatusSuccess
}

func success[D any](code int, data D) Result[D] {
	return Result[D]{Status: StatusSuccess, StatusCode: code, Data: data}
}

func failure[D any](code int, message string) Result[D] {
	return Result[D]{Status: StatusError, StatusCode: code, Message: message}
}

// NotFound builds a 404 result for callers that detect absence themselves.
func NotFound[D any](message string) Result[D] {
	if message == "" {
		message = MsgEntityNotFound
	}
	return failure[D](http.StatusNotFound, message)
}

// Failure builds an error result with the given status code.
func Failure[D any](code int, message string) Result[D] {
	return failure[D](code, message)
}

// Success builds a successful result.
func Success[D any](code int, data D) Result[D] {
	return success(code, data)
}

// Scope narrows a list query, e.g. pagination.
type Scope = func(*gorm.DB) *gorm.DB

// Repository defines generic data access for any entity kind
type Repository[T models.Entity] interface {
	// Create inserts entity and returns the stored record
	Create(ctx context.Context, entity *T) Result[*T]

	// FindOne finds a record by primary key
	FindOne(ctx context.Context, id string) Result[*T]

	// FindAll lists records matching all equality filters
	FindAll(ctx context.Context, filters map[string]string, scopes ...Scope) Result[[]T]

	// FindByIDs lists records whose primary key is in ids
	FindByIDs(ctx context.Context, ids []string) Result[[]T]

	// Update applies the mutable subset of fields and returns the re-read record
	Update(ctx context.Context, id string, fields map[string]any) Result[*T]

	// UpdateColumns applies any declared, non-key column; reserved for internal flows
	UpdateColumns(ctx context.Context, id string, fields map[string]any) Result[*T]

	// Delete removes a record by primary key
	Delete(ctx context.Context, id string) Result[*T]

	// CustomQuery runs a parametrised predicate; failures yield an empty list
	CustomQuery(ctx context.Context, predicate string, args ...any) []T

	// Schema returns the entity's registry entry
	Schema() models.Schema
}

// TaskFilter holds filtering options for the task join query
type TaskFilter struct {
	Username    string
	ProjectName string
	ProjectID   string
	Page        int
	PageSize    int
}
