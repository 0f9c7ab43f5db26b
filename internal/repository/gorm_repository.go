package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pmsworkflow/pms-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const pgUniqueViolation = "23505"

// GormRepository is a GORM implementation of Repository
type GormRepository[T models.Entity] struct {
	db     *gorm.DB
	logger *slog.Logger
	schema models.Schema
}

// NewRepository creates a Repository bound to T's table
func NewRepository[T models.Entity](db *gorm.DB, logger *slog.Logger) *GormRepository[T] {
	if logger == nil {
		logger = slog.Default()
	}
	var zero T
	return &GormRepository[T]{db: db, logger: logger, schema: zero.Schema()}
}

func (r *GormRepository[T]) Schema() models.Schema {
	return r.schema
}

func (r *GormRepository[T]) Create(ctx context.Context, entity *T) Result[*T] {
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		if detail, ok := r.uniqueViolation(err); ok {
			return failure[*T](http.StatusConflict, detail)
		}
		r.logger.ErrorContext(ctx, "create failed", "table", r.schema.Table, "error", err)
		return failure[*T](http.StatusInternalServerError, MsgInternalError)
	}
	return success(http.StatusCreated, entity)
}

func (r *GormRepository[T]) FindOne(ctx context.Context, id string) Result[*T] {
	var entity T
	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: r.schema.PrimaryKey}, Value: id}).
		Take(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return failure[*T](http.StatusNotFound, MsgEntityNotFound)
		}
		r.logger.ErrorContext(ctx, "find one failed", "table", r.schema.Table, "id", id, "error", err)
		return failure[*T](http.StatusInternalServerError, MsgInternalError)
	}
	return success(http.StatusOK, &entity)
}

func (r *GormRepository[T]) FindAll(ctx context.Context, filters map[string]string, scopes ...Scope) Result[[]T] {
	fields := make([]string, 0, len(filters))
	for field := range filters {
		if !r.schema.IsFilterable(field) {
			return failure[[]T](http.StatusBadRequest, fmt.Sprintf("Invalid filter field: %s", field))
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	query := r.db.WithContext(ctx).Model(new(T))
	for _, field := range fields {
		query = query.Where(clause.Eq{Column: clause.Column{Name: field}, Value: filters[field]})
	}

	entities := []T{}
	if err := query.Scopes(scopes...).Find(&entities).Error; err != nil {
		r.logger.ErrorContext(ctx, "find all failed", "table", r.schema.Table, "error", err)
		return failure[[]T](http.StatusInternalServerError, MsgInternalError)
	}
	return success(http.StatusOK, entities)
}

func (r *GormRepository[T]) FindByIDs(ctx context.Context, ids []string) Result[[]T] {
	entities := []T{}
	if len(ids) == 0 {
		return success(http.StatusOK, entities)
	}

	err := r.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: r.schema.PrimaryKey}, Values: toAny(ids)}).
		Find(&entities).Error
	if err != nil {
		r.logger.ErrorContext(ctx, "find by ids failed", "table", r.schema.Table, "error", err)
		return failure[[]T](http.StatusInternalServerError, MsgInternalError)
	}
	return success(http.StatusOK, entities)
}

func (r *GormRepository[T]) Update(ctx context.Context, id string, fields map[string]any) Result[*T] {
	return r.update(ctx, id, fields, r.schema.IsMutable)
}

func (r *GormRepository[T]) UpdateColumns(ctx context.Context, id string, fields map[string]any) Result[*T] {
	return r.update(ctx, id, fields, func(col string) bool {
		return col != r.schema.PrimaryKey && r.schema.HasColumn(col)
	})
}

func (r *GormRepository[T]) update(ctx context.Context, id string, fields map[string]any, allowed func(string) bool) Result[*T] {
	if existing := r.FindOne(ctx, id); !existing.OK() {
		return existing
	}

	changes := make(map[string]any, len(fields))
	for col, value := range fields {
		if allowed(col) {
			changes[col] = value
		}
	}
	if len(changes) == 0 {
		return failure[*T](http.StatusNotFound, MsgEntityNotFoundOrData)
	}

	res := r.db.WithContext(ctx).
		Model(new(T)).
		Where(clause.Eq{Column: clause.Column{Name: r.schema.PrimaryKey}, Value: id}).
		Updates(changes)
	if res.Error != nil {
		if detail, ok := r.uniqueViolation(res.Error); ok {
			return failure[*T](http.StatusConflict, detail)
		}
		r.logger.ErrorContext(ctx, "update failed", "table", r.schema.Table, "id", id, "error", res.Error)
		return failure[*T](http.StatusInternalServerError, MsgInternalError)
	}
	if res.RowsAffected == 0 {
		return failure[*T](http.StatusNotFound, MsgEntityNotFoundOrData)
	}

	return r.FindOne(ctx, id)
}

func (r *GormRepository[T]) Delete(ctx context.Context, id string) Result[*T] {
	if existing := r.FindOne(ctx, id); !existing.OK() {
		return existing
	}

	err := r.db.WithContext(ctx).
		Where(clause.Eq{Column: clause.Column{Name: r.schema.PrimaryKey}, Value: id}).
		Delete(new(T)).Error
	if err != nil {
		r.logger.ErrorContext(ctx, "delete failed", "table", r.schema.Table, "id", id, "error", err)
		return failure[*T](http.StatusInternalServerError, MsgInternalError)
	}
	return success[*T](http.StatusOK, nil)
}

func (r *GormRepository[T]) CustomQuery(ctx context.Context, predicate string, args ...any) []T {
	entities := []T{}
	if err := r.db.WithContext(ctx).Where(predicate, args...).Find(&entities).Error; err != nil {
		r.logger.ErrorContext(ctx, "custom query failed", "table", r.schema.Table, "error", err)
		return []T{}
	}
	return entities
}

// uniqueViolation reports whether err is a uniqueness conflict and returns
// the message to surface. Postgres carries the offending key in Detail.
func (r *GormRepository[T]) uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code != pgUniqueViolation {
			return "", false
		}
		if pgErr.Detail != "" {
			return pgErr.Detail, true
		}
		return pgErr.Message, true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return err.Error(), true
	}
	if translator, ok := r.db.Dialector.(gorm.ErrorTranslator); ok {
		if errors.Is(translator.Translate(err), gorm.ErrDuplicatedKey) {
			return err.Error(), true
		}
	}
	return "", false
}

func toAny(ids []string) []any {
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return values
}
