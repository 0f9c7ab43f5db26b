package repository

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pmsworkflow/pms-api/internal/logging"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type GormRepositoryTestSuite struct {
	suite.Suite
	db    *gorm.DB
	roles *GormRepository[models.Role]
	users *GormRepository[models.User]
	ctx   context.Context
}

func (s *GormRepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.roles = NewRepository[models.Role](s.db, logging.Discard())
	s.users = NewRepository[models.User](s.db, logging.Discard())
	s.ctx = context.Background()
}

func (s *GormRepositoryTestSuite) createRole(name string) *models.Role {
	res := s.roles.Create(s.ctx, &models.Role{Name: name, Permissions: "add_task"})
	s.Require().True(res.OK(), res.Message)
	return res.Data
}

func (s *GormRepositoryTestSuite) TestCreateThenFindOne() {
	created := s.roles.Create(s.ctx, &models.Role{Name: "manager", Description: "runs projects", Permissions: "add_project"})
	s.Require().True(created.OK())
	s.Equal(http.StatusCreated, created.StatusCode)
	s.NotEmpty(created.Data.RoleID)

	found := s.roles.FindOne(s.ctx, created.Data.RoleID)
	s.Require().True(found.OK())
	s.Equal(http.StatusOK, found.StatusCode)
	s.Equal("manager", found.Data.Name)
	s.Equal("runs projects", found.Data.Description)
	s.Equal("add_project", found.Data.Permissions)
}

func (s *GormRepositoryTestSuite) TestCreateDuplicateIsConflict() {
	s.createRole("manager")

	res := s.roles.Create(s.ctx, &models.Role{Name: "manager", Permissions: "add_task"})
	s.False(res.OK())
	s.Equal(http.StatusConflict, res.StatusCode)
	s.NotEmpty(res.Message)
}

func (s *GormRepositoryTestSuite) TestFindOneMissing() {
	res := s.roles.FindOne(s.ctx, "does-not-exist")
	s.Equal(http.StatusNotFound, res.StatusCode)
	s.Equal(StatusError, res.Status)
	s.Equal(MsgEntityNotFound, res.Message)
}

func (s *GormRepositoryTestSuite) TestFindAllFilters() {
	s.createRole("manager")
	s.createRole("developer")

	all := s.roles.FindAll(s.ctx, nil)
	s.Require().True(all.OK())
	s.Len(all.Data, 2)

	filtered := s.roles.FindAll(s.ctx, map[string]string{"name": "developer"})
	s.Require().True(filtered.OK())
	s.Require().Len(filtered.Data, 1)
	s.Equal("developer", filtered.Data[0].Name)

	none := s.roles.FindAll(s.ctx, map[string]string{"name": "nobody"})
	s.Require().True(none.OK())
	s.NotNil(none.Data)
	s.Empty(none.Data)
}

func (s *GormRepositoryTestSuite) TestFindAllRejectsUnknownField() {
	s.createRole("manager")

	res := s.users.FindAll(s.ctx, map[string]string{"password": "x"})
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Contains(res.Message, "password")

	roleRes := s.roles.FindAll(s.ctx, map[string]string{"1=1 OR name": "x"})
	s.Equal(http.StatusBadRequest, roleRes.StatusCode)
}

func (s *GormRepositoryTestSuite) TestFindAllAppliesScopes() {
	s.createRole("a")
	s.createRole("b")
	s.createRole("c")

	res := s.roles.FindAll(s.ctx, nil, func(db *gorm.DB) *gorm.DB { return db.Limit(2) })
	s.Require().True(res.OK())
	s.Len(res.Data, 2)
}

func (s *GormRepositoryTestSuite) TestFindByIDs() {
	a := s.createRole("a")
	s.createRole("b")
	c := s.createRole("c")

	res := s.roles.FindByIDs(s.ctx, []string{a.RoleID, c.RoleID, "missing"})
	s.Require().True(res.OK())
	s.Len(res.Data, 2)

	empty := s.roles.FindByIDs(s.ctx, nil)
	s.Require().True(empty.OK())
	s.Empty(empty.Data)
}

func (s *GormRepositoryTestSuite) TestUpdateAppliesMutableFieldsOnly() {
	role := s.createRole("manager")

	res := s.roles.Update(s.ctx, role.RoleID, map[string]any{
		"description": "updated",
		"role_id":     "hijacked",
		"created_at":  "2000-01-01T00:00:00Z",
	})
	s.Require().True(res.OK(), res.Message)
	s.Equal(role.RoleID, res.Data.RoleID)
	s.Equal("updated", res.Data.Description)
	s.Equal(role.CreatedAt.Unix(), res.Data.CreatedAt.Unix())
}

func (s *GormRepositoryTestSuite) TestUpdateWithOnlyDisallowedFields() {
	hashed := "$2a$08$abcdefghijklmnopqrstuv"
	user := &models.User{Username: "alice", Email: "alice@example.com", Password: hashed, RoleID: "r1"}
	s.Require().True(s.users.Create(s.ctx, user).OK())

	res := s.users.Update(s.ctx, user.UserID, map[string]any{"password": "plain", "email": "new@example.com"})
	s.Equal(http.StatusNotFound, res.StatusCode)
	s.Equal(MsgEntityNotFoundOrData, res.Message)

	stored := s.users.FindOne(s.ctx, user.UserID)
	s.Require().True(stored.OK())
	s.Equal(hashed, stored.Data.Password)
	s.Equal("alice@example.com", stored.Data.Email)
}

func (s *GormRepositoryTestSuite) TestUpdateColumnsReachesInternalColumns() {
	user := &models.User{Username: "alice", Email: "alice@example.com", Password: "old", RoleID: "r1"}
	s.Require().True(s.users.Create(s.ctx, user).OK())

	res := s.users.UpdateColumns(s.ctx, user.UserID, map[string]any{"password": "new", "user_id": "other"})
	s.Require().True(res.OK(), res.Message)
	s.Equal("new", res.Data.Password)
	s.Equal(user.UserID, res.Data.UserID)
}

func (s *GormRepositoryTestSuite) TestUpdateMissing() {
	res := s.roles.Update(s.ctx, "missing", map[string]any{"description": "x"})
	s.Equal(http.StatusNotFound, res.StatusCode)
}

func (s *GormRepositoryTestSuite) TestUpdateConflict() {
	s.createRole("manager")
	dev := s.createRole("developer")

	res := s.roles.Update(s.ctx, dev.RoleID, map[string]any{"name": "manager"})
	s.Equal(http.StatusConflict, res.StatusCode)
}

func (s *GormRepositoryTestSuite) TestDelete() {
	role := s.createRole("manager")

	res := s.roles.Delete(s.ctx, role.RoleID)
	s.Require().True(res.OK())
	s.Equal(http.StatusOK, res.StatusCode)
	s.Nil(res.Data)

	s.Equal(http.StatusNotFound, s.roles.FindOne(s.ctx, role.RoleID).StatusCode)
	s.Equal(http.StatusNotFound, s.roles.Delete(s.ctx, role.RoleID).StatusCode)
}

func (s *GormRepositoryTestSuite) TestCustomQuery() {
	s.createRole("manager")
	s.createRole("developer")

	found := s.roles.CustomQuery(s.ctx, "name = ?", "manager")
	s.Require().Len(found, 1)
	s.Equal("manager", found[0].Name)

	broken := s.roles.CustomQuery(s.ctx, "no_such_column = ?", "x")
	s.NotNil(broken)
	s.Empty(broken)
}

func TestGormRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(GormRepositoryTestSuite))
}

func newPostgresMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestCreateUniqueViolationUsesPostgresDetail(t *testing.T) {
	db, mock := newPostgresMock(t)
	repo := NewRepository[models.Role](db, logging.Discard())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "roles"`)).
		WillReturnError(&pgconn.PgError{
			Code:    "23505",
			Message: `duplicate key value violates unique constraint "idx_roles_name"`,
			Detail:  "Key (name)=(manager) already exists.",
		})

	res := repo.Create(context.Background(), &models.Role{Name: "manager", Permissions: "add_task"})
	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Equal(t, "Key (name)=(manager) already exists.", res.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOtherDriverErrorIsInternal(t *testing.T) {
	db, mock := newPostgresMock(t)
	repo := NewRepository[models.Role](db, logging.Discard())

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "roles"`)).
		WillReturnError(errors.New("connection reset"))

	res := repo.Create(context.Background(), &models.Role{Name: "manager", Permissions: "add_task"})
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, MsgInternalError, res.Message)
}

func TestCustomQueryErrorYieldsEmptyList(t *testing.T) {
	db, mock := newPostgresMock(t)
	repo := NewRepository[models.User](db, logging.Discard())

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE email = $1`)).
		WithArgs("alice@example.com").
		WillReturnError(errors.New("relation does not exist"))

	users := repo.CustomQuery(context.Background(), "email = ?", "alice@example.com")
	assert.NotNil(t, users)
	assert.Empty(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
