package services

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/logging"
	"github.com/pmsworkflow/pms-api/internal/mail"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
	"github.com/pmsworkflow/pms-api/internal/testutil"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type recordingMailer struct {
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(ctx context.Context, msg mail.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type ServicesTestSuite struct {
	suite.Suite
	ctx    context.Context
	db     *gorm.DB
	mailer *recordingMailer
	tokens *auth.TokenService

	roles    *RoleService
	users    *UserService
	projects *ProjectService
	tasks    *TaskService
	files    *FileService
	comments *CommentService
	auth     *AuthService

	role  *models.Role
	alice *models.User
}

func (s *ServicesTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.db = testutil.NewDB(s.T())
	logger := logging.Discard()
	cfg := testutil.Config(s.T())

	s.roles = NewRoleService(repository.NewRepository[models.Role](s.db, logger))
	s.users = NewUserService(repository.NewRepository[models.User](s.db, logger), s.roles)
	s.projects = NewProjectService(repository.NewRepository[models.Project](s.db, logger), s.users)
	s.tasks = NewTaskService(repository.NewTaskRepository(s.db, logger), s.projects, s.users)
	s.files = NewFileService(repository.NewRepository[models.File](s.db, logger), cfg.Uploads.Dir, 1024, logger)
	s.comments = NewCommentService(repository.NewRepository[models.Comment](s.db, logger), s.tasks, s.files)

	s.mailer = &recordingMailer{}
	s.tokens = auth.NewTokenService(cfg.Auth)
	s.auth = NewAuthService(s.users, s.roles, s.tokens, s.mailer, "http://front.example", logger)

	s.role = testutil.CreateRole(s.T(), s.db, "dev", "add_task", "get_all_task")
	s.alice = testutil.CreateUser(s.T(), s.db, "alice", "password1", s.role.RoleID)
}

func TestServicesTestSuite(t *testing.T) {
	suite.Run(t, new(ServicesTestSuite))
}

// Roles

func (s *ServicesTestSuite) TestNormalizePermissions() {
	perms, err := NormalizePermissions(" add_task ,get_all_task,add_task,, ")
	s.Require().NoError(err)
	s.Equal("add_task,get_all_task", perms)

	_, err = NormalizePermissions("add_task,launch_rockets")
	s.True(errors.Is(err, ErrUnknownPermission))

	_, err = NormalizePermissions(" , ")
	s.True(errors.Is(err, ErrNoPermissions))
}

func (s *ServicesTestSuite) TestCreateRoleRejectsUnknownPermission() {
	res := s.roles.CreateRole(s.ctx, &models.Role{Name: "bad", Permissions: "fly"})
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *ServicesTestSuite) TestUpdateRoleNormalizesPermissions() {
	res := s.roles.UpdateRole(s.ctx, s.role.RoleID, map[string]any{"permissions": "edit_task, edit_task"})
	s.Require().True(res.OK(), res.Message)
	s.Equal("edit_task", res.Data.Permissions)

	res = s.roles.UpdateRole(s.ctx, s.role.RoleID, map[string]any{"permissions": 7})
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

// Users

func (s *ServicesTestSuite) TestCreateUser() {
	res := s.users.CreateUser(s.ctx, CreateUserInput{
		Username: "  Bob ",
		Email:    "BOB@Example.com",
		Password: "hunter22",
		RoleID:   s.role.RoleID,
	})
	s.Require().True(res.OK(), res.Message)
	s.Equal(http.StatusCreated, res.StatusCode)
	s.Equal("bob", res.Data.Username)
	s.Equal("bob@example.com", res.Data.Email)
	s.NotEqual("hunter22", res.Data.Password)
	s.True(auth.CheckPassword(res.Data.Password, "hunter22"))
}

func (s *ServicesTestSuite) TestCreateUserInvalidRole() {
	for _, roleID := range []string{"missing", ""} {
		res := s.users.CreateUser(s.ctx, CreateUserInput{Username: "bob", Email: "bob@example.com", Password: "hunter22", RoleID: roleID})
		s.Equal(http.StatusBadRequest, res.StatusCode)
		s.Equal("Invalid role ids", res.Message)
	}
}

func (s *ServicesTestSuite) TestUpdateUserRole() {
	res := s.users.UpdateUser(s.ctx, s.alice.UserID, map[string]any{"role_id": "missing"})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	other := testutil.CreateRole(s.T(), s.db, "lead", "edit_task")
	res = s.users.UpdateUser(s.ctx, s.alice.UserID, map[string]any{"role_id": other.RoleID})
	s.Require().True(res.OK(), res.Message)
	s.Equal(other.RoleID, res.Data.RoleID)
}

// Auth

func (s *ServicesTestSuite) TestLogin() {
	result, err := s.auth.Login(s.ctx, LoginInput{Email: "ALICE@example.com", Password: "password1"})
	s.Require().NoError(err)
	s.Equal(s.alice.UserID, result.User.UserID)
	s.NotEmpty(result.Tokens.AccessToken)
	s.NotEmpty(result.Tokens.RefreshToken)

	_, err = s.auth.Login(s.ctx, LoginInput{Email: "alice@example.com", Password: "nope"})
	s.True(errors.Is(err, ErrIncorrectPassword))

	_, err = s.auth.Login(s.ctx, LoginInput{Email: "ghost@example.com", Password: "password1"})
	s.True(errors.Is(err, ErrUserNotFound))
}

func (s *ServicesTestSuite) TestRefresh() {
	result, err := s.auth.Login(s.ctx, LoginInput{Email: "alice@example.com", Password: "password1"})
	s.Require().NoError(err)

	access, err := s.auth.Refresh(s.ctx, result.Tokens.RefreshToken)
	s.Require().NoError(err)
	s.NotEmpty(access)

	_, err = s.auth.Refresh(s.ctx, result.Tokens.AccessToken)
	s.True(errors.Is(err, ErrInvalidRefreshToken))

	s.Require().True(s.users.Delete(s.ctx, s.alice.UserID).OK())
	_, err = s.auth.Refresh(s.ctx, result.Tokens.RefreshToken)
	s.True(errors.Is(err, ErrInvalidRefreshToken))
}

func (s *ServicesTestSuite) TestAuthenticate() {
	access, err := s.tokens.GenerateAccessToken(*s.alice)
	s.Require().NoError(err)

	principal, err := s.auth.Authenticate(s.ctx, access)
	s.Require().NoError(err)
	s.Equal(s.alice.UserID, principal.UserID)
	s.True(principal.Can("add_task"))
	s.False(principal.Can("add_project"))

	_, err = s.auth.Authenticate(s.ctx, "garbage")
	s.True(errors.Is(err, ErrInvalidAccessToken))

	s.Require().True(s.users.Delete(s.ctx, s.alice.UserID).OK())
	_, err = s.auth.Authenticate(s.ctx, access)
	s.True(errors.Is(err, ErrUserNotFound))
}

func (s *ServicesTestSuite) TestChangePassword() {
	caller := auth.Principal{UserID: s.alice.UserID}
	bob := testutil.CreateUser(s.T(), s.db, "bob", "password1", s.role.RoleID)

	err := s.auth.ChangePassword(s.ctx, caller, ChangePasswordInput{UserID: bob.UserID, OldPassword: "password1", NewPassword: "newpass1"})
	s.True(errors.Is(err, ErrNotOwnAccount))

	err = s.auth.ChangePassword(s.ctx, caller, ChangePasswordInput{UserID: s.alice.UserID, OldPassword: "wrong", NewPassword: "newpass1"})
	s.True(errors.Is(err, ErrInvalidOldPassword))

	err = s.auth.ChangePassword(s.ctx, caller, ChangePasswordInput{UserID: s.alice.UserID, OldPassword: "password1", NewPassword: "123"})
	s.True(errors.Is(err, ErrPasswordTooShort))

	err = s.auth.ChangePassword(s.ctx, caller, ChangePasswordInput{UserID: "missing", OldPassword: "password1", NewPassword: "newpass1"})
	s.True(errors.Is(err, ErrUserNotFound))

	s.Require().NoError(s.auth.ChangePassword(s.ctx, caller, ChangePasswordInput{UserID: s.alice.UserID, OldPassword: "password1", NewPassword: "newpass1"}))
	_, err = s.auth.Login(s.ctx, LoginInput{Email: "alice@example.com", Password: "newpass1"})
	s.NoError(err)
}

func (s *ServicesTestSuite) TestForgotAndResetPassword() {
	s.Require().NoError(s.auth.ForgotPassword(s.ctx, "alice@example.com"))
	s.Require().Len(s.mailer.sent, 1)

	msg := s.mailer.sent[0]
	s.Equal([]string{"alice@example.com"}, msg.To)
	s.Contains(msg.HTML, "http://front.example/api/reset-password?token=")

	start := strings.Index(msg.HTML, "?token=") + len("?token=")
	end := strings.Index(msg.HTML[start:], `"`)
	token, err := url.QueryUnescape(msg.HTML[start : start+end])
	s.Require().NoError(err)

	s.Require().NoError(s.auth.ResetPassword(s.ctx, token, "brandnew1"))
	_, err = s.auth.Login(s.ctx, LoginInput{Email: "alice@example.com", Password: "brandnew1"})
	s.NoError(err)

	err = s.auth.ResetPassword(s.ctx, "garbage", "brandnew1")
	s.True(errors.Is(err, ErrInvalidResetToken))

	access, err := s.tokens.GenerateAccessToken(*s.alice)
	s.Require().NoError(err)
	err = s.auth.ResetPassword(s.ctx, access, "brandnew1")
	s.True(errors.Is(err, ErrInvalidResetToken))
}

func (s *ServicesTestSuite) TestForgotPasswordFailures() {
	err := s.auth.ForgotPassword(s.ctx, "ghost@example.com")
	s.True(errors.Is(err, ErrUserNotFound))

	s.mailer.err = errors.New("relay down")
	err = s.auth.ForgotPassword(s.ctx, "alice@example.com")
	s.True(errors.Is(err, ErrMailDelivery))
}

// Projects

func (s *ServicesTestSuite) newProject(name string, members ...string) *models.Project {
	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	return &models.Project{
		Name:      name,
		UserIDs:   models.IDList(members),
		StartTime: start,
		EndTime:   start.Add(48 * time.Hour),
	}
}

func (s *ServicesTestSuite) TestCreateProject() {
	p := s.newProject("Apollo", s.alice.UserID, s.alice.UserID)
	res := s.projects.CreateProject(s.ctx, p)
	s.Require().True(res.OK(), res.Message)
	s.Equal(models.IDList{s.alice.UserID}, res.Data.UserIDs)

	stored := s.projects.FindOne(s.ctx, res.Data.ProjectID)
	s.Require().True(stored.OK())
	s.Equal(models.IDList{s.alice.UserID}, stored.Data.UserIDs)
}

func (s *ServicesTestSuite) TestCreateProjectValidation() {
	p := s.newProject("Inverted")
	p.EndTime = p.StartTime
	res := s.projects.CreateProject(s.ctx, p)
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.projects.CreateProject(s.ctx, s.newProject("Ghosts", "missing-user"))
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal("Invalid User IDs", res.Message)

	var count int64
	s.db.Model(&models.Project{}).Count(&count)
	s.Zero(count)
}

func (s *ServicesTestSuite) TestUpdateProjectMergesWindow() {
	created := s.projects.CreateProject(s.ctx, s.newProject("Apollo"))
	s.Require().True(created.OK())

	res := s.projects.UpdateProject(s.ctx, created.Data.ProjectID, map[string]any{
		"end_time": created.Data.StartTime.Add(-time.Hour),
	})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.projects.UpdateProject(s.ctx, created.Data.ProjectID, map[string]any{
		"user_ids": models.IDList{s.alice.UserID},
		"name":     "Apollo II",
	})
	s.Require().True(res.OK(), res.Message)
	s.Equal("Apollo II", res.Data.Name)

	res = s.projects.UpdateProject(s.ctx, created.Data.ProjectID, map[string]any{"user_ids": []string{"x"}})
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *ServicesTestSuite) TestShapeProjects() {
	bob := testutil.CreateUser(s.T(), s.db, "bob", "password1", s.role.RoleID)
	p := testutil.CreateProject(s.T(), s.db, "Apollo", s.alice.UserID, bob.UserID, "deleted-user")

	shaped, err := s.projects.Shape(s.ctx, []models.Project{*p})
	s.Require().NoError(err)
	s.Require().Len(shaped, 1)
	s.Len(shaped[0].Users, 2)
	s.Equal("alice", shaped[0].Users[0].Username)
	s.Equal("bob", shaped[0].Users[1].Username)
}

// Tasks

func (s *ServicesTestSuite) newTask(projectID, userID string) *models.Task {
	start := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	return &models.Task{
		Name:               "design",
		ProjectID:          projectID,
		UserID:             userID,
		EstimatedStartTime: start,
		EstimatedEndTime:   start.Add(4 * time.Hour),
	}
}

func (s *ServicesTestSuite) TestCreateTask() {
	project := testutil.CreateProject(s.T(), s.db, "Apollo", s.alice.UserID)

	res := s.tasks.CreateTask(s.ctx, s.newTask(project.ProjectID, s.alice.UserID))
	s.Require().True(res.OK(), res.Message)
	s.Equal(models.TaskStatusNotStarted, res.Data.Status)
	s.Equal(models.TaskPriorityLow, res.Data.Priority)

	found := s.tasks.FindOne(s.ctx, res.Data.TaskID)
	s.Require().True(found.OK())
	s.Require().NotNil(found.Data.ProjectDetails)
	s.Equal("Apollo", found.Data.ProjectDetails.Name)
	s.Require().NotNil(found.Data.UserDetails)
	s.Equal("alice", found.Data.UserDetails.Username)

	list := s.tasks.FindAll(s.ctx, repository.TaskFilter{Username: "ALICE"})
	s.Require().True(list.OK())
	s.Len(list.Data, 1)

	s.Equal(http.StatusNotFound, s.tasks.FindOne(s.ctx, "missing").StatusCode)
}

func (s *ServicesTestSuite) TestCreateTaskValidation() {
	project := testutil.CreateProject(s.T(), s.db, "Apollo", s.alice.UserID)

	res := s.tasks.CreateTask(s.ctx, s.newTask("missing", s.alice.UserID))
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal("Invalid Project ID", res.Message)

	res = s.tasks.CreateTask(s.ctx, s.newTask(project.ProjectID, "missing"))
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal("Invalid User ID", res.Message)

	task := s.newTask(project.ProjectID, s.alice.UserID)
	task.EstimatedEndTime = task.EstimatedStartTime.Add(-time.Minute)
	res = s.tasks.CreateTask(s.ctx, task)
	s.Equal(http.StatusBadRequest, res.StatusCode)
}

func (s *ServicesTestSuite) TestUpdateTask() {
	project := testutil.CreateProject(s.T(), s.db, "Apollo", s.alice.UserID)
	task := testutil.CreateTask(s.T(), s.db, "design", project.ProjectID, s.alice.UserID)

	res := s.tasks.UpdateTask(s.ctx, task.TaskID, map[string]any{"status": "Done"})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.tasks.UpdateTask(s.ctx, task.TaskID, map[string]any{"priority": "Urgent"})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.tasks.UpdateTask(s.ctx, task.TaskID, map[string]any{"user_id": "missing"})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.tasks.UpdateTask(s.ctx, task.TaskID, map[string]any{
		"estimated_start_time": task.EstimatedEndTime.Add(time.Hour),
	})
	s.Equal(http.StatusBadRequest, res.StatusCode)

	res = s.tasks.UpdateTask(s.ctx, task.TaskID, map[string]any{"status": "In-Progress", "priority": "High"})
	s.Require().True(res.OK(), res.Message)
	s.Equal(models.TaskStatusInProgress, res.Data.Status)
	s.Equal(models.TaskPriorityHigh, res.Data.Priority)

	s.Equal(http.StatusNotFound, s.tasks.UpdateTask(s.ctx, "missing", map[string]any{"name": "x"}).StatusCode)
}

// Files and comments

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { form.RemoveAll() })
	return form.File["file"][0]
}

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), make([]byte, 32)...)

func (s *ServicesTestSuite) TestUpload() {
	res := s.files.Upload(s.ctx, fileHeader(s.T(), "diagram.png", pngBytes), s.alice.UserID)
	s.Require().True(res.OK(), res.Message)
	s.Equal("image/png", res.Data.MimeType)
	s.True(strings.HasSuffix(res.Data.FileName, "-diagram.png"))

	stored, err := os.ReadFile(s.files.Path(res.Data.FileName))
	s.Require().NoError(err)
	s.Equal(pngBytes, stored)
}

func (s *ServicesTestSuite) TestUploadRejectsDisallowedType() {
	res := s.files.Upload(s.ctx, fileHeader(s.T(), "notes.png", []byte("just some text")), s.alice.UserID)
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Contains(res.Message, ErrUnsupportedFileType.Error())
}

func (s *ServicesTestSuite) TestUploadRejectsOversizedFile() {
	big := append(append([]byte{}, pngBytes...), make([]byte, 2048)...)
	res := s.files.Upload(s.ctx, fileHeader(s.T(), "big.png", big), s.alice.UserID)
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal(ErrFileTooLarge.Error(), res.Message)
}

func (s *ServicesTestSuite) TestCreateComment() {
	project := testutil.CreateProject(s.T(), s.db, "Apollo", s.alice.UserID)
	task := testutil.CreateTask(s.T(), s.db, "design", project.ProjectID, s.alice.UserID)
	file := s.files.Upload(s.ctx, fileHeader(s.T(), "diagram.png", pngBytes), s.alice.UserID)
	s.Require().True(file.OK())

	res := s.comments.CreateComment(s.ctx, &models.Comment{
		Comment:        "looks good",
		UserID:         s.alice.UserID,
		TaskID:         task.TaskID,
		SupportedFiles: models.IDList{file.Data.FileID},
	})
	s.Require().True(res.OK(), res.Message)

	res = s.comments.CreateComment(s.ctx, &models.Comment{Comment: "x", UserID: s.alice.UserID, TaskID: "missing"})
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal("Invalid Task ID", res.Message)

	res = s.comments.CreateComment(s.ctx, &models.Comment{
		Comment:        "x",
		UserID:         s.alice.UserID,
		TaskID:         task.TaskID,
		SupportedFiles: models.IDList{"missing"},
	})
	s.Equal(http.StatusBadRequest, res.StatusCode)
	s.Equal("Invalid File IDs", res.Message)
}
