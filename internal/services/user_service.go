package services

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
)

// UserService handles user business logic
type UserService struct {
	repository.Repository[models.User]
	roles *RoleService
}

// NewUserService creates a new UserService
func NewUserService(repo repository.Repository[models.User], roles *RoleService) *UserService {
	return &UserService{Repository: repo, roles: roles}
}

// CreateUserInput represents the data needed to register a user
type CreateUserInput struct {
	Username string
	Email    string
	Password string
	RoleID   string
}

// CreateUser checks the role, normalizes identifiers and stores a hashed password
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) repository.Result[*models.User] {
	valid, err := s.roles.CheckValidRoleIDs(ctx, []string{input.RoleID})
	if err != nil {
		return repository.Failure[*models.User](http.StatusInternalServerError, "Invalid role ids")
	}
	if !valid {
		return repository.Failure[*models.User](http.StatusBadRequest, "Invalid role ids")
	}

	hashed, err := auth.HashPassword(input.Password)
	if err != nil {
		return repository.Failure[*models.User](http.StatusInternalServerError, ErrFailedToHashPassword.Error())
	}

	user := &models.User{
		Username: NormalizeIdentifier(input.Username),
		Email:    NormalizeIdentifier(input.Email),
		Password: hashed,
		RoleID:   input.RoleID,
	}
	return s.Create(ctx, user)
}

// UpdateUser validates a role change before applying it
func (s *UserService) UpdateUser(ctx context.Context, id string, fields map[string]any) repository.Result[*models.User] {
	if raw, ok := fields["role_id"]; ok {
		roleID, _ := raw.(string)
		valid, err := s.roles.CheckValidRoleIDs(ctx, []string{roleID})
		if err != nil {
			return repository.Failure[*models.User](http.StatusInternalServerError, "Invalid role ids")
		}
		if roleID == "" || !valid {
			return repository.Failure[*models.User](http.StatusBadRequest, "Invalid role ids")
		}
	}
	return s.Update(ctx, id, fields)
}

// FindByUsername returns nil when no user matches
func (s *UserService) FindByUsername(ctx context.Context, username string) *models.User {
	users := s.CustomQuery(ctx, "username = ?", NormalizeIdentifier(username))
	if len(users) == 0 {
		return nil
	}
	return &users[0]
}

// FindByEmail returns nil when no user matches
func (s *UserService) FindByEmail(ctx context.Context, email string) *models.User {
	users := s.CustomQuery(ctx, "email = ?", NormalizeIdentifier(email))
	if len(users) == 0 {
		return nil
	}
	return &users[0]
}

// CheckValidUserIDs reports whether every id refers to an existing user
func (s *UserService) CheckValidUserIDs(ctx context.Context, ids []string) (bool, error) {
	if slices.Contains(ids, "") {
		return false, nil
	}
	ids = uniqueIDs(ids)
	res := s.FindByIDs(ctx, ids)
	if !res.OK() {
		return false, fmt.Errorf("failed to load users: %s", res.Message)
	}
	return len(res.Data) == len(ids), nil
}

// UsernamesByIDs maps each existing user id to its username
func (s *UserService) UsernamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	res := s.FindByIDs(ctx, uniqueIDs(ids))
	if !res.OK() {
		return nil, fmt.Errorf("failed to load users: %s", res.Message)
	}
	names := make(map[string]string, len(res.Data))
	for _, u := range res.Data {
		names[u.UserID] = u.Username
	}
	return names, nil
}

// SetPassword hashes and stores a new password through the trusted update path
func (s *UserService) SetPassword(ctx context.Context, id, password string) repository.Result[*models.User] {
	hashed, err := auth.HashPassword(password)
	if err != nil {
		return repository.Failure[*models.User](http.StatusInternalServerError, ErrFailedToHashPassword.Error())
	}
	return s.UpdateColumns(ctx, id, map[string]any{"password": hashed})
}

// NormalizeIdentifier lowercases and trims a username or email
func NormalizeIdentifier(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
