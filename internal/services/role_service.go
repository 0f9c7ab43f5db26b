package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/pmsworkflow/pms-api/internal/auth"
	"github.com/pmsworkflow/pms-api/internal/constants"
	"github.com/pmsworkflow/pms-api/internal/models"
	"github.com/pmsworkflow/pms-api/internal/repository"
)

var (
	ErrUnknownPermission = errors.New("unknown permission")
	ErrNoPermissions     = errors.New("at least one permission is required")
)

// RoleService handles role business logic
type RoleService struct {
	repository.Repository[models.Role]
}

// NewRoleService creates a new RoleService
func NewRoleService(repo repository.Repository[models.Role]) *RoleService {
	return &RoleService{Repository: repo}
}

// NormalizePermissions validates a comma separated token list against the
// catalog and returns it trimmed and de-duplicated.
func NormalizePermissions(raw string) (string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" || seen[token] {
			continue
		}
		if !constants.IsKnownPermission(token) {
			return "", fmt.Errorf("%w: %s", ErrUnknownPermission, token)
		}
		seen[token] = true
		out = append(out, token)
	}
	if len(out) == 0 {
		return "", ErrNoPermissions
	}
	return strings.Join(out, ","), nil
}

// CreateRole validates the permission list before inserting
func (s *RoleService) CreateRole(ctx context.Context, role *models.Role) repository.Result[*models.Role] {
	perms, err := NormalizePermissions(role.Permissions)
	if err != nil {
		return repository.Failure[*models.Role](http.StatusBadRequest, err.Error())
	}
	role.Permissions = perms
	return s.Create(ctx, role)
}

// UpdateRole validates permissions when they are part of the change set
func (s *RoleService) UpdateRole(ctx context.Context, id string, fields map[string]any) repository.Result[*models.Role] {
	if raw, ok := fields["permissions"]; ok {
		str, ok := raw.(string)
		if !ok {
			return repository.Failure[*models.Role](http.StatusBadRequest, "permissions must be a comma separated string")
		}
		perms, err := NormalizePermissions(str)
		if err != nil {
			return repository.Failure[*models.Role](http.StatusBadRequest, err.Error())
		}
		fields["permissions"] = perms
	}
	return s.Update(ctx, id, fields)
}

// CheckValidRoleIDs reports whether every id refers to an existing role
func (s *RoleService) CheckValidRoleIDs(ctx context.Context, ids []string) (bool, error) {
	if slices.Contains(ids, "") {
		return false, nil
	}
	ids = uniqueIDs(ids)
	res := s.FindByIDs(ctx, ids)
	if !res.OK() {
		return false, fmt.Errorf("failed to load roles: %s", res.Message)
	}
	return len(res.Data) == len(ids), nil
}

// PermissionsForRoles resolves the union of permissions over roleIDs. A
// lookup failure yields an empty set.
func (s *RoleService) PermissionsForRoles(ctx context.Context, roleIDs []string) auth.PermissionSet {
	res := s.FindByIDs(ctx, uniqueIDs(roleIDs))
	if !res.OK() {
		return auth.PermissionSet{}
	}
	return auth.PermissionsFromRoles(res.Data)
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
