package auth

import (
	"sort"
	"strings"

	"github.com/pmsworkflow/pms-api/internal/models"
)

// PermissionSet is the union of permission tokens granted to a caller.
type PermissionSet map[string]struct{}

func NewPermissionSet(tokens ...string) PermissionSet {
	set := make(PermissionSet, len(tokens))
	for _, t := range tokens {
		if t = strings.TrimSpace(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

// PermissionsFromRoles unions the tokens of every role.
func PermissionsFromRoles(roles []models.Role) PermissionSet {
	set := PermissionSet{}
	for _, role := range roles {
		for _, p := range role.PermissionList() {
			set[p] = struct{}{}
		}
	}
	return set
}

func (p PermissionSet) Has(token string) bool {
	_, ok := p[token]
	return ok
}

// List returns the tokens sorted.
func (p PermissionSet) List() []string {
	out := make([]string, 0, len(p))
	for t := range p {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Principal is the authenticated caller attached to each request.
type Principal struct {
	UserID      string
	Username    string
	Email       string
	RoleID      string
	Permissions PermissionSet
}

func (p Principal) Can(token string) bool {
	return p.Permissions.Has(token)
}
