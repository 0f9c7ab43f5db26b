package constants

// Permission tokens granted through roles. Each resource has the same five verbs.
const (
	PermAddRole        = "add_role"
	PermEditRole       = "edit_role"
	PermGetAllRole     = "get_all_role"
	PermGetDetailsRole = "get_details_role"
	PermDeleteRole     = "delete_role"

	PermAddUser        = "add_user"
	PermEditUser       = "edit_user"
	PermGetAllUser     = "get_all_user"
	PermGetDetailsUser = "get_details_user"
	PermDeleteUser     = "delete_user"

	PermAddProject        = "add_project"
	PermEditProject       = "edit_project"
	PermGetAllProject     = "get_all_project"
	PermGetDetailsProject = "get_details_project"
	PermDeleteProject     = "delete_project"

	PermAddTask        = "add_task"
	PermEditTask       = "edit_task"
	PermGetAllTask     = "get_all_task"
	PermGetDetailsTask = "get_details_task"
	PermDeleteTask     = "delete_task"

	PermAddComment        = "add_comment"
	PermEditComment       = "edit_comment"
	PermGetAllComment     = "get_all_comment"
	PermGetDetailsComment = "get_details_comment"
	PermDeleteComment     = "delete_comment"
)

// PermissionGroup is the catalog entry for one resource.
type PermissionGroup struct {
	Resource   string `json:"resource"`
	Add        string `json:"add"`
	Edit       string `json:"edit"`
	GetAll     string `json:"get_all"`
	GetDetails string `json:"get_details"`
	Delete     string `json:"delete"`
}

// All returns the group's tokens in catalog order.
func (g PermissionGroup) All() []string {
	return []string{g.Add, g.Edit, g.GetAll, g.GetDetails, g.Delete}
}

// PermissionCatalog is the fixed set of grantable permissions.
var PermissionCatalog = []PermissionGroup{
	{"roles", PermAddRole, PermEditRole, PermGetAllRole, PermGetDetailsRole, PermDeleteRole},
	{"users", PermAddUser, PermEditUser, PermGetAllUser, PermGetDetailsUser, PermDeleteUser},
	{"projects", PermAddProject, PermEditProject, PermGetAllProject, PermGetDetailsProject, PermDeleteProject},
	{"tasks", PermAddTask, PermEditTask, PermGetAllTask, PermGetDetailsTask, PermDeleteTask},
	{"comments", PermAddComment, PermEditComment, PermGetAllComment, PermGetDetailsComment, PermDeleteComment},
}

// AllPermissions flattens the catalog.
func AllPermissions() []string {
	perms := make([]string, 0, len(PermissionCatalog)*5)
	for _, g := range PermissionCatalog {
		perms = append(perms, g.All()...)
	}
	return perms
}

// IsKnownPermission reports whether token belongs to the catalog.
func IsKnownPermission(token string) bool {
	for _, p := range AllPermissions() {
		if p == token {
			return true
		}
	}
	return false
}
