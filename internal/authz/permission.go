package authz

// Category groups permissions by the surface they protect.
type Category string

// Permission categories.
const (
	CategoryUserManagement       Category = "user_management"
	CategoryRoleManagement       Category = "role_management"
	CategoryPermissionManagement Category = "permission_management"
	CategorySystem               Category = "system"
)

// Permission names. Names are case-sensitive and unique.
const (
	PermViewUsers   = "view_users"
	PermCreateUsers = "create_users"
	PermEditUsers   = "edit_users"
	PermDeleteUsers = "delete_users"

	PermViewRoles            = "view_roles"
	PermAssignUserRole       = "assign_user_role"
	PermAssignModeratorRole  = "assign_moderator_role"
	PermAssignAdminRole      = "assign_admin_role"
	PermAssignSuperAdminRole = "assign_super_admin_role"

	PermViewPermissions            = "view_permissions"
	PermGrantPermissions           = "grant_permissions"
	PermRevokePermissions          = "revoke_permissions"
	PermManageAdminPermissions     = "manage_admin_permissions"
	PermManageModeratorPermissions = "manage_moderator_permissions"

	PermAccessAdminPanel     = "access_admin_panel"
	PermAccessModeratorPanel = "access_moderator_panel"
	PermSystemSettings       = "system_settings"
)

// Permission is an immutable capability descriptor. The catalog is seed
// reference data, not per-user state.
type Permission struct {
	Name        string
	Description string
	Category    Category
}

// Catalog lists every permission the system knows about, in seed order.
func Catalog() []Permission {
	return []Permission{
		{PermViewUsers, "View user accounts", CategoryUserManagement},
		{PermCreateUsers, "Create user accounts", CategoryUserManagement},
		{PermEditUsers, "Edit user profile fields", CategoryUserManagement},
		{PermDeleteUsers, "Delete user accounts", CategoryUserManagement},
		{PermViewRoles, "View roles and their defaults", CategoryRoleManagement},
		{PermAssignUserRole, "Assign the user role", CategoryRoleManagement},
		{PermAssignModeratorRole, "Assign the moderator role", CategoryRoleManagement},
		{PermAssignAdminRole, "Assign the admin role", CategoryRoleManagement},
		{PermAssignSuperAdminRole, "Assign the super_admin role", CategoryRoleManagement},
		{PermViewPermissions, "View the permission catalog and grants", CategoryPermissionManagement},
		{PermGrantPermissions, "Grant explicit permissions", CategoryPermissionManagement},
		{PermRevokePermissions, "Revoke explicit permissions", CategoryPermissionManagement},
		{PermManageAdminPermissions, "Manage grants held by admins", CategoryPermissionManagement},
		{PermManageModeratorPermissions, "Manage grants held by moderators", CategoryPermissionManagement},
		{PermAccessAdminPanel, "Access the admin panel", CategorySystem},
		{PermAccessModeratorPanel, "Access the moderation panel", CategorySystem},
		{PermSystemSettings, "Inspect system settings and job queues", CategorySystem},
	}
}

// AssignRolePermission returns the capability name gating assignment of
// the given role.
func AssignRolePermission(r Role) string {
	switch r {
	case RoleSuperAdmin:
		return PermAssignSuperAdminRole
	case RoleAdmin:
		return PermAssignAdminRole
	case RoleModerator:
		return PermAssignModeratorRole
	default:
		return PermAssignUserRole
	}
}
