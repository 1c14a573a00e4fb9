package authz

import "errors"

// Decision errors. Callers branch on these to produce the correct
// user-facing rejection; they are terminal and never retried.
var (
	// ErrForbidden indicates the actor lacks the rank or capability.
	ErrForbidden = errors.New("authz: forbidden")
	// ErrSelfAction indicates the actor targeted themselves for an
	// operation that disallows it.
	ErrSelfAction = errors.New("authz: cannot act on yourself")
)

// CanManageRole reports whether an actor holding actorRole may act on a
// principal holding, or targeted for, targetRole. The same rule governs
// role assignment and deletion: both carry equivalent risk.
//
// Self-targeting is deliberately not handled here; it is an identity
// question, not a rank question, and is layered on top by CanAssignRole
// and CanDeleteUser.
func CanManageRole(actorRole, targetRole Role) bool {
	switch actorRole {
	case RoleSuperAdmin:
		return true
	case RoleAdmin:
		return targetRole != RoleAdmin && targetRole != RoleSuperAdmin
	case RoleModerator:
		return targetRole == RoleUser
	default:
		return false
	}
}

// CanAssignRole decides whether the actor may move the principal
// identified by targetID from currentRole to newRole. Three gates, all
// of which must pass:
//
//  1. the self-guard: an admin may not change their own role away from
//     admin; reasserting their own role is a permitted no-op.
//  2. the hierarchy: the actor must outrank both the role the target
//     currently holds and the role being assigned.
//  3. the capability: the actor must hold assign_<newRole>_role.
func CanAssignRole(actor Actor, targetID int64, currentRole, newRole Role) error {
	if !newRole.Valid() {
		return ErrForbidden
	}
	if actor.ID == targetID && actor.Role == RoleAdmin {
		if newRole != RoleAdmin {
			return ErrSelfAction
		}
		return nil
	}
	if !CanManageRole(actor.Role, currentRole) || !CanManageRole(actor.Role, newRole) {
		return ErrForbidden
	}
	if !actor.HasCapability(AssignRolePermission(newRole)) {
		return ErrForbidden
	}
	return nil
}

// CanDeleteUser decides whether the actor may delete the principal
// identified by targetID currently holding targetRole. Self-deletion is
// always rejected, for every role.
func CanDeleteUser(actor Actor, targetID int64, targetRole Role) error {
	if actor.ID == targetID {
		return ErrSelfAction
	}
	if !CanManageRole(actor.Role, targetRole) {
		return ErrForbidden
	}
	if !actor.HasCapability(PermDeleteUsers) {
		return ErrForbidden
	}
	return nil
}

// CanGrant decides whether the actor may grant an explicit permission to
// a principal holding targetRole.
func CanGrant(actor Actor, targetRole Role) error {
	if !actor.HasCapability(PermGrantPermissions) {
		return ErrForbidden
	}
	return canManageGrants(actor, targetRole)
}

// CanRevoke decides whether the actor may revoke an explicit permission
// from a principal holding targetRole.
func CanRevoke(actor Actor, targetRole Role) error {
	if !actor.HasCapability(PermRevokePermissions) {
		return ErrForbidden
	}
	return canManageGrants(actor, targetRole)
}

// canManageGrants applies the privileged-target rule: decorating an
// admin or super_admin requires manage_admin_permissions, decorating a
// moderator requires manage_moderator_permissions.
func canManageGrants(actor Actor, targetRole Role) error {
	switch targetRole {
	case RoleAdmin, RoleSuperAdmin:
		if !actor.HasCapability(PermManageAdminPermissions) {
			return ErrForbidden
		}
	case RoleModerator:
		if !actor.HasCapability(PermManageModeratorPermissions) {
			return ErrForbidden
		}
	}
	return nil
}
