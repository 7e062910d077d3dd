package domain

import "time"

// AdminRole enumerates administrator roles.
type AdminRole string

const (
	AdminRoleAdmin      AdminRole = "ADMIN"
	AdminRoleSuperAdmin AdminRole = "SUPER_ADMIN"
)

// AdminPermissions are the per-admin capability flags. Super-admins hold
// every permission implicitly.
type AdminPermissions struct {
	ManageTickets bool
	ManageUsers   bool
	ViewAnalytics bool
}

// Admin models a helpdesk administrator.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         AdminRole
	Permissions  AdminPermissions
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPermission checks a capability flag, honoring the super-admin override.
func (a *Admin) HasPermission(check func(AdminPermissions) bool) bool {
	if a == nil || !a.Active {
		return false
	}
	if a.Role == AdminRoleSuperAdmin {
		return true
	}
	return check(a.Permissions)
}

// CanManageTickets reports whether the admin may mutate ticket lifecycle.
func (a *Admin) CanManageTickets() bool {
	return a.HasPermission(func(p AdminPermissions) bool { return p.ManageTickets })
}

// CanManageUsers reports whether the admin may administer accounts.
func (a *Admin) CanManageUsers() bool {
	return a.HasPermission(func(p AdminPermissions) bool { return p.ManageUsers })
}

// CanViewAnalytics reports whether the admin may read aggregate stats.
func (a *Admin) CanViewAnalytics() bool {
	return a.HasPermission(func(p AdminPermissions) bool { return p.ViewAnalytics })
}
