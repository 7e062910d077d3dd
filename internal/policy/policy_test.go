package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

func adminActor(role domain.AdminRole, perms domain.AdminPermissions) domain.Actor {
	return domain.AdminActor(&domain.Admin{
		ID:          "admin-1",
		Role:        role,
		Permissions: perms,
		Active:      true,
	})
}

func ticketOwnedBy(userID string) *domain.Ticket {
	return &domain.Ticket{ID: "t1", CreatedBy: userID}
}

func TestCanViewOwnerAndAdmin(t *testing.T) {
	ticket := ticketOwnedBy("user-1")

	assert.True(t, CanView(domain.UserActor("user-1"), ticket))
	assert.False(t, CanView(domain.UserActor("user-2"), ticket))
	assert.True(t, CanView(adminActor(domain.AdminRoleAdmin, domain.AdminPermissions{}), ticket))
	assert.False(t, CanView(domain.Actor{}, ticket))
	assert.False(t, CanView(domain.UserActor("user-1"), nil))
}

func TestCanModifyContentMatchesView(t *testing.T) {
	ticket := ticketOwnedBy("user-1")

	assert.True(t, CanModifyContent(domain.UserActor("user-1"), ticket))
	assert.False(t, CanModifyContent(domain.UserActor("user-2"), ticket))
	assert.True(t, CanModifyContent(adminActor(domain.AdminRoleAdmin, domain.AdminPermissions{}), ticket))
}

func TestCanChangeStatusIsAdminOnly(t *testing.T) {
	// Ownership never grants status changes.
	assert.False(t, CanChangeStatus(domain.UserActor("user-1")))

	withPerm := adminActor(domain.AdminRoleAdmin, domain.AdminPermissions{ManageTickets: true})
	withoutPerm := adminActor(domain.AdminRoleAdmin, domain.AdminPermissions{})
	superAdmin := adminActor(domain.AdminRoleSuperAdmin, domain.AdminPermissions{})

	assert.True(t, CanChangeStatus(withPerm))
	assert.False(t, CanChangeStatus(withoutPerm))
	assert.True(t, CanChangeStatus(superAdmin))
}

func TestInactiveAdminLosesStatusRights(t *testing.T) {
	inactive := domain.AdminActor(&domain.Admin{
		ID:          "admin-2",
		Role:        domain.AdminRoleSuperAdmin,
		Active:      false,
		Permissions: domain.AdminPermissions{ManageTickets: true},
	})
	assert.False(t, CanChangeStatus(inactive))
}

func TestOwnerScope(t *testing.T) {
	owner, scoped := OwnerScope(domain.UserActor("user-7"))
	assert.True(t, scoped)
	assert.Equal(t, "user-7", owner)

	_, scoped = OwnerScope(adminActor(domain.AdminRoleAdmin, domain.AdminPermissions{}))
	assert.False(t, scoped)
}
