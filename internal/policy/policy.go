// Package policy holds the role-based access rules for tickets: students
// see and edit only what they created, admins see everything, and only
// admins with ticket-management rights may drive the status lifecycle.
package policy

import (
	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// CanView reports whether actor may read the ticket.
func CanView(actor domain.Actor, ticket *domain.Ticket) bool {
	if ticket == nil {
		return false
	}
	if actor.IsAdmin() {
		return true
	}
	return actor.ID != "" && actor.ID == ticket.CreatedBy
}

// CanModifyContent covers title/description/category/priority edits, not
// status.
func CanModifyContent(actor domain.Actor, ticket *domain.Ticket) bool {
	return CanView(actor, ticket)
}

// CanComment follows the same rule as CanView.
func CanComment(actor domain.Actor, ticket *domain.Ticket) bool {
	return CanView(actor, ticket)
}

// CanChangeStatus is admin-only, gated further by the ManageTickets
// permission flag. Ownership never grants it.
func CanChangeStatus(actor domain.Actor) bool {
	if !actor.IsAdmin() {
		return false
	}
	return actor.Admin.CanManageTickets()
}

// CanAssign mirrors CanChangeStatus: assignment is lifecycle management.
func CanAssign(actor domain.Actor) bool {
	return CanChangeStatus(actor)
}

// CanDelete allows owners and admins to remove a ticket.
func CanDelete(actor domain.Actor, ticket *domain.Ticket) bool {
	return CanView(actor, ticket)
}

// OwnerScope returns the CreatedBy restriction for list-shaped reads
// (listing, analytics, export). Students are scoped to their own tickets
// at query-construction time; admins read unfiltered. The second return
// is false when no restriction applies.
func OwnerScope(actor domain.Actor) (string, bool) {
	if actor.IsAdmin() {
		return "", false
	}
	return actor.ID, true
}
