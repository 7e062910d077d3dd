package domain

import "time"

// SubjectType differentiates student vs admin tokens.
type SubjectType string

const (
	SubjectTypeUser  SubjectType = "USER"
	SubjectTypeAdmin SubjectType = "ADMIN"
)

// Actor is the slice of an authenticated principal the lifecycle core
// consumes: identity, role, and (for admins) permission flags.
type Actor struct {
	ID    string
	Type  SubjectType
	Admin *Admin
}

// IsAdmin reports whether the actor is admin-like.
func (a Actor) IsAdmin() bool {
	return a.Type == SubjectTypeAdmin && a.Admin != nil
}

// UserActor builds an Actor for a student principal.
func UserActor(userID string) Actor {
	return Actor{ID: userID, Type: SubjectTypeUser}
}

// AdminActor builds an Actor for an administrator principal.
func AdminActor(admin *Admin) Actor {
	actor := Actor{Type: SubjectTypeAdmin, Admin: admin}
	if admin != nil {
		actor.ID = admin.ID
	}
	return actor
}

// Token represents issued authentication token metadata.
type Token struct {
	ID        string
	SubjectID string
	Subject   SubjectType
	Role      *AdminRole
	ExpiresAt time.Time
	IssuedAt  time.Time
}
