package domain

import "time"

// UserStatus represents lifecycle states for a student account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for students who submit tickets.
type User struct {
	ID           string
	Name         string
	Email        string
	StudentID    *string
	PasswordHash string
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
