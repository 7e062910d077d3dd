package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// TicketStatus enumerates lifecycle states for tickets. The lowercase
// values are canonical; display labels come from Label().
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in-progress"
	TicketStatusResolved   TicketStatus = "resolved"
	TicketStatusClosed     TicketStatus = "closed"
)

// AllStatuses lists every recognized lifecycle state.
var AllStatuses = []TicketStatus{
	TicketStatusOpen,
	TicketStatusInProgress,
	TicketStatusResolved,
	TicketStatusClosed,
}

// IsValid reports whether s is one of the four lifecycle states.
func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Label returns the human-facing display form. Comparison logic uses the
// canonical value, never the label.
func (s TicketStatus) Label() string {
	switch s {
	case TicketStatusOpen:
		return "Open"
	case TicketStatusInProgress:
		return "In Progress"
	case TicketStatusResolved:
		return "Resolved"
	case TicketStatusClosed:
		return "Closed"
	}
	return string(s)
}

// TicketPriority enumerates urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// AllPriorities lists every recognized priority.
var AllPriorities = []TicketPriority{
	TicketPriorityLow,
	TicketPriorityMedium,
	TicketPriorityHigh,
	TicketPriorityCritical,
}

// IsValid reports whether p is a recognized priority.
func (p TicketPriority) IsValid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketCategory enumerates the fixed campus support categories.
type TicketCategory string

const (
	CategoryITSupport TicketCategory = "IT Support"
	CategoryFacility  TicketCategory = "Facility Management"
	CategoryAcademic  TicketCategory = "Academic"
	CategoryLibrary   TicketCategory = "Library"
	CategoryHostel    TicketCategory = "Hostel"
	CategoryOther     TicketCategory = "Other"
)

// AllCategories lists every recognized category.
var AllCategories = []TicketCategory{
	CategoryITSupport,
	CategoryFacility,
	CategoryAcademic,
	CategoryLibrary,
	CategoryHostel,
	CategoryOther,
}

// IsValid reports whether c is a recognized category.
func (c TicketCategory) IsValid() bool {
	for _, candidate := range AllCategories {
		if c == candidate {
			return true
		}
	}
	return false
}

// Field length bounds enforced at construction and update time.
const (
	TitleMaxLen       = 100
	DescriptionMaxLen = 1000
	CommentMaxLen     = 500
)

// StatusChange is one append-only audit trail entry.
type StatusChange struct {
	Status    TicketStatus
	ChangedAt time.Time
	Note      string
}

// Comment is an append-only remark on a ticket thread.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Text      string
	CreatedAt time.Time
}

// Ticket is the aggregate for campus support requests.
type Ticket struct {
	ID            string
	HumanID       string
	Title         string
	Description   string
	Category      TicketCategory
	Priority      TicketPriority
	Status        TicketStatus
	StatusHistory []StatusChange
	CreatedBy     string
	AssignedTo    *string
	Comments      []Comment
	ResolvedAt    *time.Time
	ClosedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// NewTicket validates input and returns a fresh ticket in the open state
// with empty history and comments.
func NewTicket(title, description string, category TicketCategory, priority TicketPriority, ownerID string) (*Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" || utf8.RuneCountInString(title) > TitleMaxLen {
		return nil, fmt.Errorf("title must be 1..%d characters", TitleMaxLen)
	}
	if description == "" || utf8.RuneCountInString(description) > DescriptionMaxLen {
		return nil, fmt.Errorf("description must be 1..%d characters", DescriptionMaxLen)
	}
	if !category.IsValid() {
		return nil, fmt.Errorf("unknown category %q", category)
	}
	if !priority.IsValid() {
		return nil, fmt.Errorf("unknown priority %q", priority)
	}
	if ownerID == "" {
		return nil, fmt.Errorf("owner required")
	}

	return &Ticket{
		Title:       title,
		Description: description,
		Category:    category,
		Priority:    priority,
		Status:      TicketStatusOpen,
		CreatedBy:   ownerID,
	}, nil
}

// NewComment validates comment text and builds the entry.
func NewComment(text, authorID string) (*Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" || utf8.RuneCountInString(text) > CommentMaxLen {
		return nil, fmt.Errorf("comment must be 1..%d characters", CommentMaxLen)
	}
	if authorID == "" {
		return nil, fmt.Errorf("author required")
	}
	return &Comment{Text: text, AuthorID: authorID}, nil
}

// FormatHumanID renders a sequence number as the zero-padded display code
// assigned exactly once at creation, e.g. TKT-000001.
func FormatHumanID(seq int64) string {
	return fmt.Sprintf("TKT-%06d", seq)
}
