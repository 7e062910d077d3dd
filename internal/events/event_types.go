package events

import (
	"time"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketResolved EventType = "ticket_resolved"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	AdminID *string            `json:"admin_id,omitempty"`
}

// Event represents a domain event emitted by services. The ticket snapshot
// reflects state after the triggering mutation committed.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	TicketID  string         `json:"ticket_id"`
	Actor     Actor          `json:"actor"`
	Timestamp time.Time      `json:"timestamp"`
	Ticket    *domain.Ticket `json:"-"`
	Payload   interface{}    `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	HumanID  string                `json:"human_id"`
	Category domain.TicketCategory `json:"category"`
	Priority domain.TicketPriority `json:"priority"`
	Title    string                `json:"title"`
}

// TicketUpdatedPayload payload. Status fields are set when the update was a
// lifecycle transition.
type TicketUpdatedPayload struct {
	HumanID   string              `json:"human_id"`
	OldStatus domain.TicketStatus `json:"old_status,omitempty"`
	NewStatus domain.TicketStatus `json:"new_status,omitempty"`
	Note      string              `json:"note,omitempty"`
}

// TicketResolvedPayload payload. Published in addition to the update event
// when a transition lands on resolved.
type TicketResolvedPayload struct {
	HumanID    string    `json:"human_id"`
	ResolvedAt time.Time `json:"resolved_at"`
}
