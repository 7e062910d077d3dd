package lifecycle

import (
	"time"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// handler applies the side effects of entering one lifecycle state. All
// handlers share the same shape: set status, stamp timestamps, return the
// audit note for the history entry.
type handler struct {
	note  string
	enter func(ticket *domain.Ticket, now time.Time)
}

// Any of the four states is reachable from any current state; admins may
// reopen closed tickets or move resolved back to in-progress. ResolvedAt
// is overwritten on re-entry.
var handlers = map[domain.TicketStatus]handler{
	domain.TicketStatusOpen: {
		note:  "Ticket opened",
		enter: func(*domain.Ticket, time.Time) {},
	},
	domain.TicketStatusInProgress: {
		note:  "Work started on ticket",
		enter: func(*domain.Ticket, time.Time) {},
	},
	domain.TicketStatusResolved: {
		note: "Ticket resolved",
		enter: func(t *domain.Ticket, now time.Time) {
			t.ResolvedAt = &now
		},
	},
	domain.TicketStatusClosed: {
		note: "Ticket closed",
		enter: func(t *domain.Ticket, now time.Time) {
			t.ClosedAt = &now
		},
	},
}

// Apply transitions ticket to the requested status and returns the audit
// entry appended to its history. The ticket is mutated in place; callers
// persist the result. Unknown statuses fail before any mutation.
func Apply(ticket *domain.Ticket, requested domain.TicketStatus, now time.Time) (domain.StatusChange, error) {
	h, ok := handlers[requested]
	if !ok {
		return domain.StatusChange{}, &InvalidStatusError{Requested: string(requested)}
	}

	ticket.Status = requested
	h.enter(ticket, now)

	change := domain.StatusChange{
		Status:    requested,
		ChangedAt: now,
		Note:      h.note,
	}
	ticket.StatusHistory = append(ticket.StatusHistory, change)
	return change, nil
}

// InvalidStatusError reports a status value outside the enumerated set.
type InvalidStatusError struct {
	Requested string
}

func (e *InvalidStatusError) Error() string {
	return "invalid ticket status: " + e.Requested
}
