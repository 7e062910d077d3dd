package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

func newTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket("Wifi down", "No connectivity in hostel block C", domain.CategoryITSupport, domain.TicketPriorityHigh, "user-1")
	require.NoError(t, err)
	return ticket
}

func TestApplyAppendsExactlyOneHistoryEntry(t *testing.T) {
	ticket := newTicket(t)
	now := time.Now()

	for i, status := range domain.AllStatuses {
		change, err := Apply(ticket, status, now)
		require.NoError(t, err)
		assert.Equal(t, status, ticket.Status)
		assert.Len(t, ticket.StatusHistory, i+1)
		assert.Equal(t, status, ticket.StatusHistory[len(ticket.StatusHistory)-1].Status)
		assert.Equal(t, change, ticket.StatusHistory[len(ticket.StatusHistory)-1])
	}
}

func TestApplyResolvedStampsResolvedAt(t *testing.T) {
	ticket := newTicket(t)
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := Apply(ticket, domain.TicketStatusResolved, now)
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, now, *ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
}

func TestApplyClosedStampsClosedAt(t *testing.T) {
	ticket := newTicket(t)
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	_, err := Apply(ticket, domain.TicketStatusClosed, now)
	require.NoError(t, err)
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, now, *ticket.ClosedAt)
	assert.Nil(t, ticket.ResolvedAt)
}

func TestApplyOtherStatusesLeaveTimestampsAlone(t *testing.T) {
	ticket := newTicket(t)
	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	_, err := Apply(ticket, domain.TicketStatusResolved, first)
	require.NoError(t, err)

	_, err = Apply(ticket, domain.TicketStatusInProgress, first.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, first, *ticket.ResolvedAt)
}

func TestApplyResolvedOverwritesOnReentry(t *testing.T) {
	ticket := newTicket(t)
	first := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	second := first.Add(48 * time.Hour)

	_, err := Apply(ticket, domain.TicketStatusResolved, first)
	require.NoError(t, err)
	_, err = Apply(ticket, domain.TicketStatusInProgress, first.Add(time.Hour))
	require.NoError(t, err)
	_, err = Apply(ticket, domain.TicketStatusResolved, second)
	require.NoError(t, err)

	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, second, *ticket.ResolvedAt)
	assert.Len(t, ticket.StatusHistory, 3)
}

func TestApplyBackwardTransitionsAllowed(t *testing.T) {
	ticket := newTicket(t)
	now := time.Now()

	_, err := Apply(ticket, domain.TicketStatusClosed, now)
	require.NoError(t, err)
	_, err = Apply(ticket, domain.TicketStatusOpen, now.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestApplyRejectsUnknownStatus(t *testing.T) {
	ticket := newTicket(t)

	_, err := Apply(ticket, domain.TicketStatus("archived"), time.Now())
	require.Error(t, err)

	var invalid *InvalidStatusError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "archived", invalid.Requested)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Empty(t, ticket.StatusHistory)
}

func TestApplyNotes(t *testing.T) {
	ticket := newTicket(t)

	change, err := Apply(ticket, domain.TicketStatusInProgress, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Work started on ticket", change.Note)

	change, err = Apply(ticket, domain.TicketStatusResolved, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Ticket resolved", change.Note)
}
