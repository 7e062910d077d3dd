package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketDefaults(t *testing.T) {
	ticket, err := NewTicket("Projector broken", "Room B12 projector shows no signal", CategoryITSupport, TicketPriorityHigh, "user-1")
	require.NoError(t, err)

	assert.Equal(t, TicketStatusOpen, ticket.Status)
	assert.Equal(t, "user-1", ticket.CreatedBy)
	assert.Empty(t, ticket.StatusHistory)
	assert.Empty(t, ticket.Comments)
	assert.Nil(t, ticket.ResolvedAt)
	assert.Nil(t, ticket.ClosedAt)
}

func TestNewTicketValidation(t *testing.T) {
	cases := []struct {
		name        string
		title       string
		description string
		category    TicketCategory
		priority    TicketPriority
		owner       string
	}{
		{"empty title", "", "desc", CategoryLibrary, TicketPriorityLow, "u1"},
		{"title too long", strings.Repeat("x", TitleMaxLen+1), "desc", CategoryLibrary, TicketPriorityLow, "u1"},
		{"description too long", "title", strings.Repeat("x", DescriptionMaxLen+1), CategoryLibrary, TicketPriorityLow, "u1"},
		{"bad category", "title", "desc", TicketCategory("Gym"), TicketPriorityLow, "u1"},
		{"bad priority", "title", "desc", CategoryLibrary, TicketPriority("Urgent"), "u1"},
		{"missing owner", "title", "desc", CategoryLibrary, TicketPriorityLow, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTicket(tc.title, tc.description, tc.category, tc.priority, tc.owner)
			assert.Error(t, err)
		})
	}
}

func TestLengthBoundsCountCharactersNotBytes(t *testing.T) {
	// each rune is three bytes in UTF-8
	title := strings.Repeat("図", TitleMaxLen)
	description := strings.Repeat("図", DescriptionMaxLen)

	ticket, err := NewTicket(title, description, CategoryLibrary, TicketPriorityLow, "u1")
	require.NoError(t, err)
	assert.Equal(t, title, ticket.Title)

	_, err = NewTicket(strings.Repeat("図", TitleMaxLen+1), "desc", CategoryLibrary, TicketPriorityLow, "u1")
	assert.Error(t, err)

	comment, err := NewComment(strings.Repeat("図", CommentMaxLen), "u1")
	require.NoError(t, err)
	assert.Equal(t, CommentMaxLen, len([]rune(comment.Text)))

	_, err = NewComment(strings.Repeat("図", CommentMaxLen+1), "u1")
	assert.Error(t, err)
}

func TestNewCommentBounds(t *testing.T) {
	comment, err := NewComment(strings.Repeat("a", CommentMaxLen), "u1")
	require.NoError(t, err)
	assert.Len(t, comment.Text, CommentMaxLen)

	_, err = NewComment(strings.Repeat("a", CommentMaxLen+1), "u1")
	assert.Error(t, err)

	_, err = NewComment("   ", "u1")
	assert.Error(t, err)
}

func TestFormatHumanID(t *testing.T) {
	assert.Equal(t, "TKT-000001", FormatHumanID(1))
	assert.Equal(t, "TKT-000042", FormatHumanID(42))
	assert.Equal(t, "TKT-1000000", FormatHumanID(1000000))
}

func TestStatusLabelMapping(t *testing.T) {
	assert.Equal(t, "In Progress", TicketStatusInProgress.Label())
	assert.Equal(t, "Open", TicketStatusOpen.Label())
	assert.True(t, TicketStatusClosed.IsValid())
	assert.False(t, TicketStatus("reopened").IsValid())
}
