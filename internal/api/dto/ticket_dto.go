package dto

import (
	"time"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest describes the ticket creation payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest carries optional content edits; omitted fields stay.
type UpdateTicketRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Priority    *string `json:"priority"`
}

// ChangeStatusRequest drives a lifecycle transition.
type ChangeStatusRequest struct {
	Status string `json:"status"`
}

// AssignTicketRequest sets or clears the assignee.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// CreateCommentRequest appends a comment.
type CreateCommentRequest struct {
	Text string `json:"text"`
}

// StatusChangeResponse is one audit trail entry.
type StatusChangeResponse struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changed_at"`
	Note      string    `json:"note,omitempty"`
}

// CommentResponse is one ticket comment.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// TicketSummary is the listing projection.
type TicketSummary struct {
	ID         string     `json:"id"`
	HumanID    string     `json:"human_id"`
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Priority   string     `json:"priority"`
	Status     string     `json:"status"`
	CreatedBy  string     `json:"created_by"`
	AssignedTo *string    `json:"assigned_to,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	ClosedAt   *time.Time `json:"closed_at,omitempty"`
}

// TicketDetailResponse includes the audit trail and comments.
type TicketDetailResponse struct {
	TicketSummary
	Description   string                 `json:"description"`
	StatusHistory []StatusChangeResponse `json:"status_history"`
	Comments      []CommentResponse      `json:"comments"`
}

// NewTicketSummary maps the domain ticket to its listing form.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:         t.ID,
		HumanID:    t.HumanID,
		Title:      t.Title,
		Category:   string(t.Category),
		Priority:   string(t.Priority),
		Status:     string(t.Status),
		CreatedBy:  t.CreatedBy,
		AssignedTo: t.AssignedTo,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
		ResolvedAt: t.ResolvedAt,
		ClosedAt:   t.ClosedAt,
	}
}

// NewTicketDetail maps the full ticket aggregate.
func NewTicketDetail(t *domain.Ticket) TicketDetailResponse {
	history := make([]StatusChangeResponse, 0, len(t.StatusHistory))
	for _, change := range t.StatusHistory {
		history = append(history, StatusChangeResponse{
			Status:    string(change.Status),
			ChangedAt: change.ChangedAt,
			Note:      change.Note,
		})
	}
	comments := make([]CommentResponse, 0, len(t.Comments))
	for _, comment := range t.Comments {
		comments = append(comments, NewCommentResponse(&comment))
	}
	return TicketDetailResponse{
		TicketSummary: NewTicketSummary(t),
		Description:   t.Description,
		StatusHistory: history,
		Comments:      comments,
	}
}

// NewCommentResponse maps a single comment.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		Text:      c.Text,
		CreatedAt: c.CreatedAt,
	}
}

// NewTicketList maps a slice of tickets.
func NewTicketList(tickets []domain.Ticket) []TicketSummary {
	result := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		result = append(result, NewTicketSummary(&tickets[i]))
	}
	return result
}
