package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-kit/helpdesk-service/internal/cache"
	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/events"
	"github.com/campus-kit/helpdesk-service/internal/lifecycle"
	"github.com/campus-kit/helpdesk-service/internal/policy"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	apperrors "github.com/campus-kit/helpdesk-service/pkg/util"
)

// humanIDAttempts caps retries when a generated display code collides.
const humanIDAttempts = 3

// TicketService coordinates ticket workflows: policy check, entity or
// transition-engine mutation, persistence, then event fan-out.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	history    repository.StatusHistoryRepository
	sequences  repository.SequenceRepository
	admins     repository.AdminRepository
	dispatcher events.Dispatcher
	analytics  *cache.AnalyticsCache
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	HistoryRepo  repository.StatusHistoryRepository
	SequenceRepo repository.SequenceRepository
	AdminRepo    repository.AdminRepository
	Dispatcher   events.Dispatcher
	Analytics    *cache.AnalyticsCache
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	Category    domain.TicketCategory
	Priority    domain.TicketPriority
}

// TicketUpdateInput carries optional content fields; nil means unchanged.
type TicketUpdateInput struct {
	Title       *string
	Description *string
	Category    *domain.TicketCategory
	Priority    *domain.TicketPriority
}

// TicketListFilter describes listing filters applied on top of the
// role-derived owner scope.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []domain.TicketCategory
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		sequences:  deps.SequenceRepo,
		admins:     deps.AdminRepo,
		dispatcher: deps.Dispatcher,
		analytics:  deps.Analytics,
	}
}

// CreateTicket validates input and persists a new open ticket. The display
// code comes from an atomic counter; a unique-index collision triggers a
// retry with a fresh number.
func (s *TicketService) CreateTicket(ctx context.Context, actor domain.Actor, input TicketCreateInput) (*domain.Ticket, error) {
	if actor.ID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	ticket, err := domain.NewTicket(input.Title, input.Description, input.Category, input.Priority, actor.ID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}

	var lastErr error
	for attempt := 0; attempt < humanIDAttempts; attempt++ {
		seq, err := s.sequences.NextTicketNumber(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.HumanID = domain.FormatHumanID(seq)

		err = s.tickets.Create(ctx, ticket)
		if err == nil {
			lastErr = nil
			break
		}
		if apperrors.IsUniqueViolation(err) {
			lastErr = apperrors.NewConflict("ticket code already exists", map[string]any{"human_id": ticket.HumanID})
			continue
		}
		return nil, apperrors.MapError(err)
	}
	if lastErr != nil {
		return nil, lastErr
	}

	s.invalidateAnalytics(ctx, ticket.CreatedBy)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Ticket:   ticket,
		Payload: events.TicketCreatedPayload{
			HumanID:  ticket.HumanID,
			Category: ticket.Category,
			Priority: ticket.Priority,
			Title:    ticket.Title,
		},
	})
	return ticket, nil
}

// GetTicket fetches a ticket with its audit trail and comments, enforcing
// the view policy.
func (s *TicketService) GetTicket(ctx context.Context, actor domain.Actor, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewAccessDenied("access denied")
	}

	history, err := s.history.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.StatusHistory = history

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Comments = comments
	return ticket, nil
}

// ListTickets returns tickets visible to the actor. Students are scoped to
// their own tickets at query-construction time; admins see everything.
func (s *TicketService) ListTickets(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	if actor.ID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if owner, scoped := policy.OwnerScope(actor); scoped {
		repoFilter.OwnerID = &owner
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// UpdateTicketContent edits title/description/category/priority. Status is
// never touched here.
func (s *TicketService) UpdateTicketContent(ctx context.Context, actor domain.Actor, ticketID string, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanModifyContent(actor, ticket) {
		return nil, apperrors.NewAccessDenied("access denied")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" || utf8.RuneCountInString(title) > domain.TitleMaxLen {
			return nil, apperrors.NewValidationError("title must be 1..100 characters", nil)
		}
		ticket.Title = title
	}
	if input.Description != nil {
		description := strings.TrimSpace(*input.Description)
		if description == "" || utf8.RuneCountInString(description) > domain.DescriptionMaxLen {
			return nil, apperrors.NewValidationError("description must be 1..1000 characters", nil)
		}
		ticket.Description = description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, apperrors.NewValidationError("unknown category", map[string]any{"category": *input.Category})
		}
		ticket.Category = *input.Category
	}
	if input.Priority != nil {
		if !input.Priority.IsValid() {
			return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": *input.Priority})
		}
		ticket.Priority = *input.Priority
	}

	if err := s.tickets.UpdateContent(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateAnalytics(ctx, ticket.CreatedBy)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Ticket:   ticket,
		Payload:  events.TicketUpdatedPayload{HumanID: ticket.HumanID},
	})
	return ticket, nil
}

// ChangeStatus drives the lifecycle. Admin-only; the transition engine
// computes the new state and audit entry, and both commit atomically.
// A transition to resolved publishes the resolved event in addition to
// the update event.
func (s *TicketService) ChangeStatus(ctx context.Context, actor domain.Actor, ticketID string, requested domain.TicketStatus) (*domain.Ticket, error) {
	if !policy.CanChangeStatus(actor) {
		return nil, apperrors.NewAccessDenied("only administrators may change ticket status")
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	oldStatus := ticket.Status
	change, err := lifecycle.Apply(ticket, requested, time.Now())
	if err != nil {
		var invalid *lifecycle.InvalidStatusError
		if errors.As(err, &invalid) {
			return nil, apperrors.NewInvalidStatus(invalid.Requested)
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.tickets.UpdateStatus(ctx, ticket, change); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.invalidateAnalytics(ctx, ticket.CreatedBy)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Ticket:   ticket,
		Payload: events.TicketUpdatedPayload{
			HumanID:   ticket.HumanID,
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Note:      change.Note,
		},
	})
	if ticket.Status == domain.TicketStatusResolved && ticket.ResolvedAt != nil {
		s.publish(ctx, events.Event{
			Type:     events.EventTicketResolved,
			TicketID: ticket.ID,
			Actor:    eventActor(actor),
			Ticket:   ticket,
			Payload: events.TicketResolvedPayload{
				HumanID:    ticket.HumanID,
				ResolvedAt: *ticket.ResolvedAt,
			},
		})
	}
	return ticket, nil
}

// AddComment appends a comment. Appends are independent inserts; two
// concurrent comments on one ticket both persist.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, ticketID, text string) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanComment(actor, ticket) {
		return nil, apperrors.NewAccessDenied("access denied")
	}

	comment, err := domain.NewComment(text, actor.ID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	comment.TicketID = ticket.ID

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Ticket:   ticket,
		Payload: events.TicketUpdatedPayload{
			HumanID: ticket.HumanID,
			Note:    "comment added",
		},
	})
	return comment, nil
}

// AssignTicket sets or clears the assignee. Gated like status changes.
func (s *TicketService) AssignTicket(ctx context.Context, actor domain.Actor, ticketID string, assigneeID *string) (*domain.Ticket, error) {
	if !policy.CanAssign(actor) {
		return nil, apperrors.NewAccessDenied("only administrators may assign tickets")
	}

	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	if assigneeID != nil {
		assignee, err := s.admins.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("admin", map[string]any{"admin_id": *assigneeID})
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Active {
			return nil, apperrors.NewConflict("assignee inactive", map[string]any{"admin_id": *assigneeID})
		}
	}

	if err := s.tickets.UpdateAssignee(ctx, ticket.ID, assigneeID); err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.AssignedTo = assigneeID

	s.publish(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    eventActor(actor),
		Ticket:   ticket,
		Payload: events.TicketUpdatedPayload{
			HumanID: ticket.HumanID,
			Note:    "assignment changed",
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket. Owners and admins only.
func (s *TicketService) DeleteTicket(ctx context.Context, actor domain.Actor, ticketID string) error {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return err
	}
	if !policy.CanDelete(actor, ticket) {
		return apperrors.NewAccessDenied("access denied")
	}
	if err := s.tickets.Delete(ctx, ticket.ID); err != nil {
		return apperrors.MapError(err)
	}
	s.invalidateAnalytics(ctx, ticket.CreatedBy)
	return nil
}

// loadTicket accepts either the ticket UUID or the TKT- display code.
func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	var ticket *domain.Ticket
	var err error
	if strings.HasPrefix(ticketID, "TKT-") {
		ticket, err = s.tickets.GetByHumanID(ctx, ticketID)
	} else {
		ticket, err = s.tickets.GetByID(ctx, ticketID)
	}
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func (s *TicketService) invalidateAnalytics(ctx context.Context, ownerID string) {
	if s.analytics != nil {
		s.analytics.Invalidate(ctx, ownerID)
	}
}

func (s *TicketService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func eventActor(actor domain.Actor) events.Actor {
	id := actor.ID
	switch actor.Type {
	case domain.SubjectTypeAdmin:
		return events.Actor{Type: domain.SubjectTypeAdmin, AdminID: &id}
	default:
		return events.Actor{Type: domain.SubjectTypeUser, UserID: &id}
	}
}
