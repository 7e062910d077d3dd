package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/events"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	apperrors "github.com/campus-kit/helpdesk-service/pkg/util"
)

type fakeTicketRepo struct {
	tickets    map[string]*domain.Ticket
	history    map[string][]domain.StatusChange
	createErrs []error
	nextID     int
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets: make(map[string]*domain.Ticket),
		history: make(map[string][]domain.StatusChange),
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		if err != nil {
			return err
		}
	}
	r.nextID++
	ticket.ID = fmt.Sprintf("ticket-%d", r.nextID)
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) UpdateContent(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) UpdateAssignee(_ context.Context, ticketID string, assignedTo *string) error {
	ticket, ok := r.tickets[ticketID]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedTo = assignedTo
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, ticket *domain.Ticket, change domain.StatusChange) error {
	if _, ok := r.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *ticket
	r.tickets[ticket.ID] = &copied
	r.history[ticket.ID] = append(r.history[ticket.ID], change)
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByHumanID(_ context.Context, humanID string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.HumanID == humanID {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for _, ticket := range r.tickets {
		if filter.OwnerID != nil && ticket.CreatedBy != *filter.OwnerID {
			continue
		}
		result = append(result, *ticket)
	}
	return result, nil
}

func (r *fakeTicketRepo) ListForAnalytics(_ context.Context, ownerID *string) ([]repository.AnalyticsRow, error) {
	var rows []repository.AnalyticsRow
	for _, ticket := range r.tickets {
		if ownerID != nil && ticket.CreatedBy != *ownerID {
			continue
		}
		rows = append(rows, repository.AnalyticsRow{
			Status:     ticket.Status,
			Priority:   ticket.Priority,
			Category:   ticket.Category,
			CreatedAt:  ticket.CreatedAt,
			ResolvedAt: ticket.ResolvedAt,
		})
	}
	return rows, nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.tickets, id)
	return nil
}

type fakeCommentRepo struct {
	mu       sync.Mutex
	comments map[string][]domain.Comment
	nextID   int
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[string][]domain.Comment)}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	comment.ID = fmt.Sprintf("comment-%d", r.nextID)
	comment.CreatedAt = time.Now()
	r.comments[comment.TicketID] = append(r.comments[comment.TicketID], *comment)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Comment{}, r.comments[ticketID]...), nil
}

type fakeHistoryRepo struct {
	tickets *fakeTicketRepo
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.StatusChange, error) {
	return r.tickets.history[ticketID], nil
}

type fakeSequenceRepo struct {
	next int64
}

func (r *fakeSequenceRepo) NextTicketNumber(_ context.Context) (int64, error) {
	r.next++
	return r.next, nil
}

type fakeAdminRepo struct {
	admins map[string]*domain.Admin
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *domain.Admin) error {
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) Update(_ context.Context, admin *domain.Admin) error {
	r.admins[admin.ID] = admin
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id string) (*domain.Admin, error) {
	admin, ok := r.admins[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return admin, nil
}

func (r *fakeAdminRepo) GetByEmail(_ context.Context, email string) (*domain.Admin, error) {
	for _, admin := range r.admins {
		if admin.Email == email {
			return admin, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeAdminRepo) List(_ context.Context, _ repository.AdminFilter) ([]domain.Admin, error) {
	var result []domain.Admin
	for _, admin := range r.admins {
		result = append(result, *admin)
	}
	return result, nil
}

// eventCapture records published events; handlers may run from concurrent
// publishers, so access is mutex guarded.
type eventCapture struct {
	mu     sync.Mutex
	events []events.Event
}

func (c *eventCapture) handle(_ context.Context, event events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *eventCapture) snapshot() []events.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]events.Event{}, c.events...)
}

func (c *eventCapture) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = nil
}

type ticketFixture struct {
	tickets  *fakeTicketRepo
	comments *fakeCommentRepo
	admins   *fakeAdminRepo
	svc      *TicketService
	captured *eventCapture
}

func newTicketFixture() *ticketFixture {
	tickets := newFakeTicketRepo()
	comments := newFakeCommentRepo()
	admins := &fakeAdminRepo{admins: make(map[string]*domain.Admin)}

	dispatcher := events.NewInMemoryDispatcher(nil)
	captured := &eventCapture{}
	dispatcher.Subscribe(events.EventTicketCreated, captured.handle)
	dispatcher.Subscribe(events.EventTicketUpdated, captured.handle)
	dispatcher.Subscribe(events.EventTicketResolved, captured.handle)

	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		CommentRepo:  comments,
		HistoryRepo:  &fakeHistoryRepo{tickets: tickets},
		SequenceRepo: &fakeSequenceRepo{},
		AdminRepo:    admins,
		Dispatcher:   dispatcher,
	})
	return &ticketFixture{tickets: tickets, comments: comments, admins: admins, svc: svc, captured: captured}
}

func activeManager(id string) *domain.Admin {
	return &domain.Admin{
		ID:     id,
		Role:   domain.AdminRoleAdmin,
		Active: true,
		Permissions: domain.AdminPermissions{
			ManageTickets: true,
			ViewAnalytics: true,
		},
	}
}

func TestCreateTicketRoundTrip(t *testing.T) {
	fx := newTicketFixture()
	actor := domain.UserActor("student-1")

	created, err := fx.svc.CreateTicket(context.Background(), actor, TicketCreateInput{
		Title:       "Broken projector",
		Description: "Projector in room 204 does not power on",
		Category:    domain.CategoryITSupport,
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-000001", created.HumanID)
	assert.Equal(t, domain.TicketStatusOpen, created.Status)

	fetched, err := fx.svc.GetTicket(context.Background(), actor, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)
	assert.Len(t, fetched.StatusHistory, 0)
	assert.Empty(t, fetched.Comments)
	assert.Nil(t, fetched.ResolvedAt)

	published := fx.captured.snapshot()
	require.Len(t, published, 1)
	assert.Equal(t, events.EventTicketCreated, published[0].Type)
}

func TestCreateTicketRetriesOnHumanIDConflict(t *testing.T) {
	fx := newTicketFixture()
	fx.tickets.createErrs = []error{&pgconn.PgError{Code: "23505"}}

	created, err := fx.svc.CreateTicket(context.Background(), domain.UserActor("student-1"), TicketCreateInput{
		Title:       "Library card lost",
		Description: "Lost my card near the main gate",
		Category:    domain.CategoryLibrary,
		Priority:    domain.TicketPriorityLow,
	})
	require.NoError(t, err)
	assert.Equal(t, "TKT-000002", created.HumanID)
}

func TestCreateTicketGivesUpAfterRepeatedConflicts(t *testing.T) {
	fx := newTicketFixture()
	fx.tickets.createErrs = []error{
		&pgconn.PgError{Code: "23505"},
		&pgconn.PgError{Code: "23505"},
		&pgconn.PgError{Code: "23505"},
	}

	_, err := fx.svc.CreateTicket(context.Background(), domain.UserActor("student-1"), TicketCreateInput{
		Title:       "Hostel wifi down",
		Description: "No connectivity since morning",
		Category:    domain.CategoryHostel,
		Priority:    domain.TicketPriorityMedium,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestStudentCannotChangeStatus(t *testing.T) {
	fx := newTicketFixture()
	owner := domain.UserActor("student-1")

	created, err := fx.svc.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       "AC leaking",
		Description: "Water dripping in lab 3",
		Category:    domain.CategoryFacility,
		Priority:    domain.TicketPriorityMedium,
	})
	require.NoError(t, err)

	_, err = fx.svc.ChangeStatus(context.Background(), owner, created.ID, domain.TicketStatusResolved)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCESS_DENIED", domainErr.Code)
}

func TestResolveTransitionPublishesBothEvents(t *testing.T) {
	fx := newTicketFixture()
	admin := domain.AdminActor(activeManager("admin-1"))

	created, err := fx.svc.CreateTicket(context.Background(), domain.UserActor("student-1"), TicketCreateInput{
		Title:       "Grade missing",
		Description: "Semester grade not published",
		Category:    domain.CategoryAcademic,
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	fx.captured.reset()

	updated, err := fx.svc.ChangeStatus(context.Background(), admin, created.ID, domain.TicketStatusResolved)
	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)

	published := fx.captured.snapshot()
	require.Len(t, published, 2)
	assert.Equal(t, events.EventTicketUpdated, published[0].Type)
	assert.Equal(t, events.EventTicketResolved, published[1].Type)

	history, err := fx.svc.GetTicket(context.Background(), admin, created.ID)
	require.NoError(t, err)
	require.Len(t, history.StatusHistory, 1)
	assert.Equal(t, domain.TicketStatusResolved, history.StatusHistory[0].Status)
}

func TestChangeStatusRejectsUnknownValue(t *testing.T) {
	fx := newTicketFixture()
	admin := domain.AdminActor(activeManager("admin-1"))

	created, err := fx.svc.CreateTicket(context.Background(), domain.UserActor("student-1"), TicketCreateInput{
		Title:       "Door lock broken",
		Description: "Room 101 door lock jammed",
		Category:    domain.CategoryFacility,
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)

	_, err = fx.svc.ChangeStatus(context.Background(), admin, created.ID, domain.TicketStatus("archived"))
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)

	fetched, err := fx.svc.GetTicket(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, fetched.Status)
	assert.Len(t, fetched.StatusHistory, 0)
}

func TestAddCommentBounds(t *testing.T) {
	fx := newTicketFixture()
	owner := domain.UserActor("student-1")

	created, err := fx.svc.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       "Printer out of toner",
		Description: "Lab printer needs a cartridge",
		Category:    domain.CategoryITSupport,
		Priority:    domain.TicketPriorityLow,
	})
	require.NoError(t, err)

	long := make([]byte, domain.CommentMaxLen+1)
	for i := range long {
		long[i] = 'x'
	}
	_, err = fx.svc.AddComment(context.Background(), owner, created.ID, string(long))
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)

	comment, err := fx.svc.AddComment(context.Background(), owner, created.ID, string(long[:domain.CommentMaxLen]))
	require.NoError(t, err)
	assert.Equal(t, owner.ID, comment.AuthorID)

	fetched, err := fx.svc.GetTicket(context.Background(), owner, created.ID)
	require.NoError(t, err)
	require.Len(t, fetched.Comments, 1)
}

func TestConcurrentCommentsBothPersist(t *testing.T) {
	fx := newTicketFixture()
	owner := domain.UserActor("student-1")

	created, err := fx.svc.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       "Shared desk lamp broken",
		Description: "Lamp at desk 12 flickers",
		Category:    domain.CategoryFacility,
		Priority:    domain.TicketPriorityLow,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := fx.svc.AddComment(context.Background(), owner, created.ID, fmt.Sprintf("still broken, attempt %d", n))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	fetched, err := fx.svc.GetTicket(context.Background(), owner, created.ID)
	require.NoError(t, err)
	assert.Len(t, fetched.Comments, 2)
	assert.Len(t, fx.captured.snapshot(), 3)
}

func TestGetTicketResolvesDisplayCode(t *testing.T) {
	fx := newTicketFixture()
	owner := domain.UserActor("student-1")

	created, err := fx.svc.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       "Locker jammed",
		Description: "Locker 42 will not open",
		Category:    domain.CategoryFacility,
		Priority:    domain.TicketPriorityLow,
	})
	require.NoError(t, err)

	fetched, err := fx.svc.GetTicket(context.Background(), owner, created.HumanID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, fetched.ID)

	_, err = fx.svc.GetTicket(context.Background(), owner, "TKT-999999")
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestStudentCannotViewForeignTicket(t *testing.T) {
	fx := newTicketFixture()

	created, err := fx.svc.CreateTicket(context.Background(), domain.UserActor("student-1"), TicketCreateInput{
		Title:       "ID card reissue",
		Description: "Need a replacement ID card",
		Category:    domain.CategoryOther,
		Priority:    domain.TicketPriorityLow,
	})
	require.NoError(t, err)

	_, err = fx.svc.GetTicket(context.Background(), domain.UserActor("student-2"), created.ID)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ACCESS_DENIED", domainErr.Code)
}

func TestListTicketsScopesStudents(t *testing.T) {
	fx := newTicketFixture()

	for i, owner := range []string{"student-1", "student-1", "student-2"} {
		_, err := fx.svc.CreateTicket(context.Background(), domain.UserActor(owner), TicketCreateInput{
			Title:       fmt.Sprintf("Issue %d", i),
			Description: "details",
			Category:    domain.CategoryOther,
			Priority:    domain.TicketPriorityLow,
		})
		require.NoError(t, err)
	}

	own, err := fx.svc.ListTickets(context.Background(), domain.UserActor("student-1"), TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, own, 2)

	all, err := fx.svc.ListTickets(context.Background(), domain.AdminActor(activeManager("admin-1")), TicketListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAssignTicketValidatesAssignee(t *testing.T) {
	fx := newTicketFixture()
	admin := activeManager("admin-1")
	fx.admins.admins[admin.ID] = admin
	inactive := activeManager("admin-2")
	inactive.Active = false
	fx.admins.admins[inactive.ID] = inactive
	actor := domain.AdminActor(admin)

	created, err := fx.svc.CreateTicket(context.Background(), domain.UserActor("student-1"), TicketCreateInput{
		Title:       "Projector bulb",
		Description: "Replacement bulb needed",
		Category:    domain.CategoryFacility,
		Priority:    domain.TicketPriorityMedium,
	})
	require.NoError(t, err)

	missing := "admin-404"
	_, err = fx.svc.AssignTicket(context.Background(), actor, created.ID, &missing)
	require.Error(t, err)

	inactiveID := inactive.ID
	_, err = fx.svc.AssignTicket(context.Background(), actor, created.ID, &inactiveID)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	adminID := admin.ID
	updated, err := fx.svc.AssignTicket(context.Background(), actor, created.ID, &adminID)
	require.NoError(t, err)
	require.NotNil(t, updated.AssignedTo)
	assert.Equal(t, admin.ID, *updated.AssignedTo)
}

func TestDeleteTicketOwnerOnly(t *testing.T) {
	fx := newTicketFixture()
	owner := domain.UserActor("student-1")

	created, err := fx.svc.CreateTicket(context.Background(), owner, TicketCreateInput{
		Title:       "Duplicate request",
		Description: "Filed twice by mistake",
		Category:    domain.CategoryOther,
		Priority:    domain.TicketPriorityLow,
	})
	require.NoError(t, err)

	err = fx.svc.DeleteTicket(context.Background(), domain.UserActor("student-2"), created.ID)
	require.Error(t, err)

	err = fx.svc.DeleteTicket(context.Background(), owner, created.ID)
	require.NoError(t, err)

	_, err = fx.svc.GetTicket(context.Background(), owner, created.ID)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}
