package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/repository"
)

func analyticsRow(status domain.TicketStatus, created time.Time, resolved *time.Time) repository.AnalyticsRow {
	return repository.AnalyticsRow{
		Status:     status,
		Priority:   domain.TicketPriorityMedium,
		Category:   domain.CategoryITSupport,
		CreatedAt:  created,
		ResolvedAt: resolved,
	}
}

func resolvedAfter(created time.Time, d time.Duration) *time.Time {
	t := created.Add(d)
	return &t
}

func TestSummarizeZeroSeedsStatusAndPriorityCounts(t *testing.T) {
	summary := Summarize(nil, time.Now())

	assert.Equal(t, 0, summary.Total)
	for _, status := range domain.AllStatuses {
		count, ok := summary.StatusCounts[status]
		assert.True(t, ok)
		assert.Equal(t, 0, count)
	}
	for _, priority := range domain.AllPriorities {
		count, ok := summary.PriorityCounts[priority]
		assert.True(t, ok)
		assert.Equal(t, 0, count)
	}
	assert.Equal(t, 0, summary.AvgResolutionDays)
	assert.Equal(t, 0, summary.ResolvedCount)
}

func TestSummarizeCountsAndAverage(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	created := now.AddDate(0, -1, 0)

	rows := []repository.AnalyticsRow{
		analyticsRow(domain.TicketStatusResolved, created, resolvedAfter(created, 12*time.Hour)),
		analyticsRow(domain.TicketStatusResolved, created, resolvedAfter(created, 36*time.Hour)),
		analyticsRow(domain.TicketStatusResolved, created, resolvedAfter(created, 60*time.Hour)),
		analyticsRow(domain.TicketStatusResolved, created, resolvedAfter(created, 96*time.Hour)),
		analyticsRow(domain.TicketStatusOpen, created, nil),
		analyticsRow(domain.TicketStatusInProgress, created, nil),
	}

	summary := Summarize(rows, now)

	assert.Equal(t, 6, summary.Total)
	assert.Equal(t, 4, summary.StatusCounts[domain.TicketStatusResolved])
	assert.Equal(t, 1, summary.StatusCounts[domain.TicketStatusOpen])
	assert.Equal(t, 6, summary.CategoryCounts[domain.CategoryITSupport])
	assert.Equal(t, 4, summary.ResolvedCount)
	// ceil days are 1, 2, 3, 4; mean 2.5 rounds up
	assert.Equal(t, 3, summary.AvgResolutionDays)
}

func TestSummarizeMonthlyWindowExcludesOldTickets(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	rows := []repository.AnalyticsRow{
		analyticsRow(domain.TicketStatusOpen, now.AddDate(0, -1, 0), nil),
		analyticsRow(domain.TicketStatusOpen, now.AddDate(0, -1, 0), nil),
		analyticsRow(domain.TicketStatusOpen, now.AddDate(0, -5, 0), nil),
		analyticsRow(domain.TicketStatusOpen, now.AddDate(0, -8, 0), nil),
	}

	summary := Summarize(rows, now)

	assert.Equal(t, 2, summary.MonthlyCounts["May 2025"])
	assert.Equal(t, 1, summary.MonthlyCounts["Jan 2025"])
	_, present := summary.MonthlyCounts["Oct 2024"]
	assert.False(t, present)
	assert.Equal(t, 4, summary.Total)
}

func TestSummarizeSubDayResolutionCountsAsOneDay(t *testing.T) {
	now := time.Now()
	created := now.Add(-2 * time.Hour)

	rows := []repository.AnalyticsRow{
		analyticsRow(domain.TicketStatusResolved, created, resolvedAfter(created, 30*time.Minute)),
	}

	summary := Summarize(rows, now)
	assert.Equal(t, 1, summary.AvgResolutionDays)
}

func TestGetSummaryScopesStudents(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewAnalyticsService(tickets, nil)

	seed := func(owner string, status domain.TicketStatus) {
		ticket := &domain.Ticket{
			Title:       "t",
			Description: "d",
			Category:    domain.CategoryOther,
			Priority:    domain.TicketPriorityLow,
			Status:      status,
			CreatedBy:   owner,
		}
		require.NoError(t, tickets.Create(context.Background(), ticket))
	}
	seed("student-1", domain.TicketStatusOpen)
	seed("student-1", domain.TicketStatusClosed)
	seed("student-2", domain.TicketStatusOpen)

	own, err := svc.GetSummary(context.Background(), domain.UserActor("student-1"))
	require.NoError(t, err)
	assert.Equal(t, 2, own.Total)

	all, err := svc.GetSummary(context.Background(), domain.AdminActor(activeManager("admin-1")))
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
}

func TestGetSummaryRequiresViewAnalyticsFlag(t *testing.T) {
	svc := NewAnalyticsService(newFakeTicketRepo(), nil)

	blinkered := activeManager("admin-1")
	blinkered.Permissions.ViewAnalytics = false
	_, err := svc.GetSummary(context.Background(), domain.AdminActor(blinkered))
	require.Error(t, err)

	super := activeManager("admin-2")
	super.Role = domain.AdminRoleSuperAdmin
	super.Permissions = domain.AdminPermissions{}
	_, err = svc.GetSummary(context.Background(), domain.AdminActor(super))
	require.NoError(t, err)
}
