package service

import (
	"context"
	"math"
	"time"

	"github.com/campus-kit/helpdesk-service/internal/cache"
	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/policy"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	apperrors "github.com/campus-kit/helpdesk-service/pkg/util"
)

// AnalyticsSummary aggregates ticket statistics for dashboards.
type AnalyticsSummary struct {
	Total             int                           `json:"total"`
	StatusCounts      map[domain.TicketStatus]int   `json:"status_counts"`
	PriorityCounts    map[domain.TicketPriority]int `json:"priority_counts"`
	CategoryCounts    map[domain.TicketCategory]int `json:"category_counts"`
	MonthlyCounts     map[string]int                `json:"monthly_counts"`
	ResolvedCount     int                           `json:"resolved_count"`
	AvgResolutionDays int                           `json:"avg_resolution_days"`
}

// AnalyticsService computes read-only aggregations over the actor-visible
// ticket set.
type AnalyticsService struct {
	tickets repository.TicketRepository
	cache   *cache.AnalyticsCache
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(tickets repository.TicketRepository, analyticsCache *cache.AnalyticsCache) *AnalyticsService {
	return &AnalyticsService{tickets: tickets, cache: analyticsCache}
}

// GetSummary returns the aggregation, scoped exactly like every other read:
// students see only their own tickets. Admins additionally need the
// ViewAnalytics permission flag. Results are cached briefly.
func (s *AnalyticsService) GetSummary(ctx context.Context, actor domain.Actor) (*AnalyticsSummary, error) {
	if actor.ID == "" {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	if actor.IsAdmin() && !actor.Admin.CanViewAnalytics() {
		return nil, apperrors.NewAccessDenied("view analytics permission required")
	}

	var ownerID *string
	if owner, scoped := policy.OwnerScope(actor); scoped {
		ownerID = &owner
	}

	if s.cache != nil {
		var cached AnalyticsSummary
		if s.cache.Get(ctx, ownerID, &cached) {
			return &cached, nil
		}
	}

	rows, err := s.tickets.ListForAnalytics(ctx, ownerID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	summary := Summarize(rows, time.Now())
	if s.cache != nil {
		s.cache.Set(ctx, ownerID, summary)
	}
	return summary, nil
}

// Summarize computes the aggregation from raw rows. Resolution time per
// ticket is ceil((resolvedAt-createdAt)/1 day) in whole days; the average
// across resolved tickets is rounded to the nearest integer, 0 when none
// resolved. Monthly counts cover the trailing six months.
func Summarize(rows []repository.AnalyticsRow, now time.Time) *AnalyticsSummary {
	summary := &AnalyticsSummary{
		Total:          len(rows),
		StatusCounts:   make(map[domain.TicketStatus]int, len(domain.AllStatuses)),
		PriorityCounts: make(map[domain.TicketPriority]int, len(domain.AllPriorities)),
		CategoryCounts: make(map[domain.TicketCategory]int),
		MonthlyCounts:  make(map[string]int),
	}
	for _, status := range domain.AllStatuses {
		summary.StatusCounts[status] = 0
	}
	for _, priority := range domain.AllPriorities {
		summary.PriorityCounts[priority] = 0
	}

	sixMonthsAgo := now.AddDate(0, -6, 0)
	totalDays := 0

	for _, row := range rows {
		summary.StatusCounts[row.Status]++
		summary.PriorityCounts[row.Priority]++
		summary.CategoryCounts[row.Category]++

		if !row.CreatedAt.Before(sixMonthsAgo) {
			summary.MonthlyCounts[row.CreatedAt.Format("Jan 2006")]++
		}
		if row.ResolvedAt != nil {
			summary.ResolvedCount++
			totalDays += resolutionDays(row.CreatedAt, *row.ResolvedAt)
		}
	}

	if summary.ResolvedCount > 0 {
		summary.AvgResolutionDays = int(math.Round(float64(totalDays) / float64(summary.ResolvedCount)))
	}
	return summary
}

func resolutionDays(created, resolved time.Time) int {
	return int(math.Ceil(resolved.Sub(created).Hours() / 24))
}
