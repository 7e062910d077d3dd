package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/campus-kit/helpdesk-service/internal/config"
	"github.com/campus-kit/helpdesk-service/internal/domain"
	"github.com/campus-kit/helpdesk-service/internal/policy"
	"github.com/campus-kit/helpdesk-service/internal/repository"
	apperrors "github.com/campus-kit/helpdesk-service/pkg/util"
)

const reportSheetName = "Tickets"

var reportHeaders = []string{
	"Code", "Title", "Category", "Priority", "Status",
	"Created By", "Assigned To", "Created At", "Resolved At", "Closed At",
}

// ReportService renders ticket listings as downloadable spreadsheets.
// Students receive only their own tickets; admins receive everything the
// filter matches.
type ReportService struct {
	tickets       repository.TicketRepository
	renderTimeout time.Duration
}

// NewReportService constructs the service.
func NewReportService(cfg config.ReportConfig, tickets repository.TicketRepository) *ReportService {
	return &ReportService{tickets: tickets, renderTimeout: cfg.RenderTimeout()}
}

// GenerateTicketReport builds an XLSX workbook for the tickets visible to
// the actor. Returns the file bytes and a suggested filename.
func (s *ReportService) GenerateTicketReport(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]byte, string, error) {
	if actor.ID == "" {
		return nil, "", apperrors.NewUnauthorized("authentication required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.renderTimeout)
	defer cancel()

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
		return nil, "", apperrors.MapError(err)
	}

	data, err := renderTicketWorkbook(tickets)
	if err != nil {
		return nil, "", apperrors.MapError(err)
	}

	filename := fmt.Sprintf("ticket-report-%s.xlsx", time.Now().Format("2006-01-02"))
	return data, filename, nil
}

func renderTicketWorkbook(tickets []domain.Ticket) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(reportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	for col, header := range reportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(reportSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for row, ticket := range tickets {
		values := []any{
			ticket.HumanID,
			ticket.Title,
			string(ticket.Category),
			string(ticket.Priority),
			ticket.Status.Label(),
			ticket.CreatedBy,
			derefOrEmpty(ticket.AssignedTo),
			ticket.CreatedAt.Format(time.RFC3339),
			formatOptionalTime(ticket.ResolvedAt),
			formatOptionalTime(ticket.ClosedAt),
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(reportSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatOptionalTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
