package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/campus-kit/helpdesk-service/internal/config"
	"github.com/campus-kit/helpdesk-service/internal/domain"
)

func TestGenerateTicketReportScopesStudents(t *testing.T) {
	tickets := newFakeTicketRepo()
	svc := NewReportService(config.ReportConfig{RenderTimeoutSeconds: 5}, tickets)

	for _, owner := range []string{"student-1", "student-1", "student-2"} {
		ticket, err := domain.NewTicket("Subject", "Details", domain.CategoryOther, domain.TicketPriorityLow, owner)
		require.NoError(t, err)
		ticket.HumanID = domain.FormatHumanID(int64(len(tickets.tickets) + 1))
		require.NoError(t, tickets.Create(context.Background(), ticket))
	}

	data, filename, err := svc.GenerateTicketReport(context.Background(), domain.UserActor("student-1"), TicketListFilter{})
	require.NoError(t, err)
	assert.Contains(t, filename, "ticket-report-")

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Tickets")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Code", rows[0][0])
	assert.Equal(t, "Status", rows[0][4])
	for _, row := range rows[1:] {
		assert.Equal(t, "student-1", row[5])
	}
}

func TestGenerateTicketReportRequiresActor(t *testing.T) {
	svc := NewReportService(config.ReportConfig{}, newFakeTicketRepo())
	_, _, err := svc.GenerateTicketReport(context.Background(), domain.Actor{}, TicketListFilter{})
	require.Error(t, err)
}
