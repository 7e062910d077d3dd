package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campus-kit/helpdesk-service/internal/domain"
)

// StatusHistoryRepository reads the append-only audit trail. Appends happen
// inside TicketRepository.UpdateStatus so transition and audit entry commit
// together.
type StatusHistoryRepository interface {
	ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error)
}

type statusHistoryRepository struct {
	pool *pgxpool.Pool
}

// NewStatusHistoryRepository builds repository.
func NewStatusHistoryRepository(pool *pgxpool.Pool) StatusHistoryRepository {
	return &statusHistoryRepository{pool: pool}
}

func (r *statusHistoryRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.StatusChange, error) {
	const query = `
        SELECT status, note, changed_at
        FROM ticket_status_history WHERE ticket_id=$1 ORDER BY changed_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusChange
	for rows.Next() {
		var change domain.StatusChange
		if err := rows.Scan(&change.Status, &change.Note, &change.ChangedAt); err != nil {
			return nil, err
		}
		result = append(result, change)
	}
	return result, rows.Err()
}
