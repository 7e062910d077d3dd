package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SequenceRepository hands out human-ID sequence numbers. The counter is a
// single row mutated with an atomic fetch-and-increment, so concurrent
// ticket creation never observes the same value. A live count query would
// race; the counter row is the fix.
type SequenceRepository interface {
	NextTicketNumber(ctx context.Context) (int64, error)
}

type sequenceRepository struct {
	pool *pgxpool.Pool
}

// NewSequenceRepository builds repository.
func NewSequenceRepository(pool *pgxpool.Pool) SequenceRepository {
	return &sequenceRepository{pool: pool}
}

func (r *sequenceRepository) NextTicketNumber(ctx context.Context) (int64, error) {
	const query = `
        UPDATE ticket_sequence SET value = value + 1
        WHERE name = 'ticket_human_id'
        RETURNING value`
	var value int64
	if err := r.pool.QueryRow(ctx, query).Scan(&value); err != nil {
		return 0, err
	}
	return value, nil
}
