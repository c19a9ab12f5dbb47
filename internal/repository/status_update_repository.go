package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gasworks/servicedesk/internal/domain"
)

// StatusUpdateRepository reads the audit trail. Writes happen inside the
// request repository's transactions; entries are append-only.
type StatusUpdateRepository interface {
	ListByRequest(ctx context.Context, serviceRequestID string) ([]domain.StatusUpdate, error)
}

type statusUpdateRepository struct {
	pool *pgxpool.Pool
}

// NewStatusUpdateRepository builds repository.
func NewStatusUpdateRepository(pool *pgxpool.Pool) StatusUpdateRepository {
	return &statusUpdateRepository{pool: pool}
}

func (r *statusUpdateRepository) ListByRequest(ctx context.Context, serviceRequestID string) ([]domain.StatusUpdate, error) {
	const query = `
        SELECT id, service_request_id, previous_status, new_status, updated_by_id, notes, created_at
        FROM request_status_updates WHERE service_request_id=$1 ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query, serviceRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.StatusUpdate
	for rows.Next() {
		var update domain.StatusUpdate
		if err := rows.Scan(
			&update.ID,
			&update.ServiceRequestID,
			&update.PreviousStatus,
			&update.NewStatus,
			&update.UpdatedByID,
			&update.Notes,
			&update.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, update)
	}
	return result, rows.Err()
}
