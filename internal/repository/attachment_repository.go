package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gasworks/servicedesk/internal/domain"
)

// AttachmentRepository persists attachment metadata.
type AttachmentRepository interface {
	Create(ctx context.Context, attachment *domain.Attachment) error
	ListByRequest(ctx context.Context, serviceRequestID string) ([]domain.Attachment, error)
}

type attachmentRepository struct {
	pool *pgxpool.Pool
}

// NewAttachmentRepository constructs repository.
func NewAttachmentRepository(pool *pgxpool.Pool) AttachmentRepository {
	return &attachmentRepository{pool: pool}
}

func (r *attachmentRepository) Create(ctx context.Context, attachment *domain.Attachment) error {
	const query = `
        INSERT INTO request_attachments (service_request_id, storage_key, filename, size_bytes)
        VALUES ($1,$2,$3,$4)
        RETURNING id, uploaded_at`
	return r.pool.QueryRow(ctx, query,
		attachment.ServiceRequestID,
		attachment.StorageKey,
		attachment.Filename,
		attachment.SizeBytes,
	).Scan(&attachment.ID, &attachment.UploadedAt)
}

func (r *attachmentRepository) ListByRequest(ctx context.Context, serviceRequestID string) ([]domain.Attachment, error) {
	const query = `
        SELECT id, service_request_id, storage_key, filename, size_bytes, uploaded_at
        FROM request_attachments WHERE service_request_id=$1 ORDER BY uploaded_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, serviceRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Attachment
	for rows.Next() {
		var attachment domain.Attachment
		if err := rows.Scan(
			&attachment.ID,
			&attachment.ServiceRequestID,
			&attachment.StorageKey,
			&attachment.Filename,
			&attachment.SizeBytes,
			&attachment.UploadedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, attachment)
	}
	return result, rows.Err()
}
