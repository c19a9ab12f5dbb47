package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gasworks/servicedesk/internal/domain"
)

// ErrDuplicateRequestNumber signals the store rejected an insert because
// the generated request number already exists. Callers retry with a fresh
// candidate rather than pre-checking existence.
var ErrDuplicateRequestNumber = errors.New("request number already exists")

const pgUniqueViolation = "23505"

// RequestFilter captures listing/search parameters. Search matches the
// request number, the customer's username or email, and the description,
// case-insensitively.
type RequestFilter struct {
	CustomerID *string
	Search     *string
	Status     *domain.RequestStatus
	Limit      int
	Offset     int
}

// RequestRepository encapsulates service-request persistence. The two
// write operations are each one database transaction: a request is never
// visible without its initial status update, and a status mutation is
// never visible without its audit entry.
type RequestRepository interface {
	CreateWithInitialUpdate(ctx context.Context, req *domain.ServiceRequest, initial *domain.StatusUpdate) error
	GetByNumber(ctx context.Context, number string, customerID *string) (*domain.ServiceRequest, error)
	List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error)
	UpdateWithAudit(ctx context.Context, req *domain.ServiceRequest, update *domain.StatusUpdate) error
	CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error)
}

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates repository.
func NewRequestRepository(pool *pgxpool.Pool) RequestRepository {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) CreateWithInitialUpdate(ctx context.Context, req *domain.ServiceRequest, initial *domain.StatusUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const insertRequest = `
        INSERT INTO service_requests (request_number, customer_id, service_type_id, description, status, priority, assigned_staff_id, support_notes)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, insertRequest,
		req.RequestNumber,
		req.CustomerID,
		req.ServiceTypeID,
		req.Description,
		req.Status,
		req.Priority,
		req.AssignedStaffID,
		req.SupportNotes,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrDuplicateRequestNumber
		}
		return err
	}

	initial.ServiceRequestID = req.ID
	if err := insertStatusUpdate(ctx, tx, initial); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *requestRepository) GetByNumber(ctx context.Context, number string, customerID *string) (*domain.ServiceRequest, error) {
	query := `
        SELECT id, request_number, customer_id, service_type_id, description,
               status, priority, assigned_staff_id, support_notes, created_at, updated_at
        FROM service_requests WHERE request_number=$1`
	args := []any{number}
	if customerID != nil {
		query += ` AND customer_id=$2`
		args = append(args, *customerID)
	}

	var req domain.ServiceRequest
	if err := r.pool.QueryRow(ctx, query, args...).Scan(
		&req.ID,
		&req.RequestNumber,
		&req.CustomerID,
		&req.ServiceTypeID,
		&req.Description,
		&req.Status,
		&req.Priority,
		&req.AssignedStaffID,
		&req.SupportNotes,
		&req.CreatedAt,
		&req.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]domain.ServiceRequest, error) {
	base := `SELECT sr.id, sr.request_number, sr.customer_id, sr.service_type_id, sr.description,
                    sr.status, sr.priority, sr.assigned_staff_id, sr.support_notes, sr.created_at, sr.updated_at
             FROM service_requests sr
             JOIN users u ON u.id = sr.customer_id`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("sr.customer_id=$%d", len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("sr.status=$%d", len(args)))
	}
	if filter.Search != nil && strings.TrimSpace(*filter.Search) != "" {
		search := "%" + strings.ToLower(strings.TrimSpace(*filter.Search)) + "%"
		args = append(args, search)
		placeholder := fmt.Sprintf("$%d", len(args))
		clauses = append(clauses, fmt.Sprintf(
			"(LOWER(sr.request_number) LIKE %s OR LOWER(u.username) LIKE %s OR LOWER(u.email) LIKE %s OR LOWER(sr.description) LIKE %s)",
			placeholder, placeholder, placeholder, placeholder))
	}

	query := fmt.Sprintf("%s WHERE %s ORDER BY sr.created_at DESC", base, strings.Join(clauses, " AND "))
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (r *requestRepository) UpdateWithAudit(ctx context.Context, req *domain.ServiceRequest, update *domain.StatusUpdate) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const updateRequest = `
        UPDATE service_requests SET service_type_id=$1, description=$2, status=$3, priority=$4,
            assigned_staff_id=$5, support_notes=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	if err := tx.QueryRow(ctx, updateRequest,
		req.ServiceTypeID,
		req.Description,
		req.Status,
		req.Priority,
		req.AssignedStaffID,
		req.SupportNotes,
		req.ID,
	).Scan(&req.UpdatedAt); err != nil {
		return err
	}

	if update != nil {
		update.ServiceRequestID = req.ID
		if err := insertStatusUpdate(ctx, tx, update); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *requestRepository) CountByStatus(ctx context.Context) (map[domain.RequestStatus]int64, error) {
	const query = `SELECT status, COUNT(*) FROM service_requests GROUP BY status`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.RequestStatus]int64)
	for rows.Next() {
		var status domain.RequestStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func insertStatusUpdate(ctx context.Context, tx pgx.Tx, update *domain.StatusUpdate) error {
	const query = `
        INSERT INTO request_status_updates (service_request_id, previous_status, new_status, updated_by_id, notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		update.ServiceRequestID,
		update.PreviousStatus,
		update.NewStatus,
		update.UpdatedByID,
		update.Notes,
	).Scan(&update.ID, &update.CreatedAt)
}

func scanRequests(rows pgx.Rows) ([]domain.ServiceRequest, error) {
	var result []domain.ServiceRequest
	for rows.Next() {
		var req domain.ServiceRequest
		if err := rows.Scan(
			&req.ID,
			&req.RequestNumber,
			&req.CustomerID,
			&req.ServiceTypeID,
			&req.Description,
			&req.Status,
			&req.Priority,
			&req.AssignedStaffID,
			&req.SupportNotes,
			&req.CreatedAt,
			&req.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, req)
	}
	return result, rows.Err()
}
