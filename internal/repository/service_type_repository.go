package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gasworks/servicedesk/internal/domain"
)

// ErrServiceTypeReferenced signals a delete was rejected because existing
// service requests still reference the type.
var ErrServiceTypeReferenced = errors.New("service type is referenced by existing requests")

const pgForeignKeyViolation = "23503"

// ServiceTypeRepository manages service-type persistence.
type ServiceTypeRepository interface {
	Create(ctx context.Context, serviceType *domain.ServiceType) error
	Update(ctx context.Context, serviceType *domain.ServiceType) error
	GetByID(ctx context.Context, id string) (*domain.ServiceType, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ServiceType, error)
	Delete(ctx context.Context, id string) error
}

type serviceTypeRepository struct {
	pool *pgxpool.Pool
}

// NewServiceTypeRepository builds the repository.
func NewServiceTypeRepository(pool *pgxpool.Pool) ServiceTypeRepository {
	return &serviceTypeRepository{pool: pool}
}

func (r *serviceTypeRepository) Create(ctx context.Context, serviceType *domain.ServiceType) error {
	const query = `
        INSERT INTO service_types (name, description, is_active)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		serviceType.Name,
		serviceType.Description,
		serviceType.IsActive,
	).Scan(&serviceType.ID, &serviceType.CreatedAt, &serviceType.UpdatedAt)
}

func (r *serviceTypeRepository) Update(ctx context.Context, serviceType *domain.ServiceType) error {
	const query = `
        UPDATE service_types SET name=$1, description=$2, is_active=$3, updated_at=NOW()
        WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		serviceType.Name,
		serviceType.Description,
		serviceType.IsActive,
		serviceType.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceTypeRepository) GetByID(ctx context.Context, id string) (*domain.ServiceType, error) {
	const query = `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM service_types WHERE id=$1`
	var serviceType domain.ServiceType
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&serviceType.ID,
		&serviceType.Name,
		&serviceType.Description,
		&serviceType.IsActive,
		&serviceType.CreatedAt,
		&serviceType.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &serviceType, nil
}

func (r *serviceTypeRepository) List(ctx context.Context, activeOnly bool) ([]domain.ServiceType, error) {
	query := `
        SELECT id, name, description, is_active, created_at, updated_at
        FROM service_types`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceType
	for rows.Next() {
		var serviceType domain.ServiceType
		if err := rows.Scan(
			&serviceType.ID,
			&serviceType.Name,
			&serviceType.Description,
			&serviceType.IsActive,
			&serviceType.CreatedAt,
			&serviceType.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, serviceType)
	}
	return result, rows.Err()
}

// Delete removes a service type. The service_requests foreign key is
// declared RESTRICT, so the database itself rejects deleting a referenced
// type; that rejection surfaces as ErrServiceTypeReferenced.
func (r *serviceTypeRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM service_types WHERE id=$1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return ErrServiceTypeReferenced
		}
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
