package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gasworks/servicedesk/internal/domain"
)

// ProfileRepository manages customer profile persistence.
type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.CustomerProfile) error
	Update(ctx context.Context, profile *domain.CustomerProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.CustomerProfile, error)
}

type profileRepository struct {
	pool *pgxpool.Pool
}

// NewProfileRepository constructs repository.
func NewProfileRepository(pool *pgxpool.Pool) ProfileRepository {
	return &profileRepository{pool: pool}
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.CustomerProfile) error {
	const query = `
        INSERT INTO customer_profiles (user_id, account_number, address, phone_number, customer_notes)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.AccountNumber,
		profile.Address,
		profile.PhoneNumber,
		profile.CustomerNotes,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)
}

func (r *profileRepository) Update(ctx context.Context, profile *domain.CustomerProfile) error {
	const query = `
        UPDATE customer_profiles SET address=$1, phone_number=$2, customer_notes=$3, updated_at=NOW()
        WHERE user_id=$4`
	cmd, err := r.pool.Exec(ctx, query,
		profile.Address,
		profile.PhoneNumber,
		profile.CustomerNotes,
		profile.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID string) (*domain.CustomerProfile, error) {
	const query = `
        SELECT user_id, account_number, address, phone_number, customer_notes, created_at, updated_at
        FROM customer_profiles WHERE user_id=$1`
	var profile domain.CustomerProfile
	if err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.AccountNumber,
		&profile.Address,
		&profile.PhoneNumber,
		&profile.CustomerNotes,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &profile, nil
}
