package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/platform/logger"
	"github.com/priyanshuchauhan/sweet-luxe-backend/internal/profile/domain"
)

var ErrProfileNotFound = errors.New("profile not found")
var ErrProfileExists = errors.New("profile already exists for this user or email")

type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfileByID(ctx context.Context, id string) (*domain.Profile, error)
	HasAdmin(ctx context.Context) (bool, error)
}

type postgresProfileRepository struct {
	db *sql.DB
}

func NewPostgresProfileRepository(db *sql.DB) ProfileRepository {
	return &postgresProfileRepository{db: db}
}

func (r *postgresProfileRepository) CreateProfile(ctx context.Context, profile *domain.Profile) error {
	query := `INSERT INTO profiles (id, full_name, email, role, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6) RETURNING created_at, updated_at`

	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		profile.ID, profile.FullName, profile.Email, string(profile.Role),
		profile.CreatedAt, profile.UpdatedAt,
	).Scan(&profile.CreatedAt, &profile.UpdatedAt)

	if err != nil {
		// '23505' is unique_violation (duplicate id or email)
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			logger.Error("CreateProfile: unique violation", err)
			return ErrProfileExists
		}
		logger.Error("CreateProfile: failed to insert profile", err)
		return err
	}
	return nil
}

func (r *postgresProfileRepository) GetProfileByID(ctx context.Context, id string) (*domain.Profile, error) {
	query := `SELECT id, full_name, email, role, created_at, updated_at FROM profiles WHERE id = $1`
	var p domain.Profile
	var role string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&p.ID, &p.FullName, &p.Email, &role, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		logger.Error("GetProfileByID: query failed", err)
		return nil, err
	}
	p.Role = domain.Role(role)
	return &p, nil
}

func (r *postgresProfileRepository) HasAdmin(ctx context.Context) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM profiles WHERE role = 'admin')`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		logger.Error("HasAdmin: query failed", err)
		return false, err
	}
	return exists, nil
}
