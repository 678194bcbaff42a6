package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	"github.com/google/uuid"
)

type ProfileStorage interface {
	GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	CreateProfileTx(ctx context.Context, tx *sql.Tx, profile *models.Profile) error
	// UpsertFullName создаёт профиль при первом обращении или меняет отображаемое имя.
	UpsertFullName(ctx context.Context, id uuid.UUID, email, fullName string) (*models.Profile, error)
}

type profileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) ProfileStorage {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	p := &models.Profile{}
	row := r.db.QueryRowContext(ctx, "SELECT id, full_name, email, avatar_url FROM profiles WHERE id = $1", id)
	if err := row.Scan(&p.ID, &p.FullName, &p.Email, &p.AvatarURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *profileRepository) CreateProfileTx(ctx context.Context, tx *sql.Tx, profile *models.Profile) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO profiles (id, full_name, email, avatar_url) VALUES ($1, $2, $3, $4)",
		profile.ID, profile.FullName, profile.Email, profile.AvatarURL,
	)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", mapPQError(err))
	}
	return nil
}

func (r *profileRepository) UpsertFullName(ctx context.Context, id uuid.UUID, email, fullName string) (*models.Profile, error) {
	query := `INSERT INTO profiles (id, full_name, email) VALUES ($1, $2, $3)
	          ON CONFLICT (id) DO UPDATE SET full_name = EXCLUDED.full_name
	          RETURNING id, full_name, email, avatar_url`
	p := &models.Profile{}
	if err := r.db.QueryRowContext(ctx, query, id, fullName, email).Scan(&p.ID, &p.FullName, &p.Email, &p.AvatarURL); err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", mapPQError(err))
	}
	return p, nil
}
