package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
)

// ProfileRepository handles profile data access
type ProfileRepository struct {
	db *postgres.Client
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *postgres.Client) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(ctx context.Context, p *models.Profile) error {
	return r.db.CreateProfile(ctx, p)
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	return r.db.GetProfileByID(ctx, id)
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return r.db.GetProfileByEmail(ctx, email)
}

func (r *ProfileRepository) Update(ctx context.Context, id uuid.UUID, fullName, bio string) error {
	return r.db.UpdateProfile(ctx, id, fullName, bio)
}

func (r *ProfileRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return r.db.UpdateProfileAvatar(ctx, id, avatarURL)
}

var _ ProfileStore = (*ProfileRepository)(nil)
