package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
)

// TwoFactorRepository handles one-time code data access
type TwoFactorRepository struct {
	db *postgres.Client
}

// NewTwoFactorRepository creates a new two factor repository
func NewTwoFactorRepository(db *postgres.Client) *TwoFactorRepository {
	return &TwoFactorRepository{db: db}
}

func (r *TwoFactorRepository) InvalidateUnused(ctx context.Context, userID uuid.UUID) error {
	return r.db.InvalidateUnusedTwoFactorCodes(ctx, userID)
}

func (r *TwoFactorRepository) Create(ctx context.Context, code *models.TwoFactorCode) error {
	return r.db.CreateTwoFactorCode(ctx, code)
}

func (r *TwoFactorRepository) GetActive(ctx context.Context, userID uuid.UUID, code string) (*models.TwoFactorCode, error) {
	return r.db.GetActiveTwoFactorCode(ctx, userID, code)
}

func (r *TwoFactorRepository) MarkUsed(ctx context.Context, id uuid.UUID) error {
	return r.db.MarkTwoFactorCodeUsed(ctx, id)
}

var _ TwoFactorStore = (*TwoFactorRepository)(nil)
