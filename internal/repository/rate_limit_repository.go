package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
)

// RateLimitRepository handles the student-add log backing the hourly limit
type RateLimitRepository struct {
	db *postgres.Client
}

// NewRateLimitRepository creates a new rate limit repository
func NewRateLimitRepository(db *postgres.Client) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

func (r *RateLimitRepository) CountSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int, error) {
	return r.db.CountStudentsAddedSince(ctx, creatorID, since)
}

func (r *RateLimitRepository) Log(ctx context.Context, creatorID uuid.UUID, productType string, productID uuid.UUID, studentsCount int) error {
	return r.db.LogStudentAdd(ctx, creatorID, productType, productID, studentsCount)
}

func (r *RateLimitRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.db.PruneStudentAddLogs(ctx, cutoff)
}

var _ RateLimitStore = (*RateLimitRepository)(nil)
