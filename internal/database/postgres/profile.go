package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const profileColumns = `id, email, full_name, role, COALESCE(avatar_url, ''), COALESCE(bio, ''), created_at, updated_at`

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.Role, &p.AvatarURL, &p.Bio, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProfile inserts a profile row keyed by the gateway user UUID
func (c *Client) CreateProfile(ctx context.Context, p *models.Profile) error {
	start := time.Now()
	operation := "createProfile"

	query := `
		INSERT INTO profiles (id, email, full_name, role)
		VALUES ($1, $2, $3, $4)
	`

	_, err := c.pool.Exec(ctx, query, p.ID, p.Email, p.FullName, p.Role)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if isUniqueViolation(err) {
			recordMetrics(operation, "duplicate", duration)
			return ErrDuplicate
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create profile: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// GetProfileByID returns a profile by its UUID, or pgx.ErrNoRows
func (c *Client) GetProfileByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	start := time.Now()
	operation := "getProfileByID"

	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	p, err := scanProfile(c.pool.QueryRow(ctx, query, id))

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return p, nil
}

// GetProfileByEmail returns a profile by normalized email, or pgx.ErrNoRows
func (c *Client) GetProfileByEmail(ctx context.Context, email string) (*models.Profile, error) {
	start := time.Now()
	operation := "getProfileByEmail"

	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE email = $1`, profileColumns)

	p, err := scanProfile(c.pool.QueryRow(ctx, query, email))

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get profile by email: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return p, nil
}

// UpdateProfile updates the mutable profile fields
func (c *Client) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, bio string) error {
	start := time.Now()
	operation := "updateProfile"

	query := `
		UPDATE profiles
		SET full_name = $1, bio = $2, updated_at = NOW()
		WHERE id = $3
	`

	result, err := c.pool.Exec(ctx, query, fullName, bio, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// UpdateProfileAvatar stores the public avatar URL
func (c *Client) UpdateProfileAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	start := time.Now()
	operation := "updateProfileAvatar"

	result, err := c.pool.Exec(ctx,
		`UPDATE profiles SET avatar_url = $1, updated_at = NOW() WHERE id = $2`,
		avatarURL, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}
