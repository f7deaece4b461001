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

// InvalidateUnusedTwoFactorCodes marks every unused code for the user as
// used. The service calls this before inserting a replacement, so at most
// one code is active per user.
func (c *Client) InvalidateUnusedTwoFactorCodes(ctx context.Context, userID uuid.UUID) error {
	start := time.Now()
	operation := "invalidateUnusedTwoFactorCodes"

	_, err := c.pool.Exec(ctx,
		`UPDATE two_factor_codes SET used = TRUE WHERE user_id = $1 AND NOT used`,
		userID)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// CreateTwoFactorCode inserts a fresh code row
func (c *Client) CreateTwoFactorCode(ctx context.Context, code *models.TwoFactorCode) error {
	start := time.Now()
	operation := "createTwoFactorCode"

	err := c.pool.QueryRow(ctx, `
		INSERT INTO two_factor_codes (user_id, code, expires_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, code.UserID, code.Code, code.ExpiresAt).Scan(&code.ID, &code.CreatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to insert code: %w", err)
	}

	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration)

	return nil
}

// GetActiveTwoFactorCode returns the user's unused matching code, or pgx.ErrNoRows.
// Expiry is checked by the caller so expired and unknown codes are indistinguishable
// in the response.
func (c *Client) GetActiveTwoFactorCode(ctx context.Context, userID uuid.UUID, code string) (*models.TwoFactorCode, error) {
	start := time.Now()
	operation := "getActiveTwoFactorCode"

	var tfc models.TwoFactorCode
	err := c.pool.QueryRow(ctx, `
		SELECT id, user_id, code, used, expires_at, created_at
		FROM two_factor_codes
		WHERE user_id = $1 AND code = $2 AND NOT used
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, code).Scan(&tfc.ID, &tfc.UserID, &tfc.Code, &tfc.Used, &tfc.ExpiresAt, &tfc.CreatedAt)

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get code: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return &tfc, nil
}

// MarkTwoFactorCodeUsed consumes a code
func (c *Client) MarkTwoFactorCodeUsed(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	operation := "markTwoFactorCodeUsed"

	result, err := c.pool.Exec(ctx,
		`UPDATE two_factor_codes SET used = TRUE WHERE id = $1`, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to mark code used: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}
