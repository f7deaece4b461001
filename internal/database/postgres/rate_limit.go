package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// CountStudentsAddedSince sums students_count over a creator's batches with
// created_at at or after the cutoff. The sum feeds the hourly limit check.
func (c *Client) CountStudentsAddedSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int, error) {
	start := time.Now()
	operation := "countStudentsAddedSince"

	var total int
	err := c.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(students_count), 0)
		FROM student_add_logs
		WHERE creator_id = $1 AND created_at >= $2
	`, creatorID, since).Scan(&total)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return 0, fmt.Errorf("failed to count added students: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return total, nil
}

// LogStudentAdd appends one batch row to the rate-limit log
func (c *Client) LogStudentAdd(ctx context.Context, creatorID uuid.UUID, productType string, productID uuid.UUID, studentsCount int) error {
	start := time.Now()
	operation := "logStudentAdd"

	_, err := c.pool.Exec(ctx, `
		INSERT INTO student_add_logs (creator_id, product_type, product_id, students_count)
		VALUES ($1, $2, $3, $4)
	`, creatorID, productType, productID, studentsCount)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to log student add: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// PruneStudentAddLogs removes rows older than the cutoff. Called in the
// background after a successful append; failures only get logged.
func (c *Client) PruneStudentAddLogs(ctx context.Context, olderThan time.Time) (int64, error) {
	start := time.Now()
	operation := "pruneStudentAddLogs"

	result, err := c.pool.Exec(ctx,
		`DELETE FROM student_add_logs WHERE created_at < $1`, olderThan)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to prune student add logs: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return result.RowsAffected(), nil
}
