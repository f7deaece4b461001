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

const courseColumns = `id, creator_id, title, slug, COALESCE(description, ''), price_cents, currency, COALESCE(cover_url, ''), published, created_at, updated_at`

func scanCourse(row pgx.Row) (*models.Course, error) {
	var c models.Course
	err := row.Scan(&c.ID, &c.CreatorID, &c.Title, &c.Slug, &c.Description,
		&c.PriceCents, &c.Currency, &c.CoverURL, &c.Published, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCourse inserts a course and fills in the generated fields
func (c *Client) CreateCourse(ctx context.Context, course *models.Course) error {
	start := time.Now()
	operation := "createCourse"

	query := `
		INSERT INTO courses (creator_id, title, slug, description, price_cents, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := c.pool.QueryRow(ctx, query,
		course.CreatorID, course.Title, course.Slug, course.Description,
		course.PriceCents, course.Currency,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if isUniqueViolation(err) {
			recordMetrics(operation, "duplicate", duration)
			return ErrDuplicate
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create course: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// GetCourseByID returns a course by UUID, or pgx.ErrNoRows
func (c *Client) GetCourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	start := time.Now()
	operation := "getCourseByID"

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)

	course, err := scanCourse(c.pool.QueryRow(ctx, query, id))

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get course: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return course, nil
}

// GetCourseBySlug returns a course by slug, or pgx.ErrNoRows
func (c *Client) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	start := time.Now()
	operation := "getCourseBySlug"

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE slug = $1`, courseColumns)

	course, err := scanCourse(c.pool.QueryRow(ctx, query, slug))

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get course by slug: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return course, nil
}

// ListPublishedCourses returns all published courses, newest first
func (c *Client) ListPublishedCourses(ctx context.Context) ([]*models.Course, error) {
	start := time.Now()
	operation := "listPublishedCourses"

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE published ORDER BY created_at DESC`, courseColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		courses = append(courses, course)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(courses)))

	return courses, nil
}

// ListCoursesByCreator returns all of a creator's courses, newest first
func (c *Client) ListCoursesByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Course, error) {
	start := time.Now()
	operation := "listCoursesByCreator"

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE creator_id = $1 ORDER BY created_at DESC`, courseColumns)

	rows, err := c.pool.Query(ctx, query, creatorID)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list creator courses: %w", err)
	}
	defer rows.Close()

	courses := make([]*models.Course, 0)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		courses = append(courses, course)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return courses, nil
}

// UpdateCourse updates the mutable course fields
func (c *Client) UpdateCourse(ctx context.Context, course *models.Course) error {
	start := time.Now()
	operation := "updateCourse"

	query := `
		UPDATE courses
		SET title = $1, description = $2, price_cents = $3, currency = $4,
		    published = $5, updated_at = NOW()
		WHERE id = $6
	`

	result, err := c.pool.Exec(ctx, query,
		course.Title, course.Description, course.PriceCents, course.Currency,
		course.Published, course.ID)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to update course: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// UpdateCourseCover stores the public cover URL
func (c *Client) UpdateCourseCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	start := time.Now()
	operation := "updateCourseCover"

	result, err := c.pool.Exec(ctx,
		`UPDATE courses SET cover_url = $1, updated_at = NOW() WHERE id = $2`,
		coverURL, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update course cover: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}
