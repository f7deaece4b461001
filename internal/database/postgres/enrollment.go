package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// CreateEnrollment links a student to a course. Returns ErrDuplicate when
// the student is already enrolled.
func (c *Client) CreateEnrollment(ctx context.Context, courseID, studentID uuid.UUID, source string) error {
	start := time.Now()
	operation := "createEnrollment"

	query := `
		INSERT INTO enrollments (course_id, student_id, source)
		VALUES ($1, $2, $3)
	`

	_, err := c.pool.Exec(ctx, query, courseID, studentID, source)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if isUniqueViolation(err) {
			recordMetrics(operation, "duplicate", duration)
			return ErrDuplicate
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create enrollment: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// CreateEventRegistration links a student to an event. Returns ErrDuplicate
// when the student is already registered.
func (c *Client) CreateEventRegistration(ctx context.Context, eventID, studentID uuid.UUID, source string) error {
	start := time.Now()
	operation := "createEventRegistration"

	query := `
		INSERT INTO event_registrations (event_id, student_id, source)
		VALUES ($1, $2, $3)
	`

	_, err := c.pool.Exec(ctx, query, eventID, studentID, source)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if isUniqueViolation(err) {
			recordMetrics(operation, "duplicate", duration)
			return ErrDuplicate
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create event registration: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// ListEnrollmentsByStudent returns a student's course enrollments, newest first
func (c *Client) ListEnrollmentsByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Enrollment, error) {
	start := time.Now()
	operation := "listEnrollmentsByStudent"

	query := `
		SELECT id, course_id, student_id, source, created_at
		FROM enrollments
		WHERE student_id = $1
		ORDER BY created_at DESC
	`

	rows, err := c.pool.Query(ctx, query, studentID)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	defer rows.Close()

	enrollments := make([]*models.Enrollment, 0)
	for rows.Next() {
		var e models.Enrollment
		if err := rows.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.Source, &e.CreatedAt); err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		enrollments = append(enrollments, &e)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return enrollments, nil
}

// ListEventRegistrationsByStudent returns a student's event registrations, newest first
func (c *Client) ListEventRegistrationsByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.EventRegistration, error) {
	start := time.Now()
	operation := "listEventRegistrationsByStudent"

	query := `
		SELECT id, event_id, student_id, source, created_at
		FROM event_registrations
		WHERE student_id = $1
		ORDER BY created_at DESC
	`

	rows, err := c.pool.Query(ctx, query, studentID)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list event registrations: %w", err)
	}
	defer rows.Close()

	registrations := make([]*models.EventRegistration, 0)
	for rows.Next() {
		var r models.EventRegistration
		if err := rows.Scan(&r.ID, &r.EventID, &r.StudentID, &r.Source, &r.CreatedAt); err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		registrations = append(registrations, &r)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return registrations, nil
}

// CountEventRegistrations returns the number of registrations for an event
func (c *Client) CountEventRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	start := time.Now()
	operation := "countEventRegistrations"

	var count int
	err := c.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`,
		eventID).Scan(&count)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return count, nil
}
