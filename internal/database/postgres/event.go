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

const eventColumns = `id, creator_id, title, slug, COALESCE(description, ''), price_cents, currency, COALESCE(cover_url, ''), starts_at, ends_at, capacity, published, created_at, updated_at`

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.CreatorID, &e.Title, &e.Slug, &e.Description,
		&e.PriceCents, &e.Currency, &e.CoverURL, &e.StartsAt, &e.EndsAt,
		&e.Capacity, &e.Published, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEvent inserts an event and fills in the generated fields
func (c *Client) CreateEvent(ctx context.Context, event *models.Event) error {
	start := time.Now()
	operation := "createEvent"

	query := `
		INSERT INTO events (creator_id, title, slug, description, price_cents, currency, starts_at, ends_at, capacity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := c.pool.QueryRow(ctx, query,
		event.CreatorID, event.Title, event.Slug, event.Description,
		event.PriceCents, event.Currency, event.StartsAt, event.EndsAt, event.Capacity,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if isUniqueViolation(err) {
			recordMetrics(operation, "duplicate", duration)
			return ErrDuplicate
		}
		recordMetrics(operation, "error", duration)
		logger.LogAPICall("postgres", operation, "error", duration, zap.Error(err))
		return fmt.Errorf("failed to create event: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// GetEventByID returns an event by UUID, or pgx.ErrNoRows
func (c *Client) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	start := time.Now()
	operation := "getEventByID"

	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)

	event, err := scanEvent(c.pool.QueryRow(ctx, query, id))

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get event: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return event, nil
}

// ListUpcomingEvents returns published events that have not started yet
func (c *Client) ListUpcomingEvents(ctx context.Context) ([]*models.Event, error) {
	start := time.Now()
	operation := "listUpcomingEvents"

	query := fmt.Sprintf(`
		SELECT %s FROM events
		WHERE published AND starts_at > NOW()
		ORDER BY starts_at ASC
	`, eventColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		events = append(events, event)
	}

	duration := metrics.MeasureDuration(start)
	recordMetrics(operation, "success", duration)
	logger.LogAPICall("postgres", operation, "success", duration, zap.Int("count", len(events)))

	return events, nil
}

// ListEventsByCreator returns all of a creator's events, soonest first
func (c *Client) ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Event, error) {
	start := time.Now()
	operation := "listEventsByCreator"

	query := fmt.Sprintf(`SELECT %s FROM events WHERE creator_id = $1 ORDER BY starts_at ASC`, eventColumns)

	rows, err := c.pool.Query(ctx, query, creatorID)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list creator events: %w", err)
	}
	defer rows.Close()

	events := make([]*models.Event, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		events = append(events, event)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return events, nil
}

// PublishEvent flips the published flag
func (c *Client) PublishEvent(ctx context.Context, id uuid.UUID, published bool) error {
	start := time.Now()
	operation := "publishEvent"

	result, err := c.pool.Exec(ctx,
		`UPDATE events SET published = $1, updated_at = NOW() WHERE id = $2`,
		published, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to publish event: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}
