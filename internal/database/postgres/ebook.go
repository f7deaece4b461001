package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/jackc/pgx/v5"
)

const ebookColumns = `id, creator_id, title, slug, COALESCE(description, ''), price_cents, currency, COALESCE(cover_url, ''), COALESCE(file_url, ''), published, created_at, updated_at`

func scanEbook(row pgx.Row) (*models.Ebook, error) {
	var e models.Ebook
	err := row.Scan(&e.ID, &e.CreatorID, &e.Title, &e.Slug, &e.Description,
		&e.PriceCents, &e.Currency, &e.CoverURL, &e.FileURL, &e.Published,
		&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CreateEbook inserts an e-book and fills in the generated fields
func (c *Client) CreateEbook(ctx context.Context, ebook *models.Ebook) error {
	start := time.Now()
	operation := "createEbook"

	query := `
		INSERT INTO ebooks (creator_id, title, slug, description, price_cents, currency)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := c.pool.QueryRow(ctx, query,
		ebook.CreatorID, ebook.Title, ebook.Slug, ebook.Description,
		ebook.PriceCents, ebook.Currency,
	).Scan(&ebook.ID, &ebook.CreatedAt, &ebook.UpdatedAt)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		if isUniqueViolation(err) {
			recordMetrics(operation, "duplicate", duration)
			return ErrDuplicate
		}
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to create ebook: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// GetEbookByID returns an e-book by UUID, or pgx.ErrNoRows
func (c *Client) GetEbookByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error) {
	start := time.Now()
	operation := "getEbookByID"

	query := fmt.Sprintf(`SELECT %s FROM ebooks WHERE id = $1`, ebookColumns)

	ebook, err := scanEbook(c.pool.QueryRow(ctx, query, id))

	duration := metrics.MeasureDuration(start)

	if errors.Is(err, pgx.ErrNoRows) {
		recordMetrics(operation, "not_found", duration)
		return nil, err
	}
	if err != nil {
		recordMetrics(operation, "error", duration)
		return nil, fmt.Errorf("failed to get ebook: %w", err)
	}

	recordMetrics(operation, "success", duration)
	return ebook, nil
}

// ListPublishedEbooks returns all published e-books, newest first
func (c *Client) ListPublishedEbooks(ctx context.Context) ([]*models.Ebook, error) {
	start := time.Now()
	operation := "listPublishedEbooks"

	query := fmt.Sprintf(`SELECT %s FROM ebooks WHERE published ORDER BY created_at DESC`, ebookColumns)

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		recordMetrics(operation, "error", metrics.MeasureDuration(start))
		return nil, fmt.Errorf("failed to list ebooks: %w", err)
	}
	defer rows.Close()

	ebooks := make([]*models.Ebook, 0)
	for rows.Next() {
		ebook, err := scanEbook(rows)
		if err != nil {
			recordMetrics(operation, "error", metrics.MeasureDuration(start))
			return nil, err
		}
		ebooks = append(ebooks, ebook)
	}

	recordMetrics(operation, "success", metrics.MeasureDuration(start))
	return ebooks, nil
}

// UpdateEbookFile stores the public download URL and cover
func (c *Client) UpdateEbookFile(ctx context.Context, id uuid.UUID, fileURL string) error {
	start := time.Now()
	operation := "updateEbookFile"

	result, err := c.pool.Exec(ctx,
		`UPDATE ebooks SET file_url = $1, updated_at = NOW() WHERE id = $2`,
		fileURL, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to update ebook file: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}

// PublishEbook flips the published flag
func (c *Client) PublishEbook(ctx context.Context, id uuid.UUID, published bool) error {
	start := time.Now()
	operation := "publishEbook"

	result, err := c.pool.Exec(ctx,
		`UPDATE ebooks SET published = $1, updated_at = NOW() WHERE id = $2`,
		published, id)

	duration := metrics.MeasureDuration(start)

	if err != nil {
		recordMetrics(operation, "error", duration)
		return fmt.Errorf("failed to publish ebook: %w", err)
	}
	if result.RowsAffected() == 0 {
		recordMetrics(operation, "not_found", duration)
		return pgx.ErrNoRows
	}

	recordMetrics(operation, "success", duration)
	return nil
}
