package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
)

// CatalogRepository handles course, event and e-book data access
type CatalogRepository struct {
	db *postgres.Client
}

// NewCatalogRepository creates a new catalog repository
func NewCatalogRepository(db *postgres.Client) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func (r *CatalogRepository) CreateCourse(ctx context.Context, course *models.Course) error {
	return r.db.CreateCourse(ctx, course)
}

func (r *CatalogRepository) GetCourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	return r.db.GetCourseByID(ctx, id)
}

func (r *CatalogRepository) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	return r.db.GetCourseBySlug(ctx, slug)
}

func (r *CatalogRepository) ListPublishedCourses(ctx context.Context) ([]*models.Course, error) {
	return r.db.ListPublishedCourses(ctx)
}

func (r *CatalogRepository) ListCoursesByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Course, error) {
	return r.db.ListCoursesByCreator(ctx, creatorID)
}

func (r *CatalogRepository) UpdateCourse(ctx context.Context, course *models.Course) error {
	return r.db.UpdateCourse(ctx, course)
}

func (r *CatalogRepository) UpdateCourseCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	return r.db.UpdateCourseCover(ctx, id, coverURL)
}

func (r *CatalogRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.CreateEvent(ctx, event)
}

func (r *CatalogRepository) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return r.db.GetEventByID(ctx, id)
}

func (r *CatalogRepository) ListUpcomingEvents(ctx context.Context) ([]*models.Event, error) {
	return r.db.ListUpcomingEvents(ctx)
}

func (r *CatalogRepository) ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Event, error) {
	return r.db.ListEventsByCreator(ctx, creatorID)
}

func (r *CatalogRepository) PublishEvent(ctx context.Context, id uuid.UUID, published bool) error {
	return r.db.PublishEvent(ctx, id, published)
}

func (r *CatalogRepository) CreateEbook(ctx context.Context, ebook *models.Ebook) error {
	return r.db.CreateEbook(ctx, ebook)
}

func (r *CatalogRepository) GetEbookByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error) {
	return r.db.GetEbookByID(ctx, id)
}

func (r *CatalogRepository) ListPublishedEbooks(ctx context.Context) ([]*models.Ebook, error) {
	return r.db.ListPublishedEbooks(ctx)
}

func (r *CatalogRepository) UpdateEbookFile(ctx context.Context, id uuid.UUID, fileURL string) error {
	return r.db.UpdateEbookFile(ctx, id, fileURL)
}

func (r *CatalogRepository) PublishEbook(ctx context.Context, id uuid.UUID, published bool) error {
	return r.db.PublishEbook(ctx, id, published)
}

var _ CatalogStore = (*CatalogRepository)(nil)
