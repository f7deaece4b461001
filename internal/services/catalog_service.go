package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/cache"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/objectstorage"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/slug"
	"go.uber.org/zap"
)

const defaultCurrency = "EUR"

// CatalogService manages courses, events and e-books for creators, and
// serves the public catalog reads through the cache when available.
type CatalogService struct {
	catalog repository.CatalogStore
	cache   *cache.CatalogCache
	storage objectstorage.Uploader
}

// NewCatalogService creates a new catalog service instance
func NewCatalogService(catalog repository.CatalogStore, catalogCache *cache.CatalogCache, storage objectstorage.Uploader) *CatalogService {
	return &CatalogService{
		catalog: catalog,
		cache:   catalogCache,
		storage: storage,
	}
}

// ownershipError is the uniform rejection for catalog writes on products
// the caller does not control.
func ownershipError(productType string) error {
	return &RequestError{
		Status:  http.StatusUnauthorized,
		Message: fmt.Sprintf("Unauthorized: You don't own this %s", productType),
	}
}

// CreateCourse creates an unpublished course owned by the caller
func (s *CatalogService) CreateCourse(ctx context.Context, caller *models.Profile, req *models.CreateCourseRequest) (*models.Course, error) {
	if !caller.IsCreator() {
		return nil, &RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized: Only creators can manage products"}
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	course := &models.Course{
		CreatorID:   caller.ID,
		Title:       req.Title,
		Slug:        slug.GenerateProductSlug(req.Title, uuid.NewString()[:8]),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    currency,
	}

	if err := s.catalog.CreateCourse(ctx, course); err != nil {
		metrics.CatalogWrites.WithLabelValues(models.ProductTypeCourse, "error").Inc()
		logger.Error("Failed to create course", zap.Error(err))
		return nil, err
	}

	metrics.CatalogWrites.WithLabelValues(models.ProductTypeCourse, "success").Inc()
	logger.Info("Course created",
		zap.String("course_id", course.ID.String()),
		zap.String("creator_id", caller.ID.String()))

	return course, nil
}

// UpdateCourse updates a course the caller owns. Publishing refreshes the
// public catalog cache.
func (s *CatalogService) UpdateCourse(ctx context.Context, caller *models.Profile, courseID uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error) {
	course, err := s.catalog.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, &RequestError{Status: http.StatusNotFound, Message: "Course not found"}
	}
	if !caller.IsAdmin() && course.CreatorID != caller.ID {
		return nil, ownershipError(models.ProductTypeCourse)
	}

	course.Title = req.Title
	course.Description = req.Description
	course.PriceCents = req.PriceCents
	if req.Currency != "" {
		course.Currency = req.Currency
	}
	course.Published = req.Published

	if err := s.catalog.UpdateCourse(ctx, course); err != nil {
		metrics.CatalogWrites.WithLabelValues(models.ProductTypeCourse, "error").Inc()
		return nil, err
	}

	metrics.CatalogWrites.WithLabelValues(models.ProductTypeCourse, "success").Inc()
	if s.cache != nil {
		s.cache.Invalidate()
	}

	return course, nil
}

// UploadCourseCover validates and stores a cover image, then saves its URL
func (s *CatalogService) UploadCourseCover(ctx context.Context, caller *models.Profile, courseID uuid.UUID, req *models.UploadMediaRequest) (string, error) {
	course, err := s.catalog.GetCourseByID(ctx, courseID)
	if err != nil {
		return "", &RequestError{Status: http.StatusNotFound, Message: "Course not found"}
	}
	if !caller.IsAdmin() && course.CreatorID != caller.ID {
		return "", ownershipError(models.ProductTypeCourse)
	}

	if err := s.storage.ValidateContentType(req.ContentType); err != nil {
		return "", &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.storage.ValidateSize(req.Data); err != nil {
		return "", &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
	}

	key := s.storage.GenerateKey("courses", course.CreatorID.String(), req.FileName)
	url, err := s.storage.Upload(ctx, req.Data, key, req.ContentType)
	if err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		logger.Error("Course cover upload failed", zap.Error(err))
		return "", err
	}

	if err := s.catalog.UpdateCourseCover(ctx, courseID, url); err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.MediaUploads.WithLabelValues("success").Inc()
	return url, nil
}

// GetPublishedCourses serves the public course list, preferring the cache
func (s *CatalogService) GetPublishedCourses(ctx context.Context) ([]*models.Course, error) {
	if s.cache != nil && s.cache.IsReady() {
		if courses, err := s.cache.GetPublishedCourses(); err == nil {
			return courses, nil
		}
	}
	return s.catalog.ListPublishedCourses(ctx)
}

// GetCourseBySlug serves one public course, preferring the cache
func (s *CatalogService) GetCourseBySlug(ctx context.Context, courseSlug string) (*models.Course, error) {
	if s.cache != nil && s.cache.IsReady() {
		if course, err := s.cache.GetCourseBySlug(courseSlug); err == nil {
			return course, nil
		}
	}

	course, err := s.catalog.GetCourseBySlug(ctx, courseSlug)
	if err != nil {
		return nil, &RequestError{Status: http.StatusNotFound, Message: "Course not found"}
	}
	return course, nil
}

// ListCreatorCourses returns all courses owned by the caller
func (s *CatalogService) ListCreatorCourses(ctx context.Context, caller *models.Profile) ([]*models.Course, error) {
	return s.catalog.ListCoursesByCreator(ctx, caller.ID)
}

// CreateEvent creates an unpublished event owned by the caller
func (s *CatalogService) CreateEvent(ctx context.Context, caller *models.Profile, req *models.CreateEventRequest) (*models.Event, error) {
	if !caller.IsCreator() {
		return nil, &RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized: Only creators can manage products"}
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	event := &models.Event{
		CreatorID:   caller.ID,
		Title:       req.Title,
		Slug:        slug.GenerateProductSlug(req.Title, uuid.NewString()[:8]),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    currency,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		Capacity:    req.Capacity,
	}

	if err := s.catalog.CreateEvent(ctx, event); err != nil {
		metrics.CatalogWrites.WithLabelValues(models.ProductTypeEvent, "error").Inc()
		logger.Error("Failed to create event", zap.Error(err))
		return nil, err
	}

	metrics.CatalogWrites.WithLabelValues(models.ProductTypeEvent, "success").Inc()
	return event, nil
}

// PublishEvent flips an event's published flag, with ownership check
func (s *CatalogService) PublishEvent(ctx context.Context, caller *models.Profile, eventID uuid.UUID, published bool) error {
	event, err := s.catalog.GetEventByID(ctx, eventID)
	if err != nil {
		return &RequestError{Status: http.StatusNotFound, Message: "Event not found"}
	}
	if !caller.IsAdmin() && event.CreatorID != caller.ID {
		return ownershipError(models.ProductTypeEvent)
	}

	if err := s.catalog.PublishEvent(ctx, eventID, published); err != nil {
		metrics.CatalogWrites.WithLabelValues(models.ProductTypeEvent, "error").Inc()
		return err
	}

	metrics.CatalogWrites.WithLabelValues(models.ProductTypeEvent, "success").Inc()
	return nil
}

// GetUpcomingEvents returns published future events
func (s *CatalogService) GetUpcomingEvents(ctx context.Context) ([]*models.Event, error) {
	return s.catalog.ListUpcomingEvents(ctx)
}

// ListCreatorEvents returns all events owned by the caller
func (s *CatalogService) ListCreatorEvents(ctx context.Context, caller *models.Profile) ([]*models.Event, error) {
	return s.catalog.ListEventsByCreator(ctx, caller.ID)
}

// CreateEbook creates an unpublished e-book owned by the caller
func (s *CatalogService) CreateEbook(ctx context.Context, caller *models.Profile, req *models.CreateEbookRequest) (*models.Ebook, error) {
	if !caller.IsCreator() {
		return nil, &RequestError{Status: http.StatusUnauthorized, Message: "Unauthorized: Only creators can manage products"}
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	ebook := &models.Ebook{
		CreatorID:   caller.ID,
		Title:       req.Title,
		Slug:        slug.GenerateProductSlug(req.Title, uuid.NewString()[:8]),
		Description: req.Description,
		PriceCents:  req.PriceCents,
		Currency:    currency,
	}

	if err := s.catalog.CreateEbook(ctx, ebook); err != nil {
		metrics.CatalogWrites.WithLabelValues(models.ProductTypeEbook, "error").Inc()
		return nil, err
	}

	metrics.CatalogWrites.WithLabelValues(models.ProductTypeEbook, "success").Inc()
	return ebook, nil
}

// UploadEbookFile validates and stores the e-book file, then saves its URL
func (s *CatalogService) UploadEbookFile(ctx context.Context, caller *models.Profile, ebookID uuid.UUID, req *models.UploadMediaRequest) (string, error) {
	ebook, err := s.catalog.GetEbookByID(ctx, ebookID)
	if err != nil {
		return "", &RequestError{Status: http.StatusNotFound, Message: "Ebook not found"}
	}
	if !caller.IsAdmin() && ebook.CreatorID != caller.ID {
		return "", ownershipError(models.ProductTypeEbook)
	}

	if err := s.storage.ValidateContentType(req.ContentType); err != nil {
		return "", &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.storage.ValidateSize(req.Data); err != nil {
		return "", &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
	}

	key := s.storage.GenerateKey("ebooks", ebook.CreatorID.String(), req.FileName)
	url, err := s.storage.Upload(ctx, req.Data, key, req.ContentType)
	if err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		return "", err
	}

	if err := s.catalog.UpdateEbookFile(ctx, ebookID, url); err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.MediaUploads.WithLabelValues("success").Inc()
	return url, nil
}

// GetPublishedEbooks returns the public e-book list
func (s *CatalogService) GetPublishedEbooks(ctx context.Context) ([]*models.Ebook, error) {
	return s.catalog.ListPublishedEbooks(ctx)
}

// PublishEbook flips an e-book's published flag, with ownership check
func (s *CatalogService) PublishEbook(ctx context.Context, caller *models.Profile, ebookID uuid.UUID, published bool) error {
	ebook, err := s.catalog.GetEbookByID(ctx, ebookID)
	if err != nil {
		return &RequestError{Status: http.StatusNotFound, Message: "Ebook not found"}
	}
	if !caller.IsAdmin() && ebook.CreatorID != caller.ID {
		return ownershipError(models.ProductTypeEbook)
	}

	if err := s.catalog.PublishEbook(ctx, ebookID, published); err != nil {
		metrics.CatalogWrites.WithLabelValues(models.ProductTypeEbook, "error").Inc()
		return err
	}

	metrics.CatalogWrites.WithLabelValues(models.ProductTypeEbook, "success").Inc()
	return nil
}
