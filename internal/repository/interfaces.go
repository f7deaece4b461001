package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
)

// ProfileStore defines profile data access.
// Services depend on this interface so tests can swap in mocks.
type ProfileStore interface {
	Create(ctx context.Context, p *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	Update(ctx context.Context, id uuid.UUID, fullName, bio string) error
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error
}

// CatalogStore defines product data access across all product types.
type CatalogStore interface {
	CreateCourse(ctx context.Context, course *models.Course) error
	GetCourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListPublishedCourses(ctx context.Context) ([]*models.Course, error)
	ListCoursesByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Course, error)
	UpdateCourse(ctx context.Context, course *models.Course) error
	UpdateCourseCover(ctx context.Context, id uuid.UUID, coverURL string) error

	CreateEvent(ctx context.Context, event *models.Event) error
	GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListUpcomingEvents(ctx context.Context) ([]*models.Event, error)
	ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Event, error)
	PublishEvent(ctx context.Context, id uuid.UUID, published bool) error

	CreateEbook(ctx context.Context, ebook *models.Ebook) error
	GetEbookByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error)
	ListPublishedEbooks(ctx context.Context) ([]*models.Ebook, error)
	UpdateEbookFile(ctx context.Context, id uuid.UUID, fileURL string) error
	PublishEbook(ctx context.Context, id uuid.UUID, published bool) error
}

// EnrollmentStore defines enrollment and registration data access.
type EnrollmentStore interface {
	CreateEnrollment(ctx context.Context, courseID, studentID uuid.UUID, source string) error
	CreateEventRegistration(ctx context.Context, eventID, studentID uuid.UUID, source string) error
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Enrollment, error)
	ListRegistrationsByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.EventRegistration, error)
	CountEventRegistrations(ctx context.Context, eventID uuid.UUID) (int, error)
}

// RateLimitStore backs the hourly bulk-provisioning limit.
type RateLimitStore interface {
	CountSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int, error)
	Log(ctx context.Context, creatorID uuid.UUID, productType string, productID uuid.UUID, studentsCount int) error
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// TwoFactorStore defines one-time code data access.
type TwoFactorStore interface {
	InvalidateUnused(ctx context.Context, userID uuid.UUID) error
	Create(ctx context.Context, code *models.TwoFactorCode) error
	GetActive(ctx context.Context, userID uuid.UUID, code string) (*models.TwoFactorCode, error)
	MarkUsed(ctx context.Context, id uuid.UUID) error
}
