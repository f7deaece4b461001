package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
)

// ProvisioningServiceInterface defines the interface for bulk student creation
type ProvisioningServiceInterface interface {
	AddStudents(ctx context.Context, caller *models.Profile, req *models.AddStudentsRequest) (*models.AddStudentsResponse, error)
}

// TwoFactorServiceInterface defines the interface for one-time code operations
type TwoFactorServiceInterface interface {
	SendCode(ctx context.Context, req *models.SendTwoFactorCodeRequest) error
	VerifyCode(ctx context.Context, req *models.VerifyTwoFactorCodeRequest) error
}

// CatalogServiceInterface defines the interface for catalog operations
type CatalogServiceInterface interface {
	CreateCourse(ctx context.Context, caller *models.Profile, req *models.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, caller *models.Profile, courseID uuid.UUID, req *models.UpdateCourseRequest) (*models.Course, error)
	UploadCourseCover(ctx context.Context, caller *models.Profile, courseID uuid.UUID, req *models.UploadMediaRequest) (string, error)
	GetPublishedCourses(ctx context.Context) ([]*models.Course, error)
	GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error)
	ListCreatorCourses(ctx context.Context, caller *models.Profile) ([]*models.Course, error)

	CreateEvent(ctx context.Context, caller *models.Profile, req *models.CreateEventRequest) (*models.Event, error)
	PublishEvent(ctx context.Context, caller *models.Profile, eventID uuid.UUID, published bool) error
	GetUpcomingEvents(ctx context.Context) ([]*models.Event, error)
	ListCreatorEvents(ctx context.Context, caller *models.Profile) ([]*models.Event, error)

	CreateEbook(ctx context.Context, caller *models.Profile, req *models.CreateEbookRequest) (*models.Ebook, error)
	UploadEbookFile(ctx context.Context, caller *models.Profile, ebookID uuid.UUID, req *models.UploadMediaRequest) (string, error)
	GetPublishedEbooks(ctx context.Context) ([]*models.Ebook, error)
	PublishEbook(ctx context.Context, caller *models.Profile, ebookID uuid.UUID, published bool) error
}

// EnrollmentServiceInterface defines the interface for enrollment operations
type EnrollmentServiceInterface interface {
	EnrollInCourse(ctx context.Context, caller *models.Profile, courseID uuid.UUID) error
	RegisterForEvent(ctx context.Context, caller *models.Profile, eventID uuid.UUID) error
	ListMyEnrollments(ctx context.Context, caller *models.Profile) ([]*models.Enrollment, error)
	ListMyRegistrations(ctx context.Context, caller *models.Profile) ([]*models.EventRegistration, error)
}

// ProfileServiceInterface defines the interface for profile operations
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdateProfile(ctx context.Context, caller *models.Profile, req *models.UpdateProfileRequest) error
	UploadAvatar(ctx context.Context, caller *models.Profile, req *models.UploadAvatarRequest) (string, error)
}

var (
	_ ProvisioningServiceInterface = (*ProvisioningService)(nil)
	_ TwoFactorServiceInterface    = (*TwoFactorService)(nil)
	_ CatalogServiceInterface      = (*CatalogService)(nil)
	_ EnrollmentServiceInterface   = (*EnrollmentService)(nil)
	_ ProfileServiceInterface      = (*ProfileService)(nil)
)
