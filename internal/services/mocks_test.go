package services_test

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/identity"
	"github.com/stretchr/testify/mock"
)

// MockProfileStore is a mock implementation of repository.ProfileStore
type MockProfileStore struct {
	mock.Mock
}

func (m *MockProfileStore) Create(ctx context.Context, p *models.Profile) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) Update(ctx context.Context, id uuid.UUID, fullName, bio string) error {
	args := m.Called(ctx, id, fullName, bio)
	return args.Error(0)
}

func (m *MockProfileStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	args := m.Called(ctx, id, avatarURL)
	return args.Error(0)
}

// MockCatalogStore is a mock implementation of repository.CatalogStore
type MockCatalogStore struct {
	mock.Mock
}

func (m *MockCatalogStore) CreateCourse(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCatalogStore) GetCourseByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCatalogStore) GetCourseBySlug(ctx context.Context, slug string) (*models.Course, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Course), args.Error(1)
}

func (m *MockCatalogStore) ListPublishedCourses(ctx context.Context) ([]*models.Course, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCatalogStore) ListCoursesByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Course, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Course), args.Error(1)
}

func (m *MockCatalogStore) UpdateCourse(ctx context.Context, course *models.Course) error {
	args := m.Called(ctx, course)
	return args.Error(0)
}

func (m *MockCatalogStore) UpdateCourseCover(ctx context.Context, id uuid.UUID, coverURL string) error {
	args := m.Called(ctx, id, coverURL)
	return args.Error(0)
}

func (m *MockCatalogStore) CreateEvent(ctx context.Context, event *models.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockCatalogStore) GetEventByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Event), args.Error(1)
}

func (m *MockCatalogStore) ListUpcomingEvents(ctx context.Context) ([]*models.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockCatalogStore) ListEventsByCreator(ctx context.Context, creatorID uuid.UUID) ([]*models.Event, error) {
	args := m.Called(ctx, creatorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Event), args.Error(1)
}

func (m *MockCatalogStore) PublishEvent(ctx context.Context, id uuid.UUID, published bool) error {
	args := m.Called(ctx, id, published)
	return args.Error(0)
}

func (m *MockCatalogStore) CreateEbook(ctx context.Context, ebook *models.Ebook) error {
	args := m.Called(ctx, ebook)
	return args.Error(0)
}

func (m *MockCatalogStore) GetEbookByID(ctx context.Context, id uuid.UUID) (*models.Ebook, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ebook), args.Error(1)
}

func (m *MockCatalogStore) ListPublishedEbooks(ctx context.Context) ([]*models.Ebook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Ebook), args.Error(1)
}

func (m *MockCatalogStore) UpdateEbookFile(ctx context.Context, id uuid.UUID, fileURL string) error {
	args := m.Called(ctx, id, fileURL)
	return args.Error(0)
}

func (m *MockCatalogStore) PublishEbook(ctx context.Context, id uuid.UUID, published bool) error {
	args := m.Called(ctx, id, published)
	return args.Error(0)
}

// MockEnrollmentStore is a mock implementation of repository.EnrollmentStore
type MockEnrollmentStore struct {
	mock.Mock
}

func (m *MockEnrollmentStore) CreateEnrollment(ctx context.Context, courseID, studentID uuid.UUID, source string) error {
	args := m.Called(ctx, courseID, studentID, source)
	return args.Error(0)
}

func (m *MockEnrollmentStore) CreateEventRegistration(ctx context.Context, eventID, studentID uuid.UUID, source string) error {
	args := m.Called(ctx, eventID, studentID, source)
	return args.Error(0)
}

func (m *MockEnrollmentStore) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Enrollment, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Enrollment), args.Error(1)
}

func (m *MockEnrollmentStore) ListRegistrationsByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.EventRegistration, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.EventRegistration), args.Error(1)
}

func (m *MockEnrollmentStore) CountEventRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	args := m.Called(ctx, eventID)
	return args.Int(0), args.Error(1)
}

// MockRateLimitStore is a mock implementation of repository.RateLimitStore
type MockRateLimitStore struct {
	mock.Mock
}

func (m *MockRateLimitStore) CountSince(ctx context.Context, creatorID uuid.UUID, since time.Time) (int, error) {
	args := m.Called(ctx, creatorID, since)
	return args.Int(0), args.Error(1)
}

func (m *MockRateLimitStore) Log(ctx context.Context, creatorID uuid.UUID, productType string, productID uuid.UUID, studentsCount int) error {
	args := m.Called(ctx, creatorID, productType, productID, studentsCount)
	return args.Error(0)
}

func (m *MockRateLimitStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockTwoFactorStore is a mock implementation of repository.TwoFactorStore
type MockTwoFactorStore struct {
	mock.Mock
}

func (m *MockTwoFactorStore) InvalidateUnused(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTwoFactorStore) Create(ctx context.Context, code *models.TwoFactorCode) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockTwoFactorStore) GetActive(ctx context.Context, userID uuid.UUID, code string) (*models.TwoFactorCode, error) {
	args := m.Called(ctx, userID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TwoFactorCode), args.Error(1)
}

func (m *MockTwoFactorStore) MarkUsed(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockIdentityGateway is a mock implementation of identity.Gateway
type MockIdentityGateway struct {
	mock.Mock
}

func (m *MockIdentityGateway) AdminCreateUser(ctx context.Context, params identity.CreateUserParams) (*identity.User, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockIdentityGateway) FindUserByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockIdentityGateway) SendRecoveryEmail(ctx context.Context, email, redirectTo string) error {
	args := m.Called(ctx, email, redirectTo)
	return args.Error(0)
}

// MockMailer is a mock implementation of mailer.Sender
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, toName, subject, htmlContent string) error {
	args := m.Called(ctx, to, toName, subject, htmlContent)
	return args.Error(0)
}

// MockUploader is a mock implementation of objectstorage.Uploader
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, data, key, contentType string) (string, error) {
	args := m.Called(ctx, data, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockUploader) ValidateContentType(contentType string) error {
	args := m.Called(contentType)
	return args.Error(0)
}

func (m *MockUploader) ValidateSize(data string) error {
	args := m.Called(data)
	return args.Error(0)
}

func (m *MockUploader) GenerateKey(prefix, ownerID, originalFileName string) string {
	args := m.Called(prefix, ownerID, originalFileName)
	return args.String(0)
}
