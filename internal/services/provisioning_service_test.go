package services_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/config"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type provisioningFixture struct {
	service     *services.ProvisioningService
	profiles    *MockProfileStore
	catalog     *MockCatalogStore
	enrollments *MockEnrollmentStore
	rateLimits  *MockRateLimitStore
	gateway     *MockIdentityGateway
	creator     *models.Profile
	course      *models.Course
}

func newProvisioningFixture() *provisioningFixture {
	profiles := &MockProfileStore{}
	catalog := &MockCatalogStore{}
	enrollments := &MockEnrollmentStore{}
	rateLimits := &MockRateLimitStore{}
	gateway := &MockIdentityGateway{}

	cfg := &config.Config{
		Server: config.ServerConfig{SiteURL: "https://aulanexo.com"},
		Provisioning: config.ProvisioningConfig{
			MaxBatchSize: 10,
			HourlyLimit:  20,
		},
	}

	creator := &models.Profile{
		ID:    uuid.New(),
		Email: "creator@aulanexo.com",
		Role:  models.RoleCreator,
	}
	course := &models.Course{
		ID:        uuid.New(),
		CreatorID: creator.ID,
		Title:     "Curso de Go",
	}

	return &provisioningFixture{
		service:     services.NewProvisioningService(profiles, catalog, enrollments, rateLimits, gateway, cfg),
		profiles:    profiles,
		catalog:     catalog,
		enrollments: enrollments,
		rateLimits:  rateLimits,
		gateway:     gateway,
		creator:     creator,
		course:      course,
	}
}

func (f *provisioningFixture) request(students ...models.StudentEntry) *models.AddStudentsRequest {
	return &models.AddStudentsRequest{
		ProductType: models.ProductTypeCourse,
		ProductID:   f.course.ID.String(),
		Students:    students,
	}
}

// allowHappyPath wires the precondition reads and the post-loop log append
func (f *provisioningFixture) allowHappyPath() {
	f.rateLimits.On("CountSince", mock.Anything, f.creator.ID, mock.Anything).Return(0, nil)
	f.catalog.On("GetCourseByID", mock.Anything, f.course.ID).Return(f.course, nil)
	f.rateLimits.On("Log", mock.Anything, f.creator.ID, models.ProductTypeCourse, f.course.ID, mock.Anything).Return(nil)
	f.rateLimits.On("PruneOlderThan", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()
}

func assertRequestError(t *testing.T, err error, status int, message string) {
	t.Helper()
	var reqErr *services.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, status, reqErr.Status)
	assert.Equal(t, message, reqErr.Message)
}

func TestAddStudents_HappyPath(t *testing.T) {
	f := newProvisioningFixture()
	f.allowHappyPath()

	students := []models.StudentEntry{
		{Name: "Ana García", Email: "Ana@Example.com"},
		{Name: "Bruno Costa", Email: "bruno@example.com"},
	}

	for _, email := range []string{"ana@example.com", "bruno@example.com"} {
		email := email
		userID := uuid.NewString()
		f.gateway.On("AdminCreateUser", mock.Anything, mock.MatchedBy(func(p identity.CreateUserParams) bool {
			return p.Email == email && p.EmailConfirm && p.UserMetadata["needs_password_change"] == true
		})).Return(&identity.User{ID: userID, Email: email}, nil)
		f.gateway.On("SendRecoveryEmail", mock.Anything, email, "https://aulanexo.com/reset-password").Return(nil)
	}
	f.profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.enrollments.On("CreateEnrollment", mock.Anything, f.course.ID, mock.Anything, models.EnrollmentSourceBulk).Return(nil)

	resp, err := f.service.AddStudents(context.Background(), f.creator, f.request(students...))

	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 2)

	// One result per entry, in input order, emails normalized
	assert.Equal(t, "ana@example.com", resp.Results[0].Email)
	assert.Equal(t, "bruno@example.com", resp.Results[1].Email)
	for _, result := range resp.Results {
		assert.True(t, result.Success)
		assert.Equal(t, "Added successfully", result.Message)
	}

	f.rateLimits.AssertCalled(t, "Log", mock.Anything, f.creator.ID, models.ProductTypeCourse, f.course.ID, 2)
}

func TestAddStudents_NonCreatorRejected(t *testing.T) {
	f := newProvisioningFixture()
	student := &models.Profile{ID: uuid.New(), Role: models.RoleStudent}

	_, err := f.service.AddStudents(context.Background(), student,
		f.request(models.StudentEntry{Name: "Ana", Email: "ana@example.com"}))

	assertRequestError(t, err, http.StatusUnauthorized, "Unauthorized: Only creators can add students")
	f.gateway.AssertNotCalled(t, "AdminCreateUser", mock.Anything, mock.Anything)
	f.enrollments.AssertNotCalled(t, "CreateEnrollment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddStudents_EmptyBatchRejected(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.service.AddStudents(context.Background(), f.creator, f.request())

	assertRequestError(t, err, http.StatusBadRequest, "No students provided")
	f.rateLimits.AssertNotCalled(t, "CountSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddStudents_OversizedBatchRejected(t *testing.T) {
	f := newProvisioningFixture()

	students := make([]models.StudentEntry, 11)
	for i := range students {
		students[i] = models.StudentEntry{
			Name:  fmt.Sprintf("Student %02d", i),
			Email: fmt.Sprintf("student%02d@example.com", i),
		}
	}

	_, err := f.service.AddStudents(context.Background(), f.creator, f.request(students...))

	assertRequestError(t, err, http.StatusBadRequest, "Maximum 10 students per request")
	f.gateway.AssertNotCalled(t, "AdminCreateUser", mock.Anything, mock.Anything)
}

func TestAddStudents_InvalidEmailRejectsWholeBatch(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.service.AddStudents(context.Background(), f.creator, f.request(
		models.StudentEntry{Name: "Ana García", Email: "ana@example.com"},
		models.StudentEntry{Name: "Bruno Costa", Email: "not-an-email"},
	))

	assertRequestError(t, err, http.StatusBadRequest, "Invalid email: not-an-email")
	// Validation happens before any side effect for any entry
	f.gateway.AssertNotCalled(t, "AdminCreateUser", mock.Anything, mock.Anything)
	f.rateLimits.AssertNotCalled(t, "CountSince", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddStudents_ShortNameRejected(t *testing.T) {
	f := newProvisioningFixture()

	_, err := f.service.AddStudents(context.Background(), f.creator, f.request(
		models.StudentEntry{Name: " A ", Email: "ana@example.com"},
	))

	assertRequestError(t, err, http.StatusBadRequest, "Invalid name for student ana@example.com")
}

func TestAddStudents_NameBoundsCountRunes(t *testing.T) {
	f := newProvisioningFixture()

	// "é" is two bytes but one rune, still below the minimum of two
	_, err := f.service.AddStudents(context.Background(), f.creator, f.request(
		models.StudentEntry{Name: "é", Email: "ana@example.com"},
	))
	assertRequestError(t, err, http.StatusBadRequest, "Invalid name for student ana@example.com")

	// 100 two-byte runes fill the window exactly; validation moves on to the
	// email and rejects that instead
	_, err = f.service.AddStudents(context.Background(), f.creator, f.request(
		models.StudentEntry{Name: strings.Repeat("ñ", 100), Email: "not-an-email"},
	))
	assertRequestError(t, err, http.StatusBadRequest, "Invalid email: not-an-email")
}

func TestAddStudents_RateLimitNamesRemainingAllowance(t *testing.T) {
	f := newProvisioningFixture()
	f.rateLimits.On("CountSince", mock.Anything, f.creator.ID, mock.Anything).Return(18, nil)

	students := []models.StudentEntry{
		{Name: "Ana García", Email: "ana@example.com"},
		{Name: "Bruno Costa", Email: "bruno@example.com"},
		{Name: "Carla Díaz", Email: "carla@example.com"},
	}

	_, err := f.service.AddStudents(context.Background(), f.creator, f.request(students...))

	assertRequestError(t, err, http.StatusBadRequest, "You can add 2 more students this hour")
	f.catalog.AssertNotCalled(t, "GetCourseByID", mock.Anything, mock.Anything)
}

func TestAddStudents_OwnershipRejected(t *testing.T) {
	f := newProvisioningFixture()

	otherCreator := &models.Profile{ID: uuid.New(), Role: models.RoleCreator}
	f.rateLimits.On("CountSince", mock.Anything, otherCreator.ID, mock.Anything).Return(0, nil)
	f.catalog.On("GetCourseByID", mock.Anything, f.course.ID).Return(f.course, nil)

	_, err := f.service.AddStudents(context.Background(), otherCreator,
		f.request(models.StudentEntry{Name: "Ana García", Email: "ana@example.com"}))

	assertRequestError(t, err, http.StatusUnauthorized, "Unauthorized: You don't own this course")
	f.gateway.AssertNotCalled(t, "AdminCreateUser", mock.Anything, mock.Anything)
}

func TestAddStudents_AdminBypassesOwnership(t *testing.T) {
	f := newProvisioningFixture()

	admin := &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}
	f.rateLimits.On("CountSince", mock.Anything, admin.ID, mock.Anything).Return(0, nil)
	f.catalog.On("GetCourseByID", mock.Anything, f.course.ID).Return(f.course, nil)
	f.rateLimits.On("Log", mock.Anything, admin.ID, models.ProductTypeCourse, f.course.ID, 1).Return(nil)
	f.rateLimits.On("PruneOlderThan", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	userID := uuid.NewString()
	f.gateway.On("AdminCreateUser", mock.Anything, mock.Anything).Return(&identity.User{ID: userID}, nil)
	f.gateway.On("SendRecoveryEmail", mock.Anything, "ana@example.com", mock.Anything).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.enrollments.On("CreateEnrollment", mock.Anything, f.course.ID, mock.Anything, models.EnrollmentSourceBulk).Return(nil)

	resp, err := f.service.AddStudents(context.Background(), admin,
		f.request(models.StudentEntry{Name: "Ana García", Email: "ana@example.com"}))

	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
}

func TestAddStudents_ExistingIdentityResolvedByLookup(t *testing.T) {
	f := newProvisioningFixture()
	f.allowHappyPath()

	existingID := uuid.NewString()
	f.gateway.On("AdminCreateUser", mock.Anything, mock.Anything).Return(nil, identity.ErrEmailExists)
	f.gateway.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(&identity.User{ID: existingID}, nil)
	f.enrollments.On("CreateEnrollment", mock.Anything, f.course.ID, uuid.MustParse(existingID), models.EnrollmentSourceBulk).Return(nil)

	resp, err := f.service.AddStudents(context.Background(), f.creator,
		f.request(models.StudentEntry{Name: "Ana García", Email: "ana@example.com"}))

	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	// An existing identity gets no recovery email and no new profile row
	f.gateway.AssertNotCalled(t, "SendRecoveryEmail", mock.Anything, mock.Anything, mock.Anything)
	f.profiles.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAddStudents_ExistsButNotFound(t *testing.T) {
	f := newProvisioningFixture()
	f.rateLimits.On("CountSince", mock.Anything, f.creator.ID, mock.Anything).Return(0, nil)
	f.catalog.On("GetCourseByID", mock.Anything, f.course.ID).Return(f.course, nil)

	f.gateway.On("AdminCreateUser", mock.Anything, mock.Anything).Return(nil, identity.ErrEmailExists)
	f.gateway.On("FindUserByEmail", mock.Anything, "ana@example.com").Return(nil, identity.ErrUserNotFound)

	resp, err := f.service.AddStudents(context.Background(), f.creator,
		f.request(models.StudentEntry{Name: "Ana García", Email: "ana@example.com"}))

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, "User exists but not found", resp.Results[0].Message)

	// No successes, so no rate-limit row
	f.rateLimits.AssertNotCalled(t, "Log", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAddStudents_DuplicateEnrollmentTreatedAsSuccess(t *testing.T) {
	f := newProvisioningFixture()
	f.allowHappyPath()

	userID := uuid.NewString()
	f.gateway.On("AdminCreateUser", mock.Anything, mock.Anything).Return(&identity.User{ID: userID}, nil)
	f.gateway.On("SendRecoveryEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.enrollments.On("CreateEnrollment", mock.Anything, f.course.ID, mock.Anything, models.EnrollmentSourceBulk).Return(postgres.ErrDuplicate)

	resp, err := f.service.AddStudents(context.Background(), f.creator,
		f.request(models.StudentEntry{Name: "Ana García", Email: "ana@example.com"}))

	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
	assert.Equal(t, "Added successfully", resp.Results[0].Message)
}

func TestAddStudents_UnexpectedGatewayErrorIsolatedPerEntry(t *testing.T) {
	f := newProvisioningFixture()
	f.allowHappyPath()

	// First entry hits an unexpected gateway failure, second succeeds.
	// Earlier accumulated results are never discarded.
	f.gateway.On("AdminCreateUser", mock.Anything, mock.MatchedBy(func(p identity.CreateUserParams) bool {
		return p.Email == "ana@example.com"
	})).Return(nil, errors.New("gateway unavailable"))

	userID := uuid.NewString()
	f.gateway.On("AdminCreateUser", mock.Anything, mock.MatchedBy(func(p identity.CreateUserParams) bool {
		return p.Email == "bruno@example.com"
	})).Return(&identity.User{ID: userID}, nil)
	f.gateway.On("SendRecoveryEmail", mock.Anything, "bruno@example.com", mock.Anything).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.enrollments.On("CreateEnrollment", mock.Anything, f.course.ID, uuid.MustParse(userID), models.EnrollmentSourceBulk).Return(nil)

	resp, err := f.service.AddStudents(context.Background(), f.creator, f.request(
		models.StudentEntry{Name: "Ana García", Email: "ana@example.com"},
		models.StudentEntry{Name: "Bruno Costa", Email: "bruno@example.com"},
	))

	require.NoError(t, err)
	require.Len(t, resp.Results, 2)
	assert.False(t, resp.Results[0].Success)
	assert.Equal(t, "gateway unavailable", resp.Results[0].Message)
	assert.True(t, resp.Results[1].Success)

	f.rateLimits.AssertCalled(t, "Log", mock.Anything, f.creator.ID, models.ProductTypeCourse, f.course.ID, 1)
}

func TestAddStudents_EventRegistration(t *testing.T) {
	f := newProvisioningFixture()

	event := &models.Event{ID: uuid.New(), CreatorID: f.creator.ID}
	f.rateLimits.On("CountSince", mock.Anything, f.creator.ID, mock.Anything).Return(0, nil)
	f.catalog.On("GetEventByID", mock.Anything, event.ID).Return(event, nil)
	f.rateLimits.On("Log", mock.Anything, f.creator.ID, models.ProductTypeEvent, event.ID, 1).Return(nil)
	f.rateLimits.On("PruneOlderThan", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	userID := uuid.NewString()
	f.gateway.On("AdminCreateUser", mock.Anything, mock.Anything).Return(&identity.User{ID: userID}, nil)
	f.gateway.On("SendRecoveryEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.profiles.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.enrollments.On("CreateEventRegistration", mock.Anything, event.ID, uuid.MustParse(userID), models.EnrollmentSourceBulk).Return(nil)

	req := &models.AddStudentsRequest{
		ProductType: models.ProductTypeEvent,
		ProductID:   event.ID.String(),
		Students:    []models.StudentEntry{{Name: "Ana García", Email: "ana@example.com"}},
	}

	resp, err := f.service.AddStudents(context.Background(), f.creator, req)

	require.NoError(t, err)
	assert.True(t, resp.Results[0].Success)
}

func TestAddStudents_InvalidProductType(t *testing.T) {
	f := newProvisioningFixture()
	f.rateLimits.On("CountSince", mock.Anything, f.creator.ID, mock.Anything).Return(0, nil)

	req := &models.AddStudentsRequest{
		ProductType: "ebook",
		ProductID:   uuid.NewString(),
		Students:    []models.StudentEntry{{Name: "Ana García", Email: "ana@example.com"}},
	}

	_, err := f.service.AddStudents(context.Background(), f.creator, req)

	assertRequestError(t, err, http.StatusBadRequest, "Invalid product type")
}
