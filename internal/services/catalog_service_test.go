package services_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse_GeneratesSlugAndDefaults(t *testing.T) {
	catalog := &MockCatalogStore{}
	service := services.NewCatalogService(catalog, nil, &MockUploader{})

	creator := &models.Profile{ID: uuid.New(), Role: models.RoleCreator}

	catalog.On("CreateCourse", mock.Anything, mock.MatchedBy(func(c *models.Course) bool {
		return c.CreatorID == creator.ID && c.Currency == "EUR" && c.Slug != ""
	})).Return(nil)

	course, err := service.CreateCourse(context.Background(), creator, &models.CreateCourseRequest{
		Title:      "Introducción a Go",
		PriceCents: 4999,
	})

	require.NoError(t, err)
	assert.Contains(t, course.Slug, "introduccion-a-go-")
	assert.False(t, course.Published)
}

func TestCreateCourse_StudentRejected(t *testing.T) {
	catalog := &MockCatalogStore{}
	service := services.NewCatalogService(catalog, nil, &MockUploader{})

	student := &models.Profile{ID: uuid.New(), Role: models.RoleStudent}

	_, err := service.CreateCourse(context.Background(), student, &models.CreateCourseRequest{Title: "Curso"})

	var reqErr *services.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	catalog.AssertNotCalled(t, "CreateCourse", mock.Anything, mock.Anything)
}

func TestUpdateCourse_OwnershipEnforced(t *testing.T) {
	catalog := &MockCatalogStore{}
	service := services.NewCatalogService(catalog, nil, &MockUploader{})

	owner := uuid.New()
	courseID := uuid.New()
	catalog.On("GetCourseByID", mock.Anything, courseID).Return(&models.Course{
		ID: courseID, CreatorID: owner,
	}, nil)

	intruder := &models.Profile{ID: uuid.New(), Role: models.RoleCreator}

	_, err := service.UpdateCourse(context.Background(), intruder, courseID, &models.UpdateCourseRequest{Title: "Nuevo título"})

	var reqErr *services.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.Status)
	assert.Equal(t, "Unauthorized: You don't own this course", reqErr.Message)
	catalog.AssertNotCalled(t, "UpdateCourse", mock.Anything, mock.Anything)
}

func TestUpdateCourse_AdminBypassesOwnership(t *testing.T) {
	catalog := &MockCatalogStore{}
	service := services.NewCatalogService(catalog, nil, &MockUploader{})

	courseID := uuid.New()
	catalog.On("GetCourseByID", mock.Anything, courseID).Return(&models.Course{
		ID: courseID, CreatorID: uuid.New(), Currency: "EUR",
	}, nil)
	catalog.On("UpdateCourse", mock.Anything, mock.Anything).Return(nil)

	admin := &models.Profile{ID: uuid.New(), Role: models.RoleAdmin}

	course, err := service.UpdateCourse(context.Background(), admin, courseID, &models.UpdateCourseRequest{
		Title:     "Nuevo título",
		Published: true,
	})

	require.NoError(t, err)
	assert.True(t, course.Published)
}

func TestUploadCourseCover_ValidationFailureRejected(t *testing.T) {
	catalog := &MockCatalogStore{}
	uploader := &MockUploader{}
	service := services.NewCatalogService(catalog, nil, uploader)

	creator := &models.Profile{ID: uuid.New(), Role: models.RoleCreator}
	courseID := uuid.New()
	catalog.On("GetCourseByID", mock.Anything, courseID).Return(&models.Course{
		ID: courseID, CreatorID: creator.ID,
	}, nil)
	uploader.On("ValidateContentType", "image/gif").Return(assert.AnError)

	_, err := service.UploadCourseCover(context.Background(), creator, courseID, &models.UploadMediaRequest{
		Data:        "aGVsbG8=",
		FileName:    "cover.gif",
		ContentType: "image/gif",
	})

	var reqErr *services.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetPublishedCourses_FallsBackToStoreWithoutCache(t *testing.T) {
	catalog := &MockCatalogStore{}
	service := services.NewCatalogService(catalog, nil, &MockUploader{})

	expected := []*models.Course{{ID: uuid.New(), Title: "Curso"}}
	catalog.On("ListPublishedCourses", mock.Anything).Return(expected, nil)

	courses, err := service.GetPublishedCourses(context.Background())

	require.NoError(t, err)
	assert.Equal(t, expected, courses)
}
