package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type mockProvisioningService struct {
	mock.Mock
}

func (m *mockProvisioningService) AddStudents(ctx context.Context, caller *models.Profile, req *models.AddStudentsRequest) (*models.AddStudentsResponse, error) {
	args := m.Called(ctx, caller, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AddStudentsResponse), args.Error(1)
}

// withCaller injects an authenticated profile the way the auth middleware does
func withCaller(profile *models.Profile) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.CallerContextKey, profile)
		c.Next()
	}
}

func creatorProfile() *models.Profile {
	return &models.Profile{
		ID:       uuid.New(),
		Email:    "creator@example.com",
		FullName: "Carla Gomez",
		Role:     models.RoleCreator,
	}
}

func addStudentsBody(t *testing.T) *bytes.Buffer {
	t.Helper()

	body, err := json.Marshal(models.AddStudentsRequest{
		ProductType: models.ProductTypeCourse,
		ProductID:   uuid.NewString(),
		Students: []models.StudentEntry{
			{Name: "Luis Perez", Email: "luis@example.com"},
		},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestProvisioningHandler_AddStudents_Success(t *testing.T) {
	service := new(mockProvisioningService)
	service.On("AddStudents", mock.Anything, mock.Anything, mock.Anything).Return(&models.AddStudentsResponse{
		Success: true,
		Results: []models.StudentResult{
			{Email: "luis@example.com", Success: true, Message: "Added successfully"},
		},
	}, nil)

	handler := NewProvisioningHandler(service)
	router := gin.New()
	router.POST("/add-students", withCaller(creatorProfile()), handler.AddStudents)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/add-students", addStudentsBody(t))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.AddStudentsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "Added successfully", resp.Results[0].Message)
	service.AssertExpectations(t)
}

func TestProvisioningHandler_AddStudents_NoCaller(t *testing.T) {
	service := new(mockProvisioningService)

	handler := NewProvisioningHandler(service)
	router := gin.New()
	router.POST("/add-students", handler.AddStudents)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/add-students", addStudentsBody(t))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Unauthorized: Invalid token")
	service.AssertNotCalled(t, "AddStudents")
}

func TestProvisioningHandler_AddStudents_MalformedBody(t *testing.T) {
	service := new(mockProvisioningService)

	handler := NewProvisioningHandler(service)
	router := gin.New()
	router.POST("/add-students", withCaller(creatorProfile()), handler.AddStudents)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/add-students", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	service.AssertNotCalled(t, "AddStudents")
}

func TestProvisioningHandler_AddStudents_RequestLevelRejection(t *testing.T) {
	service := new(mockProvisioningService)
	service.On("AddStudents", mock.Anything, mock.Anything, mock.Anything).Return(nil, &services.RequestError{
		Status:  http.StatusUnauthorized,
		Message: "Unauthorized: Only creators can add students",
	})

	handler := NewProvisioningHandler(service)
	router := gin.New()
	router.POST("/add-students", withCaller(creatorProfile()), handler.AddStudents)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/add-students", addStudentsBody(t))
	req.Header.Set("Content-Type", "application/json")

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"success": false, "error": "Unauthorized: Only creators can add students"}`, w.Body.String())
}
