package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"go.uber.org/zap"
)

// EnrollmentService handles self-service enrollment and event registration.
type EnrollmentService struct {
	enrollments repository.EnrollmentStore
	catalog     repository.CatalogStore
}

// NewEnrollmentService creates a new enrollment service instance
func NewEnrollmentService(enrollments repository.EnrollmentStore, catalog repository.CatalogStore) *EnrollmentService {
	return &EnrollmentService{
		enrollments: enrollments,
		catalog:     catalog,
	}
}

// EnrollInCourse enrolls the caller into a published course. Enrolling
// twice is not an error.
func (s *EnrollmentService) EnrollInCourse(ctx context.Context, caller *models.Profile, courseID uuid.UUID) error {
	course, err := s.catalog.GetCourseByID(ctx, courseID)
	if err != nil {
		return &RequestError{Status: http.StatusNotFound, Message: "Course not found"}
	}
	if !course.Published {
		return &RequestError{Status: http.StatusBadRequest, Message: "Course is not published"}
	}

	err = s.enrollments.CreateEnrollment(ctx, courseID, caller.ID, models.EnrollmentSourcePurchase)
	if errors.Is(err, postgres.ErrDuplicate) {
		metrics.Enrollments.WithLabelValues(models.ProductTypeCourse, "duplicate").Inc()
		return nil
	}
	if err != nil {
		metrics.Enrollments.WithLabelValues(models.ProductTypeCourse, "error").Inc()
		logger.Error("Failed to enroll student",
			zap.String("course_id", courseID.String()),
			zap.String("student_id", caller.ID.String()),
			zap.Error(err))
		return err
	}

	metrics.Enrollments.WithLabelValues(models.ProductTypeCourse, "success").Inc()
	return nil
}

// RegisterForEvent registers the caller for a published upcoming event,
// enforcing capacity when one is set.
func (s *EnrollmentService) RegisterForEvent(ctx context.Context, caller *models.Profile, eventID uuid.UUID) error {
	event, err := s.catalog.GetEventByID(ctx, eventID)
	if err != nil {
		return &RequestError{Status: http.StatusNotFound, Message: "Event not found"}
	}
	if !event.Published {
		return &RequestError{Status: http.StatusBadRequest, Message: "Event is not published"}
	}
	if time.Now().After(event.StartsAt) {
		return &RequestError{Status: http.StatusBadRequest, Message: "Event has already started"}
	}

	if event.Capacity != nil {
		// Non-atomic check, same accepted race as the provisioning limit.
		count, err := s.enrollments.CountEventRegistrations(ctx, eventID)
		if err != nil {
			return err
		}
		if count >= *event.Capacity {
			return &RequestError{Status: http.StatusBadRequest, Message: "Event is full"}
		}
	}

	err = s.enrollments.CreateEventRegistration(ctx, eventID, caller.ID, models.EnrollmentSourcePurchase)
	if errors.Is(err, postgres.ErrDuplicate) {
		metrics.Enrollments.WithLabelValues(models.ProductTypeEvent, "duplicate").Inc()
		return nil
	}
	if err != nil {
		metrics.Enrollments.WithLabelValues(models.ProductTypeEvent, "error").Inc()
		return err
	}

	metrics.Enrollments.WithLabelValues(models.ProductTypeEvent, "success").Inc()
	return nil
}

// ListMyEnrollments returns the caller's course enrollments
func (s *EnrollmentService) ListMyEnrollments(ctx context.Context, caller *models.Profile) ([]*models.Enrollment, error) {
	return s.enrollments.ListByStudent(ctx, caller.ID)
}

// ListMyRegistrations returns the caller's event registrations
func (s *EnrollmentService) ListMyRegistrations(ctx context.Context, caller *models.Profile) ([]*models.EventRegistration, error) {
	return s.enrollments.ListRegistrationsByStudent(ctx, caller.ID)
}
