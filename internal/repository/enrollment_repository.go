package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
)

// EnrollmentRepository handles enrollment and registration data access
type EnrollmentRepository struct {
	db *postgres.Client
}

// NewEnrollmentRepository creates a new enrollment repository
func NewEnrollmentRepository(db *postgres.Client) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

func (r *EnrollmentRepository) CreateEnrollment(ctx context.Context, courseID, studentID uuid.UUID, source string) error {
	return r.db.CreateEnrollment(ctx, courseID, studentID, source)
}

func (r *EnrollmentRepository) CreateEventRegistration(ctx context.Context, eventID, studentID uuid.UUID, source string) error {
	return r.db.CreateEventRegistration(ctx, eventID, studentID, source)
}

func (r *EnrollmentRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.Enrollment, error) {
	return r.db.ListEnrollmentsByStudent(ctx, studentID)
}

func (r *EnrollmentRepository) ListRegistrationsByStudent(ctx context.Context, studentID uuid.UUID) ([]*models.EventRegistration, error) {
	return r.db.ListEventRegistrationsByStudent(ctx, studentID)
}

func (r *EnrollmentRepository) CountEventRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.db.CountEventRegistrations(ctx, eventID)
}

var _ EnrollmentStore = (*EnrollmentRepository)(nil)
