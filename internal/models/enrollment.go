package models

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment sources.
const (
	EnrollmentSourcePurchase = "purchase"
	EnrollmentSourceManual   = "manual"
	EnrollmentSourceBulk     = "bulk"
)

// Enrollment links a student to a course.
type Enrollment struct {
	ID        uuid.UUID `json:"id"`
	CourseID  uuid.UUID `json:"course_id"`
	StudentID uuid.UUID `json:"student_id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRegistration links a student to an event.
type EventRegistration struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	StudentID uuid.UUID `json:"student_id"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// StudentAddLog records one accepted bulk-provisioning batch.
// Rows feed the trailing one hour rate limit window.
type StudentAddLog struct {
	ID            uuid.UUID `json:"id"`
	CreatorID     uuid.UUID `json:"creator_id"`
	ProductType   string    `json:"product_type"`
	ProductID     uuid.UUID `json:"product_id"`
	StudentsCount int       `json:"students_count"`
	CreatedAt     time.Time `json:"created_at"`
}
