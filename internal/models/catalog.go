package models

import (
	"time"

	"github.com/google/uuid"
)

// Product types used across provisioning, enrollments and metrics.
const (
	ProductTypeCourse = "course"
	ProductTypeEvent  = "event"
	ProductTypeEbook  = "ebook"
)

// Course is a self-paced product students enroll into.
type Course struct {
	ID          uuid.UUID `json:"id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Event is a scheduled product students register for.
type Event struct {
	ID          uuid.UUID  `json:"id"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description,omitempty"`
	PriceCents  int64      `json:"price_cents"`
	Currency    string     `json:"currency"`
	CoverURL    string     `json:"cover_url,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	Capacity    *int       `json:"capacity,omitempty"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Ebook is a downloadable product.
type Ebook struct {
	ID          uuid.UUID `json:"id"`
	CreatorID   uuid.UUID `json:"creator_id"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	PriceCents  int64     `json:"price_cents"`
	Currency    string    `json:"currency"`
	CoverURL    string    `json:"cover_url,omitempty"`
	FileURL     string    `json:"file_url,omitempty"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateCourseRequest represents a course creation request
type CreateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=10000"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

// UpdateCourseRequest represents a course update request
type UpdateCourseRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=10000"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
	Published   bool   `json:"published"`
}

// CreateEventRequest represents an event creation request
type CreateEventRequest struct {
	Title       string     `json:"title" binding:"required,min=2,max=200"`
	Description string     `json:"description" binding:"omitempty,max=10000"`
	PriceCents  int64      `json:"price_cents" binding:"gte=0"`
	Currency    string     `json:"currency" binding:"omitempty,len=3"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at"`
	Capacity    *int       `json:"capacity" binding:"omitempty,gt=0"`
}

// CreateEbookRequest represents an e-book creation request
type CreateEbookRequest struct {
	Title       string `json:"title" binding:"required,min=2,max=200"`
	Description string `json:"description" binding:"omitempty,max=10000"`
	PriceCents  int64  `json:"price_cents" binding:"gte=0"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

// UploadMediaRequest represents a cover or file upload request for a product
type UploadMediaRequest struct {
	Data        string `json:"data" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// UploadMediaResponse represents the response after uploading product media
type UploadMediaResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url,omitempty"`
	Error   string `json:"error,omitempty"`
}
