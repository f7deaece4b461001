package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile roles.
const (
	RoleStudent = "student"
	RoleCreator = "creator"
	RoleAdmin   = "admin"
)

// Profile mirrors the identity gateway user inside the application database.
// The ID is the gateway-issued user UUID, never generated locally.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsCreator reports whether the profile may manage catalog products.
func (p *Profile) IsCreator() bool {
	return p.Role == RoleCreator || p.Role == RoleAdmin
}

// IsAdmin reports whether the profile bypasses ownership checks.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// UpdateProfileRequest represents a profile update request
// SECURITY: Max length validation to prevent resource exhaustion attacks
type UpdateProfileRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=100"`
	Bio      string `json:"bio" binding:"omitempty,max=5000"`
}

// UploadAvatarRequest represents an avatar upload request
type UploadAvatarRequest struct {
	Image       string `json:"image" binding:"required"`
	FileName    string `json:"fileName" binding:"required"`
	ContentType string `json:"contentType" binding:"required"`
}

// UploadAvatarResponse represents the response after uploading an avatar
type UploadAvatarResponse struct {
	Success   bool   `json:"success"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Error     string `json:"error,omitempty"`
}
