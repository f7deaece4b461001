package models

import (
	"time"

	"github.com/google/uuid"
)

// TwoFactorCode is a one-time numeric email verification code.
type TwoFactorCode struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	Code      string    `json:"-"`
	Used      bool      `json:"used"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the code is past its expiry at the given instant.
func (c *TwoFactorCode) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// SendTwoFactorCodeRequest asks for a fresh code to be emailed.
type SendTwoFactorCodeRequest struct {
	UserID   string `json:"userId" binding:"required,uuid"`
	Email    string `json:"email" binding:"required,email"`
	UserName string `json:"userName"`
}

// SendTwoFactorCodeResponse acknowledges a code send.
type SendTwoFactorCodeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VerifyTwoFactorCodeRequest submits a code for verification.
type VerifyTwoFactorCodeRequest struct {
	UserID string `json:"userId" binding:"required,uuid"`
	Code   string `json:"code" binding:"required,len=6,numeric"`
}

// VerifyTwoFactorCodeResponse reports the verification outcome.
type VerifyTwoFactorCodeResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
