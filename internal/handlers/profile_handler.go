package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type ProfileHandler struct {
	service services.ProfileServiceInterface
}

func NewProfileHandler(service services.ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// GetProfile returns the caller's own profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), caller.ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

// UpdateProfile updates the caller's display name and bio
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	if err := h.service.UpdateProfile(c.Request.Context(), caller, &req); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadAvatar uploads a base64 avatar image for the caller
func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	var req models.UploadAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	avatarURL, err := h.service.UploadAvatar(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UploadAvatarResponse{Success: true, AvatarURL: avatarURL})
}
