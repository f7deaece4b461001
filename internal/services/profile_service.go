package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	apperrors "github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/errors"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/objectstorage"
	"go.uber.org/zap"
)

// ProfileService handles profile reads and updates.
type ProfileService struct {
	profiles repository.ProfileStore
	storage  objectstorage.Uploader
}

// NewProfileService creates a new profile service instance
func NewProfileService(profiles repository.ProfileStore, storage objectstorage.Uploader) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		storage:  storage,
	}
}

// GetProfile returns a profile by ID
func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.NotFoundError("Profile")
	}
	return profile, nil
}

// UpdateProfile saves the caller's mutable profile fields
func (s *ProfileService) UpdateProfile(ctx context.Context, caller *models.Profile, req *models.UpdateProfileRequest) error {
	if err := s.profiles.Update(ctx, caller.ID, req.FullName, req.Bio); err != nil {
		logger.Error("Failed to update profile",
			zap.String("profile_id", caller.ID.String()),
			zap.Error(err))
		return err
	}

	logger.Info("Profile updated", zap.String("profile_id", caller.ID.String()))
	return nil
}

// UploadAvatar validates and stores an avatar image, then saves its URL
func (s *ProfileService) UploadAvatar(ctx context.Context, caller *models.Profile, req *models.UploadAvatarRequest) (string, error) {
	if err := s.storage.ValidateContentType(req.ContentType); err != nil {
		return "", &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.storage.ValidateSize(req.Image); err != nil {
		return "", &RequestError{Status: http.StatusBadRequest, Message: err.Error()}
	}

	key := s.storage.GenerateKey("avatars", caller.ID.String(), req.FileName)
	url, err := s.storage.Upload(ctx, req.Image, key, req.ContentType)
	if err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		logger.Error("Avatar upload failed", zap.Error(err))
		return "", err
	}

	if err := s.profiles.UpdateAvatar(ctx, caller.ID, url); err != nil {
		metrics.MediaUploads.WithLabelValues("error").Inc()
		return "", err
	}

	metrics.MediaUploads.WithLabelValues("success").Inc()
	return url, nil
}
