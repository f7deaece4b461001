package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/config"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/mailer"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/password"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

// ErrInvalidOrExpiredCode is the single rejection for unknown, used and
// expired codes. Callers must not learn which condition failed.
var ErrInvalidOrExpiredCode = errors.New("invalid or expired code")

const twoFactorCodeLength = 6

// TwoFactorService generates and verifies one-time email codes.
type TwoFactorService struct {
	codes  repository.TwoFactorStore
	mailer mailer.Sender
	cfg    *config.Config
}

// NewTwoFactorService creates a new two factor service instance
func NewTwoFactorService(codes repository.TwoFactorStore, sender mailer.Sender, cfg *config.Config) *TwoFactorService {
	return &TwoFactorService{
		codes:  codes,
		mailer: sender,
		cfg:    cfg,
	}
}

// SendCode invalidates any prior unused codes for the user, then generates,
// persists and emails a fresh 6-digit one. Invalidation runs first so a
// resend never leaves two codes active.
func (s *TwoFactorService) SendCode(ctx context.Context, req *models.SendTwoFactorCodeRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		metrics.TwoFactorCodesSent.WithLabelValues("invalid_request").Inc()
		return &RequestError{Status: 400, Message: "Invalid user ID"}
	}

	code, err := password.GenerateNumericCode(twoFactorCodeLength)
	if err != nil {
		metrics.TwoFactorCodesSent.WithLabelValues("error").Inc()
		logger.Error("Failed to generate 2FA code", zap.Error(err))
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.codes.InvalidateUnused(ctx, userID); err != nil {
		metrics.TwoFactorCodesSent.WithLabelValues("error").Inc()
		logger.Error("Failed to invalidate previous 2FA codes",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to invalidate previous codes: %w", err)
	}

	ttl := time.Duration(s.cfg.TwoFactor.CodeTTLMinutes) * time.Minute
	record := &models.TwoFactorCode{
		UserID:    userID,
		Code:      code,
		ExpiresAt: time.Now().Add(ttl),
	}

	if err := s.codes.Create(ctx, record); err != nil {
		metrics.TwoFactorCodesSent.WithLabelValues("error").Inc()
		logger.Error("Failed to persist 2FA code",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to store code: %w", err)
	}

	subject := "Your verification code"
	body := buildTwoFactorEmail(req.UserName, code, s.cfg.TwoFactor.CodeTTLMinutes)
	if err := s.mailer.Send(ctx, req.Email, req.UserName, subject, body); err != nil {
		metrics.TwoFactorCodesSent.WithLabelValues("email_failed").Inc()
		logger.Error("Failed to email 2FA code",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to send code email: %w", err)
	}

	metrics.TwoFactorCodesSent.WithLabelValues("success").Inc()
	logger.Info("2FA code sent", zap.String("user_id", req.UserID))

	return nil
}

// VerifyCode checks a submitted code and consumes it on success. Unknown,
// already-used and expired codes all return ErrInvalidOrExpiredCode.
func (s *TwoFactorService) VerifyCode(ctx context.Context, req *models.VerifyTwoFactorCodeRequest) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		metrics.TwoFactorVerifications.WithLabelValues("invalid_request").Inc()
		return &RequestError{Status: 400, Message: "Invalid user ID"}
	}

	record, err := s.codes.GetActive(ctx, userID, req.Code)
	if errors.Is(err, pgx.ErrNoRows) {
		metrics.TwoFactorVerifications.WithLabelValues("rejected").Inc()
		return ErrInvalidOrExpiredCode
	}
	if err != nil {
		metrics.TwoFactorVerifications.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to look up code: %w", err)
	}

	if record.Expired(time.Now()) {
		metrics.TwoFactorVerifications.WithLabelValues("rejected").Inc()
		return ErrInvalidOrExpiredCode
	}

	if err := s.codes.MarkUsed(ctx, record.ID); err != nil {
		metrics.TwoFactorVerifications.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to consume code: %w", err)
	}

	metrics.TwoFactorVerifications.WithLabelValues("success").Inc()
	logger.Info("2FA code verified", zap.String("user_id", req.UserID))

	return nil
}

func buildTwoFactorEmail(name, code string, ttlMinutes int) string {
	greeting := "Hola"
	if name != "" {
		greeting = "Hola " + name
	}
	return fmt.Sprintf(
		`<p>%s,</p><p>Your verification code is <strong>%s</strong>.</p><p>It expires in %d minutes. If you did not request it, you can ignore this email.</p>`,
		greeting, code, ttlMinutes)
}
