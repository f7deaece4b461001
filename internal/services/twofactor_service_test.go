package services_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/config"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTwoFactorService(codes *MockTwoFactorStore, sender *MockMailer) *services.TwoFactorService {
	cfg := &config.Config{
		TwoFactor: config.TwoFactorConfig{CodeTTLMinutes: 30},
	}
	return services.NewTwoFactorService(codes, sender, cfg)
}

func TestSendCode_GeneratesSixDigitCodeAndEmailsIt(t *testing.T) {
	codes := &MockTwoFactorStore{}
	sender := &MockMailer{}
	service := newTwoFactorService(codes, sender)

	userID := uuid.New()
	sixDigits := regexp.MustCompile(`^[1-9]\d{5}$`)

	var created *models.TwoFactorCode
	codes.On("InvalidateUnused", mock.Anything, userID).Return(nil)
	codes.On("Create", mock.Anything, mock.MatchedBy(func(c *models.TwoFactorCode) bool {
		created = c
		return c.UserID == userID && sixDigits.MatchString(c.Code)
	})).Return(nil)
	sender.On("Send", mock.Anything, "ana@example.com", "Ana", "Your verification code", mock.Anything).Return(nil)

	err := service.SendCode(context.Background(), &models.SendTwoFactorCodeRequest{
		UserID:   userID.String(),
		Email:    "ana@example.com",
		UserName: "Ana",
	})

	require.NoError(t, err)
	require.NotNil(t, created)

	// Expiry is 30 minutes out, give or take scheduling
	remaining := time.Until(created.ExpiresAt)
	assert.Greater(t, remaining, 29*time.Minute)
	assert.LessOrEqual(t, remaining, 30*time.Minute)

	// The emailed body contains the code
	sentBody := sender.Calls[0].Arguments.String(4)
	assert.Contains(t, sentBody, created.Code)
}

func TestSendCode_InvalidUserID(t *testing.T) {
	codes := &MockTwoFactorStore{}
	sender := &MockMailer{}
	service := newTwoFactorService(codes, sender)

	err := service.SendCode(context.Background(), &models.SendTwoFactorCodeRequest{
		UserID: "not-a-uuid",
		Email:  "ana@example.com",
	})

	var reqErr *services.RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, 400, reqErr.Status)
	codes.AssertNotCalled(t, "InvalidateUnused", mock.Anything, mock.Anything)
	codes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSendCode_ResendInvalidatesPriorCodeFirst(t *testing.T) {
	codes := &MockTwoFactorStore{}
	sender := &MockMailer{}
	service := newTwoFactorService(codes, sender)

	userID := uuid.New()

	// Record the store call order: the old code must be dead before the
	// replacement row exists
	var sequence []string
	codes.On("InvalidateUnused", mock.Anything, userID).Run(func(mock.Arguments) {
		sequence = append(sequence, "InvalidateUnused")
	}).Return(nil)
	codes.On("Create", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		sequence = append(sequence, "Create")
	}).Return(nil)
	sender.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := service.SendCode(context.Background(), &models.SendTwoFactorCodeRequest{
		UserID: userID.String(),
		Email:  "ana@example.com",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"InvalidateUnused", "Create"}, sequence)
}

func TestSendCode_InvalidationFailure(t *testing.T) {
	codes := &MockTwoFactorStore{}
	sender := &MockMailer{}
	service := newTwoFactorService(codes, sender)

	codes.On("InvalidateUnused", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := service.SendCode(context.Background(), &models.SendTwoFactorCodeRequest{
		UserID: uuid.NewString(),
		Email:  "ana@example.com",
	})

	require.Error(t, err)
	codes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendCode_PersistenceFailure(t *testing.T) {
	codes := &MockTwoFactorStore{}
	sender := &MockMailer{}
	service := newTwoFactorService(codes, sender)

	codes.On("InvalidateUnused", mock.Anything, mock.Anything).Return(nil)
	codes.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	err := service.SendCode(context.Background(), &models.SendTwoFactorCodeRequest{
		UserID: uuid.NewString(),
		Email:  "ana@example.com",
	})

	require.Error(t, err)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyCode_SuccessConsumesCode(t *testing.T) {
	codes := &MockTwoFactorStore{}
	sender := &MockMailer{}
	service := newTwoFactorService(codes, sender)

	userID := uuid.New()
	record := &models.TwoFactorCode{
		ID:        uuid.New(),
		UserID:    userID,
		Code:      "483920",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}

	codes.On("GetActive", mock.Anything, userID, "483920").Return(record, nil)
	codes.On("MarkUsed", mock.Anything, record.ID).Return(nil)

	err := service.VerifyCode(context.Background(), &models.VerifyTwoFactorCodeRequest{
		UserID: userID.String(),
		Code:   "483920",
	})

	require.NoError(t, err)
	codes.AssertCalled(t, "MarkUsed", mock.Anything, record.ID)
}

func TestVerifyCode_GenericErrorForUnknownAndExpired(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name  string
		setup func(codes *MockTwoFactorStore)
	}{
		{
			name: "unknown code",
			setup: func(codes *MockTwoFactorStore) {
				codes.On("GetActive", mock.Anything, userID, "000000").Return(nil, pgx.ErrNoRows)
			},
		},
		{
			name: "expired code",
			setup: func(codes *MockTwoFactorStore) {
				codes.On("GetActive", mock.Anything, userID, "000000").Return(&models.TwoFactorCode{
					ID:        uuid.New(),
					UserID:    userID,
					Code:      "000000",
					ExpiresAt: time.Now().Add(-time.Minute),
				}, nil)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := &MockTwoFactorStore{}
			service := newTwoFactorService(codes, &MockMailer{})
			tt.setup(codes)

			err := service.VerifyCode(context.Background(), &models.VerifyTwoFactorCodeRequest{
				UserID: userID.String(),
				Code:   "000000",
			})

			// Same generic rejection in both cases
			assert.ErrorIs(t, err, services.ErrInvalidOrExpiredCode)
			codes.AssertNotCalled(t, "MarkUsed", mock.Anything, mock.Anything)
		})
	}
}
