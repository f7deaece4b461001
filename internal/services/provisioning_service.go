package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/config"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/database/postgres"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/repository"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/identity"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/logger"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/metrics"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/password"
	"go.uber.org/zap"
)

// RequestError is a request-level rejection carrying the HTTP status the
// handler should respond with. Returned only from the precondition phase,
// before any side effect.
type RequestError struct {
	Status  int
	Message string
}

func (e *RequestError) Error() string {
	return e.Message
}

// emailPattern is deliberately loose; the identity gateway is the authority
// on deliverability.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	rateLimitWindow   = time.Hour
	logRetention      = 24 * time.Hour
	addedSuccessfully = "Added successfully"
)

// ProvisioningService implements bulk student creation for creators.
// Preconditions are checked fail-fast before any side effect; the
// per-student loop is best-effort and never aborts the batch.
type ProvisioningService struct {
	profiles    repository.ProfileStore
	catalog     repository.CatalogStore
	enrollments repository.EnrollmentStore
	rateLimits  repository.RateLimitStore
	gateway     identity.Gateway
	cfg         *config.Config
}

// NewProvisioningService creates a new provisioning service instance
func NewProvisioningService(
	profiles repository.ProfileStore,
	catalog repository.CatalogStore,
	enrollments repository.EnrollmentStore,
	rateLimits repository.RateLimitStore,
	gateway identity.Gateway,
	cfg *config.Config,
) *ProvisioningService {
	return &ProvisioningService{
		profiles:    profiles,
		catalog:     catalog,
		enrollments: enrollments,
		rateLimits:  rateLimits,
		gateway:     gateway,
		cfg:         cfg,
	}
}

// AddStudents processes one bulk provisioning batch for the authenticated
// caller. A *RequestError return means the whole request was rejected and
// nothing was written. A successful return carries one result per input
// entry, in input order, even when individual entries failed.
func (s *ProvisioningService) AddStudents(ctx context.Context, caller *models.Profile, req *models.AddStudentsRequest) (*models.AddStudentsResponse, error) {
	start := time.Now()

	if err := s.checkPreconditions(ctx, caller, req); err != nil {
		metrics.ProvisioningBatches.WithLabelValues("rejected").Inc()
		return nil, err
	}

	productID, _ := uuid.Parse(req.ProductID)

	// Precondition phase is over: from here on results only accumulate.
	// A fatal-looking gateway error becomes a per-entry failure instead of
	// unwinding past the loop and discarding earlier outcomes.
	results := make([]models.StudentResult, 0, len(req.Students))
	successCount := 0

	for _, entry := range req.Students {
		result := s.provisionStudent(ctx, entry, req.ProductType, productID)
		if result.Success {
			successCount++
			metrics.ProvisioningStudents.WithLabelValues("success").Inc()
		} else {
			metrics.ProvisioningStudents.WithLabelValues("failure").Inc()
		}
		results = append(results, result)
	}

	if successCount > 0 {
		if err := s.rateLimits.Log(ctx, caller.ID, req.ProductType, productID, successCount); err != nil {
			// Failing to append the log must not fail an already-processed
			// batch. The limit just leaks a little.
			logger.Error("Failed to append student add log",
				zap.String("creator_id", caller.ID.String()),
				zap.Error(err))
		} else {
			go s.pruneLogs()
		}
	}

	metrics.ProvisioningBatches.WithLabelValues("processed").Inc()
	metrics.ProvisioningBatchDuration.Observe(time.Since(start).Seconds())

	logger.Info("Student provisioning batch processed",
		zap.String("creator_id", caller.ID.String()),
		zap.String("product_type", req.ProductType),
		zap.Int("total", len(results)),
		zap.Int("succeeded", successCount))

	return &models.AddStudentsResponse{Success: true, Results: results}, nil
}

// checkPreconditions runs the fail-fast request-level checks, in order.
func (s *ProvisioningService) checkPreconditions(ctx context.Context, caller *models.Profile, req *models.AddStudentsRequest) error {
	if !caller.IsCreator() {
		return &RequestError{
			Status:  http.StatusUnauthorized,
			Message: "Unauthorized: Only creators can add students",
		}
	}

	if len(req.Students) == 0 {
		return &RequestError{
			Status:  http.StatusBadRequest,
			Message: "No students provided",
		}
	}

	maxBatch := s.cfg.Provisioning.MaxBatchSize
	if len(req.Students) > maxBatch {
		return &RequestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("Maximum %d students per request", maxBatch),
		}
	}

	// Normalize and validate every entry before any side effect.
	for i := range req.Students {
		entry := &req.Students[i]
		entry.Name = strings.TrimSpace(entry.Name)
		entry.Email = strings.ToLower(strings.TrimSpace(entry.Email))

		// Length bounds count runes, not bytes
		if nameLen := utf8.RuneCountInString(entry.Name); nameLen < 2 || nameLen > 100 {
			return &RequestError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Invalid name for student %s", entry.Email),
			}
		}
		if len(entry.Email) > 255 || !emailPattern.MatchString(entry.Email) {
			return &RequestError{
				Status:  http.StatusBadRequest,
				Message: fmt.Sprintf("Invalid email: %s", entry.Email),
			}
		}
	}

	limit := s.cfg.Provisioning.HourlyLimit
	totalRecent, err := s.rateLimits.CountSince(ctx, caller.ID, time.Now().Add(-rateLimitWindow))
	if err != nil {
		logger.Error("Failed to read student add log", zap.Error(err))
		return &RequestError{
			Status:  http.StatusInternalServerError,
			Message: "Failed to check rate limit",
		}
	}
	if totalRecent+len(req.Students) > limit {
		return &RequestError{
			Status:  http.StatusBadRequest,
			Message: fmt.Sprintf("You can add %d more students this hour", limit-totalRecent),
		}
	}

	return s.checkOwnership(ctx, caller, req)
}

// checkOwnership resolves the product and verifies the caller controls it.
// Admins bypass the ownership comparison, not the existence check.
func (s *ProvisioningService) checkOwnership(ctx context.Context, caller *models.Profile, req *models.AddStudentsRequest) error {
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return &RequestError{
			Status:  http.StatusBadRequest,
			Message: "Invalid product ID",
		}
	}

	var creatorID uuid.UUID
	switch req.ProductType {
	case models.ProductTypeCourse:
		course, err := s.catalog.GetCourseByID(ctx, productID)
		if err != nil {
			return &RequestError{Status: http.StatusBadRequest, Message: "Course not found"}
		}
		creatorID = course.CreatorID
	case models.ProductTypeEvent:
		event, err := s.catalog.GetEventByID(ctx, productID)
		if err != nil {
			return &RequestError{Status: http.StatusBadRequest, Message: "Event not found"}
		}
		creatorID = event.CreatorID
	default:
		return &RequestError{
			Status:  http.StatusBadRequest,
			Message: "Invalid product type",
		}
	}

	if !caller.IsAdmin() && creatorID != caller.ID {
		return &RequestError{
			Status:  http.StatusUnauthorized,
			Message: fmt.Sprintf("Unauthorized: You don't own this %s", req.ProductType),
		}
	}

	return nil
}

// provisionStudent runs the per-entry sequence. All failure modes fold into
// the returned result; nothing escapes to the caller.
func (s *ProvisioningService) provisionStudent(ctx context.Context, entry models.StudentEntry, productType string, productID uuid.UUID) models.StudentResult {
	fail := func(message string) models.StudentResult {
		if message == "" {
			message = "Unknown error"
		}
		return models.StudentResult{Email: entry.Email, Success: false, Message: message}
	}

	tempPassword, err := password.GenerateTemporary()
	if err != nil {
		logger.Error("Failed to generate temporary credential", zap.Error(err))
		return fail("Failed to generate credentials")
	}

	userID, isNew, err := s.resolveIdentity(ctx, entry, tempPassword)
	if err != nil {
		logger.Error("Identity resolution failed",
			zap.String("email", entry.Email),
			zap.Error(err))
		return fail(err.Error())
	}

	studentID, err := uuid.Parse(userID)
	if err != nil {
		return fail("Invalid user ID from identity gateway")
	}

	if isNew {
		// The temporary credential is never emailed or returned. The student
		// sets their own password through the gateway's recovery flow.
		resetURL := s.cfg.Server.SiteURL + "/reset-password"
		if err := s.gateway.SendRecoveryEmail(ctx, entry.Email, resetURL); err != nil {
			logger.Warn("Failed to send recovery email",
				zap.String("email", entry.Email),
				zap.Error(err))
		}

		profile := &models.Profile{
			ID:       studentID,
			Email:    entry.Email,
			FullName: entry.Name,
			Role:     models.RoleStudent,
		}
		if err := s.profiles.Create(ctx, profile); err != nil && !errors.Is(err, postgres.ErrDuplicate) {
			logger.Error("Failed to create profile row",
				zap.String("email", entry.Email),
				zap.Error(err))
			return fail("Failed to create profile")
		}
	}

	if err := s.linkToProduct(ctx, productType, productID, studentID); err != nil {
		return fail(err.Error())
	}

	return models.StudentResult{Email: entry.Email, Success: true, Message: addedSuccessfully}
}

// resolveIdentity creates the gateway identity, falling back to lookup when
// the address is already registered.
func (s *ProvisioningService) resolveIdentity(ctx context.Context, entry models.StudentEntry, tempPassword string) (userID string, isNew bool, err error) {
	user, err := s.gateway.AdminCreateUser(ctx, identity.CreateUserParams{
		Email:        entry.Email,
		Password:     tempPassword,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{
			"name":                  entry.Name,
			"needs_password_change": true,
		},
	})
	if err == nil {
		return user.ID, true, nil
	}

	if errors.Is(err, identity.ErrEmailExists) {
		existing, lookupErr := s.gateway.FindUserByEmail(ctx, entry.Email)
		if errors.Is(lookupErr, identity.ErrUserNotFound) {
			return "", false, errors.New("User exists but not found")
		}
		if lookupErr != nil {
			return "", false, lookupErr
		}
		return existing.ID, false, nil
	}

	return "", false, err
}

// linkToProduct inserts the enrollment or registration row. A duplicate is
// treated as success so re-submitting a batch stays idempotent.
func (s *ProvisioningService) linkToProduct(ctx context.Context, productType string, productID, studentID uuid.UUID) error {
	var err error
	switch productType {
	case models.ProductTypeCourse:
		err = s.enrollments.CreateEnrollment(ctx, productID, studentID, models.EnrollmentSourceBulk)
	case models.ProductTypeEvent:
		err = s.enrollments.CreateEventRegistration(ctx, productID, studentID, models.EnrollmentSourceBulk)
	}

	if errors.Is(err, postgres.ErrDuplicate) {
		metrics.Enrollments.WithLabelValues(productType, "duplicate").Inc()
		return nil
	}
	if err != nil {
		metrics.Enrollments.WithLabelValues(productType, "error").Inc()
		return err
	}

	metrics.Enrollments.WithLabelValues(productType, "success").Inc()
	return nil
}

// pruneLogs drops rate-limit rows past retention. Runs detached from the
// request; the hourly window only ever reads the last hour.
func (s *ProvisioningService) pruneLogs() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	deleted, err := s.rateLimits.PruneOlderThan(ctx, time.Now().Add(-logRetention))
	if err != nil {
		logger.Warn("Failed to prune student add logs", zap.Error(err))
		return
	}
	if deleted > 0 {
		logger.Debug("Pruned student add logs", zap.Int64("deleted", deleted))
	}
}
