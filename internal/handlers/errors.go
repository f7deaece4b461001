package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
	apperrors "github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin
// context so the observability middleware can include the reason in the log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"success": false, "error": message})
}

// respondBindingError reports a failed request binding. Validator failures
// carry per-field details alongside the summary message.
func respondBindingError(c *gin.Context, message string, err error) {
	attachError(c, err)
	if details := ParseValidationErrors(err); len(details) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message, "details": details})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": message})
}

// respondServiceError maps a service-layer error to an HTTP response.
// *services.RequestError carries its own status and user-facing message;
// anything else is an internal failure.
func respondServiceError(c *gin.Context, err error) {
	var reqErr *services.RequestError
	if errors.As(err, &reqErr) {
		respondError(c, reqErr.Status, reqErr.Message, err)
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		respondError(c, http.StatusNotFound, err.Error(), err)
	case errors.Is(err, apperrors.ErrAccessDenied):
		respondError(c, http.StatusForbidden, err.Error(), err)
	case errors.Is(err, apperrors.ErrUnauthorized):
		respondError(c, http.StatusUnauthorized, err.Error(), err)
	case errors.Is(err, apperrors.ErrInvalidInput):
		respondError(c, http.StatusBadRequest, err.Error(), err)
	default:
		respondError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}
