package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type EnrollmentHandler struct {
	service services.EnrollmentServiceInterface
}

func NewEnrollmentHandler(service services.EnrollmentServiceInterface) *EnrollmentHandler {
	return &EnrollmentHandler{service: service}
}

// EnrollInCourse enrolls the caller in a published course. Re-enrolling is a no-op.
func (h *EnrollmentHandler) EnrollInCourse(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	courseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid course ID", err)
		return
	}

	if err := h.service.EnrollInCourse(c.Request.Context(), caller, courseID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RegisterForEvent registers the caller for an upcoming published event
func (h *EnrollmentHandler) RegisterForEvent(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid event ID", err)
		return
	}

	if err := h.service.RegisterForEvent(c.Request.Context(), caller, eventID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ListMyEvents returns the caller's event registrations
func (h *EnrollmentHandler) ListMyEvents(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	registrations, err := h.service.ListMyRegistrations(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "registrations": registrations})
}

// ListMyCourses returns the caller's enrollments
func (h *EnrollmentHandler) ListMyCourses(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	enrollments, err := h.service.ListMyEnrollments(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "enrollments": enrollments})
}
