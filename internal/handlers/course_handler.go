package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type CourseHandler struct {
	service services.CatalogServiceInterface
}

func NewCourseHandler(service services.CatalogServiceInterface) *CourseHandler {
	return &CourseHandler{service: service}
}

// ListPublished returns the public catalog of published courses
func (h *CourseHandler) ListPublished(c *gin.Context) {
	courses, err := h.service.GetPublishedCourses(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses})
}

// GetBySlug returns a single published course by its slug
func (h *CourseHandler) GetBySlug(c *gin.Context) {
	course, err := h.service.GetCourseBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(c, http.StatusNotFound, "Course not found", err)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// ListMine returns the caller's own courses, published or not
func (h *CourseHandler) ListMine(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	courses, err := h.service.ListCreatorCourses(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "courses": courses})
}

// Create creates a new unpublished course owned by the caller
func (h *CourseHandler) Create(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	var req models.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	course, err := h.service.CreateCourse(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "course": course})
}

// Update updates a course owned by the caller
func (h *CourseHandler) Update(c *gin.Context) {
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

	var req models.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	course, err := h.service.UpdateCourse(c.Request.Context(), caller, courseID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "course": course})
}

// UploadCover uploads a base64 cover image for a course owned by the caller
func (h *CourseHandler) UploadCover(c *gin.Context) {
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

	var req models.UploadMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	url, err := h.service.UploadCourseCover(c.Request.Context(), caller, courseID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UploadMediaResponse{Success: true, URL: url})
}
