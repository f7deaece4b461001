package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type EbookHandler struct {
	service services.CatalogServiceInterface
}

func NewEbookHandler(service services.CatalogServiceInterface) *EbookHandler {
	return &EbookHandler{service: service}
}

// ListPublished returns the public catalog of published e-books
func (h *EbookHandler) ListPublished(c *gin.Context) {
	ebooks, err := h.service.GetPublishedEbooks(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "ebooks": ebooks})
}

// Create creates a new unpublished e-book owned by the caller
func (h *EbookHandler) Create(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	var req models.CreateEbookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	ebook, err := h.service.CreateEbook(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "ebook": ebook})
}

// UploadFile uploads the e-book file (pdf or epub) for an e-book owned by the caller
func (h *EbookHandler) UploadFile(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	ebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ebook ID", err)
		return
	}

	var req models.UploadMediaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	url, err := h.service.UploadEbookFile(c.Request.Context(), caller, ebookID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.UploadMediaResponse{Success: true, URL: url})
}

// Publish flips an e-book's published flag
func (h *EbookHandler) Publish(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	ebookID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid ebook ID", err)
		return
	}

	var req struct {
		Published bool `json:"published"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	if err := h.service.PublishEbook(c.Request.Context(), caller, ebookID, req.Published); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
