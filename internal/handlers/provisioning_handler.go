package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/middleware"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type ProvisioningHandler struct {
	service services.ProvisioningServiceInterface
}

func NewProvisioningHandler(service services.ProvisioningServiceInterface) *ProvisioningHandler {
	return &ProvisioningHandler{service: service}
}

// AddStudents handles bulk student provisioning for a course or event.
// Per-entry outcomes are reported in the results array; only request-level
// rejections (role, validation, quota, ownership) produce an error response.
func (h *ProvisioningHandler) AddStudents(c *gin.Context) {
	caller, err := middleware.GetCaller(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "Unauthorized: Invalid token", err)
		return
	}

	var req models.AddStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Invalid request body", err)
		return
	}

	resp, err := h.service.AddStudents(c.Request.Context(), caller, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
