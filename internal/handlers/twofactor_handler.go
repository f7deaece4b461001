package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/models"
	"github.com/ignaciomunozsob-tech/aula-nexo-platform-sub000/internal/services"
)

type TwoFactorHandler struct {
	service services.TwoFactorServiceInterface
}

func NewTwoFactorHandler(service services.TwoFactorServiceInterface) *TwoFactorHandler {
	return &TwoFactorHandler{service: service}
}

// SendCode generates and emails a one-time verification code
func (h *TwoFactorHandler) SendCode(c *gin.Context) {
	var req models.SendTwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Missing or invalid userId/email", err)
		return
	}

	if err := h.service.SendCode(c.Request.Context(), &req); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SendTwoFactorCodeResponse{
		Success: true,
		Message: "Verification code sent",
	})
}

// VerifyCode checks a submitted one-time code. Unknown, already-used and
// expired codes all yield the same rejection.
func (h *TwoFactorHandler) VerifyCode(c *gin.Context) {
	var req models.VerifyTwoFactorCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, "Missing or invalid userId/code", err)
		return
	}

	if err := h.service.VerifyCode(c.Request.Context(), &req); err != nil {
		if errors.Is(err, services.ErrInvalidOrExpiredCode) {
			respondError(c, http.StatusBadRequest, "Invalid or expired code", err)
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.VerifyTwoFactorCodeResponse{Success: true})
}
