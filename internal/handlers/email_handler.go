package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studio-interiors/site-server/internal/models"
	"github.com/studio-interiors/site-server/internal/services"
	"github.com/studio-interiors/site-server/pkg/errors"
)

const sendEmailFailed = "Failed to send email"

type EmailHandler struct {
	service services.EmailServiceInterface
}

func NewEmailHandler(service services.EmailServiceInterface) *EmailHandler {
	return &EmailHandler{service: service}
}

// SendEmail relays the contact form to the email provider and returns the
// provider's response body.
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var req models.SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalid := errors.InvalidInputError("send-email body", err.Error())
		if details := ParseValidationErrors(err); len(details) > 0 {
			respondErrorWithDetails(c, http.StatusBadRequest, "Validation failed", details, invalid)
			return
		}
		respondError(c, http.StatusBadRequest, "Invalid request body", invalid)
		return
	}

	result, err := h.service.Send(c.Request.Context(), &req)
	if err != nil {
		message := sendEmailFailed
		var upstream *errors.UpstreamError
		if errors.As(err, &upstream) && upstream.Message != "" {
			message = upstream.Message
		}
		respondError(c, http.StatusInternalServerError, message, err)
		return
	}

	c.Data(http.StatusOK, result.ContentType, result.Body)
}
