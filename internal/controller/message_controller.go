package controller

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/auth"
	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/response"
	"github.com/unclebandit/campaign-broadcaster/internal/service"
)

// MessageController serves the one-off test sends used to check provider setup.
type MessageController struct {
	MessageService *service.MessageService
	Validator      *RequestValidator
	Logger         *zap.Logger
}

type sendEmailRequest struct {
	To      string `json:"to" validate:"required,email"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type sendWhatsAppRequest struct {
	To      string `json:"to" validate:"required,min=5,max=20"`
	Message string `json:"message" validate:"required,max=1000"`
}

func (c *MessageController) SendEmail(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	var body sendEmailRequest
	if !c.decode(w, r, &body) {
		return
	}

	if _, err := c.MessageService.SendEmail(r.Context(), caller, body.To, body.Subject, body.Message); err != nil {
		c.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (c *MessageController) SendWhatsApp(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	var body sendWhatsAppRequest
	if !c.decode(w, r, &body) {
		return
	}

	sid, err := c.MessageService.SendWhatsApp(r.Context(), caller, body.To, body.Message)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"success": true, "sid": sid})
}

// decode reads and validates the body, writing a 400 when either fails.
func (c *MessageController) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return false
	}
	if err := c.Validator.Validate(dst); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

func (c *MessageController) fail(w http.ResponseWriter, r *http.Request, err error) {
	logger.OrNop(c.Logger).Error("one-off send failed",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	response.AppError(w, err)
}
