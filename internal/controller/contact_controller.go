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

type ContactController struct {
	ContactService *service.ContactService
	Validator      *RequestValidator
	Logger         *zap.Logger
}

type createContactRequest struct {
	Email     string `json:"email" validate:"required_without=Phone,omitempty,email"`
	Phone     string `json:"phone" validate:"required_without=Email,omitempty,min=3"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
}

func (c *ContactController) CreateContact(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	var body createContactRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := c.Validator.Validate(body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	contact, err := c.ContactService.CreateContact(r.Context(), caller, service.CreateContactInput{
		Email:     body.Email,
		Phone:     body.Phone,
		FirstName: body.FirstName,
		LastName:  body.LastName,
	})
	if err != nil {
		logger.OrNop(c.Logger).Error("failed to create contact", zap.Error(err))
		response.AppError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, map[string]any{"contact": contact})
}

func (c *ContactController) ListContacts(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	contacts, err := c.ContactService.ListContacts(r.Context(), caller)
	if err != nil {
		logger.OrNop(c.Logger).Error("failed to list contacts", zap.Error(err))
		response.AppError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{"contacts": contacts})
}
