// internal/controller/campaign_controller.go
package controller

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/auth"
	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/response"
	"github.com/unclebandit/campaign-broadcaster/internal/service"
)

type CampaignController struct {
	CampaignService  *service.CampaignService
	BroadcastService *service.BroadcastService
	Validator        *RequestValidator
	Logger           *zap.Logger
}

type createCampaignRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Channel string `json:"channel" validate:"required,oneof=email whatsapp"`
	Subject string `json:"subject" validate:"max=200"`
	Body    string `json:"body" validate:"max=10000"`
}

func (c *CampaignController) CreateCampaign(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	var body createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	body.Name = strings.TrimSpace(body.Name)
	if err := c.Validator.Validate(body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := c.CampaignService.CreateCampaign(r.Context(), caller, service.CreateCampaignInput{
		Name:    body.Name,
		Channel: model.Channel(body.Channel),
		Subject: body.Subject,
		Body:    body.Body,
	})
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusCreated, map[string]any{"campaign": campaign})
}

func (c *CampaignController) ListCampaigns(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	// Parse query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	channel := r.URL.Query().Get("channel")
	status := r.URL.Query().Get("status")

	campaigns, pagination, err := c.CampaignService.ListCampaigns(r.Context(), caller, page, pageSize, channel, status)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	response.JSON(w, http.StatusOK, map[string]any{
		"data":       campaigns,
		"pagination": pagination,
	})
}

func (c *CampaignController) PersonalizedPreview(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	var body struct {
		ContactID string `json:"contact_id" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid body")
		return
	}
	if err := c.Validator.Validate(body); err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	preview, err := c.CampaignService.RenderPreview(r.Context(), caller, chi.URLParam(r, "id"), body.ContactID)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, preview)
}

func (c *CampaignController) SendEmailBroadcast(w http.ResponseWriter, r *http.Request) {
	c.broadcast(w, r, model.ChannelEmail)
}

func (c *CampaignController) SendWhatsAppBroadcast(w http.ResponseWriter, r *http.Request) {
	c.broadcast(w, r, model.ChannelWhatsApp)
}

func (c *CampaignController) broadcast(w http.ResponseWriter, r *http.Request, channel model.Channel) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	summary, err := c.BroadcastService.Broadcast(r.Context(), caller, chi.URLParam(r, "id"), channel)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, summary)
}

func (c *CampaignController) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	if err := c.CampaignService.SendTestEmail(r.Context(), caller, chi.URLParam(r, "id")); err != nil {
		c.fail(w, r, err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]bool{"success": true})
}

// fail logs server-side faults and writes the mapped error response.
func (c *CampaignController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if appErrors.HTTPStatus(err) >= http.StatusInternalServerError {
		logger.OrNop(c.Logger).Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
	}
	response.AppError(w, err)
}
