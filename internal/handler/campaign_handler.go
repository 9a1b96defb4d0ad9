// internal/handler/campaign_handler.go
package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/auth"
	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/response"
	"github.com/unclebandit/campaign-broadcaster/internal/service"
)

// SummaryDays is the window of the message-log summary, today included.
const SummaryDays = 7

// CampaignHandler serves the read-only reporting endpoints.
type CampaignHandler struct {
	Service *service.CampaignService
	Logger  *zap.Logger
	Now     func() time.Time
}

// GetCampaignHandlerWithStats returns a campaign with its delivery counts.
func (h *CampaignHandler) GetCampaignHandlerWithStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	details, err := h.Service.GetCampaignDetailsWithStats(r.Context(), caller, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "failed to fetch campaign", err)
		return
	}
	response.JSON(w, http.StatusOK, details)
}

// MessageLogSummary returns per-day sent counts by channel.
func (h *CampaignHandler) MessageLogSummary(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	days, err := h.Service.MessageSummary(r.Context(), caller, SummaryDays, h.now())
	if err != nil {
		h.fail(w, "failed to load message summary", err)
		return
	}
	response.JSON(w, http.StatusOK, map[string]any{
		"perDay":    days,
		"rangeDays": SummaryDays,
	})
}

// DashboardOverview returns workspace totals for the dashboard cards.
func (h *CampaignHandler) DashboardOverview(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		response.AppError(w, appErrors.ErrUnauthorized)
		return
	}

	overview, err := h.Service.Overview(r.Context(), caller, SummaryDays, h.now())
	if err != nil {
		h.fail(w, "failed to load dashboard overview", err)
		return
	}
	response.JSON(w, http.StatusOK, overview)
}

func (h *CampaignHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *CampaignHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *CampaignHandler) fail(w http.ResponseWriter, msg string, err error) {
	if appErrors.HTTPStatus(err) >= http.StatusInternalServerError {
		logger.OrNop(h.Logger).Error(msg, zap.Error(err))
	}
	response.AppError(w, err)
}
