package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unclebandit/campaign-broadcaster/internal/auth"
	"github.com/unclebandit/campaign-broadcaster/internal/controller"
	"github.com/unclebandit/campaign-broadcaster/internal/handler"
)

type routerDeps struct {
	Auth        *auth.Middleware
	Campaigns   *controller.CampaignController
	Contacts    *controller.ContactController
	Messages    *controller.MessageController
	Reports     *handler.CampaignHandler
	CORSOrigins []string
	Metrics     http.Handler
}

func newRouter(d routerDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	metricsHandler := d.Metrics
	if metricsHandler == nil {
		metricsHandler = promhttp.Handler()
	}
	r.Get("/healthz", d.Reports.Health)
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(d.Auth.Require)

		// Campaign routes
		r.Post("/campaigns", d.Campaigns.CreateCampaign)
		r.Get("/campaigns", d.Campaigns.ListCampaigns)
		r.Get("/campaigns/{id}", d.Reports.GetCampaignHandlerWithStats)
		r.Post("/campaigns/{id}/personalized-preview", d.Campaigns.PersonalizedPreview)
		r.Post("/campaigns/{id}/send-email-broadcast", d.Campaigns.SendEmailBroadcast)
		r.Post("/campaigns/{id}/send-whatsapp-broadcast", d.Campaigns.SendWhatsAppBroadcast)
		r.Post("/campaigns/{id}/send-test-email", d.Campaigns.SendTestEmail)

		// Contact routes
		r.Post("/contacts", d.Contacts.CreateContact)
		r.Get("/contacts", d.Contacts.ListContacts)

		// One-off sends
		r.Post("/email/test", d.Messages.SendEmail)
		r.Post("/whatsapp/test", d.Messages.SendWhatsApp)

		r.Get("/message-logs/summary", d.Reports.MessageLogSummary)
		r.Get("/dashboard/overview", d.Reports.DashboardOverview)
	})
	return r
}
