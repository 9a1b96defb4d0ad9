// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/auth"
	"github.com/unclebandit/campaign-broadcaster/internal/config"
	"github.com/unclebandit/campaign-broadcaster/internal/controller"
	"github.com/unclebandit/campaign-broadcaster/internal/db"
	"github.com/unclebandit/campaign-broadcaster/internal/handler"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/metrics"
	"github.com/unclebandit/campaign-broadcaster/internal/queue"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
	"github.com/unclebandit/campaign-broadcaster/internal/sender"
	"github.com/unclebandit/campaign-broadcaster/internal/service"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.EnvFile == "" {
		log.Info("no .env file found, relying on system env vars")
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	// Init DB
	db.Init(cfg.DSN(), log)
	defer db.DB.Close()

	campaignRepo := &repository.CampaignRepository{DB: db.DB}
	contactRepo := &repository.ContactRepository{DB: db.DB}
	logRepo := &repository.MessageLogRepository{DB: db.DB}

	outcomes, closeOutcomes := newOutcomeLogger(cfg, logRepo, log)
	defer closeOutcomes()

	senders := sender.NewRegistry(
		sender.NewEmailSender(cfg.ResendAPIKey, cfg.ResendFromEmail, log),
		sender.NewWhatsAppSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppFrom, log),
	)
	m := metrics.New(prometheus.DefaultRegisterer)
	validator := controller.NewRequestValidator()

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		ContactRepo:  contactRepo,
		LogRepo:      logRepo,
		Senders:      senders,
		Outcomes:     outcomes,
		Metrics:      m,
		Logger:       log,
	}
	broadcastService := &service.BroadcastService{
		CampaignRepo: campaignRepo,
		Resolver:     &service.RecipientResolver{ContactRepo: contactRepo},
		Senders:      senders,
		Outcomes:     outcomes,
		Metrics:      m,
		Logger:       log,
	}

	r := newRouter(routerDeps{
		Auth: &auth.Middleware{Verifier: auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer), Logger: log},
		Campaigns: &controller.CampaignController{
			CampaignService:  campaignService,
			BroadcastService: broadcastService,
			Validator:        validator,
			Logger:           log,
		},
		Contacts: &controller.ContactController{
			ContactService: &service.ContactService{ContactRepo: contactRepo},
			Validator:      validator,
			Logger:         log,
		},
		Messages: &controller.MessageController{
			MessageService: &service.MessageService{Senders: senders, Logger: log},
			Validator:      validator,
			Logger:         log,
		},
		Reports:     &handler.CampaignHandler{Service: campaignService, Logger: log},
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("server running", zap.String("addr", cfg.HTTPAddr), zap.String("outcome_sink", cfg.Sink()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newOutcomeLogger picks the outcome sink from config. The returned func
// flushes or closes whatever the sink holds open.
func newOutcomeLogger(cfg config.AppConfig, logRepo repository.MessageLogRepositoryInterface, log *zap.Logger) (service.OutcomeLogger, func()) {
	switch cfg.Sink() {
	case config.SinkAMQP:
		q, err := queue.DialAMQP(cfg.AMQPURL, log)
		if err != nil {
			log.Fatal("failed to connect to rabbitmq", zap.Error(err))
		}
		return &service.QueueOutcomeLogger{Queue: q, Topic: cfg.OutcomeTopic}, func() {
			if err := q.Close(); err != nil {
				log.Warn("failed to close rabbitmq connection", zap.Error(err))
			}
		}

	case config.SinkMemory:
		q := queue.NewInMemoryQueue(log)
		if err := queue.StartOutcomeSubscriber(q, cfg.OutcomeTopic, logRepo, log); err != nil {
			log.Fatal("failed to start outcome subscriber", zap.Error(err))
		}
		return &service.QueueOutcomeLogger{Queue: q, Topic: cfg.OutcomeTopic}, q.Wait

	default:
		return &service.RepositoryOutcomeLogger{LogRepo: logRepo}, func() {}
	}
}
