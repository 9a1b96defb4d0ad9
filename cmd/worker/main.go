package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/config"
	"github.com/unclebandit/campaign-broadcaster/internal/db"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/queue"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
)

// The worker persists delivery outcomes that the server published to
// RabbitMQ (OUTCOME_SINK=amqp).
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

	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required for the worker")
	}

	// Connect to DB
	db.Init(cfg.DSN(), log)
	defer db.DB.Close()
	logRepo := &repository.MessageLogRepository{DB: db.DB}

	// Connect to RabbitMQ
	q, err := queue.DialAMQP(cfg.AMQPURL, log)
	if err != nil {
		log.Fatal("failed to connect to rabbitmq", zap.Error(err))
	}
	defer q.Close()

	if err := queue.StartOutcomeSubscriber(q, cfg.OutcomeTopic, logRepo, log); err != nil {
		log.Fatal("failed to start consumer", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("worker running, waiting for outcomes", zap.String("topic", cfg.OutcomeTopic))
	<-ctx.Done()
	log.Info("worker stopping")
}
