// cmd/seeder/main.go
package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/config"
	"github.com/unclebandit/campaign-broadcaster/internal/db"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
)

var seedFiles = []string{
	"seed/schema.sql",
	"seed/workspaces.sql",
	"seed/contacts.sql",
	"seed/campaigns.sql",
}

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

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = cfg.DSN()
	}
	ctx := context.Background()
	conn, err := db.Connect(ctx, dsn)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	for _, file := range seedFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatal("failed to read seed file", zap.String("file", file), zap.Error(err))
		}

		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			log.Fatal("failed to execute seed file", zap.String("file", file), zap.Error(err))
		}
		log.Info("seeded", zap.String("file", file))
	}

	log.Info("database seeding completed")
}
