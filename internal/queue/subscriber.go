package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
)

// StartOutcomeSubscriber persists every message log published on topic.
// Undecodable payloads are dropped; write failures are returned so the queue
// can retry them.
func StartOutcomeSubscriber(q Queue, topic string, repo repository.MessageLogRepositoryInterface, log *zap.Logger) error {
	log = logger.OrNop(log)
	err := q.Subscribe(topic, func(payload any) error {
		entry, err := decodeMessageLog(payload)
		if err != nil {
			log.Warn("dropping invalid outcome payload", zap.Error(err))
			return nil // no retry
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := repo.Create(ctx, entry); err != nil {
			return fmt.Errorf("persist message log %s: %w", entry.ID, err)
		}
		log.Debug("message log persisted",
			zap.String("id", entry.ID),
			zap.String("status", string(entry.Status)))
		return nil
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", topic, err)
	}
	return nil
}

func decodeMessageLog(payload any) (*model.MessageLog, error) {
	switch v := payload.(type) {
	case *model.MessageLog:
		if v == nil {
			return nil, fmt.Errorf("nil message log")
		}
		cp := *v
		return &cp, nil
	case model.MessageLog:
		return &v, nil
	case []byte:
		var entry model.MessageLog
		if err := json.Unmarshal(v, &entry); err != nil {
			return nil, fmt.Errorf("decode message log: %w", err)
		}
		return &entry, nil
	default:
		return nil, fmt.Errorf("unexpected payload type %T", payload)
	}
}
