package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/metrics"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/queue"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
)

// OutcomeLogger stores one record per send attempt. Callers treat it as
// best effort: a failed Record never changes a broadcast's result.
type OutcomeLogger interface {
	Record(ctx context.Context, outcome model.DeliveryOutcome) error
}

// RepositoryOutcomeLogger writes message logs straight to the database.
type RepositoryOutcomeLogger struct {
	LogRepo repository.MessageLogRepositoryInterface
}

func (l *RepositoryOutcomeLogger) Record(ctx context.Context, outcome model.DeliveryOutcome) error {
	return l.LogRepo.Create(ctx, NewMessageLog(outcome))
}

// QueueOutcomeLogger publishes message logs for a subscriber to persist.
type QueueOutcomeLogger struct {
	Queue queue.Queue
	Topic string
}

func (l *QueueOutcomeLogger) Record(_ context.Context, outcome model.DeliveryOutcome) error {
	entry := NewMessageLog(outcome)
	if err := l.Queue.Publish(l.Topic, entry); err != nil {
		return fmt.Errorf("publish outcome %s: %w", entry.ID, err)
	}
	return nil
}

// NewMessageLog converts an outcome to its durable row. The id is assigned
// here so a redelivered queue message inserts at most once.
func NewMessageLog(o model.DeliveryOutcome) *model.MessageLog {
	entry := &model.MessageLog{
		ID:          uuid.NewString(),
		WorkspaceID: o.WorkspaceID,
		UserID:      o.UserID,
		Channel:     o.Channel,
		Provider:    o.Provider,
		Status:      model.MessageStatusFailed,
		CampaignID:  optional(o.CampaignID),
		ContactID:   optional(o.ContactID),
		CreatedAt:   time.Now().UTC(),
	}
	if o.Success {
		entry.Status = model.MessageStatusSent
		entry.ProviderMessageID = optional(o.ProviderMessageID)
	} else {
		entry.ErrorMessage = optional(o.Error)
	}
	return entry
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// recordOutcome hands the outcome to the logger and swallows any error or
// panic it produces.
func recordOutcome(ctx context.Context, outcomes OutcomeLogger, log *zap.Logger, m *metrics.Metrics, o model.DeliveryOutcome) {
	if outcomes == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("outcome logger panicked",
				zap.String("campaign_id", o.CampaignID),
				zap.String("contact_id", o.ContactID),
				zap.Any("panic", r))
			if m != nil {
				m.OutcomeLogFailure.Inc()
			}
		}
	}()

	if err := outcomes.Record(ctx, o); err != nil {
		log.Warn("failed to record delivery outcome",
			zap.String("campaign_id", o.CampaignID),
			zap.String("contact_id", o.ContactID),
			zap.Bool("success", o.Success),
			zap.Error(err))
		if m != nil {
			m.OutcomeLogFailure.Inc()
		}
	}
}
