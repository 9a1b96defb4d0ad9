// internal/service/broadcast_service.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/metrics"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
	"github.com/unclebandit/campaign-broadcaster/internal/sender"
)

// BroadcastService sends a campaign to every reachable contact of its
// workspace, one recipient at a time.
type BroadcastService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	Resolver     *RecipientResolver
	Senders      *sender.Registry
	Outcomes     OutcomeLogger
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

// Broadcast delivers the campaign over channel and reports per-recipient
// results. Individual send failures are counted, never returned; the error
// return is reserved for failures before the first send.
//
// Cancellation of ctx is ignored: once started, every recipient is attempted,
// logged, and the status change is written even if the caller went away.
func (s *BroadcastService) Broadcast(ctx context.Context, caller model.Caller, campaignID string, channel model.Channel) (*model.BatchSummary, error) {
	ctx = context.WithoutCancel(ctx)
	log := logger.OrNop(s.Logger).With(
		zap.String("campaign_id", campaignID),
		zap.String("channel", string(channel)),
	)
	start := time.Now()

	campaign, err := loadOwnedCampaign(ctx, s.CampaignRepo, caller, campaignID)
	if err != nil {
		s.observeRun(channel, "rejected", start)
		return nil, err
	}

	if campaign.Channel != channel {
		s.observeRun(channel, "rejected", start)
		return nil, appErrors.NewChannelMismatch(string(campaign.Channel), string(channel), broadcastOperation(channel))
	}

	recipients, err := s.Resolver.Resolve(ctx, campaign.WorkspaceID, channel)
	if err != nil {
		log.Error("failed to resolve recipients", zap.Error(err))
		s.observeRun(channel, "error", start)
		return nil, err
	}
	if len(recipients) == 0 {
		s.observeRun(channel, "rejected", start)
		return nil, appErrors.NewNoRecipients(string(channel))
	}

	snd := s.Senders.For(channel)
	summary := &model.BatchSummary{
		Total:  len(recipients),
		Errors: []model.DeliveryError{},
	}

	for i := range recipients {
		contact := &recipients[i]
		address := contact.Address(channel)
		msg := Render(campaign, contact)

		outcome := model.DeliveryOutcome{
			WorkspaceID: campaign.WorkspaceID,
			UserID:      caller.UserID,
			CampaignID:  campaign.ID,
			ContactID:   contact.ID,
			Channel:     channel,
			Provider:    snd.Provider(),
			Address:     address,
		}

		providerID, err := snd.Send(ctx, address, msg)
		if err != nil {
			outcome.Error = failureMessage(err)
			summary.AddFailure(address, outcome.Error)
			log.Debug("send failed",
				zap.String("contact_id", contact.ID),
				zap.String("error", outcome.Error))
		} else {
			outcome.Success = true
			outcome.ProviderMessageID = providerID
			summary.Sent++
		}
		s.countMessage(channel, outcome.Success)

		recordOutcome(ctx, s.Outcomes, log, s.Metrics, outcome)
	}

	if summary.Sent > 0 {
		if err := s.CampaignRepo.UpdateStatus(ctx, campaign.ID, model.CampaignStatusSent); err != nil {
			log.Error("failed to mark campaign as sent", zap.Error(err))
		}
	}
	summary.Success = summary.Failed == 0

	result := "success"
	switch {
	case summary.Sent == 0:
		result = "failed"
	case summary.Failed > 0:
		result = "partial"
	}
	s.observeRun(channel, result, start)

	if summary.Failed > 0 {
		log.Warn("broadcast finished with failures",
			zap.Int("total", summary.Total),
			zap.Int("sent", summary.Sent),
			zap.Int("failed", summary.Failed))
	} else {
		log.Info("broadcast finished",
			zap.Int("total", summary.Total),
			zap.Int("sent", summary.Sent))
	}
	return summary, nil
}

func (s *BroadcastService) countMessage(channel model.Channel, ok bool) {
	if s.Metrics == nil {
		return
	}
	status := string(model.MessageStatusSent)
	if !ok {
		status = string(model.MessageStatusFailed)
	}
	s.Metrics.Messages.WithLabelValues(string(channel), status).Inc()
}

func (s *BroadcastService) observeRun(channel model.Channel, result string, start time.Time) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Runs.WithLabelValues(string(channel), result).Inc()
	s.Metrics.Duration.WithLabelValues(string(channel)).Observe(time.Since(start).Seconds())
}

func broadcastOperation(channel model.Channel) string {
	if channel == model.ChannelWhatsApp {
		return "WhatsApp broadcast"
	}
	return "Broadcast"
}

// failureMessage is the text stored for a failed send.
func failureMessage(err error) string {
	var pe *appErrors.ProviderError
	if errors.As(err, &pe) {
		return pe.Message
	}
	if err == nil || err.Error() == "" {
		return "Unknown error"
	}
	return err.Error()
}

// loadOwnedCampaign fetches a campaign and hides it from other workspaces.
func loadOwnedCampaign(ctx context.Context, repo repository.CampaignRepositoryInterface, caller model.Caller, campaignID string) (*model.Campaign, error) {
	if caller.WorkspaceID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	if _, err := uuid.Parse(campaignID); err != nil {
		return nil, appErrors.ErrInvalidID
	}
	campaign, err := repo.GetByID(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.WorkspaceID != caller.WorkspaceID {
		return nil, appErrors.NewCampaignNotFound(campaignID)
	}
	return campaign, nil
}
