// internal/service/campaign_service.go
package service

import (
	"context"
	"strings"
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

type CampaignService struct {
	CampaignRepo repository.CampaignRepositoryInterface
	ContactRepo  repository.ContactRepositoryInterface
	LogRepo      repository.MessageLogRepositoryInterface
	Senders      *sender.Registry
	Outcomes     OutcomeLogger
	Metrics      *metrics.Metrics
	Logger       *zap.Logger
}

type CreateCampaignInput struct {
	Name    string
	Channel model.Channel
	Subject string
	Body    string
}

type CampaignDetails struct {
	*model.Campaign
	Stats map[string]int `json:"stats"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// Preview is a rendered message for one contact.
type Preview struct {
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	ContactID string `json:"contact_id"`
}

// Overview is the dashboard headline: audience size, campaigns per channel,
// and messages sent in the summary window.
type Overview struct {
	ContactCount          int `json:"contactCount"`
	EmailCampaignCount    int `json:"emailCampaignCount"`
	WhatsAppCampaignCount int `json:"whatsappCampaignCount"`
	EmailsSent            int `json:"emailsSentLast7d"`
	WhatsAppSent          int `json:"whatsappSentLast7d"`
}

func (s *CampaignService) CreateCampaign(ctx context.Context, caller model.Caller, in CreateCampaignInput) (*model.Campaign, error) {
	if caller.WorkspaceID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	c := &model.Campaign{
		WorkspaceID: caller.WorkspaceID,
		Name:        strings.TrimSpace(in.Name),
		Channel:     in.Channel,
		Status:      model.CampaignStatusDraft,
		Subject:     optional(in.Subject),
		Body:        optional(in.Body),
	}
	if err := s.CampaignRepo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListCampaigns fetches the caller's campaigns with pagination
func (s *CampaignService) ListCampaigns(ctx context.Context, caller model.Caller, page, pageSize int, channel, status string) ([]model.Campaign, Pagination, error) {
	if caller.WorkspaceID == "" {
		return nil, Pagination{}, appErrors.ErrUnauthorized
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize

	ptrs, total, err := s.CampaignRepo.ListCampaigns(ctx, caller.WorkspaceID, offset, pageSize, channel, status)
	if err != nil {
		return nil, Pagination{}, err
	}

	campaigns := make([]model.Campaign, len(ptrs))
	for i, c := range ptrs {
		campaigns[i] = *c
	}

	return campaigns, Pagination{
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}, nil
}

func (s *CampaignService) GetCampaignDetailsWithStats(ctx context.Context, caller model.Caller, campaignID string) (*CampaignDetails, error) {
	campaign, err := loadOwnedCampaign(ctx, s.CampaignRepo, caller, campaignID)
	if err != nil {
		return nil, err
	}

	stats, err := s.LogRepo.StatsByCampaign(ctx, campaign.ID)
	if err != nil {
		logger.OrNop(s.Logger).Error("failed to load campaign stats",
			zap.String("campaign_id", campaign.ID), zap.Error(err))
		return nil, err
	}
	return &CampaignDetails{Campaign: campaign, Stats: stats}, nil
}

// RenderPreview shows what one contact would receive from the campaign.
func (s *CampaignService) RenderPreview(ctx context.Context, caller model.Caller, campaignID, contactID string) (*Preview, error) {
	campaign, err := loadOwnedCampaign(ctx, s.CampaignRepo, caller, campaignID)
	if err != nil {
		return nil, err
	}

	if _, err := uuid.Parse(contactID); err != nil {
		return nil, appErrors.ErrContactNotFound
	}
	contact, err := s.ContactRepo.GetByID(ctx, contactID)
	if err != nil {
		return nil, err
	}
	if contact.WorkspaceID != caller.WorkspaceID {
		return nil, appErrors.ErrContactNotFound
	}

	msg := Render(campaign, contact)
	return &Preview{Subject: msg.Subject, Body: msg.Body, ContactID: contact.ID}, nil
}

// SendTestEmail sends the campaign to the caller's own address. It follows
// the broadcast rules for status and outcome logging.
func (s *CampaignService) SendTestEmail(ctx context.Context, caller model.Caller, campaignID string) error {
	ctx = context.WithoutCancel(ctx)
	log := logger.OrNop(s.Logger).With(zap.String("campaign_id", campaignID))

	campaign, err := loadOwnedCampaign(ctx, s.CampaignRepo, caller, campaignID)
	if err != nil {
		return err
	}
	if campaign.Channel != model.ChannelEmail {
		return appErrors.NewChannelMismatch(string(campaign.Channel), string(model.ChannelEmail), "Test email")
	}
	if caller.Email == "" {
		return appErrors.ErrMissingUserEmail
	}

	snd := s.Senders.For(model.ChannelEmail)
	outcome := model.DeliveryOutcome{
		WorkspaceID: campaign.WorkspaceID,
		UserID:      caller.UserID,
		CampaignID:  campaign.ID,
		Channel:     model.ChannelEmail,
		Provider:    snd.Provider(),
		Address:     caller.Email,
	}

	providerID, sendErr := snd.Send(ctx, caller.Email, RenderTest(campaign))
	if sendErr != nil {
		outcome.Error = failureMessage(sendErr)
		log.Warn("test email failed", zap.String("error", outcome.Error))
	} else {
		outcome.Success = true
		outcome.ProviderMessageID = providerID
		if err := s.CampaignRepo.UpdateStatus(ctx, campaign.ID, model.CampaignStatusSent); err != nil {
			log.Error("failed to mark campaign as sent", zap.Error(err))
		}
	}
	recordOutcome(ctx, s.Outcomes, log, s.Metrics, outcome)

	return sendErr
}

// MessageSummary counts sent messages per UTC day and channel for the last
// days, today included. Days without traffic are reported as zeros.
func (s *CampaignService) MessageSummary(ctx context.Context, caller model.Caller, days int, now time.Time) ([]model.DailySummary, error) {
	if caller.WorkspaceID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	today := now.UTC().Truncate(24 * time.Hour)
	since := today.AddDate(0, 0, -(days - 1))

	counts, err := s.LogRepo.DailySentCounts(ctx, caller.WorkspaceID, since)
	if err != nil {
		return nil, err
	}

	out := make([]model.DailySummary, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		out[i] = model.DailySummary{Date: day}
		index[day] = i
	}
	for _, c := range counts {
		i, ok := index[c.Day]
		if !ok {
			continue
		}
		switch c.Channel {
		case model.ChannelEmail:
			out[i].Emails += c.Count
		case model.ChannelWhatsApp:
			out[i].WhatsApp += c.Count
		}
	}
	return out, nil
}

// Overview totals the workspace's contacts and campaigns, and the messages
// sent over the last days (today included, UTC).
func (s *CampaignService) Overview(ctx context.Context, caller model.Caller, days int, now time.Time) (*Overview, error) {
	if caller.WorkspaceID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	log := logger.OrNop(s.Logger).With(zap.String("workspace_id", caller.WorkspaceID))

	contacts, err := s.ContactRepo.CountByWorkspace(ctx, caller.WorkspaceID)
	if err != nil {
		log.Error("failed to count contacts", zap.Error(err))
		return nil, err
	}
	campaigns, err := s.CampaignRepo.CountByChannel(ctx, caller.WorkspaceID)
	if err != nil {
		log.Error("failed to count campaigns", zap.Error(err))
		return nil, err
	}
	perDay, err := s.MessageSummary(ctx, caller, days, now)
	if err != nil {
		log.Error("failed to load message logs", zap.Error(err))
		return nil, err
	}

	out := &Overview{
		ContactCount:          contacts,
		EmailCampaignCount:    campaigns[model.ChannelEmail],
		WhatsAppCampaignCount: campaigns[model.ChannelWhatsApp],
	}
	for _, d := range perDay {
		out.EmailsSent += d.Emails
		out.WhatsAppSent += d.WhatsApp
	}
	return out, nil
}
