package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
	"github.com/unclebandit/campaign-broadcaster/internal/sender"
	"github.com/unclebandit/campaign-broadcaster/internal/service"
)

const contactID = "9a8b7c6d-5e4f-4321-8765-0fedcba98765"

func TestCreateCampaign(t *testing.T) {
	repo := new(MockCampaignRepo)
	svc := &service.CampaignService{CampaignRepo: repo}

	repo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Campaign) bool {
		return c.WorkspaceID == workspaceID &&
			c.Name == "Sale" &&
			c.Status == model.CampaignStatusDraft &&
			c.Subject == nil &&
			c.Body != nil && *c.Body == "50% off"
	})).Return(nil).Run(func(args mock.Arguments) {
		args.Get(1).(*model.Campaign).ID = campaignID
	})

	c, err := svc.CreateCampaign(context.Background(), caller, service.CreateCampaignInput{
		Name: " Sale ", Channel: model.ChannelEmail, Body: "50% off",
	})
	require.NoError(t, err)
	assert.Equal(t, campaignID, c.ID)
	repo.AssertExpectations(t)
}

func TestListCampaigns_Pagination(t *testing.T) {
	all := []*model.Campaign{
		{ID: "c5", Name: "C5"},
		{ID: "c4", Name: "C4"},
		{ID: "c3", Name: "C3"},
		{ID: "c2", Name: "C2"},
		{ID: "c1", Name: "C1"},
	}
	repo := new(MockCampaignRepo)
	repo.On("ListCampaigns", mock.Anything, workspaceID, mock.Anything, mock.Anything, "", "").
		Return(func(_ context.Context, _ string, offset, limit int, _, _ string) []*model.Campaign {
			if offset >= len(all) {
				return []*model.Campaign{}
			}
			end := offset + limit
			if end > len(all) {
				end = len(all)
			}
			return all[offset:end]
		}, len(all), nil)

	svc := &service.CampaignService{CampaignRepo: repo}
	ctx := context.Background()

	page1, p1, err := svc.ListCampaigns(ctx, caller, 1, 2, "", "")
	require.NoError(t, err)
	page2, _, _ := svc.ListCampaigns(ctx, caller, 2, 2, "", "")
	page3, p3, _ := svc.ListCampaigns(ctx, caller, 3, 2, "", "")

	assert.Equal(t, service.Pagination{Page: 1, PageSize: 2, TotalCount: 5, TotalPages: 3}, p1)
	assert.Equal(t, 5, p3.TotalCount)
	require.Len(t, page1, 2)
	require.Len(t, page2, 2)
	assert.Len(t, page3, 1)
	assert.NotEqual(t, page1[1].ID, page2[0].ID, "pages must not overlap")
}

func TestListCampaigns_ClampsPageSize(t *testing.T) {
	repo := new(MockCampaignRepo)
	repo.On("ListCampaigns", mock.Anything, workspaceID, 0, 100, "email", "draft").Return([]*model.Campaign{}, 0, nil)
	repo.On("ListCampaigns", mock.Anything, workspaceID, 0, 20, "", "").Return([]*model.Campaign{}, 0, nil)

	svc := &service.CampaignService{CampaignRepo: repo}
	_, p, err := svc.ListCampaigns(context.Background(), caller, 0, 500, "email", "draft")
	require.NoError(t, err)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, 1, p.Page)

	_, p, err = svc.ListCampaigns(context.Background(), caller, 1, 0, "", "")
	require.NoError(t, err)
	assert.Equal(t, 20, p.PageSize)
	repo.AssertExpectations(t)
}

func TestGetCampaignDetailsWithStats(t *testing.T) {
	campaigns := new(MockCampaignRepo)
	logs := new(MockLogRepo)
	campaigns.On("GetByID", mock.Anything, campaignID).Return(emailCampaign(), nil)
	logs.On("StatsByCampaign", mock.Anything, campaignID).Return(map[string]int{"total": 3, "sent": 2, "failed": 1}, nil)

	svc := &service.CampaignService{CampaignRepo: campaigns, LogRepo: logs}
	details, err := svc.GetCampaignDetailsWithStats(context.Background(), caller, campaignID)
	require.NoError(t, err)
	assert.Equal(t, "Sale", details.Name)
	assert.Equal(t, 2, details.Stats["sent"])
	assert.Equal(t, 3, details.Stats["total"])
}

func TestRenderPreview(t *testing.T) {
	campaigns := new(MockCampaignRepo)
	contacts := new(MockContactRepo)
	campaigns.On("GetByID", mock.Anything, campaignID).Return(emailCampaign(), nil)
	svc := &service.CampaignService{CampaignRepo: campaigns, ContactRepo: contacts}

	t.Run("own contact", func(t *testing.T) {
		contacts.On("GetByID", mock.Anything, contactID).Return(&model.Contact{
			ID: contactID, WorkspaceID: workspaceID, FirstName: strPtr("Ana"),
		}, nil).Once()

		p, err := svc.RenderPreview(context.Background(), caller, campaignID, contactID)
		require.NoError(t, err)
		assert.Equal(t, "Campaign: Sale", p.Subject)
		assert.Equal(t, "Hi Ana,\n\nThis is a broadcast email for campaign \"Sale\".", p.Body)
		assert.Equal(t, contactID, p.ContactID)
	})

	t.Run("contact from another workspace", func(t *testing.T) {
		contacts.On("GetByID", mock.Anything, contactID).Return(&model.Contact{
			ID: contactID, WorkspaceID: "other",
		}, nil).Once()

		_, err := svc.RenderPreview(context.Background(), caller, campaignID, contactID)
		assert.ErrorIs(t, err, appErrors.ErrContactNotFound)
		assert.Equal(t, 404, appErrors.HTTPStatus(err))
	})
}

func TestSendTestEmail(t *testing.T) {
	t.Run("sends to the caller and marks sent", func(t *testing.T) {
		campaigns := new(MockCampaignRepo)
		email := &fakeSender{channel: model.ChannelEmail}
		outcomes := &recordingLogger{}
		campaigns.On("GetByID", mock.Anything, campaignID).Return(emailCampaign(), nil)
		campaigns.On("UpdateStatus", mock.Anything, campaignID, model.CampaignStatusSent).Return(nil).Once()

		svc := &service.CampaignService{CampaignRepo: campaigns, Senders: sender.NewRegistry(email), Outcomes: outcomes}
		require.NoError(t, svc.SendTestEmail(context.Background(), caller, campaignID))

		assert.Equal(t, []string{"owner@acme.test"}, email.calls)
		assert.Equal(t, "Test: Sale", email.msgs[0].Subject)
		require.Len(t, outcomes.outcomes, 1)
		assert.True(t, outcomes.outcomes[0].Success)
		campaigns.AssertExpectations(t)
	})

	t.Run("whatsapp campaign is rejected", func(t *testing.T) {
		campaigns := new(MockCampaignRepo)
		c := emailCampaign()
		c.Channel = model.ChannelWhatsApp
		campaigns.On("GetByID", mock.Anything, campaignID).Return(c, nil)

		svc := &service.CampaignService{CampaignRepo: campaigns, Senders: sender.NewRegistry()}
		err := svc.SendTestEmail(context.Background(), caller, campaignID)
		assert.Equal(t, "Test email is only available for email campaigns", appErrors.Message(err))
	})

	t.Run("caller without email", func(t *testing.T) {
		campaigns := new(MockCampaignRepo)
		campaigns.On("GetByID", mock.Anything, campaignID).Return(emailCampaign(), nil)

		svc := &service.CampaignService{CampaignRepo: campaigns, Senders: sender.NewRegistry()}
		err := svc.SendTestEmail(context.Background(), model.Caller{UserID: userID, WorkspaceID: workspaceID}, campaignID)
		assert.ErrorIs(t, err, appErrors.ErrMissingUserEmail)
	})

	t.Run("provider failure is returned and logged", func(t *testing.T) {
		campaigns := new(MockCampaignRepo)
		email := &fakeSender{channel: model.ChannelEmail, fail: map[string]string{"owner@acme.test": "domain is not verified"}}
		outcomes := &recordingLogger{}
		campaigns.On("GetByID", mock.Anything, campaignID).Return(emailCampaign(), nil)

		svc := &service.CampaignService{CampaignRepo: campaigns, Senders: sender.NewRegistry(email), Outcomes: outcomes}
		err := svc.SendTestEmail(context.Background(), caller, campaignID)
		var pe *appErrors.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "domain is not verified", appErrors.Message(err))
		require.Len(t, outcomes.outcomes, 1)
		assert.False(t, outcomes.outcomes[0].Success)
		campaigns.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMessageSummary_FillsEmptyDays(t *testing.T) {
	logs := new(MockLogRepo)
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	since := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)
	logs.On("DailySentCounts", mock.Anything, workspaceID, since).Return([]repository.DailyCount{
		{Day: "2024-05-04", Channel: model.ChannelEmail, Count: 3},
		{Day: "2024-05-09", Channel: model.ChannelWhatsApp, Count: 2},
		{Day: "2024-05-10", Channel: model.ChannelEmail, Count: 1},
		{Day: "2024-05-10", Channel: model.ChannelWhatsApp, Count: 4},
	}, nil)

	svc := &service.CampaignService{LogRepo: logs}
	days, err := svc.MessageSummary(context.Background(), caller, 7, now)
	require.NoError(t, err)
	require.Len(t, days, 7)
	assert.Equal(t, model.DailySummary{Date: "2024-05-04", Emails: 3}, days[0])
	assert.Equal(t, model.DailySummary{Date: "2024-05-05"}, days[1])
	assert.Equal(t, model.DailySummary{Date: "2024-05-09", WhatsApp: 2}, days[5])
	assert.Equal(t, model.DailySummary{Date: "2024-05-10", Emails: 1, WhatsApp: 4}, days[6])
	logs.AssertExpectations(t)
}

func TestOverview(t *testing.T) {
	campaigns := new(MockCampaignRepo)
	contacts := new(MockContactRepo)
	logs := new(MockLogRepo)
	now := time.Date(2024, 5, 10, 15, 30, 0, 0, time.UTC)
	since := time.Date(2024, 5, 4, 0, 0, 0, 0, time.UTC)

	contacts.On("CountByWorkspace", mock.Anything, workspaceID).Return(42, nil)
	campaigns.On("CountByChannel", mock.Anything, workspaceID).
		Return(map[model.Channel]int{model.ChannelEmail: 3}, nil)
	logs.On("DailySentCounts", mock.Anything, workspaceID, since).Return([]repository.DailyCount{
		{Day: "2024-05-04", Channel: model.ChannelEmail, Count: 3},
		{Day: "2024-05-09", Channel: model.ChannelWhatsApp, Count: 2},
		{Day: "2024-05-10", Channel: model.ChannelEmail, Count: 1},
	}, nil)

	svc := &service.CampaignService{CampaignRepo: campaigns, ContactRepo: contacts, LogRepo: logs}
	got, err := svc.Overview(context.Background(), caller, 7, now)
	require.NoError(t, err)
	assert.Equal(t, &service.Overview{
		ContactCount:          42,
		EmailCampaignCount:    3,
		WhatsAppCampaignCount: 0,
		EmailsSent:            4,
		WhatsAppSent:          2,
	}, got)
}

func TestOverview_Errors(t *testing.T) {
	svc := &service.CampaignService{}
	_, err := svc.Overview(context.Background(), model.Caller{UserID: userID}, 7, time.Now())
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)

	contacts := new(MockContactRepo)
	contacts.On("CountByWorkspace", mock.Anything, workspaceID).Return(0, errors.New("pq: connection refused"))
	campaigns := new(MockCampaignRepo)
	svc = &service.CampaignService{CampaignRepo: campaigns, ContactRepo: contacts}
	_, err = svc.Overview(context.Background(), caller, 7, time.Now())
	assert.EqualError(t, err, "pq: connection refused")
	campaigns.AssertNotCalled(t, "CountByChannel", mock.Anything, mock.Anything)
}
