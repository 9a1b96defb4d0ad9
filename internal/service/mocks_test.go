package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
)

type MockCampaignRepo struct {
	mock.Mock
}

func (m *MockCampaignRepo) Create(ctx context.Context, c *model.Campaign) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCampaignRepo) GetByID(ctx context.Context, id string) (*model.Campaign, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Campaign)
	return c, args.Error(1)
}

func (m *MockCampaignRepo) ListCampaigns(ctx context.Context, workspaceID string, offset, limit int, channel, status string) ([]*model.Campaign, int, error) {
	args := m.Called(ctx, workspaceID, offset, limit, channel, status)
	if fn, ok := args.Get(0).(func(context.Context, string, int, int, string, string) []*model.Campaign); ok {
		return fn(ctx, workspaceID, offset, limit, channel, status), args.Int(1), args.Error(2)
	}
	list, _ := args.Get(0).([]*model.Campaign)
	return list, args.Int(1), args.Error(2)
}

func (m *MockCampaignRepo) UpdateStatus(ctx context.Context, campaignID string, status model.CampaignStatus) error {
	args := m.Called(ctx, campaignID, status)
	return args.Error(0)
}

func (m *MockCampaignRepo) CountByChannel(ctx context.Context, workspaceID string) (map[model.Channel]int, error) {
	args := m.Called(ctx, workspaceID)
	counts, _ := args.Get(0).(map[model.Channel]int)
	return counts, args.Error(1)
}

type MockContactRepo struct {
	mock.Mock
}

func (m *MockContactRepo) Create(ctx context.Context, c *model.Contact) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContactRepo) GetByID(ctx context.Context, id string) (*model.Contact, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Contact)
	return c, args.Error(1)
}

func (m *MockContactRepo) ListByWorkspace(ctx context.Context, workspaceID string) ([]model.Contact, error) {
	args := m.Called(ctx, workspaceID)
	list, _ := args.Get(0).([]model.Contact)
	return list, args.Error(1)
}

func (m *MockContactRepo) ListByWorkspaceAndChannel(ctx context.Context, workspaceID string, channel model.Channel) ([]model.Contact, error) {
	args := m.Called(ctx, workspaceID, channel)
	list, _ := args.Get(0).([]model.Contact)
	return list, args.Error(1)
}

func (m *MockContactRepo) CountByWorkspace(ctx context.Context, workspaceID string) (int, error) {
	args := m.Called(ctx, workspaceID)
	return args.Int(0), args.Error(1)
}

type MockLogRepo struct {
	mock.Mock
}

func (m *MockLogRepo) Create(ctx context.Context, l *model.MessageLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLogRepo) StatsByCampaign(ctx context.Context, campaignID string) (map[string]int, error) {
	args := m.Called(ctx, campaignID)
	stats, _ := args.Get(0).(map[string]int)
	return stats, args.Error(1)
}

func (m *MockLogRepo) DailySentCounts(ctx context.Context, workspaceID string, since time.Time) ([]repository.DailyCount, error) {
	args := m.Called(ctx, workspaceID, since)
	out, _ := args.Get(0).([]repository.DailyCount)
	return out, args.Error(1)
}

// fakeSender records every address it was asked to send to and fails the
// ones listed in fail.
type fakeSender struct {
	channel model.Channel
	fail    map[string]string

	mu    sync.Mutex
	calls []string
	msgs  []model.RenderedMessage
}

func (f *fakeSender) Channel() model.Channel { return f.channel }
func (f *fakeSender) Provider() string       { return "fake" }

func (f *fakeSender) Send(_ context.Context, address string, msg model.RenderedMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, address)
	f.msgs = append(f.msgs, msg)
	if reason, ok := f.fail[address]; ok {
		return "", &appErrors.ProviderError{Provider: "fake", Message: reason}
	}
	return fmt.Sprintf("msg-%d", len(f.calls)), nil
}

// recordingLogger collects outcomes; err and panicWith make Record misbehave.
type recordingLogger struct {
	mu        sync.Mutex
	outcomes  []model.DeliveryOutcome
	err       error
	panicWith any
}

func (r *recordingLogger) Record(_ context.Context, o model.DeliveryOutcome) error {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, o)
	r.mu.Unlock()
	if r.panicWith != nil {
		panic(r.panicWith)
	}
	return r.err
}

func strPtr(s string) *string { return &s }
