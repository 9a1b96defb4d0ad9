package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unclebandit/campaign-broadcaster/internal/auth"
	"github.com/unclebandit/campaign-broadcaster/internal/controller"
	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/handler"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/repository"
	"github.com/unclebandit/campaign-broadcaster/internal/sender"
	"github.com/unclebandit/campaign-broadcaster/internal/service"
)

const (
	testSecret  = "test-secret"
	workspaceID = "3f0c1c9e-8a57-4d7f-9a55-0c3c1c5b7b11"
	campaignID  = "a1b2c3d4-0000-4000-8000-000000000001"
)

type stubEmailSender struct {
	failFor string
}

func (s *stubEmailSender) Channel() model.Channel { return model.ChannelEmail }
func (s *stubEmailSender) Provider() string       { return "stub" }

func (s *stubEmailSender) Send(ctx context.Context, address string, msg model.RenderedMessage) (string, error) {
	if address == s.failFor {
		return "", &appErrors.ProviderError{Provider: "stub", Message: "mailbox full"}
	}
	return "stub-" + address, nil
}

func setup(t *testing.T) (http.Handler, sqlmock.Sqlmock, *auth.Verifier) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	campaignRepo := &repository.CampaignRepository{DB: db}
	contactRepo := &repository.ContactRepository{DB: db}
	logRepo := &repository.MessageLogRepository{DB: db}
	outcomes := &service.RepositoryOutcomeLogger{LogRepo: logRepo}
	senders := sender.NewRegistry(&stubEmailSender{failFor: "b@example.com"})
	verifier := auth.NewVerifier(testSecret, "")
	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo, ContactRepo: contactRepo, LogRepo: logRepo,
		Senders: senders, Outcomes: outcomes,
	}

	r := newRouter(routerDeps{
		Auth: &auth.Middleware{Verifier: verifier},
		Campaigns: &controller.CampaignController{
			CampaignService: campaignService,
			BroadcastService: &service.BroadcastService{
				CampaignRepo: campaignRepo,
				Resolver:     &service.RecipientResolver{ContactRepo: contactRepo},
				Senders:      senders,
				Outcomes:     outcomes,
			},
			Validator: controller.NewRequestValidator(),
		},
		Contacts: &controller.ContactController{
			ContactService: &service.ContactService{ContactRepo: contactRepo},
			Validator:      controller.NewRequestValidator(),
		},
		Messages: &controller.MessageController{
			MessageService: &service.MessageService{Senders: senders},
			Validator:      controller.NewRequestValidator(),
		},
		Reports:     &handler.CampaignHandler{Service: campaignService},
		CORSOrigins: []string{"*"},
		Metrics:     http.NotFoundHandler(),
	})
	return r, mock, verifier
}

func bearer(t *testing.T, v *auth.Verifier, workspace string) string {
	t.Helper()
	tok, err := v.Sign(&auth.Claims{
		Email:       "owner@acme.test",
		WorkspaceID: workspace,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestHealthzIsPublic(t *testing.T) {
	r, _, _ := setup(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPIRequiresToken(t *testing.T) {
	r, _, v := setup(t)

	for _, path := range []string{"/api/contacts", "/api/campaigns", "/api/message-logs/summary", "/api/dashboard/overview"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/"+campaignID+"/send-email-broadcast", nil)
	req.Header.Set("Authorization", bearer(t, v, ""))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"message":"Unauthorized"}`, w.Body.String())
}

func TestEmailBroadcastEndToEnd(t *testing.T) {
	r, mock, v := setup(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM campaigns WHERE id=$1`)).
		WithArgs(campaignID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "name", "channel", "status", "subject", "body", "created_at", "updated_at"}).
			AddRow(campaignID, workspaceID, "Sale", "email", "draft", nil, nil, now, nil))
	mock.ExpectQuery(`FROM contacts\s+WHERE workspace_id = \$1 AND email IS NOT NULL`).
		WithArgs(workspaceID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "workspace_id", "email", "phone", "first_name", "last_name", "created_at", "updated_at"}).
			AddRow("c1", workspaceID, "a@example.com", nil, "Ana", nil, now, nil).
			AddRow("c2", workspaceID, "b@example.com", nil, nil, nil, now, nil))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO message_logs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO message_logs`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE campaigns SET status=$1`)).
		WithArgs(model.CampaignStatusSent, sqlmock.AnyArg(), campaignID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodPost, "/api/campaigns/"+campaignID+"/send-email-broadcast", nil)
	req.Header.Set("Authorization", bearer(t, v, workspaceID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var summary model.BatchSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, summary.Failed)
	assert.False(t, summary.Success)
	assert.Equal(t, []model.DeliveryError{{Address: "b@example.com", Message: "mailbox full"}}, summary.Errors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOneOffEmailSend(t *testing.T) {
	r, mock, v := setup(t)

	req := httptest.NewRequest(http.MethodPost, "/api/email/test",
		strings.NewReader(`{"to":"b@example.com","subject":"Hi","message":"Setup check"}`))
	req.Header.Set("Authorization", bearer(t, v, workspaceID))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"message":"mailbox full"}`, w.Body.String())
	assert.NoError(t, mock.ExpectationsWereMet(), "one-off sends are not logged")
}
