package sender

import (
	"context"
	"errors"
	"time"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

const ProviderResend = "resend"

// emailAPI is the part of the Resend client the sender uses.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type EmailSender struct {
	api  emailAPI
	from string
	log  *zap.Logger
}

// NewEmailSender returns a Resend-backed sender, or a disabled one when the
// API key or sender address is missing.
func NewEmailSender(apiKey, from string, log *zap.Logger) Sender {
	log = logger.OrNop(log)
	if apiKey == "" || from == "" {
		log.Warn("resend credentials missing, email channel disabled")
		return &disabledSender{channel: model.ChannelEmail, provider: ProviderResend}
	}
	return newEmailSender(resend.NewClient(apiKey).Emails, from, log)
}

func newEmailSender(api emailAPI, from string, log *zap.Logger) *EmailSender {
	return &EmailSender{api: api, from: from, log: logger.OrNop(log)}
}

func (s *EmailSender) Channel() model.Channel { return model.ChannelEmail }
func (s *EmailSender) Provider() string       { return ProviderResend }

func (s *EmailSender) Send(ctx context.Context, address string, msg model.RenderedMessage) (string, error) {
	start := time.Now()
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{address},
		Subject: msg.Subject,
		Text:    msg.Body,
	}

	sent, err := s.api.SendWithContext(ctx, params)
	if err != nil {
		s.log.Debug("email send failed",
			zap.String("to", address),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err))
		return "", appErrors.NewProviderError(ProviderResend, err)
	}
	if sent == nil || sent.Id == "" {
		return "", appErrors.NewProviderError(ProviderResend, errors.New("resend returned no email id"))
	}

	s.log.Debug("email sent",
		zap.String("to", address),
		zap.String("id", sent.Id),
		zap.Duration("duration", time.Since(start)))
	return sent.Id, nil
}
