package sender

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"github.com/twilio/twilio-go"
	twilioclient "github.com/twilio/twilio-go/client"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

const (
	ProviderTwilio = "twilio"
	whatsappPrefix = "whatsapp:"
)

// messageAPI is the part of the Twilio REST client the sender uses.
type messageAPI interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

type WhatsAppSender struct {
	api  messageAPI
	from string
	log  *zap.Logger
}

// NewWhatsAppSender returns a Twilio-backed sender, or a disabled one when any
// credential is missing.
func NewWhatsAppSender(accountSID, authToken, from string, log *zap.Logger) Sender {
	log = logger.OrNop(log)
	if accountSID == "" || authToken == "" || from == "" {
		log.Warn("twilio credentials missing, whatsapp channel disabled")
		return &disabledSender{channel: model.ChannelWhatsApp, provider: ProviderTwilio}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return newWhatsAppSender(client.Api, from, log)
}

func newWhatsAppSender(api messageAPI, from string, log *zap.Logger) *WhatsAppSender {
	return &WhatsAppSender{api: api, from: withPrefix(from), log: logger.OrNop(log)}
}

func (s *WhatsAppSender) Channel() model.Channel { return model.ChannelWhatsApp }
func (s *WhatsAppSender) Provider() string       { return ProviderTwilio }

func (s *WhatsAppSender) Send(ctx context.Context, address string, msg model.RenderedMessage) (string, error) {
	to, err := NormalizePhone(address)
	if err != nil {
		return "", appErrors.NewProviderError(ProviderTwilio, err)
	}

	start := time.Now()
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(s.from)
	params.SetTo(withPrefix(to))
	params.SetBody(msg.Body)

	resp, err := s.api.CreateMessage(params)
	if err != nil {
		fields := []zap.Field{
			zap.String("to", to),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		}
		var restErr *twilioclient.TwilioRestError
		if errors.As(err, &restErr) {
			fields = append(fields,
				zap.Int("twilio_code", restErr.Code),
				zap.Int("twilio_status", restErr.Status),
				zap.String("more_info", restErr.MoreInfo))
		}
		s.log.Warn("whatsapp send failed", fields...)
		return "", twilioError(err)
	}
	if resp == nil || resp.Sid == nil {
		return "", appErrors.NewProviderError(ProviderTwilio, errors.New("twilio returned no message sid"))
	}

	s.log.Debug("whatsapp sent",
		zap.String("to", to),
		zap.String("sid", *resp.Sid),
		zap.Duration("duration", time.Since(start)))
	return *resp.Sid, nil
}

// NormalizePhone returns the number in E.164 form. A leading "whatsapp:" is
// ignored. Numbers without a country code are rejected.
func NormalizePhone(raw string) (string, error) {
	number := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(raw), whatsappPrefix))
	if number == "" {
		return "", errors.New("phone number is required")
	}
	parsed, err := phonenumbers.Parse(number, "")
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", raw, err)
	}
	if !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

func withPrefix(addr string) string {
	if strings.HasPrefix(addr, whatsappPrefix) {
		return addr
	}
	return whatsappPrefix + addr
}

// twilioError keeps the provider's own message text when there is one. The
// numeric code goes to the log, not the message.
func twilioError(err error) error {
	var restErr *twilioclient.TwilioRestError
	if errors.As(err, &restErr) && restErr.Message != "" {
		return &appErrors.ProviderError{
			Provider: ProviderTwilio,
			Message:  restErr.Message,
			Err:      err,
		}
	}
	return appErrors.NewProviderError(ProviderTwilio, err)
}
