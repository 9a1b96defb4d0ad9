package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/unclebandit/campaign-broadcaster/internal/logger"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
	"github.com/unclebandit/campaign-broadcaster/internal/sender"
)

// MessageService sends one-off messages outside any campaign, for checking
// that a channel's provider is set up. Nothing is written to the message log.
type MessageService struct {
	Senders *sender.Registry
	Logger  *zap.Logger
}

// SendEmail delivers a plain-text email to an arbitrary address.
func (s *MessageService) SendEmail(ctx context.Context, caller model.Caller, to, subject, message string) (string, error) {
	return s.send(ctx, caller, model.ChannelEmail, to, model.RenderedMessage{Subject: subject, Body: message})
}

// SendWhatsApp delivers a WhatsApp message and returns the provider's id.
func (s *MessageService) SendWhatsApp(ctx context.Context, caller model.Caller, to, message string) (string, error) {
	return s.send(ctx, caller, model.ChannelWhatsApp, to, model.RenderedMessage{Body: message})
}

func (s *MessageService) send(ctx context.Context, caller model.Caller, channel model.Channel, to string, msg model.RenderedMessage) (string, error) {
	snd := s.Senders.For(channel)
	id, err := snd.Send(ctx, to, msg)
	log := logger.OrNop(s.Logger).With(
		zap.String("channel", string(channel)),
		zap.String("provider", snd.Provider()),
		zap.String("user_id", caller.UserID),
	)
	if err != nil {
		log.Warn("one-off send failed", zap.String("error", failureMessage(err)))
		return "", err
	}
	log.Info("one-off message sent", zap.String("provider_message_id", id))
	return id, nil
}
