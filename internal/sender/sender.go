package sender

import (
	"context"
	"errors"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

// Sender delivers one rendered message to one address and returns the
// provider's message id. Implementations make a single attempt per call and
// report failures as *appErrors.ProviderError.
type Sender interface {
	Channel() model.Channel
	Provider() string
	Send(ctx context.Context, address string, msg model.RenderedMessage) (string, error)
}

var errNotConfigured = errors.New("provider not configured")

// disabledSender stands in for a channel whose provider credentials are missing.
type disabledSender struct {
	channel  model.Channel
	provider string
}

func (d *disabledSender) Channel() model.Channel { return d.channel }
func (d *disabledSender) Provider() string       { return d.provider }

func (d *disabledSender) Send(ctx context.Context, address string, msg model.RenderedMessage) (string, error) {
	return "", appErrors.NewProviderError(d.provider, errNotConfigured)
}

// Registry holds one sender per channel.
type Registry struct {
	senders map[model.Channel]Sender
}

func NewRegistry(senders ...Sender) *Registry {
	r := &Registry{senders: make(map[model.Channel]Sender, len(senders))}
	for _, s := range senders {
		r.senders[s.Channel()] = s
	}
	return r
}

// For returns the sender for the channel. A channel with no registered sender
// gets one that fails every send.
func (r *Registry) For(channel model.Channel) Sender {
	if s, ok := r.senders[channel]; ok {
		return s
	}
	return &disabledSender{channel: channel, provider: "none"}
}
