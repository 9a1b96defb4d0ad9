// internal/errors/errors.go
package appErrors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidID        = errors.New("invalid id")
	ErrContactNotFound  = errors.New("contact not found")
	ErrMissingUserEmail = errors.New("user does not have an email address")
)

// ErrCampaignNotFound is returned when a campaign is missing or belongs to
// another workspace.
type ErrCampaignNotFound struct {
	CampaignID string
}

func (e *ErrCampaignNotFound) Error() string {
	return fmt.Sprintf("campaign with ID %s not found", e.CampaignID)
}

// Helper constructor
func NewCampaignNotFound(id string) error {
	return &ErrCampaignNotFound{CampaignID: id}
}

// ErrChannelMismatch means the requested operation does not fit the campaign's channel.
type ErrChannelMismatch struct {
	CampaignChannel string
	Requested       string
	// Operation is the user-facing name of what was attempted, e.g. "Broadcast".
	Operation string
}

func (e *ErrChannelMismatch) Error() string {
	return fmt.Sprintf("%s is only available for %s campaigns (campaign channel is %s)",
		e.Operation, channelLabel(e.Requested), e.CampaignChannel)
}

func NewChannelMismatch(campaignChannel, requested, operation string) error {
	return &ErrChannelMismatch{CampaignChannel: campaignChannel, Requested: requested, Operation: operation}
}

// ErrNoRecipients means the workspace has no contact with an address for the channel.
type ErrNoRecipients struct {
	Channel string
}

func (e *ErrNoRecipients) Error() string {
	return fmt.Sprintf("no eligible contacts for channel %s", e.Channel)
}

func NewNoRecipients(channel string) error {
	return &ErrNoRecipients{Channel: channel}
}

// ProviderError carries a delivery provider's failure for one recipient.
type ProviderError struct {
	Provider string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

func NewProviderError(provider string, err error) error {
	msg := "Unknown error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &ProviderError{Provider: provider, Message: msg, Err: err}
}

// ResolutionError wraps a storage fault while loading recipients.
type ResolutionError struct {
	Err error
}

func (e *ResolutionError) Error() string {
	return "failed to load contacts: " + e.Err.Error()
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// HTTPStatus maps an error kind to a response status.
func HTTPStatus(err error) int {
	var (
		notFound *ErrCampaignNotFound
		mismatch *ErrChannelMismatch
		noRecip  *ErrNoRecipients
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &notFound), errors.Is(err, ErrContactNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidID), errors.Is(err, ErrMissingUserEmail),
		errors.As(err, &mismatch), errors.As(err, &noRecip):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the text shown to API callers. Storage faults are not echoed.
func Message(err error) string {
	var (
		notFound   *ErrCampaignNotFound
		mismatch   *ErrChannelMismatch
		noRecip    *ErrNoRecipients
		resolution *ResolutionError
		providerEr *ProviderError
	)
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case errors.Is(err, ErrInvalidID):
		return "Invalid campaign id"
	case errors.Is(err, ErrContactNotFound):
		return "Contact not found"
	case errors.Is(err, ErrMissingUserEmail):
		return "User does not have an email address"
	case errors.As(err, &notFound):
		return "Campaign not found"
	case errors.As(err, &mismatch):
		return fmt.Sprintf("%s is only available for %s campaigns", mismatch.Operation, channelLabel(mismatch.Requested))
	case errors.As(err, &noRecip):
		if noRecip.Channel == "whatsapp" {
			return "No contacts with phone number found for this workspace"
		}
		return "No contacts with email found for this workspace"
	case errors.As(err, &resolution):
		return "Failed to load contacts"
	case errors.As(err, &providerEr):
		return providerEr.Message
	default:
		return "Internal server error"
	}
}

func channelLabel(channel string) string {
	if channel == "whatsapp" {
		return "WhatsApp"
	}
	return channel
}
