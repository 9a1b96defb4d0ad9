// internal/model/broadcast.go
package model

// MaxErrorSamples caps BatchSummary.Errors; the Failed counter is not capped.
const MaxErrorSamples = 10

// Caller is the authenticated user a request runs on behalf of.
type Caller struct {
	UserID      string
	Email       string
	WorkspaceID string
}

type RenderedMessage struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// DeliveryOutcome is the result of a single send attempt. It is not persisted
// directly; the outcome logger turns it into a MessageLog.
type DeliveryOutcome struct {
	WorkspaceID       string
	UserID            string
	CampaignID        string
	ContactID         string
	Channel           Channel
	Provider          string
	Address           string
	Success           bool
	ProviderMessageID string
	Error             string
}

type DeliveryError struct {
	Address string `json:"address"`
	Message string `json:"message"`
}

type BatchSummary struct {
	Success bool            `json:"success"`
	Total   int             `json:"total"`
	Sent    int             `json:"sent"`
	Failed  int             `json:"failed"`
	Errors  []DeliveryError `json:"errors"`
}

// AddFailure counts a failure and keeps it as a sample while there is room.
func (s *BatchSummary) AddFailure(address, message string) {
	s.Failed++
	if len(s.Errors) < MaxErrorSamples {
		s.Errors = append(s.Errors, DeliveryError{Address: address, Message: message})
	}
}
