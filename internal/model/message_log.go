// internal/model/message_log.go
package model

import "time"

type MessageStatus string

const (
	MessageStatusSent   MessageStatus = "sent"
	MessageStatusFailed MessageStatus = "failed"
)

// MessageLog is the durable audit row for one send attempt.
type MessageLog struct {
	ID                string        `db:"id" json:"id"`
	WorkspaceID       string        `db:"workspace_id" json:"workspace_id"`
	UserID            string        `db:"user_id" json:"user_id"`
	Channel           Channel       `db:"channel" json:"channel"`
	Provider          string        `db:"provider" json:"provider"`
	Status            MessageStatus `db:"status" json:"status"`
	CampaignID        *string       `db:"campaign_id" json:"campaign_id,omitempty"`
	ContactID         *string       `db:"contact_id" json:"contact_id,omitempty"`
	ProviderMessageID *string       `db:"provider_message_id" json:"provider_message_id,omitempty"`
	ErrorMessage      *string       `db:"error_message" json:"error_message,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
}

// DailySummary is one day of sent-message counts per channel.
type DailySummary struct {
	Date     string `json:"date"`
	Emails   int    `json:"emails"`
	WhatsApp int    `json:"whatsapp"`
}
