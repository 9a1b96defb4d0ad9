// internal/model/campaign.go
package model

import "time"

// Channel is the delivery channel of a campaign. It never changes once set.
type Channel string

const (
	ChannelEmail    Channel = "email"
	ChannelWhatsApp Channel = "whatsapp"
)

func (c Channel) Valid() bool {
	return c == ChannelEmail || c == ChannelWhatsApp
}

type CampaignStatus string

const (
	CampaignStatusDraft     CampaignStatus = "draft"
	CampaignStatusScheduled CampaignStatus = "scheduled"
	CampaignStatusSent      CampaignStatus = "sent"
	CampaignStatusCancelled CampaignStatus = "cancelled"
)

type Campaign struct {
	ID          string         `db:"id" json:"id"`
	WorkspaceID string         `db:"workspace_id" json:"workspace_id"`
	Name        string         `db:"name" json:"name"`
	Channel     Channel        `db:"channel" json:"channel"`
	Status      CampaignStatus `db:"status" json:"status"`
	Subject     *string        `db:"subject" json:"subject"`
	Body        *string        `db:"body" json:"body"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time     `db:"updated_at" json:"updated_at,omitempty"`
}

// SubjectText returns the subject or "" when unset.
func (c *Campaign) SubjectText() string {
	if c.Subject == nil {
		return ""
	}
	return *c.Subject
}

// BodyText returns the body or "" when unset.
func (c *Campaign) BodyText() string {
	if c.Body == nil {
		return ""
	}
	return *c.Body
}
