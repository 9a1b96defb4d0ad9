// internal/model/contact.go
package model

import "time"

type Contact struct {
	ID          string     `db:"id" json:"id"`
	WorkspaceID string     `db:"workspace_id" json:"workspace_id"`
	Email       *string    `db:"email" json:"email"`
	Phone       *string    `db:"phone" json:"phone"`
	FirstName   *string    `db:"first_name" json:"first_name"`
	LastName    *string    `db:"last_name" json:"last_name"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   *time.Time `db:"updated_at" json:"updated_at,omitempty"`
}

// Address returns the contact's address for the channel, or "" if it has none.
func (c *Contact) Address(channel Channel) string {
	switch channel {
	case ChannelEmail:
		return deref(c.Email)
	case ChannelWhatsApp:
		return deref(c.Phone)
	}
	return ""
}

func (c *Contact) First() string { return deref(c.FirstName) }
func (c *Contact) Last() string  { return deref(c.LastName) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
