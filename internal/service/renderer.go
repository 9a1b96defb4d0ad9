// internal/service/renderer.go
package service

import (
	"fmt"
	"strings"

	"github.com/unclebandit/campaign-broadcaster/internal/model"
)

// Render builds the message one contact receives. The only personalization
// is a greeting with the contact's name.
func Render(campaign *model.Campaign, contact *model.Contact) model.RenderedMessage {
	body := campaign.BodyText()
	if body == "" {
		body = fallbackBody(campaign)
	}
	if name := displayName(contact); name != "" {
		body = "Hi " + name + ",\n\n" + body
	}

	msg := model.RenderedMessage{Body: body}
	if campaign.Channel == model.ChannelEmail {
		msg.Subject = campaign.SubjectText()
		if msg.Subject == "" {
			msg.Subject = "Campaign: " + campaign.Name
		}
	}
	return msg
}

// RenderTest builds the email sent to the caller by the test-send endpoint.
func RenderTest(campaign *model.Campaign) model.RenderedMessage {
	msg := model.RenderedMessage{
		Subject: campaign.SubjectText(),
		Body:    campaign.BodyText(),
	}
	if msg.Subject == "" {
		msg.Subject = "Test: " + campaign.Name
	}
	if msg.Body == "" {
		msg.Body = fmt.Sprintf("This is a test email for campaign \"%s\".", campaign.Name)
	}
	return msg
}

func fallbackBody(campaign *model.Campaign) string {
	if campaign.Channel == model.ChannelWhatsApp {
		return fmt.Sprintf("This is a WhatsApp broadcast for campaign \"%s\".", campaign.Name)
	}
	return fmt.Sprintf("This is a broadcast email for campaign \"%s\".", campaign.Name)
}

func displayName(contact *model.Contact) string {
	if contact == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	for _, p := range []string{contact.First(), contact.Last()} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
