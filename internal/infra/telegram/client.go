// internal/infra/telegram/client.go
package telegram

import (
	"context"

	"gopkg.in/telebot.v3"
)

// messageSender is the subset of *telebot.Bot the adapter needs.
type messageSender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

// TelebotAdapter sends messages through gopkg.in/telebot.v3 and implements app.Alerter for the admin chat.
type TelebotAdapter struct {
	bot         messageSender
	adminChatID int64
}

func NewTelebotAdapter(b *telebot.Bot, adminChatID int64) *TelebotAdapter {
	return &TelebotAdapter{bot: b, adminChatID: adminChatID}
}

// SendMessage sends a text message to the specified recipient.
func (tba *TelebotAdapter) SendMessage(recipientChatID int64, text string, options *telebot.SendOptions) error {
	if options == nil {
		options = &telebot.SendOptions{}
	}

	recipient := &telebot.User{ID: recipientChatID} // Admins talk to the bot in a direct chat
	_, err := tba.bot.Send(recipient, text, options)
	return err
}

// Alert sends text to the admin chat.
func (tba *TelebotAdapter) Alert(_ context.Context, text string) error {
	return tba.SendMessage(tba.adminChatID, "⚠️ "+text, &telebot.SendOptions{DisableWebPagePreview: true})
}
