// internal/infra/telegram/client.go
package telegram

import (
	"context"
	"fmt"

	"family_billing_bot/internal/domain/delivery"

	"gopkg.in/telebot.v3"
)

// TelebotNotifier implements the delivery.Notifier interface using the
// gopkg.in/telebot.v3 library.
type TelebotNotifier struct {
	bot *telebot.Bot
}

func NewTelebotNotifier(b *telebot.Bot) *TelebotNotifier {
	return &TelebotNotifier{bot: b}
}

// Send delivers a reminder to the recipient's direct chat. The title goes in
// bold above the body.
func (n *TelebotNotifier) Send(_ context.Context, r delivery.Reminder) error {
	recipient := &telebot.User{ID: r.RecipientChatID}
	text := fmt.Sprintf("*%s*\n%s", r.Title, r.Body)
	_, err := n.bot.Send(recipient, text, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	return err
}
