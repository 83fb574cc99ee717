package delivery

import "context"

// Reminder is one composed notification ready for dispatch. The delivery
// channel (Telegram here, anything else behind another Notifier) is the
// adapter's concern.
type Reminder struct {
	RecipientChatID int64
	Title           string
	Body            string
}

// Notifier dispatches composed reminders. It decouples the application
// services from the concrete bot library.
type Notifier interface {
	Send(ctx context.Context, r Reminder) error
}
