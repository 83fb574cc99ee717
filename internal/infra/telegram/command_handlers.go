// internal/infra/telegram/command_handlers.go
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"family_billing_bot/internal/app"
	"family_billing_bot/internal/domain/billing"
	"family_billing_bot/internal/domain/member"
	idb "family_billing_bot/internal/infra/database"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterCommandHandlers wires the member-facing commands: /start, /help,
// /status (card cycles) and /due (upcoming recurring obligations).
func RegisterCommandHandlers(
	ctx context.Context,
	b *telebot.Bot,
	cardService *app.CardService,
	recurringService *app.RecurringService,
	memberRepo member.Repository,
	adminTelegramID int64,
	baseLogger *logrus.Entry,
) {
	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := baseLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			return c.Send(fmt.Sprintf("Hi %s! I track your family's cards and recurring payments. Use /help for commands.", c.Sender().FirstName))
		}

		m, err := memberRepo.GetByTelegramID(ctx, senderID)
		if err == nil {
			if m.IsActive {
				return c.Send(fmt.Sprintf("Hi %s! I'll remind you about due payments and card closings. Try /status or /due.", m.FirstName))
			}
			return c.Send("Your account is inactive. Ask the family admin to reactivate it.")
		} else if err != idb.ErrMemberNotFound {
			logCtx.WithError(err).Error("Error checking member status")
			return c.Send("Something went wrong checking your status. Please try again later.")
		}
		return c.Send("Hi! I'm a family billing reminder bot. Ask the family admin to add you.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		baseLogger.WithField("command", "/help").WithField("sender_id", senderID).Info("Processing /help command")

		var help strings.Builder
		help.WriteString("Available commands:\n\n")
		help.WriteString("`/status` - Active cycle and spend of every card.\n")
		help.WriteString("`/due` - Recurring payments due in the next 30 days, with Paid/Skip buttons.\n")
		help.WriteString("`/purchase <Instrument>|<amount>|<title>[|<installments>]` - Record a card purchase, optionally split into monthly installments.\n")
		if senderID == adminTelegramID {
			help.WriteString("\nAdmin commands:\n\n")
			help.WriteString("`/add_member <TelegramID> <FirstName> [LastName]`\n")
			help.WriteString("`/remove_member <TelegramID>`\n")
			help.WriteString("`/list_members [all]`\n")
			help.WriteString("`/set_card <Instrument>|<fixed|last_business_day>|<closingDay>|<dueGap>`\n")
			help.WriteString("`/set_override <Instrument>|<YYYY-MM>|<closing YYYY-MM-DD>|<due YYYY-MM-DD>`\n")
		}
		return c.Send(help.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/status", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/status").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /status command")

		views, err := cardService.StatusAll(ctx, time.Now())
		if err != nil {
			logCtx.WithError(err).Error("Failed to compute card statuses")
			return c.Send("Could not compute card statuses. Please try again later.")
		}
		if len(views) == 0 {
			return c.Send("No cards configured yet.")
		}

		var msg strings.Builder
		for _, v := range views {
			msg.WriteString(fmt.Sprintf("*%s*", v.Config.Instrument))
			if v.Config.BankName != "" {
				msg.WriteString(fmt.Sprintf(" (%s)", v.Config.BankName))
			}
			msg.WriteString("\n")
			msg.WriteString(fmt.Sprintf("Cycle: %s - %s\n",
				v.Status.CycleStart.Format("Jan 2"), v.Status.ClosingDate.Format("Jan 2")))
			msg.WriteString(fmt.Sprintf("Spend so far: %s", v.Status.CurrentSpend.StringFixed(2)))
			if !v.Config.Limit.IsZero() {
				msg.WriteString(fmt.Sprintf(" of %s", v.Config.Limit.StringFixed(2)))
			}
			msg.WriteString("\n")
			msg.WriteString(fmt.Sprintf("Closes in %d days, payment due %s\n\n",
				v.Status.DaysToClose, v.Status.DueDate.Format("Jan 2")))
		}
		return c.Send(msg.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	b.Handle("/purchase", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := baseLogger.WithField("command", "/purchase").WithField("sender_id", senderID)
		logCtx.Info("Processing /purchase command")

		var memberID int64
		m, err := memberRepo.GetByTelegramID(ctx, senderID)
		switch {
		case err == nil && m.IsActive:
			memberID = m.ID
		case err == nil:
			return c.Send("Your account is inactive. Ask the family admin to reactivate it.")
		case err == idb.ErrMemberNotFound && senderID == adminTelegramID:
			// The admin can record shared purchases without a member record.
		case err == idb.ErrMemberNotFound:
			return c.Send("Ask the family admin to add you first.")
		default:
			logCtx.WithError(err).Error("Error checking member status")
			return c.Send("Something went wrong. Please try again later.")
		}

		parts := strings.Split(c.Message().Payload, "|")
		if len(parts) < 3 || len(parts) > 4 {
			return c.Send("Usage: `/purchase <Instrument>|<amount>|<title>[|<installments>]`",
				&telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}
		instrument := billing.InstrumentID(strings.TrimSpace(parts[0]))
		amount, err := decimal.NewFromString(strings.TrimSpace(parts[1]))
		if err != nil {
			return c.Send("Invalid amount. Use a plain number like 149.99.")
		}
		title := strings.TrimSpace(parts[2])
		installments := 1
		if len(parts) == 4 {
			installments, err = strconv.Atoi(strings.TrimSpace(parts[3]))
			if err != nil {
				return c.Send("Invalid installment count. Use a whole number like 3.")
			}
		}

		txs, err := cardService.RecordPurchase(ctx, memberID, instrument, amount, title, installments, time.Now())
		switch {
		case err == app.ErrInvalidAmount:
			return c.Send("Amount must be positive.")
		case err == app.ErrInvalidInstallments:
			return c.Send("Installment count must be at least 1.")
		case errors.Is(err, idb.ErrCardNotFound):
			return c.Send(fmt.Sprintf("No card configured for %q. Ask the admin to /set_card it first.", instrument))
		case err != nil:
			logCtx.WithError(err).Error("Failed to record purchase")
			return c.Send("Could not record the purchase. Please try again later.")
		}

		if len(txs) == 1 {
			return c.Send(fmt.Sprintf("Recorded %s on %s.", txs[0].Amount.StringFixed(2), instrument))
		}
		return c.Send(fmt.Sprintf("Recorded %s on %s in %d monthly installments of %s (last %s).",
			amount.StringFixed(2), instrument, len(txs),
			txs[0].Amount.StringFixed(2), txs[len(txs)-1].Amount.StringFixed(2)))
	})

	b.Handle("/due", func(c telebot.Context) error {
		logCtx := baseLogger.WithField("command", "/due").WithField("sender_id", c.Sender().ID)
		logCtx.Info("Processing /due command")

		horizon := time.Now().AddDate(0, 0, 30)
		patterns, err := recurringService.Upcoming(ctx, horizon)
		if err != nil {
			logCtx.WithError(err).Error("Failed to list upcoming patterns")
			return c.Send("Could not list upcoming payments. Please try again later.")
		}
		if len(patterns) == 0 {
			return c.Send("Nothing due in the next 30 days.")
		}

		for _, p := range patterns {
			markup := &telebot.ReplyMarkup{}
			due := p.NextDueDate.Format("2006-01-02")
			btnPaid := markup.Data("Mark paid", "rec_paid", fmt.Sprintf("%d|%s", p.ID, due))
			btnSkip := markup.Data("Skip", "rec_skip", fmt.Sprintf("%d|%s", p.ID, due))
			markup.Inline(markup.Row(btnPaid, btnSkip))

			text := fmt.Sprintf("*%s*\n%s %s, due %s",
				p.Title, p.Amount.StringFixed(2), p.Currency, p.NextDueDate.Format("Mon Jan 2"))
			if err := c.Send(text, markup, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown}); err != nil {
				logCtx.WithError(err).WithField("pattern_id", p.ID).Error("Failed to send due item")
			}
		}
		return nil
	})
}
