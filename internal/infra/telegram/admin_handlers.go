package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"family_billing_bot/internal/app"
	"family_billing_bot/internal/domain/billing"
	idb "family_billing_bot/internal/infra/database"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterAdminHandlers registers handlers for admin commands: family member
// and card configuration management.
func RegisterAdminHandlers(ctx context.Context, b *telebot.Bot, adminService *app.AdminService, adminTelegramID int64, baseLogger *logrus.Entry) {
	b.Handle("/add_member", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/add_member",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		args := c.Args()
		// Expected format: /add_member <TelegramID> <FirstName> [LastName]
		if len(args) < 2 || len(args) > 3 {
			handlerLogger.WithField("args_count", len(args)).Warn("Invalid command format")
			return c.Send("Usage: /add_member <TelegramID> <FirstName> [LastName]")
		}

		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Telegram ID must be a number.")
		}
		firstName := args[1]
		if strings.TrimSpace(firstName) == "" {
			return c.Send("First name cannot be empty.")
		}
		var lastName string
		if len(args) == 3 {
			lastName = args[2]
		}

		newMember, err := adminService.AddMember(ctx, c.Sender().ID, telegramID, firstName, lastName)
		if err != nil {
			switch err {
			case app.ErrMemberAlreadyExists:
				return c.Send("A member with that Telegram ID already exists.")
			case app.ErrAdminNotAuthorized:
				return c.Send("You are not allowed to run this command.")
			default:
				handlerLogger.WithError(err).Error("Failed to add member")
				return c.Send("Could not add the member. Please try again later.")
			}
		}
		return c.Send(fmt.Sprintf("Added %s (ID %d). They will now receive reminders.", newMember.DisplayName(), newMember.TelegramID))
	})

	b.Handle("/remove_member", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/remove_member",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Usage: /remove_member <TelegramID>")
		}
		telegramID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return c.Send("Telegram ID must be a number.")
		}

		removed, err := adminService.RemoveMember(ctx, c.Sender().ID, telegramID)
		if err != nil {
			switch err {
			case idb.ErrMemberNotFound:
				return c.Send("No member with that Telegram ID.")
			case app.ErrMemberAlreadyInactive:
				return c.Send(fmt.Sprintf("%s is already inactive.", removed.DisplayName()))
			default:
				handlerLogger.WithError(err).Error("Failed to remove member")
				return c.Send("Could not remove the member. Please try again later.")
			}
		}
		return c.Send(fmt.Sprintf("Deactivated %s. They will no longer receive reminders.", removed.DisplayName()))
	})

	b.Handle("/list_members", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/list_members",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		includeInactive := len(c.Args()) == 1 && c.Args()[0] == "all"
		members, err := adminService.ListMembers(ctx, c.Sender().ID, includeInactive)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to list members")
			return c.Send("Could not list members. Please try again later.")
		}
		if len(members) == 0 {
			return c.Send("No members found.")
		}

		var msg strings.Builder
		msg.WriteString("Family members:\n")
		for _, m := range members {
			state := "active"
			if !m.IsActive {
				state = "inactive"
			}
			msg.WriteString(fmt.Sprintf("- %s (ID %d, %s)\n", m.DisplayName(), m.TelegramID, state))
		}
		return c.Send(msg.String())
	})

	b.Handle("/set_card", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/set_card",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		// Pipe-separated so instrument names can contain spaces:
		// /set_card Visa Gold|fixed|25|10[|<bank>|<limit>]
		payload := strings.TrimSpace(c.Message().Payload)
		parts := strings.Split(payload, "|")
		if len(parts) < 4 {
			return c.Send("Usage: /set_card <Instrument>|<fixed|last_business_day>|<closingDay>|<dueGap>[|<bank>|<limit>]")
		}

		rule := billing.ClosingRule(strings.TrimSpace(parts[1]))
		if rule != billing.ClosingRuleFixed && rule != billing.ClosingRuleLastBusinessDay {
			return c.Send("Closing rule must be 'fixed' or 'last_business_day'.")
		}
		closingDay, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return c.Send("Closing day must be a number.")
		}
		dueGap, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil || dueGap < 0 {
			return c.Send("Due gap must be a non-negative number of days.")
		}

		cfg := &billing.CardConfig{
			Instrument:    billing.InstrumentID(strings.TrimSpace(parts[0])),
			ClosingRule:   rule,
			ClosingDay:    closingDay,
			PaymentDueGap: dueGap,
		}
		if len(parts) > 4 {
			cfg.BankName = strings.TrimSpace(parts[4])
		}
		if len(parts) > 5 {
			if cfg.Limit, err = decimal.NewFromString(strings.TrimSpace(parts[5])); err != nil {
				return c.Send("Credit limit must be a number.")
			}
		}

		if err := adminService.SaveCard(ctx, c.Sender().ID, cfg); err != nil {
			if err == app.ErrInvalidClosingDay {
				return c.Send("Closing day must be between 1 and 31.")
			}
			handlerLogger.WithError(err).Error("Failed to save card config")
			return c.Send("Could not save the card. Please try again later.")
		}
		return c.Send(fmt.Sprintf("Card %q saved.", cfg.Instrument))
	})

	b.Handle("/set_override", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/set_override",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if c.Sender().ID != adminTelegramID {
			handlerLogger.Warn("Unauthorized access attempt")
			return c.Send("You are not allowed to run this command.")
		}

		// /set_override Visa Gold|2025-03|2025-03-22|2025-04-02
		payload := strings.TrimSpace(c.Message().Payload)
		parts := strings.Split(payload, "|")
		if len(parts) != 4 {
			return c.Send("Usage: /set_override <Instrument>|<YYYY-MM>|<closing YYYY-MM-DD>|<due YYYY-MM-DD>")
		}

		monthRef, err := time.Parse("2006-01", strings.TrimSpace(parts[1]))
		if err != nil {
			return c.Send("Month must be formatted YYYY-MM.")
		}
		closing, err := time.Parse("2006-01-02", strings.TrimSpace(parts[2]))
		if err != nil {
			return c.Send("Closing date must be formatted YYYY-MM-DD.")
		}
		due, err := time.Parse("2006-01-02", strings.TrimSpace(parts[3]))
		if err != nil {
			return c.Send("Due date must be formatted YYYY-MM-DD.")
		}

		instrument := billing.InstrumentID(strings.TrimSpace(parts[0]))
		err = adminService.SetOverride(ctx, c.Sender().ID, instrument, monthRef.Year(), monthRef.Month(), closing, due)
		if err != nil {
			handlerLogger.WithError(err).Error("Failed to set override")
			return c.Send("Could not save the override. Check the instrument name and try again.")
		}
		return c.Send(fmt.Sprintf("Override for %q in %s saved.", instrument, monthRef.Format("January 2006")))
	})
}
