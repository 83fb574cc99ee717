// internal/infra/telegram/resolve_handlers.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"family_billing_bot/internal/app"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterResolveHandlers wires the Paid/Skip inline buttons attached to /due
// items. Callback data carries the pattern ID and the due date being
// resolved, so a button pressed twice (or after another member already
// resolved the occurrence) is rejected instead of double-advancing.
func RegisterResolveHandlers(ctx context.Context, b *telebot.Bot, recurringService *app.RecurringService, baseLogger *logrus.Entry) {
	resolve := func(c telebot.Context, markPaid bool) error {
		data := strings.TrimSpace(c.Data())
		logCtx := baseLogger.WithFields(logrus.Fields{
			"handler":   "resolve_callback",
			"sender_id": c.Sender().ID,
			"paid":      markPaid,
		})

		parts := strings.Split(data, "|") // <patternID>|<YYYY-MM-DD>
		if len(parts) != 2 {
			logCtx.WithField("data", data).Warn("Invalid callback data format")
			return c.Respond(&telebot.CallbackResponse{Text: "Could not process this action."})
		}
		patternID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			logCtx.WithField("data", data).Warn("Invalid pattern ID in callback")
			return c.Respond(&telebot.CallbackResponse{Text: "Could not process this action."})
		}
		confirmedDue, err := time.Parse("2006-01-02", parts[1])
		if err != nil {
			logCtx.WithField("data", data).Warn("Invalid due date in callback")
			return c.Respond(&telebot.CallbackResponse{Text: "Could not process this action."})
		}

		res, err := recurringService.Resolve(ctx, patternID, confirmedDue, markPaid, time.Now())
		if err != nil {
			if err == app.ErrStaleResolution {
				return c.Respond(&telebot.CallbackResponse{Text: "Already resolved."})
			}
			logCtx.WithError(err).WithField("pattern_id", patternID).Error("Failed to resolve occurrence")
			return c.Respond(&telebot.CallbackResponse{Text: "Something went wrong."})
		}

		verb := "skipped"
		if markPaid {
			verb = "marked paid"
		}
		if err := c.Respond(&telebot.CallbackResponse{Text: "Done."}); err != nil {
			return err
		}
		return c.Edit(fmt.Sprintf("%s %s. Next due %s.",
			res.Pattern.Title, verb, res.Pattern.NextDueDate.Format("Mon Jan 2")))
	}

	// Uniques match the buttons built by the /due handler.
	paidBtn := telebot.Btn{Unique: "rec_paid"}
	skipBtn := telebot.Btn{Unique: "rec_skip"}
	b.Handle(&paidBtn, func(c telebot.Context) error { return resolve(c, true) })
	b.Handle(&skipBtn, func(c telebot.Context) error { return resolve(c, false) })
}
