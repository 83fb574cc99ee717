package scheduler

import (
	"context"
	"time"

	"family_billing_bot/internal/app"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// ReminderScheduler runs the reminder evaluation on a cron cadence. Two jobs
// share one evaluation path: the morning run fires the day's reminders, the
// midday recheck retries anything that failed delivery (the service's fired
// set deduplicates the rest). Jobs run sequentially on cron's single
// goroutine, which serializes evaluations as the reminder service requires.
type ReminderScheduler struct {
	cronEngine     *cron.Cron
	reminders      *app.ReminderService
	logger         *logrus.Entry
	cronSpecDaily  string
	cronSpecMidday string
}

func NewReminderScheduler(
	reminders *app.ReminderService,
	logger *logrus.Entry,
	cronSpecDaily string, // e.g. "0 9 * * *"
	cronSpecMiddayRecheck string, // e.g. "0 15 * * *"
) *ReminderScheduler {
	return &ReminderScheduler{
		cronEngine:     cron.New(cron.WithLocation(time.Local)),
		reminders:      reminders,
		logger:         logger,
		cronSpecDaily:  cronSpecDaily,
		cronSpecMidday: cronSpecMiddayRecheck,
	}
}

func (s *ReminderScheduler) Start() error {
	s.logger.Info("Starting reminder scheduler")

	run := func(job string) func() {
		return func() {
			s.logger.WithField("job", job).Info("Cron job triggered for reminder evaluation")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := s.reminders.EvaluateAndNotify(ctx, time.Now()); err != nil {
				s.logger.WithError(err).WithField("job", job).Error("Reminder evaluation failed")
			}
		}
	}

	if _, err := s.cronEngine.AddFunc(s.cronSpecDaily, run("daily")); err != nil {
		return err
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecMidday, run("midday_recheck")); err != nil {
		return err
	}

	s.cronEngine.Start()
	s.logger.Info("Reminder scheduler started with jobs")
	return nil
}

func (s *ReminderScheduler) Stop() {
	s.logger.Info("Stopping reminder scheduler")
	ctx := s.cronEngine.Stop()
	<-ctx.Done()
	s.logger.Info("Reminder scheduler gracefully stopped")
}
