package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"family_billing_bot/internal/app"
	"family_billing_bot/internal/infra/config"
	idb "family_billing_bot/internal/infra/database"
	"family_billing_bot/internal/infra/logger"
	"family_billing_bot/internal/infra/scheduler"
	"family_billing_bot/internal/infra/telegram"

	"gopkg.in/telebot.v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("FATAL: Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	log := logger.Get()
	log.WithField("environment", cfg.Environment).Info("Family billing bot starting")

	// Database
	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("FATAL: Could not connect to database: %v", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// Repositories
	memberRepo := idb.NewPostgresMemberRepository(db)
	cardRepo := idb.NewPostgresCardRepository(db)
	patternRepo := idb.NewPostgresPatternRepository(db)
	ledgerRepo := idb.NewPostgresLedgerRepository(db)
	log.Info("Repositories initialized")

	// Telegram bot
	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := log.WithError(err)
			if c != nil && c.Sender() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID)
			}
			entry.Error("Telebot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		log.Fatalf("FATAL: Could not create Telegram bot: %v", err)
	}
	notifier := telegram.NewTelebotNotifier(bot)

	// Application services
	adminService := app.NewAdminService(memberRepo, cardRepo, cfg.AdminTelegramID)
	cardService := app.NewCardService(cardRepo, ledgerRepo, cfg.DefaultCurrency, log.WithField("service", "card"))
	recurringService := app.NewRecurringService(patternRepo, ledgerRepo, log.WithField("service", "recurring"))
	reminderService := app.NewReminderService(
		patternRepo, ledgerRepo, cardRepo, memberRepo, notifier,
		log.WithField("service", "reminder"), cfg.AfterCloseMaxDays,
	)
	log.Info("Application services initialized")

	// Scheduler
	reminderScheduler := scheduler.NewReminderScheduler(
		reminderService,
		log.WithField("component", "scheduler"),
		cfg.CronSpecReminders,
		cfg.CronSpecMiddayRecheck,
	)
	if err := reminderScheduler.Start(); err != nil {
		log.Fatalf("FATAL: Could not start reminder scheduler: %v", err)
	}

	// Handlers
	ctx := context.Background()
	telegram.RegisterCommandHandlers(ctx, bot, cardService, recurringService, memberRepo, cfg.AdminTelegramID, log.WithField("component", "commands"))
	telegram.RegisterResolveHandlers(ctx, bot, recurringService, log.WithField("component", "resolve"))
	telegram.RegisterAdminHandlers(ctx, bot, adminService, cfg.AdminTelegramID, log.WithField("component", "admin"))
	log.Info("Bot handlers registered")

	go bot.Start()
	log.Info("Application setup complete; bot and scheduler running")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down application")
	reminderScheduler.Stop()
	bot.Stop()
	log.Info("Application shut down gracefully")
}
