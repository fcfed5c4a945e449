// Package main contains the entrypoint for the bot platform.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/mvolkov/botplatform/internal/adetect"
	"github.com/mvolkov/botplatform/internal/bot"
	"github.com/mvolkov/botplatform/internal/bot/handlers"
	"github.com/mvolkov/botplatform/internal/bot/tasks"
	"github.com/mvolkov/botplatform/internal/classify"
	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/crm"
	"github.com/mvolkov/botplatform/internal/database"
	"github.com/mvolkov/botplatform/internal/logger"
	"github.com/mvolkov/botplatform/internal/telegram"
	"github.com/mvolkov/botplatform/internal/webserver"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// database, detector, CRM client, Telegram bot, web server, scheduler),
// handles graceful shutdown, and returns an exit code (0 success, 1 failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	var detector classify.Detector = adetect.Disabled{}
	if cfg.AI.APIKey != "" {
		gemini, err := adetect.NewGemini(ctx, cfg.AI, log)
		if err != nil {
			log.Error("Failed to initialize advertisement detector", "error", err)
			return 1
		}
		detector = gemini
	} else {
		log.Info("No AI API key configured, advertisement detection disabled")
	}
	classifier := classify.New(detector, log)

	var crmClient *crm.Client
	if cfg.CRM.BaseURL != "" {
		crmClient, err = crm.NewClient(cfg.CRM.BaseURL, cfg.CRM.Token, cfg.CRM.Timeout, log)
		if err != nil {
			log.Error("Failed to initialize CRM client", "error", err)
			return 1
		}
	} else {
		log.Info("No CRM base URL configured, ticketing integration disabled")
	}

	hDeps := handlers.HandlerDeps{
		Logger:     log,
		Config:     cfg,
		Store:      store,
		Classifier: classifier,
		CRM:        crmClient,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	sender := telegram.NewSender(tg)

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
		Sender: sender,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	web := webserver.NewServer(cfg.Web, store, sender, cfg.Telegram.BotInfo.ID, log)

	app := bot.NewBot(log, cfg, store, tg, sched, web)

	log.Info("Starting bot platform...")
	runErr := app.Run(ctx)
	log.Info("Run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot platform stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot platform stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
