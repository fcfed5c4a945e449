// Package bot implements the core lifecycle management and component
// orchestration for the bot platform.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/database"
	"github.com/mvolkov/botplatform/internal/webserver"
)

// Bot represents the main application and manages its components' lifecycle:
// the Telegram listener, the task scheduler, and the web server.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	store     database.Store
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	web       *webserver.Server
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	web *webserver.Server,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		store:     store,
		tgBot:     tgBot,
		scheduler: scheduler,
		web:       web,
	}
}

// Run starts all components and blocks until the context is cancelled
// or a component fails. It returns an error if any component fails
// during startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")

		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		if err := b.scheduler.Start(); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}

		return nil
	})

	g.Go(func() error {
		return b.web.Run(gCtx)
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
