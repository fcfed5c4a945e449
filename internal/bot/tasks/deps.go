// Package tasks implements the scheduled tasks of the bot platform:
// broadcast delivery, temp ban expiry, data retention cleanup, and
// database maintenance.
package tasks

import (
	"context"
	"log/slog"

	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/database"
)

// Sender delivers a text message to a chat. Satisfied by the Telegram
// sender in production and by fakes in tests.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
	Sender Sender
}
