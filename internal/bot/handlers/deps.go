package handlers

import (
	"log/slog"

	"github.com/mvolkov/botplatform/internal/classify"
	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/crm"
	"github.com/mvolkov/botplatform/internal/database"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
// CRM may be nil when ticketing integration is not configured.
type HandlerDeps struct {
	Logger     *slog.Logger
	Config     *config.Config
	Store      database.Store
	Classifier *classify.Classifier
	CRM        *crm.Client
}

// BotID returns the running bot's own user ID, known after startup.
func (d HandlerDeps) BotID() int64 {
	if d.Config.Telegram.BotInfo == nil {
		return 0
	}
	return d.Config.Telegram.BotInfo.ID
}
