package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/mvolkov/botplatform/internal/database"
)

// ensureChatConfig loads the stored config for a chat, creating and
// persisting a default one on first contact. The default thresholds
// come from the application's moderation settings.
func ensureChatConfig(ctx context.Context, deps HandlerDeps, chat models.Chat) (*database.BotConfig, error) {
	botID := deps.BotID()
	if botID == 0 {
		return nil, fmt.Errorf("bot identity not initialized")
	}

	cfg, err := deps.Store.GetBotConfig(ctx, botID, chat.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat config: %w", err)
	}
	if cfg != nil {
		return cfg, nil
	}

	mod := deps.Config.Moderation
	cfg = database.NewDefaultBotConfig(botID, chat.ID)
	cfg.ChatTitle = chat.Title
	cfg.ChatType = string(chat.Type)
	cfg.MaxMessageLength = mod.MaxMessageLength
	cfg.MaxExclamations = mod.MaxExclamations
	cfg.WarnThreshold = mod.WarnThreshold
	cfg.MuteDuration = mod.MuteDuration

	if err := deps.Store.SaveBotConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to save default chat config: %w", err)
	}

	deps.Logger.InfoContext(ctx, "Created default config for chat", "chat_id", chat.ID, "chat_title", chat.Title)
	return cfg, nil
}
