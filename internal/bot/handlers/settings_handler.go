package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSettingsHandler returns a handler for the /settings command.
// It shows the chat's current moderation configuration.
func NewSettingsHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

type settingsHandler struct {
	deps HandlerDeps
}

func (h settingsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	cfg, err := ensureChatConfig(ctx, h.deps, update.Message.Chat)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat config", "chat_id", chatID, "error", err)
		h.sendError(ctx, b, chatID)
		return
	}

	var sb strings.Builder
	sb.WriteString("Chat settings:\n")
	fmt.Fprintf(&sb, "Max message length: %d\n", cfg.MaxMessageLength)
	fmt.Fprintf(&sb, "Max exclamations: %d\n", cfg.MaxExclamations)
	fmt.Fprintf(&sb, "Warnings before mute: %d\n", cfg.WarnThreshold)
	fmt.Fprintf(&sb, "Mute duration: %s\n", time.Duration(cfg.MuteDuration)*time.Second)
	fmt.Fprintf(&sb, "Blocked words: %d\n", len(cfg.BlockedWords))
	fmt.Fprintf(&sb, "Auto-responses: %d\n", len(cfg.AutoResponses))
	fmt.Fprintf(&sb, "Messages seen: %d\n", cfg.MessageCount)

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: sb.String()}); err != nil {
		log.ErrorContext(ctx, "Failed to send settings message", "error", err, "chat_id", chatID)
	}
}

func (h settingsHandler) sendError(ctx context.Context, b *bot.Bot, chatID int64) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Telegram.Messages.GeneralError})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send error message", "error", err, "chat_id", chatID)
	}
}
