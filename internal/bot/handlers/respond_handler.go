package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewRespondHandler returns a handler for the /respond command:
// /respond <trigger> <reply...> adds an auto-response. The trigger is a
// single word; multi-word triggers are managed through the admin API.
func NewRespondHandler(deps HandlerDeps) bot.HandlerFunc {
	return respondHandler{deps}.Handle
}

type respondHandler struct {
	deps HandlerDeps
}

func (h respondHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "respond")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := strings.SplitN(update.Message.Text, " ", 3)
	if len(args) < 3 || strings.TrimSpace(args[2]) == "" {
		h.reply(ctx, b, chatID, "Usage: /respond <trigger> <reply>")
		return
	}
	trigger := strings.ToLower(args[1])
	replyText := strings.TrimSpace(args[2])

	cfg, err := ensureChatConfig(ctx, h.deps, update.Message.Chat)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat config", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, h.deps.Config.Telegram.Messages.GeneralError)
		return
	}

	// Map assignment keeps triggers unique: setting an existing trigger
	// replaces its reply.
	cfg.AutoResponses[trigger] = replyText
	if err := h.deps.Store.SaveBotConfig(ctx, cfg); err != nil {
		log.ErrorContext(ctx, "Failed to save auto-response", "chat_id", chatID, "trigger", trigger, "error", err)
		h.reply(ctx, b, chatID, h.deps.Config.Telegram.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Auto-response added", "chat_id", chatID, "trigger", trigger)
	h.reply(ctx, b, chatID, fmt.Sprintf("Will reply to %q with %q.", trigger, replyText))
}

func (h respondHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
