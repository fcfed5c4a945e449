package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewBlockHandler returns a handler for the /block command:
// /block <word> adds a word to the chat's blocked list.
func NewBlockHandler(deps HandlerDeps) bot.HandlerFunc {
	return blockHandler{deps}.Handle
}

type blockHandler struct {
	deps HandlerDeps
}

func (h blockHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "block")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	args := strings.Fields(update.Message.Text)
	if len(args) < 2 {
		h.reply(ctx, b, chatID, "Usage: /block <word>")
		return
	}
	word := strings.ToLower(args[1])

	cfg, err := ensureChatConfig(ctx, h.deps, update.Message.Chat)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat config", "chat_id", chatID, "error", err)
		h.reply(ctx, b, chatID, h.deps.Config.Telegram.Messages.GeneralError)
		return
	}

	for _, existing := range cfg.BlockedWords {
		if strings.EqualFold(existing, word) {
			h.reply(ctx, b, chatID, fmt.Sprintf("%q is already blocked.", word))
			return
		}
	}

	cfg.BlockedWords = append(cfg.BlockedWords, word)
	if err := h.deps.Store.SaveBotConfig(ctx, cfg); err != nil {
		log.ErrorContext(ctx, "Failed to save blocked word", "chat_id", chatID, "word", word, "error", err)
		h.reply(ctx, b, chatID, h.deps.Config.Telegram.Messages.GeneralError)
		return
	}

	log.InfoContext(ctx, "Blocked word added", "chat_id", chatID, "word", word)
	h.reply(ctx, b, chatID, fmt.Sprintf("Blocked %q. Messages containing it will be removed.", word))
}

func (h blockHandler) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send reply", "error", err, "chat_id", chatID)
	}
}
