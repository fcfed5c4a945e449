package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const statsWindowDays = 7

// NewStatsHandler returns a handler for the /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID

	stats, err := h.deps.Store.GetChatStats(ctx, chatID, statsWindowDays)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get chat stats", "chat_id", chatID, "error", err)
		_, sendErr := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Telegram.Messages.GeneralError})
		if sendErr != nil {
			log.ErrorContext(ctx, "Failed to send error message", "error", sendErr, "chat_id", chatID)
		}
		return
	}

	text := fmt.Sprintf(
		"Chat statistics:\nTotal messages: %d\nMessages (last %d days): %d\nUnique users: %d\nModeration actions: %d",
		stats.TotalMessages, statsWindowDays, stats.RecentMessages, stats.UniqueUsers, stats.ModerationActions,
	)

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send stats message", "error", err, "chat_id", chatID)
	}
}
