package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mvolkov/botplatform/internal/classify"
	"github.com/mvolkov/botplatform/internal/crm"
	"github.com/mvolkov/botplatform/internal/database"
	"github.com/mvolkov/botplatform/internal/respond"
)

// NewMessageHandler returns the default handler: it runs every chat
// message through the record / auto-response / moderation pipeline.
func NewMessageHandler(deps HandlerDeps) bot.HandlerFunc {
	return messageHandler{deps}.Handle
}

type messageHandler struct {
	deps HandlerDeps
}

func (h messageHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "message")

	if update.Message == nil || update.Message.From == nil {
		return
	}
	msg := update.Message
	if msg.From.IsBot || strings.HasPrefix(msg.Text, "/") {
		return
	}

	cfg, err := ensureChatConfig(ctx, h.deps, msg.Chat)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat config", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	record := &database.MessageRecord{
		BotID:       h.deps.BotID(),
		ChatID:      msg.Chat.ID,
		UserID:      msg.From.ID,
		MessageType: messageType(msg),
	}
	if err := h.deps.Store.SaveMessageRecord(ctx, record); err != nil {
		log.ErrorContext(ctx, "Failed to record message", "chat_id", msg.Chat.ID, "error", err)
	}

	if msg.Text == "" {
		return
	}

	if reply, ok := respond.Resolve(msg.Text, cfg); ok {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: reply})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send auto-response", "chat_id", msg.Chat.ID, "error", err)
		}
		return
	}

	decision := h.deps.Classifier.Classify(ctx, msg.Text, cfg)
	if decision.Outcome == classify.OutcomeOK {
		return
	}

	log.InfoContext(ctx, "Message flagged",
		"chat_id", msg.Chat.ID, "user_id", msg.From.ID,
		"outcome", decision.Outcome, "reason", decision.Reason)

	h.applyModeration(ctx, b, msg, cfg, decision)
}

// applyModeration deletes the offending message, issues a warning, and
// escalates to a timed mute once the warning threshold is reached.
// Every step is best-effort: a failed Telegram call is logged and the
// rest of the pipeline continues.
func (h messageHandler) applyModeration(ctx context.Context, b *bot.Bot, msg *models.Message, cfg *database.BotConfig, decision classify.Decision) {
	log := h.deps.Logger.With("handler", "message")
	chatID := msg.Chat.ID
	userID := msg.From.ID

	if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{ChatID: chatID, MessageID: msg.ID}); err != nil {
		log.WarnContext(ctx, "Failed to delete flagged message", "chat_id", chatID, "message_id", msg.ID, "error", err)
	}

	action := &database.ModerationAction{
		ChatID:   chatID,
		UserID:   userID,
		Decision: string(decision.Outcome),
		Action:   "delete",
		Reason:   decision.Reason,
	}
	if err := h.deps.Store.AddModerationAction(ctx, action); err != nil {
		log.ErrorContext(ctx, "Failed to record moderation action", "chat_id", chatID, "error", err)
	}

	warnings, err := h.deps.Store.AddWarning(ctx, chatID, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to add warning", "chat_id", chatID, "user_id", userID, "error", err)
		return
	}

	if warnings < cfg.WarnThreshold || cfg.WarnThreshold == 0 {
		text := fmt.Sprintf(h.deps.Config.Telegram.Messages.WarningIssued, warnings, cfg.WarnThreshold, decision.Reason)
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
			log.WarnContext(ctx, "Failed to send warning message", "chat_id", chatID, "error", err)
		}
		return
	}

	h.muteUser(ctx, b, chatID, userID, cfg, decision.Reason)
}

func (h messageHandler) muteUser(ctx context.Context, b *bot.Bot, chatID, userID int64, cfg *database.BotConfig, reason string) {
	log := h.deps.Logger.With("handler", "message")
	duration := time.Duration(cfg.MuteDuration) * time.Second
	until := time.Now().UTC().Add(duration)

	_, err := b.RestrictChatMember(ctx, &bot.RestrictChatMemberParams{
		ChatID:      chatID,
		UserID:      userID,
		Permissions: &models.ChatPermissions{},
		UntilDate:   int(until.Unix()),
	})
	if err != nil {
		log.WarnContext(ctx, "Failed to restrict user", "chat_id", chatID, "user_id", userID, "error", err)
	}

	ban := &database.TempBan{
		ChatID:  chatID,
		UserID:  userID,
		BanType: "mute",
		Reason:  reason,
		Until:   until,
	}
	if err := h.deps.Store.AddTempBan(ctx, ban); err != nil {
		log.ErrorContext(ctx, "Failed to record temp ban", "chat_id", chatID, "user_id", userID, "error", err)
	}

	if err := h.deps.Store.ResetWarnings(ctx, chatID, userID); err != nil {
		log.ErrorContext(ctx, "Failed to reset warnings after mute", "chat_id", chatID, "user_id", userID, "error", err)
	}

	muteAction := &database.ModerationAction{
		ChatID:   chatID,
		UserID:   userID,
		Decision: "escalation",
		Action:   "mute",
		Reason:   reason,
		Duration: cfg.MuteDuration,
	}
	if err := h.deps.Store.AddModerationAction(ctx, muteAction); err != nil {
		log.ErrorContext(ctx, "Failed to record mute action", "chat_id", chatID, "error", err)
	}

	text := fmt.Sprintf(h.deps.Config.Telegram.Messages.UserMuted, duration, reason)
	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
		log.WarnContext(ctx, "Failed to send mute notice", "chat_id", chatID, "error", err)
	}

	if h.deps.CRM != nil {
		ticket := crm.Ticket{
			Subject:     fmt.Sprintf("User %d muted in chat %d", userID, chatID),
			Description: fmt.Sprintf("User reached the warning threshold and was muted for %s. Last reason: %s", duration, reason),
			ChatID:      chatID,
			UserID:      userID,
		}
		if _, err := h.deps.CRM.CreateTicket(ctx, ticket); err != nil {
			log.ErrorContext(ctx, "Failed to open CRM ticket for mute", "chat_id", chatID, "user_id", userID, "error", err)
		}
	}
}

func messageType(msg *models.Message) string {
	switch {
	case len(msg.Photo) > 0:
		return "photo"
	case msg.Video != nil:
		return "video"
	case msg.Sticker != nil:
		return "sticker"
	case msg.Voice != nil:
		return "voice"
	case msg.Document != nil:
		return "document"
	default:
		return "text"
	}
}
