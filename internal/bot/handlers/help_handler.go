package handlers

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for the /help command. It lists the
// built-in commands plus any commands configured for the chat.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

type helpHandler struct {
	deps HandlerDeps
}

var builtinCommands = []struct {
	name, description string
}{
	{"/start", "Show the welcome message"},
	{"/help", "List available commands"},
	{"/settings", "Show the chat's moderation settings (admin)"},
	{"/stats", "Show chat activity statistics (admin)"},
	{"/block", "Add a word to the blocked list (admin)"},
	{"/respond", "Add an auto-response trigger (admin)"},
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range builtinCommands {
		fmt.Fprintf(&sb, "%s - %s\n", cmd.name, cmd.description)
	}

	cfg, err := ensureChatConfig(ctx, h.deps, update.Message.Chat)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load chat config for help", "chat_id", update.Message.Chat.ID, "error", err)
	} else if len(cfg.Commands) > 0 {
		sb.WriteString("\nChat commands:\n")
		names := make([]string, 0, len(cfg.Commands))
		for name := range cfg.Commands {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&sb, "/%s - %s\n", strings.TrimPrefix(name, "/"), cfg.Commands[name])
		}
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: sb.String()})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
