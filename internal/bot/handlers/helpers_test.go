package handlers

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/go-telegram/bot/models"

	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/database"
)

func testDeps(t *testing.T) HandlerDeps {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	return HandlerDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  database.NewStore(db, nil),
		Config: &config.Config{
			Telegram: config.TelegramConfig{
				BotInfo: &models.User{ID: 7, Username: "testbot"},
			},
			Moderation: config.ModerationConfig{
				MaxMessageLength: 1000,
				MaxExclamations:  5,
				WarnThreshold:    3,
				MuteDuration:     300,
			},
		},
	}
}

func TestEnsureChatConfigCreatesDefaults(t *testing.T) {
	t.Parallel()
	deps := testDeps(t)
	ctx := context.Background()

	chat := models.Chat{ID: 100, Title: "Test Group", Type: "supergroup"}
	cfg, err := ensureChatConfig(ctx, deps, chat)
	if err != nil {
		t.Fatalf("ensureChatConfig: %v", err)
	}
	if cfg.BotID != 7 || cfg.ChatID != 100 {
		t.Errorf("config identity = bot %d chat %d, want 7/100", cfg.BotID, cfg.ChatID)
	}
	if cfg.ChatTitle != "Test Group" || cfg.ChatType != "supergroup" {
		t.Errorf("chat metadata = %q/%q", cfg.ChatTitle, cfg.ChatType)
	}
	if cfg.WarnThreshold != 3 || cfg.MuteDuration != 300 {
		t.Errorf("thresholds = %d/%d, want defaults from moderation config", cfg.WarnThreshold, cfg.MuteDuration)
	}

	// The config was persisted.
	stored, err := deps.Store.GetBotConfig(ctx, 7, 100)
	if err != nil {
		t.Fatalf("GetBotConfig: %v", err)
	}
	if stored == nil {
		t.Fatal("ensureChatConfig did not persist the config")
	}
}

func TestEnsureChatConfigReturnsExisting(t *testing.T) {
	t.Parallel()
	deps := testDeps(t)
	ctx := context.Background()

	existing := database.NewDefaultBotConfig(7, 100)
	existing.WarnThreshold = 9
	if err := deps.Store.SaveBotConfig(ctx, existing); err != nil {
		t.Fatalf("SaveBotConfig: %v", err)
	}

	chat := models.Chat{ID: 100, Title: "Renamed", Type: "group"}
	cfg, err := ensureChatConfig(ctx, deps, chat)
	if err != nil {
		t.Fatalf("ensureChatConfig: %v", err)
	}
	if cfg.WarnThreshold != 9 {
		t.Errorf("WarnThreshold = %d, want stored value 9", cfg.WarnThreshold)
	}
}

func TestMessageType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *models.Message
		want string
	}{
		{name: "text", msg: &models.Message{Text: "hi"}, want: "text"},
		{name: "photo", msg: &models.Message{Photo: []models.PhotoSize{{}}}, want: "photo"},
		{name: "sticker", msg: &models.Message{Sticker: &models.Sticker{}}, want: "sticker"},
		{name: "voice", msg: &models.Message{Voice: &models.Voice{}}, want: "voice"},
		{name: "document", msg: &models.Message{Document: &models.Document{}}, want: "document"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := messageType(tt.msg); got != tt.want {
				t.Errorf("messageType = %q, want %q", got, tt.want)
			}
		})
	}
}
