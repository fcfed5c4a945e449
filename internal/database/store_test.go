package database

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	db, err := NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, nil)
}

func TestBotConfigRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetBotConfig(ctx, 1, 100)
	if err != nil {
		t.Fatalf("GetBotConfig: %v", err)
	}
	if got != nil {
		t.Fatalf("GetBotConfig on empty store = %+v, want nil", got)
	}

	cfg := NewDefaultBotConfig(1, 100)
	cfg.ChatTitle = "Test Chat"
	cfg.AutoResponses = StringMap{"привет": "Здравствуйте!"}
	cfg.BlockedWords = StringList{"spamword"}

	if err := store.SaveBotConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveBotConfig: %v", err)
	}
	if cfg.ID == 0 {
		t.Error("SaveBotConfig did not set ID on insert")
	}

	got, err = store.GetBotConfig(ctx, 1, 100)
	if err != nil {
		t.Fatalf("GetBotConfig after save: %v", err)
	}
	if got == nil {
		t.Fatal("GetBotConfig after save = nil")
	}
	if got.ChatTitle != "Test Chat" {
		t.Errorf("ChatTitle = %q, want %q", got.ChatTitle, "Test Chat")
	}
	if got.AutoResponses["привет"] != "Здравствуйте!" {
		t.Errorf("AutoResponses = %v, missing trigger", got.AutoResponses)
	}
	if len(got.BlockedWords) != 1 || got.BlockedWords[0] != "spamword" {
		t.Errorf("BlockedWords = %v, want [spamword]", got.BlockedWords)
	}
	if got.MaxMessageLength != DefaultMaxMessageLength {
		t.Errorf("MaxMessageLength = %d, want %d", got.MaxMessageLength, DefaultMaxMessageLength)
	}

	// Update through the same upsert path.
	got.WarnThreshold = 5
	if err := store.SaveBotConfig(ctx, got); err != nil {
		t.Fatalf("SaveBotConfig update: %v", err)
	}
	updated, err := store.GetBotConfig(ctx, 1, 100)
	if err != nil {
		t.Fatalf("GetBotConfig after update: %v", err)
	}
	if updated.WarnThreshold != 5 {
		t.Errorf("WarnThreshold after update = %d, want 5", updated.WarnThreshold)
	}

	configs, err := store.ListBotConfigs(ctx, 1)
	if err != nil {
		t.Fatalf("ListBotConfigs: %v", err)
	}
	if len(configs) != 1 {
		t.Errorf("ListBotConfigs returned %d configs, want 1", len(configs))
	}

	if err := store.DeleteBotConfig(ctx, 1, 100); err != nil {
		t.Fatalf("DeleteBotConfig: %v", err)
	}
	got, err = store.GetBotConfig(ctx, 1, 100)
	if err != nil {
		t.Fatalf("GetBotConfig after delete: %v", err)
	}
	if got != nil {
		t.Errorf("GetBotConfig after delete = %+v, want nil", got)
	}
}

func TestSaveBotConfigRejectsInvalid(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*BotConfig)
	}{
		{name: "negative message length", mutate: func(c *BotConfig) { c.MaxMessageLength = -1 }},
		{name: "negative exclamations", mutate: func(c *BotConfig) { c.MaxExclamations = -5 }},
		{name: "negative warn threshold", mutate: func(c *BotConfig) { c.WarnThreshold = -1 }},
		{name: "negative mute duration", mutate: func(c *BotConfig) { c.MuteDuration = -300 }},
		{name: "zero chat id", mutate: func(c *BotConfig) { c.ChatID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultBotConfig(1, 100)
			tt.mutate(cfg)
			if err := store.SaveBotConfig(ctx, cfg); err == nil {
				t.Error("SaveBotConfig accepted invalid config")
			}
		})
	}
}

func TestMessageRecordAndStats(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	cfg := NewDefaultBotConfig(1, 200)
	if err := store.SaveBotConfig(ctx, cfg); err != nil {
		t.Fatalf("SaveBotConfig: %v", err)
	}

	record := &MessageRecord{BotID: 1, ChatID: 200, UserID: 42, MessageType: "text"}
	if err := store.SaveMessageRecord(ctx, record); err != nil {
		t.Fatalf("SaveMessageRecord: %v", err)
	}

	stats, err := store.GetChatStats(ctx, 200, 7)
	if err != nil {
		t.Fatalf("GetChatStats: %v", err)
	}
	if stats.TotalMessages != 1 {
		t.Errorf("TotalMessages = %d, want 1", stats.TotalMessages)
	}
	if stats.UniqueUsers != 1 {
		t.Errorf("UniqueUsers = %d, want 1", stats.UniqueUsers)
	}
	if stats.RecentMessages != 1 {
		t.Errorf("RecentMessages = %d, want 1", stats.RecentMessages)
	}

	// The config's counter moves with the log.
	saved, err := store.GetBotConfig(ctx, 1, 200)
	if err != nil {
		t.Fatalf("GetBotConfig: %v", err)
	}
	if saved.MessageCount != 1 {
		t.Errorf("MessageCount = %d, want 1", saved.MessageCount)
	}

	// Second user bumps unique count.
	if err := store.SaveMessageRecord(ctx, &MessageRecord{BotID: 1, ChatID: 200, UserID: 43}); err != nil {
		t.Fatalf("SaveMessageRecord second user: %v", err)
	}
	stats, err = store.GetChatStats(ctx, 200, 7)
	if err != nil {
		t.Fatalf("GetChatStats second: %v", err)
	}
	if stats.TotalMessages != 2 || stats.UniqueUsers != 2 {
		t.Errorf("stats = %+v, want 2 messages from 2 users", stats)
	}
}

func TestWarnings(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		count, err := store.AddWarning(ctx, 300, 42)
		if err != nil {
			t.Fatalf("AddWarning: %v", err)
		}
		if count != want {
			t.Errorf("AddWarning #%d = %d, want %d", want, count, want)
		}
	}

	if err := store.ResetWarnings(ctx, 300, 42); err != nil {
		t.Fatalf("ResetWarnings: %v", err)
	}
	count, err := store.AddWarning(ctx, 300, 42)
	if err != nil {
		t.Fatalf("AddWarning after reset: %v", err)
	}
	if count != 1 {
		t.Errorf("AddWarning after reset = %d, want 1", count)
	}
}

func TestTempBanExpiry(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	past := &TempBan{ChatID: 400, UserID: 1, Reason: "spam", Until: now.Add(-time.Minute)}
	future := &TempBan{ChatID: 400, UserID: 2, Reason: "spam", Until: now.Add(time.Hour)}
	if err := store.AddTempBan(ctx, past); err != nil {
		t.Fatalf("AddTempBan past: %v", err)
	}
	if err := store.AddTempBan(ctx, future); err != nil {
		t.Fatalf("AddTempBan future: %v", err)
	}

	expired, err := store.ExpireTempBans(ctx, now)
	if err != nil {
		t.Fatalf("ExpireTempBans: %v", err)
	}
	if len(expired) != 1 {
		t.Fatalf("ExpireTempBans returned %d bans, want 1", len(expired))
	}
	if expired[0].UserID != 1 {
		t.Errorf("expired ban user = %d, want 1", expired[0].UserID)
	}

	// Second pass finds nothing new.
	expired, err = store.ExpireTempBans(ctx, now)
	if err != nil {
		t.Fatalf("ExpireTempBans second pass: %v", err)
	}
	if len(expired) != 0 {
		t.Errorf("ExpireTempBans second pass returned %d bans, want 0", len(expired))
	}
}

func TestCleanupOldData(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &MessageRecord{BotID: 1, ChatID: 500, UserID: 1, CreatedAt: now.AddDate(0, 0, -60)}
	fresh := &MessageRecord{BotID: 1, ChatID: 500, UserID: 1, CreatedAt: now}
	if err := store.SaveMessageRecord(ctx, old); err != nil {
		t.Fatalf("SaveMessageRecord old: %v", err)
	}
	if err := store.SaveMessageRecord(ctx, fresh); err != nil {
		t.Fatalf("SaveMessageRecord fresh: %v", err)
	}

	oldAction := &ModerationAction{ChatID: 500, UserID: 1, Decision: "spam", Action: "delete", CreatedAt: now.AddDate(0, 0, -60)}
	if err := store.AddModerationAction(ctx, oldAction); err != nil {
		t.Fatalf("AddModerationAction: %v", err)
	}

	removed, err := store.CleanupOldData(ctx, now.AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("CleanupOldData: %v", err)
	}
	if removed != 2 {
		t.Errorf("CleanupOldData removed %d rows, want 2", removed)
	}

	stats, err := store.GetChatStats(ctx, 500, 7)
	if err != nil {
		t.Fatalf("GetChatStats: %v", err)
	}
	if stats.TotalMessages != 1 {
		t.Errorf("TotalMessages after cleanup = %d, want 1", stats.TotalMessages)
	}
	if stats.ModerationActions != 0 {
		t.Errorf("ModerationActions after cleanup = %d, want 0", stats.ModerationActions)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Errorf("RunSQLMaintenance: %v", err)
	}
}
