package database

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Default moderation thresholds applied to a chat that has no stored
// overrides.
const (
	DefaultMaxMessageLength = 1000
	DefaultMaxExclamations  = 5
	DefaultWarnThreshold    = 3
	DefaultMuteDuration     = 300 // seconds
)

// StringMap is a map[string]string stored as a JSON text column.
type StringMap map[string]string

// Value implements driver.Valuer.
func (m StringMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string map: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (m *StringMap) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*m = StringMap{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringMap", src)
	}
	if len(data) == 0 {
		*m = StringMap{}
		return nil
	}
	if err := json.Unmarshal(data, m); err != nil {
		return fmt.Errorf("failed to unmarshal string map: %w", err)
	}
	return nil
}

// StringList is a []string stored as a JSON text column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal string list: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into StringList", src)
	}
	if len(data) == 0 {
		*l = StringList{}
		return nil
	}
	if err := json.Unmarshal(data, l); err != nil {
		return fmt.Errorf("failed to unmarshal string list: %w", err)
	}
	return nil
}

// BotConfig is the per (bot, chat) configuration: auto-responses,
// blocked words, named commands, and moderation thresholds. The
// (BotID, ChatID) pair is unique. A config is never deleted implicitly;
// only the admin API removes one.
type BotConfig struct {
	ID        uint      `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	BotID     int64  `db:"bot_id" json:"bot_id"`
	ChatID    int64  `db:"chat_id" json:"chat_id"`
	ChatTitle string `db:"chat_title" json:"chat_title"`
	ChatType  string `db:"chat_type" json:"chat_type"`

	WelcomeMessage string     `db:"welcome_message" json:"welcome_message"`
	AutoResponses  StringMap  `db:"auto_responses" json:"auto_responses"`
	BlockedWords   StringList `db:"blocked_words" json:"blocked_words"`
	Commands       StringMap  `db:"commands" json:"commands"`

	MaxMessageLength int   `db:"max_message_length" json:"max_message_length"`
	MaxExclamations  int   `db:"max_exclamations" json:"max_exclamations"`
	WarnThreshold    int   `db:"warn_threshold" json:"warn_threshold"`
	MuteDuration     int64 `db:"mute_duration" json:"mute_duration"`

	MessageCount int64 `db:"message_count" json:"message_count"`
}

// NewDefaultBotConfig returns a fresh config for the given (bot, chat)
// pair with default thresholds and empty collections.
func NewDefaultBotConfig(botID, chatID int64) *BotConfig {
	return &BotConfig{
		BotID:            botID,
		ChatID:           chatID,
		AutoResponses:    StringMap{},
		BlockedWords:     StringList{},
		Commands:         StringMap{},
		MaxMessageLength: DefaultMaxMessageLength,
		MaxExclamations:  DefaultMaxExclamations,
		WarnThreshold:    DefaultWarnThreshold,
		MuteDuration:     DefaultMuteDuration,
	}
}

// Validate checks the invariants enforced on every save: a valid
// (bot, chat) pair and non-negative thresholds.
func (c *BotConfig) Validate() error {
	if c.BotID == 0 {
		return fmt.Errorf("bot config must have a non-zero bot_id")
	}
	if c.ChatID == 0 {
		return fmt.Errorf("bot config must have a non-zero chat_id")
	}
	if c.MaxMessageLength < 0 {
		return fmt.Errorf("max_message_length must be non-negative, got %d", c.MaxMessageLength)
	}
	if c.MaxExclamations < 0 {
		return fmt.Errorf("max_exclamations must be non-negative, got %d", c.MaxExclamations)
	}
	if c.WarnThreshold < 0 {
		return fmt.Errorf("warn_threshold must be non-negative, got %d", c.WarnThreshold)
	}
	if c.MuteDuration < 0 {
		return fmt.Errorf("mute_duration must be non-negative, got %d", c.MuteDuration)
	}
	return nil
}

// MessageRecord is one row of the append-only message log. Records are
// immutable once written; only the retention cleanup removes them.
type MessageRecord struct {
	ID        uint      `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	BotID       int64  `db:"bot_id" json:"bot_id"`
	ChatID      int64  `db:"chat_id" json:"chat_id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	MessageType string `db:"message_type" json:"message_type"`
}

// ModerationAction is an audit log entry for an applied moderation
// decision (warn, mute, delete).
type ModerationAction struct {
	ID        uint      `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	ChatID      int64  `db:"chat_id" json:"chat_id"`
	UserID      int64  `db:"user_id" json:"user_id"`
	Decision    string `db:"decision" json:"decision"`
	Action      string `db:"action" json:"action"`
	Reason      string `db:"reason" json:"reason"`
	ModeratorID int64  `db:"moderator_id" json:"moderator_id"`
	Duration    int64  `db:"duration" json:"duration"`
}

// TempBan is a temporary restriction (mute or ban) with an expiry.
// The ban_expiry task flips Active once Until has passed.
type TempBan struct {
	ID        uint      `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	ChatID  int64     `db:"chat_id" json:"chat_id"`
	UserID  int64     `db:"user_id" json:"user_id"`
	BanType string    `db:"ban_type" json:"ban_type"`
	Reason  string    `db:"reason" json:"reason"`
	Until   time.Time `db:"until" json:"until"`
	Active  bool      `db:"active" json:"active"`
}

// ChatStats aggregates the message log and moderation history for one chat.
type ChatStats struct {
	ChatID            int64 `db:"chat_id" json:"chat_id"`
	TotalMessages     int64 `db:"total_messages" json:"total_messages"`
	RecentMessages    int64 `db:"recent_messages" json:"recent_messages"`
	UniqueUsers       int64 `db:"unique_users" json:"unique_users"`
	ModerationActions int64 `db:"moderation_actions" json:"moderation_actions"`
}
