// Package config loads and validates application configuration from
// a YAML file, BOT_* environment variables, and built-in defaults.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config holds all application configuration parameters.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Moderation ModerationConfig `mapstructure:"moderation"`
	Web        WebConfig        `mapstructure:"web"`
	CRM        CRMConfig        `mapstructure:"crm"`
	AI         AIConfig         `mapstructure:"ai"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token, the platform admin, and the
// operator-facing message templates.
type TelegramConfig struct {
	Token       string `mapstructure:"token" validate:"required"`
	AdminUserID int64  `mapstructure:"admin_user_id" validate:"required,gt=0"`

	// BotInfo is populated at startup via GetMe, never from the config file.
	BotInfo *models.User `mapstructure:"-"`

	Messages MessagesConfig `mapstructure:"messages"`
}

// MessagesConfig holds the canned texts sent by built-in flows.
type MessagesConfig struct {
	Welcome       string `mapstructure:"welcome"`
	NotAuthorized string `mapstructure:"not_authorized"`
	GeneralError  string `mapstructure:"general_error"`
	WarningIssued string `mapstructure:"warning_issued"`
	UserMuted     string `mapstructure:"user_muted"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ModerationConfig carries the default classification thresholds used
// when a chat has no stored configuration of its own.
type ModerationConfig struct {
	MaxMessageLength int   `mapstructure:"max_message_length" validate:"min=0"`
	MaxExclamations  int   `mapstructure:"max_exclamations" validate:"min=0"`
	WarnThreshold    int   `mapstructure:"warn_threshold" validate:"min=0"`
	MuteDuration     int64 `mapstructure:"mute_duration" validate:"min=0"`
	RetentionDays    int   `mapstructure:"retention_days" validate:"min=1"`
}

// WebConfig configures the inbound webhook and admin API server.
type WebConfig struct {
	Addr          string        `mapstructure:"addr" validate:"required"`
	AdminUsername string        `mapstructure:"admin_username" validate:"required"`
	AdminPassword string        `mapstructure:"admin_password" validate:"required"`
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL      time.Duration `mapstructure:"token_ttl" validate:"min=1m"`
}

// CRMConfig configures the outbound ticket client. An empty BaseURL
// disables CRM integration.
type CRMConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"omitempty,url"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=1s"`
}

// AIConfig configures the optional Gemini-backed advertisement
// detector. An empty APIKey disables it.
type AIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature" validate:"min=0,max=2"`
}

// SchedulerConfig maps task names to cron schedules, plus the
// broadcast settings consumed by the broadcast task.
type SchedulerConfig struct {
	Tasks     map[string]TaskConfig `mapstructure:"tasks"`
	Broadcast BroadcastConfig       `mapstructure:"broadcast"`
}

// TaskConfig enables a named scheduled task and sets its cron expression.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// BroadcastConfig describes the daily broadcast: the wall clock time
// (HH:MM, 24h), the message text, and the target chats.
type BroadcastConfig struct {
	Time    string  `mapstructure:"time" validate:"omitempty,len=5"`
	Message string  `mapstructure:"message"`
	ChatIDs []int64 `mapstructure:"chat_ids"`
}

// Load reads configuration from the given YAML file (a missing file is
// fine, defaults and environment apply), overlays BOT_* environment
// variables, and validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}
