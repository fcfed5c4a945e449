package config

import (
	"time"

	"github.com/spf13/viper"
)

// setDefaults registers default values for optional configuration
// parameters. Anything listed here can be omitted from config.yaml.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("database.path", "botplatform.db")

	v.SetDefault("moderation.max_message_length", 1000)
	v.SetDefault("moderation.max_exclamations", 5)
	v.SetDefault("moderation.warn_threshold", 3)
	v.SetDefault("moderation.mute_duration", 300)
	v.SetDefault("moderation.retention_days", 30)

	v.SetDefault("web.addr", ":8080")
	v.SetDefault("web.token_ttl", time.Hour)

	v.SetDefault("crm.timeout", 10*time.Second)

	v.SetDefault("ai.model", "gemini-2.0-flash")
	v.SetDefault("ai.temperature", 0.0)

	v.SetDefault("telegram.messages.welcome", "Hi! I keep this chat tidy. Use /help to see what I can do.")
	v.SetDefault("telegram.messages.not_authorized", "You are not authorized to use this command.")
	v.SetDefault("telegram.messages.general_error", "An error occurred. Please try again later.")
	v.SetDefault("telegram.messages.warning_issued", "Warning %d/%d. Reason: %s")
	v.SetDefault("telegram.messages.user_muted", "User muted for %s. Reason: %s")

	v.SetDefault("scheduler.tasks.broadcast.enabled", false)
	v.SetDefault("scheduler.tasks.broadcast.schedule", "* * * * *")
	v.SetDefault("scheduler.tasks.ban_expiry.enabled", true)
	v.SetDefault("scheduler.tasks.ban_expiry.schedule", "* * * * *")
	v.SetDefault("scheduler.tasks.cleanup.enabled", true)
	v.SetDefault("scheduler.tasks.cleanup.schedule", "0 4 * * *")
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 5 * * 0")
}
