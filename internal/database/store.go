package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetBotConfig retrieves the config for a (bot, chat) pair.
	// Returns nil, nil if not found.
	GetBotConfig(ctx context.Context, botID, chatID int64) (*BotConfig, error)

	// SaveBotConfig inserts or updates a config, keyed by (bot_id, chat_id).
	SaveBotConfig(ctx context.Context, cfg *BotConfig) error

	// DeleteBotConfig removes the config for a (bot, chat) pair.
	DeleteBotConfig(ctx context.Context, botID, chatID int64) error

	// ListBotConfigs retrieves all configs for a bot.
	ListBotConfigs(ctx context.Context, botID int64) ([]*BotConfig, error)

	// SaveMessageRecord appends one row to the message log and bumps the
	// config's message counter in the same transaction.
	SaveMessageRecord(ctx context.Context, record *MessageRecord) error

	// GetChatStats aggregates message log and moderation history for a
	// chat. "Recent" covers the trailing 'days' days.
	GetChatStats(ctx context.Context, chatID int64, days int) (*ChatStats, error)

	// AddModerationAction appends one audit log row.
	AddModerationAction(ctx context.Context, action *ModerationAction) error

	// AddWarning increments the warning counter for (chat, user) and
	// returns the new count.
	AddWarning(ctx context.Context, chatID, userID int64) (int, error)

	// ResetWarnings zeroes the warning counter for (chat, user).
	ResetWarnings(ctx context.Context, chatID, userID int64) error

	// AddTempBan records an active temporary restriction.
	AddTempBan(ctx context.Context, ban *TempBan) error

	// ExpireTempBans deactivates bans whose expiry has passed and
	// returns the deactivated rows.
	ExpireTempBans(ctx context.Context, now time.Time) ([]*TempBan, error)

	// CleanupOldData deletes message records and moderation actions
	// older than the cutoff. Returns the number of rows removed.
	CleanupOldData(ctx context.Context, cutoff time.Time) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetBotConfig retrieves the config for a (bot, chat) pair. Returns
// nil, nil if no config is stored for the pair.
func (s *sqlxStore) GetBotConfig(ctx context.Context, botID, chatID int64) (*BotConfig, error) {
	if botID == 0 || chatID == 0 {
		return nil, fmt.Errorf("bot_id and chat_id cannot be zero")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var cfg BotConfig
	query := `SELECT id, created_at, updated_at, bot_id, chat_id, chat_title, chat_type,
	                 welcome_message, auto_responses, blocked_words, commands,
	                 max_message_length, max_exclamations, warn_threshold, mute_duration,
	                 message_count
	          FROM bot_configs WHERE bot_id = ? AND chat_id = ?`

	err := s.db.GetContext(ctx, &cfg, query, botID, chatID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No bot config found", "bot_id", botID, "chat_id", chatID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching bot config",
			"bot_id", botID, "chat_id", chatID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting bot config", "bot_id", botID, "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get bot config for bot %d chat %d: %w", botID, chatID, err)
	}

	return &cfg, nil
}

// SaveBotConfig inserts or updates a config based on the (bot_id,
// chat_id) pair. The config is validated before any write.
func (s *sqlxStore) SaveBotConfig(ctx context.Context, cfg *BotConfig) error {
	if cfg == nil {
		return fmt.Errorf("cannot save nil bot config")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid bot config: %w", err)
	}

	now := time.Now().UTC()
	cfg.UpdatedAt = now
	if cfg.CreatedAt.IsZero() {
		cfg.CreatedAt = now
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving bot config",
			"bot_id", cfg.BotID, "chat_id", cfg.ChatID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	var exists bool
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM bot_configs WHERE bot_id = ? AND chat_id = ? LIMIT 1`, cfg.BotID, cfg.ChatID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		s.logger.ErrorContext(ctx, "Error checking if bot config exists",
			"bot_id", cfg.BotID, "chat_id", cfg.ChatID, "error", err)
		return fmt.Errorf("failed to check if config exists for bot %d chat %d: %w", cfg.BotID, cfg.ChatID, err)
	}

	var result sql.Result
	if exists {
		query := `
			UPDATE bot_configs SET
				chat_title = :chat_title,
				chat_type = :chat_type,
				welcome_message = :welcome_message,
				auto_responses = :auto_responses,
				blocked_words = :blocked_words,
				commands = :commands,
				max_message_length = :max_message_length,
				max_exclamations = :max_exclamations,
				warn_threshold = :warn_threshold,
				mute_duration = :mute_duration,
				updated_at = :updated_at
			WHERE bot_id = :bot_id AND chat_id = :chat_id
		`
		result, err = tx.NamedExecContext(ctx, query, cfg)
	} else {
		query := `
			INSERT INTO bot_configs (
				bot_id, chat_id, chat_title, chat_type, welcome_message,
				auto_responses, blocked_words, commands,
				max_message_length, max_exclamations, warn_threshold, mute_duration,
				message_count, created_at, updated_at
			) VALUES (
				:bot_id, :chat_id, :chat_title, :chat_type, :welcome_message,
				:auto_responses, :blocked_words, :commands,
				:max_message_length, :max_exclamations, :warn_threshold, :mute_duration,
				:message_count, :created_at, :updated_at
			)
		`
		result, err = tx.NamedExecContext(ctx, query, cfg)
	}

	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving bot config",
			"bot_id", cfg.BotID, "chat_id", cfg.ChatID, "error", err)
		return fmt.Errorf("failed to save bot config for bot %d chat %d: %w", cfg.BotID, cfg.ChatID, err)
	}

	if !exists {
		if id, idErr := result.LastInsertId(); idErr == nil {
			//nolint:gosec // integer overflow conversion is acceptable here
			cfg.ID = uint(id)
		} else {
			s.logger.WarnContext(ctx, "Could not get last insert ID for bot config",
				"bot_id", cfg.BotID, "chat_id", cfg.ChatID, "error", idErr)
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"bot_id", cfg.BotID, "chat_id", cfg.ChatID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	operation := "updated"
	if !exists {
		operation = "created"
	}
	s.logger.DebugContext(ctx, "Bot config saved successfully",
		"operation", operation, "bot_id", cfg.BotID, "chat_id", cfg.ChatID)
	return nil
}

// DeleteBotConfig removes the config for a (bot, chat) pair. Deleting
// an absent config is not an error.
func (s *sqlxStore) DeleteBotConfig(ctx context.Context, botID, chatID int64) error {
	if botID == 0 || chatID == 0 {
		return fmt.Errorf("bot_id and chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM bot_configs WHERE bot_id = ? AND chat_id = ?`, botID, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting bot config", "bot_id", botID, "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to delete bot config for bot %d chat %d: %w", botID, chatID, err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Deleted bot config", "bot_id", botID, "chat_id", chatID, "rows", count)
	return nil
}

// ListBotConfigs retrieves all configs for a bot.
func (s *sqlxStore) ListBotConfigs(ctx context.Context, botID int64) ([]*BotConfig, error) {
	if botID == 0 {
		return nil, fmt.Errorf("bot_id cannot be zero")
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var configs []*BotConfig
	query := `SELECT id, created_at, updated_at, bot_id, chat_id, chat_title, chat_type,
	                 welcome_message, auto_responses, blocked_words, commands,
	                 max_message_length, max_exclamations, warn_threshold, mute_duration,
	                 message_count
	          FROM bot_configs WHERE bot_id = ? ORDER BY chat_id`

	err := s.db.SelectContext(ctx, &configs, query, botID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error listing bot configs", "bot_id", botID, "error", err)
		return nil, fmt.Errorf("failed to list bot configs for bot %d: %w", botID, err)
	}

	s.logger.DebugContext(ctx, "Listed bot configs", "bot_id", botID, "count", len(configs))
	return configs, nil
}

// SaveMessageRecord appends one row to the message log and increments
// the matching config's message counter inside one transaction.
func (s *sqlxStore) SaveMessageRecord(ctx context.Context, record *MessageRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil message record")
	}
	if record.ChatID == 0 {
		return fmt.Errorf("message record must have a non-zero chat_id")
	}
	if record.UserID == 0 {
		return fmt.Errorf("message record must have a non-zero user_id")
	}
	if record.MessageType == "" {
		record.MessageType = "text"
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving message record",
			"chat_id", record.ChatID, "user_id", record.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	query := `
        INSERT INTO message_records (bot_id, chat_id, user_id, message_type, created_at)
        VALUES (:bot_id, :chat_id, :user_id, :message_type, :created_at);
    `
	result, err := tx.NamedExecContext(ctx, query, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving message record",
			"chat_id", record.ChatID, "user_id", record.UserID, "error", err)
		return fmt.Errorf("failed to save message record (chat %d, user %d): %w", record.ChatID, record.UserID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		record.ID = uint(id)
	} else {
		s.logger.WarnContext(ctx, "Could not retrieve last insert ID after saving message record",
			"chat_id", record.ChatID, "user_id", record.UserID, "error", idErr)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE bot_configs SET message_count = message_count + 1 WHERE bot_id = ? AND chat_id = ?`,
		record.BotID, record.ChatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error incrementing message counter",
			"bot_id", record.BotID, "chat_id", record.ChatID, "error", err)
		return fmt.Errorf("failed to increment message counter for chat %d: %w", record.ChatID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"chat_id", record.ChatID, "user_id", record.UserID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Message record saved successfully",
		"chat_id", record.ChatID, "user_id", record.UserID, "record_id", record.ID)
	return nil
}

// GetChatStats aggregates the message log and moderation history for a
// chat. Recent counts cover the trailing 'days' days.
func (s *sqlxStore) GetChatStats(ctx context.Context, chatID int64, days int) (*ChatStats, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if days <= 0 {
		days = 7
	}

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	stats := &ChatStats{ChatID: chatID}

	err := s.db.GetContext(ctx, &stats.TotalMessages,
		`SELECT COUNT(*) FROM message_records WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to count messages for chat %d: %w", chatID, err)
	}

	err = s.db.GetContext(ctx, &stats.RecentMessages,
		`SELECT COUNT(*) FROM message_records WHERE chat_id = ? AND created_at >= ?`, chatID, since)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting recent messages", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to count recent messages for chat %d: %w", chatID, err)
	}

	err = s.db.GetContext(ctx, &stats.UniqueUsers,
		`SELECT COUNT(DISTINCT user_id) FROM message_records WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting unique users", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to count unique users for chat %d: %w", chatID, err)
	}

	err = s.db.GetContext(ctx, &stats.ModerationActions,
		`SELECT COUNT(*) FROM moderation_actions WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error counting moderation actions", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to count moderation actions for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched chat stats", "chat_id", chatID,
		"total_messages", stats.TotalMessages, "unique_users", stats.UniqueUsers)
	return stats, nil
}

// AddModerationAction appends one audit log row.
func (s *sqlxStore) AddModerationAction(ctx context.Context, action *ModerationAction) error {
	if action == nil {
		return fmt.Errorf("cannot save nil moderation action")
	}
	if action.ChatID == 0 || action.UserID == 0 {
		return fmt.Errorf("moderation action must have non-zero chat_id and user_id")
	}
	if action.CreatedAt.IsZero() {
		action.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO moderation_actions (chat_id, user_id, decision, action, reason, moderator_id, duration, created_at)
        VALUES (:chat_id, :user_id, :decision, :action, :reason, :moderator_id, :duration, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, action)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving moderation action",
			"chat_id", action.ChatID, "user_id", action.UserID, "error", err)
		return fmt.Errorf("failed to save moderation action (chat %d, user %d): %w", action.ChatID, action.UserID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		action.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "Moderation action saved",
		"chat_id", action.ChatID, "user_id", action.UserID, "action", action.Action)
	return nil
}

// AddWarning increments the warning counter for (chat, user) and
// returns the new count.
func (s *sqlxStore) AddWarning(ctx context.Context, chatID, userID int64) (int, error) {
	if chatID == 0 || userID == 0 {
		return 0, fmt.Errorf("chat_id and user_id cannot be zero")
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for warning",
			"chat_id", chatID, "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
        INSERT INTO user_warnings (chat_id, user_id, count, updated_at)
        VALUES (?, ?, 1, ?)
        ON CONFLICT (chat_id, user_id) DO UPDATE SET count = count + 1, updated_at = excluded.updated_at
    `, chatID, userID, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error adding warning", "chat_id", chatID, "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to add warning (chat %d, user %d): %w", chatID, userID, err)
	}

	var count int
	err = tx.GetContext(ctx, &count,
		`SELECT count FROM user_warnings WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error reading warning count", "chat_id", chatID, "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to read warning count (chat %d, user %d): %w", chatID, userID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction",
			"chat_id", chatID, "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Warning added", "chat_id", chatID, "user_id", userID, "count", count)
	return count, nil
}

// ResetWarnings zeroes the warning counter for (chat, user).
func (s *sqlxStore) ResetWarnings(ctx context.Context, chatID, userID int64) error {
	if chatID == 0 || userID == 0 {
		return fmt.Errorf("chat_id and user_id cannot be zero")
	}

	_, err := s.db.ExecContext(ctx,
		`UPDATE user_warnings SET count = 0, updated_at = ? WHERE chat_id = ? AND user_id = ?`,
		time.Now().UTC(), chatID, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error resetting warnings", "chat_id", chatID, "user_id", userID, "error", err)
		return fmt.Errorf("failed to reset warnings (chat %d, user %d): %w", chatID, userID, err)
	}

	s.logger.DebugContext(ctx, "Warnings reset", "chat_id", chatID, "user_id", userID)
	return nil
}

// AddTempBan records an active temporary restriction.
func (s *sqlxStore) AddTempBan(ctx context.Context, ban *TempBan) error {
	if ban == nil {
		return fmt.Errorf("cannot save nil temp ban")
	}
	if ban.ChatID == 0 || ban.UserID == 0 {
		return fmt.Errorf("temp ban must have non-zero chat_id and user_id")
	}
	if ban.Until.IsZero() {
		return fmt.Errorf("temp ban must have a non-zero expiry")
	}
	if ban.BanType == "" {
		ban.BanType = "mute"
	}
	ban.Active = true
	if ban.CreatedAt.IsZero() {
		ban.CreatedAt = time.Now().UTC()
	}

	query := `
        INSERT INTO temp_bans (chat_id, user_id, ban_type, reason, until, active, created_at)
        VALUES (:chat_id, :user_id, :ban_type, :reason, :until, :active, :created_at);
    `
	result, err := s.db.NamedExecContext(ctx, query, ban)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving temp ban",
			"chat_id", ban.ChatID, "user_id", ban.UserID, "error", err)
		return fmt.Errorf("failed to save temp ban (chat %d, user %d): %w", ban.ChatID, ban.UserID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		ban.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "Temp ban saved",
		"chat_id", ban.ChatID, "user_id", ban.UserID, "until", ban.Until)
	return nil
}

// ExpireTempBans deactivates bans whose expiry has passed and returns
// the rows that were deactivated so callers can lift restrictions.
func (s *sqlxStore) ExpireTempBans(ctx context.Context, now time.Time) ([]*TempBan, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for ban expiry", "error", err)
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	var expired []*TempBan
	err = tx.SelectContext(ctx, &expired,
		`SELECT id, created_at, chat_id, user_id, ban_type, reason, until, active
		 FROM temp_bans WHERE active = 1 AND until <= ?`, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error selecting expired bans", "error", err)
		return nil, fmt.Errorf("failed to select expired bans: %w", err)
	}

	if len(expired) == 0 {
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		tx = nil
		return nil, nil
	}

	ids := make([]uint, 0, len(expired))
	for _, b := range expired {
		ids = append(ids, b.ID)
	}

	query, args, err := sqlx.In(`UPDATE temp_bans SET active = 0 WHERE id IN (?)`, ids)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error building query for ban expiry", "error", err)
		return nil, fmt.Errorf("failed to build query for ban expiry: %w", err)
	}
	query = tx.Rebind(query)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		s.logger.ErrorContext(ctx, "Error deactivating expired bans", "error", err)
		return nil, fmt.Errorf("failed to deactivate expired bans: %w", err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.InfoContext(ctx, "Expired temp bans", "count", len(expired))
	return expired, nil
}

// CleanupOldData deletes message records and moderation actions older
// than the cutoff in one transaction. Bot configs are never touched.
func (s *sqlxStore) CleanupOldData(ctx context.Context, cutoff time.Time) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for data cleanup", "error", err)
		return 0, fmt.Errorf("failed to begin transaction for data cleanup: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	recordsResult, err := tx.ExecContext(ctx,
		`DELETE FROM message_records WHERE created_at < ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting old message records", "error", err)
		return 0, fmt.Errorf("failed to delete old message records: %w", err)
	}
	recordsCount, _ := recordsResult.RowsAffected()

	actionsResult, err := tx.ExecContext(ctx,
		`DELETE FROM moderation_actions WHERE created_at < ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error deleting old moderation actions", "error", err)
		return 0, fmt.Errorf("failed to delete old moderation actions: %w", err)
	}
	actionsCount, _ := actionsResult.RowsAffected()

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit cleanup transaction", "error", err)
		return 0, fmt.Errorf("failed to commit cleanup transaction: %w", err)
	}
	tx = nil

	total := recordsCount + actionsCount
	s.logger.InfoContext(ctx, "Cleaned up old data",
		"records_deleted", recordsCount, "actions_deleted", actionsCount, "cutoff", cutoff)
	return total, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
