package webserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mvolkov/botplatform/internal/database"
)

// webhookRequest is the inbound notification payload.
type webhookRequest struct {
	Type    string `json:"type" binding:"required"`
	ChatID  int64  `json:"chat_id" binding:"required"`
	Message string `json:"message"`
}

// handleWebhook accepts external events. Notifications are forwarded to
// the target chat; unknown event types are accepted and ignored so
// senders don't retry them forever.
func (s *Server) handleWebhook(c *gin.Context) {
	var req webhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type and chat_id are required"})
		return
	}

	if req.Type != "notification" {
		s.log.Info("Ignoring webhook event of unknown type", "type", req.Type, "chat_id", req.ChatID)
		c.JSON(http.StatusAccepted, gin.H{"status": "ignored"})
		return
	}

	if req.Message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required for notifications"})
		return
	}

	if err := s.sender.SendMessage(c.Request.Context(), req.ChatID, req.Message); err != nil {
		s.log.Error("Failed to forward notification", "chat_id", req.ChatID, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to deliver notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "delivered"})
}

// handlePing reports service and database health.
func (s *Server) handlePing(c *gin.Context) {
	if err := s.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListConfigs(c *gin.Context) {
	configs, err := s.store.ListBotConfigs(c.Request.Context(), s.botID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list configs"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"configs": configs})
}

func (s *Server) handleGetConfig(c *gin.Context) {
	chatID, ok := s.chatIDParam(c)
	if !ok {
		return
	}

	cfg, err := s.store.GetBotConfig(c.Request.Context(), s.botID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get config"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no config for chat %d", chatID)})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// configUpdate is a partial update: only the fields present in the
// request body are applied.
type configUpdate struct {
	ChatTitle        *string             `json:"chat_title"`
	ChatType         *string             `json:"chat_type"`
	WelcomeMessage   *string             `json:"welcome_message"`
	AutoResponses    *database.StringMap `json:"auto_responses"`
	BlockedWords     *[]string           `json:"blocked_words"`
	Commands         *database.StringMap `json:"commands"`
	MaxMessageLength *int                `json:"max_message_length"`
	MaxExclamations  *int                `json:"max_exclamations"`
	WarnThreshold    *int                `json:"warn_threshold"`
	MuteDuration     *int64              `json:"mute_duration"`
}

func (s *Server) handleUpdateConfig(c *gin.Context) {
	chatID, ok := s.chatIDParam(c)
	if !ok {
		return
	}

	var update configUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid config payload"})
		return
	}

	ctx := c.Request.Context()
	cfg, err := s.store.GetBotConfig(ctx, s.botID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get config"})
		return
	}
	if cfg == nil {
		cfg = database.NewDefaultBotConfig(s.botID, chatID)
	}

	applyUpdate(cfg, &update)

	if err := s.store.SaveBotConfig(ctx, cfg); err != nil {
		s.log.Warn("Config update rejected", "chat_id", chatID, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, cfg)
}

func applyUpdate(cfg *database.BotConfig, update *configUpdate) {
	if update.ChatTitle != nil {
		cfg.ChatTitle = *update.ChatTitle
	}
	if update.ChatType != nil {
		cfg.ChatType = *update.ChatType
	}
	if update.WelcomeMessage != nil {
		cfg.WelcomeMessage = *update.WelcomeMessage
	}
	if update.AutoResponses != nil {
		cfg.AutoResponses = *update.AutoResponses
	}
	if update.BlockedWords != nil {
		cfg.BlockedWords = database.StringList(*update.BlockedWords)
	}
	if update.Commands != nil {
		cfg.Commands = *update.Commands
	}
	if update.MaxMessageLength != nil {
		cfg.MaxMessageLength = *update.MaxMessageLength
	}
	if update.MaxExclamations != nil {
		cfg.MaxExclamations = *update.MaxExclamations
	}
	if update.WarnThreshold != nil {
		cfg.WarnThreshold = *update.WarnThreshold
	}
	if update.MuteDuration != nil {
		cfg.MuteDuration = *update.MuteDuration
	}
}

func (s *Server) handleDeleteConfig(c *gin.Context) {
	chatID, ok := s.chatIDParam(c)
	if !ok {
		return
	}

	if err := s.store.DeleteBotConfig(c.Request.Context(), s.botID, chatID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// handleResetConfig replaces a chat's config with the defaults while
// keeping its identity fields (title, type) and message counter.
func (s *Server) handleResetConfig(c *gin.Context) {
	chatID, ok := s.chatIDParam(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	existing, err := s.store.GetBotConfig(ctx, s.botID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get config"})
		return
	}

	fresh := database.NewDefaultBotConfig(s.botID, chatID)
	if existing != nil {
		fresh.ID = existing.ID
		fresh.CreatedAt = existing.CreatedAt
		fresh.ChatTitle = existing.ChatTitle
		fresh.ChatType = existing.ChatType
		fresh.MessageCount = existing.MessageCount
	}

	if err := s.store.SaveBotConfig(ctx, fresh); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reset config"})
		return
	}

	c.JSON(http.StatusOK, fresh)
}

func (s *Server) handleExportConfig(c *gin.Context) {
	chatID, ok := s.chatIDParam(c)
	if !ok {
		return
	}

	cfg, err := s.store.GetBotConfig(c.Request.Context(), s.botID, chatID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get config"})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no config for chat %d", chatID)})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=config_%d.json", chatID))
	c.IndentedJSON(http.StatusOK, cfg)
}

func (s *Server) handleChatStats(c *gin.Context) {
	chatID, ok := s.chatIDParam(c)
	if !ok {
		return
	}

	days := 7
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	stats, err := s.store.GetChatStats(c.Request.Context(), chatID, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) chatIDParam(c *gin.Context) (int64, bool) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil || chatID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid chat_id"})
		return 0, false
	}
	return chatID, true
}
