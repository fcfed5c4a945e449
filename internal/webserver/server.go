// Package webserver implements the inbound webhook endpoint and the
// authenticated admin REST API on top of gin.
package webserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/database"
)

const shutdownTimeout = 10 * time.Second

// Sender delivers a text message to a chat. The Telegram bot satisfies
// this in production; tests substitute a fake.
type Sender interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
}

// Server hosts the webhook and admin API.
type Server struct {
	cfg    config.WebConfig
	store  database.Store
	sender Sender
	botID  int64
	log    *slog.Logger

	httpServer *http.Server
}

// NewServer creates the web server. botID scopes all config operations
// to this bot instance.
func NewServer(cfg config.WebConfig, store database.Store, sender Sender, botID int64, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		store:  store,
		sender: sender,
		botID:  botID,
		log:    logger.With("component", "webserver"),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router builds the gin engine with all routes registered. Exposed for
// tests so they can drive the handlers through httptest.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/ping", s.handlePing)
	router.POST("/webhook", s.handleWebhook)
	router.POST("/auth/login", s.handleLogin)

	api := router.Group("/api")
	api.Use(s.authMiddleware())
	{
		api.GET("/configs", s.handleListConfigs)
		api.GET("/configs/:chat_id", s.handleGetConfig)
		api.PUT("/configs/:chat_id", s.handleUpdateConfig)
		api.DELETE("/configs/:chat_id", s.handleDeleteConfig)
		api.POST("/configs/:chat_id/reset", s.handleResetConfig)
		api.GET("/configs/:chat_id/export", s.handleExportConfig)
		api.GET("/stats/:chat_id", s.handleChatStats)
	}

	return router
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("Web server listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.log.Error("Web server failed", "error", err)
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
	}

	s.log.Info("Shutting down web server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Web server shutdown failed", "error", err)
		return fmt.Errorf("web server shutdown failed: %w", err)
	}

	s.log.Info("Web server stopped gracefully.")
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("HTTP request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
