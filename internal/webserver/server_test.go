package webserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mvolkov/botplatform/internal/config"
	"github.com/mvolkov/botplatform/internal/database"
)

const testBotID = 7

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSender struct {
	sent []sentMessage
	err  error
}

type sentMessage struct {
	chatID int64
	text   string
}

func (f *fakeSender) SendMessage(_ context.Context, chatID int64, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{chatID: chatID, text: text})
	return nil
}

func newTestServer(t *testing.T) (*Server, *fakeSender) {
	t.Helper()

	db, err := database.NewDB(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	sender := &fakeSender{}
	cfg := config.WebConfig{
		Addr:          ":0",
		AdminUsername: "admin",
		AdminPassword: "correct-horse",
		JWTSecret:     "0123456789abcdef0123456789abcdef",
		TokenTTL:      time.Hour,
	}
	return NewServer(cfg, database.NewStore(db, nil), sender, testBotID, nil), sender
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/auth/login", "",
		map[string]string{"username": "admin", "password": "correct-horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("login returned %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode login response: %v", err)
	}
	if resp.Token == "" {
		t.Fatal("login returned empty token")
	}
	return resp.Token
}

func TestPing(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)

	w := doJSON(t, srv.Router(), http.MethodGet, "/ping", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("ping returned %d, want 200", w.Code)
	}
}

func TestWebhook(t *testing.T) {
	t.Parallel()
	srv, sender := newTestServer(t)
	router := srv.Router()

	// Valid notification is forwarded.
	w := doJSON(t, router, http.MethodPost, "/webhook", "",
		map[string]any{"type": "notification", "chat_id": 100, "message": "deploy finished"})
	if w.Code != http.StatusOK {
		t.Fatalf("webhook returned %d: %s", w.Code, w.Body.String())
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sender called %d times, want 1", len(sender.sent))
	}
	if sender.sent[0].chatID != 100 || sender.sent[0].text != "deploy finished" {
		t.Errorf("sent = %+v, want chat 100 with message", sender.sent[0])
	}

	// Unknown type is accepted but ignored.
	w = doJSON(t, router, http.MethodPost, "/webhook", "",
		map[string]any{"type": "heartbeat", "chat_id": 100})
	if w.Code != http.StatusAccepted {
		t.Errorf("unknown type returned %d, want 202", w.Code)
	}
	if len(sender.sent) != 1 {
		t.Errorf("unknown type triggered a send")
	}

	// Malformed payloads are rejected.
	for _, body := range []any{
		map[string]any{"chat_id": 100, "message": "no type"},
		map[string]any{"type": "notification", "message": "no chat"},
		map[string]any{"type": "notification", "chat_id": 100},
	} {
		w = doJSON(t, router, http.MethodPost, "/webhook", "", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("webhook with %v returned %d, want 400", body, w.Code)
		}
	}
}

func TestWebhookSenderFailure(t *testing.T) {
	t.Parallel()
	srv, sender := newTestServer(t)
	sender.err = fmt.Errorf("telegram unavailable")

	w := doJSON(t, srv.Router(), http.MethodPost, "/webhook", "",
		map[string]any{"type": "notification", "chat_id": 100, "message": "hi"})
	if w.Code != http.StatusBadGateway {
		t.Errorf("webhook with failing sender returned %d, want 502", w.Code)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	router := srv.Router()

	tests := []map[string]string{
		{"username": "admin", "password": "wrong"},
		{"username": "intruder", "password": "correct-horse"},
		{"username": "admin"},
	}
	for _, body := range tests {
		w := doJSON(t, router, http.MethodPost, "/auth/login", "", body)
		if w.Code == http.StatusOK {
			t.Errorf("login with %v succeeded, want rejection", body)
		}
	}
}

func TestAPIRequiresToken(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	router := srv.Router()

	w := doJSON(t, router, http.MethodGet, "/api/configs", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token returned %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/api/configs", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("garbage token returned %d, want 401", w.Code)
	}
}

func TestConfigLifecycleViaAPI(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	router := srv.Router()
	token := login(t, router)

	// Missing config.
	w := doJSON(t, router, http.MethodGet, "/api/configs/100", token, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get missing config returned %d, want 404", w.Code)
	}

	// Create via partial update.
	w = doJSON(t, router, http.MethodPut, "/api/configs/100", token, map[string]any{
		"chat_title":     "Support Chat",
		"auto_responses": map[string]string{"привет": "Здравствуйте!"},
		"blocked_words":  []string{"казино"},
		"warn_threshold": 2,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("update returned %d: %s", w.Code, w.Body.String())
	}

	var cfg database.BotConfig
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg.ChatTitle != "Support Chat" || cfg.WarnThreshold != 2 {
		t.Errorf("config = %+v, want updated fields", cfg)
	}
	if cfg.MaxMessageLength != database.DefaultMaxMessageLength {
		t.Errorf("untouched field changed: MaxMessageLength = %d", cfg.MaxMessageLength)
	}

	// Partial update leaves other fields alone.
	w = doJSON(t, router, http.MethodPut, "/api/configs/100", token, map[string]any{
		"welcome_message": "hello there",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("second update returned %d", w.Code)
	}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to decode config: %v", err)
	}
	if cfg.WarnThreshold != 2 || cfg.AutoResponses["привет"] == "" {
		t.Errorf("partial update clobbered fields: %+v", cfg)
	}

	// Invalid thresholds rejected.
	w = doJSON(t, router, http.MethodPut, "/api/configs/100", token, map[string]any{
		"max_exclamations": -1,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("negative threshold returned %d, want 400", w.Code)
	}

	// Export.
	w = doJSON(t, router, http.MethodGet, "/api/configs/100/export", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("export returned %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Error("export missing Content-Disposition header")
	}

	// Reset brings thresholds back to defaults but keeps identity.
	w = doJSON(t, router, http.MethodPost, "/api/configs/100/reset", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("reset returned %d", w.Code)
	}
	cfg = database.BotConfig{}
	if err := json.Unmarshal(w.Body.Bytes(), &cfg); err != nil {
		t.Fatalf("failed to decode reset config: %v", err)
	}
	if cfg.WarnThreshold != database.DefaultWarnThreshold {
		t.Errorf("reset WarnThreshold = %d, want default", cfg.WarnThreshold)
	}
	if cfg.ChatTitle != "Support Chat" {
		t.Errorf("reset dropped chat title: %q", cfg.ChatTitle)
	}
	if len(cfg.AutoResponses) != 0 {
		t.Errorf("reset kept auto responses: %v", cfg.AutoResponses)
	}

	// List and delete.
	w = doJSON(t, router, http.MethodGet, "/api/configs", token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("list returned %d", w.Code)
	}

	w = doJSON(t, router, http.MethodDelete, "/api/configs/100", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("delete returned %d", w.Code)
	}
	w = doJSON(t, router, http.MethodGet, "/api/configs/100", token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", w.Code)
	}
}

func TestChatStatsEndpoint(t *testing.T) {
	t.Parallel()
	srv, _ := newTestServer(t)
	router := srv.Router()
	token := login(t, router)

	w := doJSON(t, router, http.MethodGet, "/api/stats/100", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("stats returned %d: %s", w.Code, w.Body.String())
	}

	var stats database.ChatStats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("failed to decode stats: %v", err)
	}
	if stats.TotalMessages != 0 {
		t.Errorf("TotalMessages = %d, want 0 for empty chat", stats.TotalMessages)
	}

	w = doJSON(t, router, http.MethodGet, "/api/stats/100?days=abc", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad days param returned %d, want 400", w.Code)
	}
}
