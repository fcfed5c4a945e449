package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL, "secret-token", 5*time.Second, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestCreateTicket(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tickets" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q, want application/json", got)
		}

		var ticket Ticket
		if err := json.NewDecoder(r.Body).Decode(&ticket); err != nil {
			t.Fatalf("failed to decode ticket: %v", err)
		}
		if ticket.ChatID != 100 || ticket.UserID != 42 {
			t.Errorf("ticket = %+v, want chat 100 user 42", ticket)
		}

		ticket.ID = "T-1"
		ticket.Status = "open"
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ticket)
	})

	created, err := client.CreateTicket(context.Background(), Ticket{
		Subject:     "User muted",
		Description: "threshold reached",
		ChatID:      100,
		UserID:      42,
	})
	if err != nil {
		t.Fatalf("CreateTicket: %v", err)
	}
	if created.ID != "T-1" {
		t.Errorf("created.ID = %q, want T-1", created.ID)
	}
	if created.Status != "open" {
		t.Errorf("created.Status = %q, want open", created.Status)
	}
}

func TestGetTicket(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/tickets/T-7" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Ticket{ID: "T-7", Subject: "existing", Status: "closed"})
	})

	ticket, err := client.GetTicket(context.Background(), "T-7")
	if err != nil {
		t.Fatalf("GetTicket: %v", err)
	}
	if ticket.ID != "T-7" || ticket.Status != "closed" {
		t.Errorf("ticket = %+v, want T-7 closed", ticket)
	}
}

func TestTicketErrors(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	if _, err := client.GetTicket(context.Background(), "missing"); err == nil {
		t.Error("GetTicket on 404 returned nil error")
	}
	if _, err := client.CreateTicket(context.Background(), Ticket{Subject: "x"}); err == nil {
		t.Error("CreateTicket on 404 returned nil error")
	}
	if _, err := client.GetTicket(context.Background(), ""); err == nil {
		t.Error("GetTicket with empty id returned nil error")
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := NewClient("", "token", time.Second, nil); err == nil {
		t.Error("NewClient with empty base URL returned nil error")
	}
}
