// Package crm implements the outbound client for the ticketing system.
// The moderation pipeline opens a ticket when a user escalates to a mute.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Ticket is the payload exchanged with the ticketing system.
type Ticket struct {
	ID          string    `json:"id,omitempty"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	ChatID      int64     `json:"chat_id"`
	UserID      int64     `json:"user_id"`
	Status      string    `json:"status,omitempty"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}

// Client talks to the ticketing system over HTTP with bearer auth.
// Failed requests are not retried; callers decide what a lost ticket
// means for them.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient creates a ticketing client. baseURL must not be empty.
func NewClient(baseURL, token string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("CRM base URL cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("component", "crm_client"),
	}, nil
}

// CreateTicket submits a new ticket and returns the created ticket as
// reported by the server (including its assigned ID).
func (c *Client) CreateTicket(ctx context.Context, ticket Ticket) (Ticket, error) {
	body, err := json.Marshal(ticket)
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to marshal ticket: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tickets", bytes.NewReader(body))
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to create ticket request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Ticket creation request failed", "chat_id", ticket.ChatID, "error", err)
		return Ticket{}, fmt.Errorf("ticket creation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Ticket{}, c.statusError("create ticket", resp)
	}

	var created Ticket
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return Ticket{}, fmt.Errorf("failed to decode created ticket: %w", err)
	}

	c.log.InfoContext(ctx, "Ticket created", "ticket_id", created.ID, "chat_id", created.ChatID)
	return created, nil
}

// GetTicket fetches a ticket by ID.
func (c *Client) GetTicket(ctx context.Context, id string) (Ticket, error) {
	if id == "" {
		return Ticket{}, fmt.Errorf("ticket id cannot be empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tickets/"+id, nil)
	if err != nil {
		return Ticket{}, fmt.Errorf("failed to create ticket request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.ErrorContext(ctx, "Ticket fetch request failed", "ticket_id", id, "error", err)
		return Ticket{}, fmt.Errorf("ticket fetch request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Ticket{}, c.statusError("get ticket", resp)
	}

	var ticket Ticket
	if err := json.NewDecoder(resp.Body).Decode(&ticket); err != nil {
		return Ticket{}, fmt.Errorf("failed to decode ticket: %w", err)
	}

	return ticket, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func (c *Client) statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("%s returned status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}
