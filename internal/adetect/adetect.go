// Package adetect provides advertisement detection backends for the
// classifier: a disabled no-op and a Gemini-backed detector.
package adetect

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/mvolkov/botplatform/internal/config"
)

const (
	maxRetries = 2
	retryDelay = 2 * time.Second
)

// Disabled is a detector that never flags anything. Used when no AI
// API key is configured.
type Disabled struct{}

// IsAdvertisement always returns false.
func (Disabled) IsAdvertisement(_ context.Context, _ string) (bool, error) {
	return false, nil
}

// GeminiDetector asks the Gemini API whether a message is an
// advertisement, using JSON schema mode for a structured yes/no answer.
type GeminiDetector struct {
	client    *genai.Client
	log       *slog.Logger
	modelName string
	cfg       *genai.GenerateContentConfig
}

var adSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"is_advertisement": {Type: genai.TypeBoolean, Description: "True if the message is promotional or advertising content."},
	},
	Required: []string{"is_advertisement"},
}

const adSystemInstruction = "You are a chat moderation assistant. " +
	"Decide whether the given message is promotional or advertising content " +
	"(selling goods or services, recruiting to channels or groups, referral links, job spam). " +
	"Answer strictly in the requested JSON format."

// NewGemini creates a Gemini-backed detector from the AI configuration.
// The API key must be set; callers use Disabled when it is not.
func NewGemini(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (*GeminiDetector, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("AI API key is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Temperature
	contentCfg := &genai.GenerateContentConfig{
		Temperature:       &temperature,
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: adSystemInstruction}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    adSchema,
	}

	logger := log.With("component", "ad_detector")
	logger.Info("Gemini advertisement detector initialized", "model", cfg.Model)
	return &GeminiDetector{
		client:    gi,
		log:       logger,
		modelName: cfg.Model,
		cfg:       contentCfg,
	}, nil
}

// IsAdvertisement classifies one message. API failures are returned as
// errors; the classifier treats them as "not an ad".
func (d *GeminiDetector) IsAdvertisement(ctx context.Context, text string) (bool, error) {
	contents := []*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}

	resp, err := d.generateWithRetries(ctx, contents)
	if err != nil {
		return false, fmt.Errorf("advertisement detection failed: %w", err)
	}

	var verdict struct {
		IsAdvertisement bool `json:"is_advertisement"`
	}
	if err := json.Unmarshal([]byte(resp.Text()), &verdict); err != nil {
		d.log.WarnContext(ctx, "Failed to parse detector response", "error", err, "response", resp.Text())
		return false, fmt.Errorf("invalid detector response: %w", err)
	}

	d.log.DebugContext(ctx, "Advertisement verdict", "is_advertisement", verdict.IsAdvertisement)
	return verdict.IsAdvertisement, nil
}

func (d *GeminiDetector) generateWithRetries(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= maxRetries; i++ {
		resp, err = d.client.Models.GenerateContent(ctx, d.modelName, contents, d.cfg)
		if err == nil {
			return resp, nil
		}

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) && i < maxRetries {
			d.log.WarnContext(ctx, "Gemini API call failed, retrying",
				"attempt", i+1, "code", apiErr.Code, "delay", retryDelay)
			time.Sleep(retryDelay)
			continue
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return nil, err
}
