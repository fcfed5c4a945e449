// Package classify implements the message classifier. It assigns each
// message one of four outcomes (ok, spam, offensive, advertisement)
// based on the chat's stored thresholds and word lists.
package classify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mvolkov/botplatform/internal/database"
)

// Outcome is the classification result for a message.
type Outcome string

// Possible classification outcomes, ordered by check priority.
const (
	OutcomeOK            Outcome = "ok"
	OutcomeSpam          Outcome = "spam"
	OutcomeOffensive     Outcome = "offensive"
	OutcomeAdvertisement Outcome = "advertisement"
)

// Decision is an outcome plus a human-readable reason for the audit log.
type Decision struct {
	Outcome Outcome
	Reason  string
}

// Detector decides whether a message is an advertisement. Implementations
// may call external services; errors are treated as "not an ad".
type Detector interface {
	IsAdvertisement(ctx context.Context, text string) (bool, error)
}

// Classifier classifies messages against a chat's configuration.
// The zero Detector (nil) disables advertisement detection.
type Classifier struct {
	detector Detector
	logger   *slog.Logger
}

// New creates a Classifier. detector may be nil.
func New(detector Detector, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Classifier{
		detector: detector,
		logger:   logger.With("component", "classifier"),
	}
}

// Classify assigns an outcome to text using cfg's thresholds and word
// lists. Checks run in a fixed order and the first hit wins:
// spam, then offensive, then advertisement, then ok.
func (c *Classifier) Classify(ctx context.Context, text string, cfg *database.BotConfig) Decision {
	if reason, spam := checkSpam(text, cfg); spam {
		return Decision{Outcome: OutcomeSpam, Reason: reason}
	}

	if word, hit := matchBlockedWord(text, cfg.BlockedWords); hit {
		return Decision{Outcome: OutcomeOffensive, Reason: fmt.Sprintf("contains blocked word %q", word)}
	}

	if c.detector != nil {
		isAd, err := c.detector.IsAdvertisement(ctx, text)
		if err != nil {
			c.logger.WarnContext(ctx, "Advertisement detection failed, treating as not an ad", "error", err)
		} else if isAd {
			return Decision{Outcome: OutcomeAdvertisement, Reason: "flagged by advertisement detector"}
		}
	}

	return Decision{Outcome: OutcomeOK}
}

// checkSpam runs the threshold and heuristic spam checks in order and
// returns the reason for the first one that fires.
func checkSpam(text string, cfg *database.BotConfig) (string, bool) {
	// Length is measured in characters, not bytes, so non-ASCII text
	// is held to the same limit as ASCII.
	if n := utf8.RuneCountInString(text); cfg.MaxMessageLength > 0 && n > cfg.MaxMessageLength {
		return fmt.Sprintf("message length %d exceeds limit %d", n, cfg.MaxMessageLength), true
	}
	if cfg.MaxExclamations > 0 && strings.Count(text, "!") > cfg.MaxExclamations {
		return fmt.Sprintf("exclamation count %d exceeds limit %d", strings.Count(text, "!"), cfg.MaxExclamations), true
	}
	if excessiveCaps(text) {
		return "excessive capitalization", true
	}
	if countEmoji(text) > maxEmoji {
		return "excessive emoji", true
	}
	if containsLink(text) {
		return "contains link", true
	}
	if hasRepeatedRun(text) {
		return "repeated character run", true
	}
	if countNumberGroups(text) > maxNumberGroups {
		return "excessive number groups", true
	}
	return "", false
}

// matchBlockedWord reports the first blocked word that occurs in text
// as a case-insensitive substring.
func matchBlockedWord(text string, blocked database.StringList) (string, bool) {
	if len(blocked) == 0 {
		return "", false
	}
	lower := strings.ToLower(text)
	for _, word := range blocked {
		if word == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(word)) {
			return word, true
		}
	}
	return "", false
}
