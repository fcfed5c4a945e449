// Package respond implements the auto-response resolver: matching an
// incoming message against a chat's configured trigger phrases.
package respond

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/mvolkov/botplatform/internal/database"
)

// Resolve matches text against cfg's auto-response triggers and returns
// the configured reply. Matching is case-insensitive; a trigger hits on
// exact match or substring occurrence. When several triggers match, the
// trigger with the most characters wins, with ties broken
// lexicographically so the same input always yields the same reply.
// Returns ("", false) on no match.
func Resolve(text string, cfg *database.BotConfig) (string, bool) {
	if cfg == nil || len(cfg.AutoResponses) == 0 || text == "" {
		return "", false
	}

	lower := strings.ToLower(text)

	var matched []string
	for trigger := range cfg.AutoResponses {
		if trigger == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(trigger)) {
			matched = append(matched, trigger)
		}
	}
	if len(matched) == 0 {
		return "", false
	}

	sort.Slice(matched, func(i, j int) bool {
		// Character count, not byte count, so multi-byte triggers do
		// not outrank longer ASCII ones.
		li, lj := utf8.RuneCountInString(matched[i]), utf8.RuneCountInString(matched[j])
		if li != lj {
			return li > lj
		}
		return matched[i] < matched[j]
	})

	return cfg.AutoResponses[matched[0]], true
}
