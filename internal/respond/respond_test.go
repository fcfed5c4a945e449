package respond

import (
	"testing"

	"github.com/mvolkov/botplatform/internal/database"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	cfg := database.NewDefaultBotConfig(1, 100)
	cfg.AutoResponses = database.StringMap{
		"привет": "Здравствуйте!",
		"hours":  "We are open 9-18.",
	}

	tests := []struct {
		name      string
		text      string
		wantReply string
		wantOK    bool
	}{
		{name: "exact match", text: "привет", wantReply: "Здравствуйте!", wantOK: true},
		{name: "substring match", text: "всем привет в чате", wantReply: "Здравствуйте!", wantOK: true},
		{name: "case-insensitive match", text: "ПРИВЕТ", wantReply: "Здравствуйте!", wantOK: true},
		{name: "second trigger", text: "what are your hours?", wantReply: "We are open 9-18.", wantOK: true},
		{name: "no match", text: "goodbye", wantOK: false},
		{name: "empty text", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			reply, ok := Resolve(tt.text, cfg)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if reply != tt.wantReply {
				t.Errorf("Resolve(%q) = %q, want %q", tt.text, reply, tt.wantReply)
			}
		})
	}
}

func TestResolveLongestTriggerWins(t *testing.T) {
	t.Parallel()

	cfg := database.NewDefaultBotConfig(1, 100)
	cfg.AutoResponses = database.StringMap{
		"help":        "General help.",
		"help please": "Polite help.",
	}

	reply, ok := Resolve("can you help please", cfg)
	if !ok {
		t.Fatal("Resolve returned no match")
	}
	if reply != "Polite help." {
		t.Errorf("Resolve = %q, want longest trigger's reply %q", reply, "Polite help.")
	}
}

func TestResolveLengthIsInCharacters(t *testing.T) {
	t.Parallel()

	// "приветик" is 8 characters but 16 bytes; the 12-character ASCII
	// trigger must still win.
	cfg := database.NewDefaultBotConfig(1, 100)
	cfg.AutoResponses = database.StringMap{
		"приветик":     "short cyrillic",
		"hello friend": "long ascii",
	}

	reply, ok := Resolve("hello friend, приветик", cfg)
	if !ok {
		t.Fatal("Resolve returned no match")
	}
	if reply != "long ascii" {
		t.Errorf("Resolve = %q, want %q (more characters)", reply, "long ascii")
	}
}

func TestResolveEqualLengthTieIsDeterministic(t *testing.T) {
	t.Parallel()

	cfg := database.NewDefaultBotConfig(1, 100)
	cfg.AutoResponses = database.StringMap{
		"abc": "first",
		"xyz": "second",
	}

	// Both triggers match and have equal length; the lexicographically
	// smaller one must win every time.
	for i := 0; i < 20; i++ {
		reply, ok := Resolve("abc xyz", cfg)
		if !ok {
			t.Fatal("Resolve returned no match")
		}
		if reply != "first" {
			t.Fatalf("Resolve tie-break = %q, want %q", reply, "first")
		}
	}
}

func TestResolveNilAndEmptyConfig(t *testing.T) {
	t.Parallel()

	if _, ok := Resolve("hello", nil); ok {
		t.Error("Resolve with nil config matched")
	}

	cfg := database.NewDefaultBotConfig(1, 100)
	if _, ok := Resolve("hello", cfg); ok {
		t.Error("Resolve with empty responses matched")
	}
}
