package flow

import (
	"strings"
	"testing"
)

func TestResolveKeywordMatch(t *testing.T) {
	r := NewFallbackResolver()
	reply := r.Resolve("Привет, бот!")
	if !strings.Contains(reply, "AI-фитнес тренер") {
		t.Errorf("expected greeting reply, got %q", reply)
	}
}

func TestResolveCaseInsensitive(t *testing.T) {
	r := NewFallbackResolver()
	if r.Resolve("ПРИВЕТ") != r.Resolve("привет") {
		t.Error("expected matching to be case-insensitive")
	}
}

func TestResolveSubstringContainment(t *testing.T) {
	r := NewFallbackResolver()
	reply := r.Resolve("расскажи как похудеть быстро")
	if !strings.Contains(reply, "Дефицит калорий") {
		t.Errorf("expected weight-loss advice, got %q", reply)
	}
}

func TestResolveDefault(t *testing.T) {
	r := NewFallbackResolver()
	if got := r.Resolve("что-то совсем другое"); got != DefaultFallbackReply {
		t.Errorf("expected default reply, got %q", got)
	}
}

func TestResolveTotal(t *testing.T) {
	r := NewFallbackResolver()
	for _, msg := range []string{"", "   ", "hello", "12345", "привет и питание"} {
		if r.Resolve(msg) == "" {
			t.Errorf("expected non-empty reply for %q", msg)
		}
	}
}

func TestResolveFirstMatchWins(t *testing.T) {
	r := NewFallbackResolver()
	// "привет" is declared before "питание"; a message containing both must
	// resolve to the greeting.
	reply := r.Resolve("привет, расскажи про питание")
	if !strings.Contains(reply, "AI-фитнес тренер") {
		t.Errorf("expected first declared rule to win, got %q", reply)
	}
}
