package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/zulu-club/zulubot/internal/models"
)

func TestComposeReturnsOracleReply(t *testing.T) {
	oracle := &stubOracle{response: "We have lovely dresses in stock!"}
	c := NewComposer(oracle)

	reply := c.Compose(context.Background(), "do you sell dresses?", nil)
	if reply != "We have lovely dresses in stock!" {
		t.Errorf("unexpected reply: %q", reply)
	}
}

func TestComposeFallbackOnOracleError(t *testing.T) {
	oracle := &stubOracle{err: errors.New("auth failure")}
	c := NewComposer(oracle)

	reply := c.Compose(context.Background(), "hi", nil)
	if reply == "" {
		t.Fatal("composer must never return an empty reply")
	}
	if reply != DefaultFallbackReply {
		t.Errorf("expected fallback reply, got %q", reply)
	}
}

func TestComposeFallbackOnEmptyOracleReply(t *testing.T) {
	oracle := &stubOracle{response: ""}
	c := NewComposer(oracle)

	if reply := c.Compose(context.Background(), "hi", nil); reply != DefaultFallbackReply {
		t.Errorf("expected fallback for empty oracle reply, got %q", reply)
	}
}

func TestComposeNilClientUsesFallback(t *testing.T) {
	c := NewComposer(nil)
	if reply := c.Compose(context.Background(), "hi", nil); reply != DefaultFallbackReply {
		t.Errorf("expected fallback with nil client, got %q", reply)
	}
}

func TestComposeTrimsHistory(t *testing.T) {
	oracle := &stubOracle{response: "sure"}
	c := NewComposer(oracle)

	history := make([]models.Turn, 10)
	for i := range history {
		history[i] = models.Turn{Role: models.TurnRoleUser, Content: "old"}
	}
	c.Compose(context.Background(), "latest", history)

	if len(oracle.calls) != 1 {
		t.Fatalf("expected 1 oracle call, got %d", len(oracle.calls))
	}
	// System preamble + 6 history turns + the new user message.
	if got := len(oracle.calls[0]); got != MaxHistoryTurns+2 {
		t.Errorf("expected %d prompt messages, got %d", MaxHistoryTurns+2, got)
	}
}

func TestComposerCustomKnowledgeAndFallback(t *testing.T) {
	oracle := &stubOracle{err: errors.New("down")}
	c := NewComposer(oracle, WithKnowledge("We sell hats."), WithFallbackReply("Be right back!"))

	if reply := c.Compose(context.Background(), "hi", nil); reply != "Be right back!" {
		t.Errorf("expected custom fallback, got %q", reply)
	}
	if c.Fallback() != "Be right back!" {
		t.Errorf("unexpected Fallback(): %q", c.Fallback())
	}
}
