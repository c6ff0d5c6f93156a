package flow

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zulu-club/zulubot/internal/catalog"
	"github.com/zulu-club/zulubot/internal/genai"
	"github.com/zulu-club/zulubot/internal/messaging"
	"github.com/zulu-club/zulubot/internal/models"
	"github.com/zulu-club/zulubot/internal/store"
)

func newTestBot(records []models.Product, oracle *stubOracle) (*Bot, *messaging.MockService, *store.InMemoryStore) {
	msgService := messaging.NewMockService()
	st := store.NewInMemoryStore()
	var client genai.ClientInterface
	if oracle != nil {
		client = oracle
	}
	bot := NewBot(catalog.New(records), NewClassifier(client), NewComposer(client), st, msgService)
	return bot, msgService, st
}

func TestHandleMessageCatalogPath(t *testing.T) {
	ctx := context.Background()
	records := []models.Product{
		{Name: "Red Dress", Category: "Women's Fashion", Price: "₹999", ImageURL: "http://x/1.jpg"},
	}
	oracle := &stubOracle{response: "women s fashion"}
	bot, msgService, st := newTestBot(records, oracle)

	bot.HandleMessage(ctx, "+911234567890", "show me dresses")

	if len(msgService.TextMessages) != 1 {
		t.Fatalf("expected 1 text message, got %d", len(msgService.TextMessages))
	}
	if !strings.Contains(msgService.TextMessages[0].Body, "Red Dress") {
		t.Errorf("summary should mention the product, got %q", msgService.TextMessages[0].Body)
	}
	if len(msgService.ImageMessages) != 1 {
		t.Fatalf("expected 1 image message, got %d", len(msgService.ImageMessages))
	}
	if msgService.ImageMessages[0].ImageURL != "http://x/1.jpg" {
		t.Errorf("unexpected image URL: %q", msgService.ImageMessages[0].ImageURL)
	}

	history, err := st.History(ctx, "+911234567890")
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected user + assistant turns, got %d", len(history))
	}
	if history[0].Role != models.TurnRoleUser || history[1].Role != models.TurnRoleAssistant {
		t.Errorf("unexpected turn roles: %+v", history)
	}
}

func TestHandleMessageComposerPath(t *testing.T) {
	ctx := context.Background()
	oracle := &stubOracle{response: "none"}
	bot, msgService, st := newTestBot(nil, oracle)

	bot.HandleMessage(ctx, "+911234567890", "hi")

	// Empty catalog: classifier short-circuits, composer replies with the
	// oracle's (canned) text.
	if len(msgService.TextMessages) != 1 {
		t.Fatalf("expected 1 text message, got %d", len(msgService.TextMessages))
	}
	if len(msgService.ImageMessages) != 0 {
		t.Errorf("composer path should not send images, got %d", len(msgService.ImageMessages))
	}

	history, _ := st.History(ctx, "+911234567890")
	if len(history) != 2 {
		t.Fatalf("expected 2 turns recorded, got %d", len(history))
	}
	if history[1].Content != msgService.TextMessages[0].Body {
		t.Errorf("assistant turn should match delivered reply")
	}
}

func TestHandleMessageOracleDownStillReplies(t *testing.T) {
	ctx := context.Background()
	oracle := &stubOracle{err: errors.New("timeout")}
	records := []models.Product{{Name: "Red Dress", Category: "Women's Fashion"}}
	bot, msgService, _ := newTestBot(records, oracle)

	bot.HandleMessage(ctx, "+911234567890", "hello there")

	if len(msgService.TextMessages) != 1 {
		t.Fatalf("expected fallback reply despite oracle failure, got %d messages", len(msgService.TextMessages))
	}
	if msgService.TextMessages[0].Body != DefaultFallbackReply {
		t.Errorf("expected fallback reply, got %q", msgService.TextMessages[0].Body)
	}
}

func TestHandleMessageDeliveryFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	oracle := &stubOracle{response: "none"}
	bot, msgService, st := newTestBot(nil, oracle)
	msgService.SendErr = errors.New("provider 500")

	// Must not panic or propagate; the turn is still recorded.
	bot.HandleMessage(ctx, "+911234567890", "hi")

	history, _ := st.History(ctx, "+911234567890")
	if len(history) != 2 {
		t.Errorf("expected turns recorded despite delivery failure, got %d", len(history))
	}
}

func TestGreetSendsFallback(t *testing.T) {
	ctx := context.Background()
	bot, msgService, st := newTestBot(nil, nil)

	bot.Greet(ctx, "+911234567890")

	if len(msgService.TextMessages) != 1 || msgService.TextMessages[0].Body != DefaultFallbackReply {
		t.Fatalf("expected greeting delivery, got %+v", msgService.TextMessages)
	}
	history, _ := st.History(ctx, "+911234567890")
	if len(history) != 1 || history[0].Role != models.TurnRoleAssistant {
		t.Errorf("expected one assistant turn, got %+v", history)
	}
}
