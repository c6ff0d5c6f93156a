package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/zulu-club/zulubot/internal/catalog"
	"github.com/zulu-club/zulubot/internal/messaging"
	"github.com/zulu-club/zulubot/internal/models"
	"github.com/zulu-club/zulubot/internal/store"
)

// Bot runs the per-message pipeline: record the user turn, try a catalog
// match, otherwise compose a free-text reply, deliver, record the assistant
// turn. Every failure along the way degrades to a best-effort reply; nothing
// propagates to the webhook caller.
type Bot struct {
	catalog    *catalog.Catalog
	classifier *Classifier
	composer   *Composer
	store      store.Store
	msgService messaging.Service
	sampleSize int
}

// NewBot wires the bot's collaborators. All of them are required; the
// catalog may be empty, in which case classification never matches.
func NewBot(cat *catalog.Catalog, classifier *Classifier, composer *Composer, st store.Store, msgService messaging.Service) *Bot {
	return &Bot{
		catalog:    cat,
		classifier: classifier,
		composer:   composer,
		store:      st,
		msgService: msgService,
		sampleSize: catalog.DefaultSampleSize,
	}
}

// HandleMessage processes one inbound message for a session to completion.
func (b *Bot) HandleMessage(ctx context.Context, sessionID, text string) {
	slog.Debug("Bot.HandleMessage: processing inbound message", "session", sessionID, "text_length", len(text))

	if err := b.store.AppendTurn(ctx, sessionID, models.Turn{Role: models.TurnRoleUser, Content: text}); err != nil {
		slog.Error("Bot.HandleMessage: failed to record user turn", "error", err, "session", sessionID)
	}

	if key, ok := b.classifier.Classify(ctx, text, b.catalog.Keys()); ok {
		if b.replyWithCatalog(ctx, sessionID, key) {
			return
		}
		// Empty sample (collapsed bucket): fall through to free text.
		slog.Debug("Bot.HandleMessage: category matched but bucket empty", "session", sessionID, "category", key)
	}

	b.replyWithComposer(ctx, sessionID, text)
}

// Greet sends the canned greeting, used for empty inbound messages when the
// greeting behavior is configured.
func (b *Bot) Greet(ctx context.Context, sessionID string) {
	b.deliverText(ctx, sessionID, b.composer.Fallback())
	b.recordAssistantTurn(ctx, sessionID, b.composer.Fallback())
}

// replyWithCatalog sends a sampled product selection for the category.
// Returns false when the bucket yielded nothing to send.
func (b *Bot) replyWithCatalog(ctx context.Context, sessionID, key string) bool {
	products := b.catalog.Sample(key, b.sampleSize)
	if len(products) == 0 {
		return false
	}

	var sb strings.Builder
	sb.WriteString("Here are some picks for you:\n")
	for _, p := range products {
		sb.WriteString(fmt.Sprintf("• %s", p.Name))
		if p.Price != "" {
			sb.WriteString(" — " + p.Price)
		}
		sb.WriteByte('\n')
	}
	summary := strings.TrimRight(sb.String(), "\n")

	b.deliverText(ctx, sessionID, summary)
	for _, p := range products {
		if p.ImageURL == "" {
			continue
		}
		caption := p.Name
		if p.Price != "" {
			caption += " — " + p.Price
		}
		if err := b.msgService.SendImageMessage(ctx, sessionID, p.ImageURL, caption); err != nil {
			slog.Error("Bot.replyWithCatalog: image delivery failed", "error", err, "session", sessionID, "product", p.Name)
		}
	}

	b.recordAssistantTurn(ctx, sessionID, summary)
	slog.Info("Bot.replyWithCatalog: catalog reply sent", "session", sessionID, "category", key, "products", len(products))
	return true
}

// replyWithComposer sends a free-text oracle reply.
func (b *Bot) replyWithComposer(ctx context.Context, sessionID, text string) {
	history, err := b.store.RecentHistory(ctx, sessionID, store.DefaultRecentLimit)
	if err != nil {
		slog.Error("Bot.replyWithComposer: failed to load recent history", "error", err, "session", sessionID)
	}
	// The user turn just recorded belongs to the prompt, not the history tail.
	if n := len(history); n > 0 && history[n-1].Role == models.TurnRoleUser && history[n-1].Content == text {
		history = history[:n-1]
	}

	reply := b.composer.Compose(ctx, text, history)
	b.deliverText(ctx, sessionID, reply)
	b.recordAssistantTurn(ctx, sessionID, reply)
	slog.Info("Bot.replyWithComposer: free-text reply sent", "session", sessionID, "reply_length", len(reply))
}

// deliverText pushes a text message, logging delivery failures only.
func (b *Bot) deliverText(ctx context.Context, sessionID, body string) {
	if err := b.msgService.SendTextMessage(ctx, sessionID, body); err != nil {
		slog.Error("Bot.deliverText: delivery failed", "error", err, "session", sessionID)
	}
}

// recordAssistantTurn appends the assistant turn, logging store failures only.
func (b *Bot) recordAssistantTurn(ctx context.Context, sessionID, content string) {
	if err := b.store.AppendTurn(ctx, sessionID, models.Turn{Role: models.TurnRoleAssistant, Content: content}); err != nil {
		slog.Error("Bot.recordAssistantTurn: failed to record assistant turn", "error", err, "session", sessionID)
	}
}
