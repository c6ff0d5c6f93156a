package flow

import (
	"context"
	"log/slog"

	"github.com/openai/openai-go"

	"github.com/zulu-club/zulubot/internal/genai"
	"github.com/zulu-club/zulubot/internal/models"
)

// Constants for composer configuration
const (
	// MaxHistoryTurns is how many trailing turns are sent to the oracle.
	MaxHistoryTurns = 6
	// ComposerTemperature keeps replies varied but on-message.
	ComposerTemperature = 0.7
	// ComposerMaxTokens bounds reply length; WhatsApp favors short messages.
	ComposerMaxTokens = 300
)

// DefaultFallbackReply is sent whenever the oracle is unavailable.
const DefaultFallbackReply = "Hi! Welcome to Zulu Club 👋 How can we help you today?"

// DefaultKnowledgeText describes the brand when no knowledge file is configured.
const DefaultKnowledgeText = `Zulu Club is a retail brand offering curated fashion, accessories and lifestyle products with fast delivery.`

const composerGuidelines = `You are Zulu Club's WhatsApp shopping assistant.
Be warm, concise and conversational; this is a chat, not an email.
Highlight products and offers from the brand description when relevant.
Never invent prices, stock or delivery promises that are not in the brand description.
If you don't know something, say so and offer to connect the customer with the team.`

// ComposerOpts holds configuration options for the reply composer.
type ComposerOpts struct {
	Knowledge string
	Fallback  string
}

// ComposerOption defines a configuration option for the reply composer.
type ComposerOption func(*ComposerOpts)

// WithKnowledge sets the brand/product knowledge text embedded in the preamble.
func WithKnowledge(text string) ComposerOption {
	return func(o *ComposerOpts) { o.Knowledge = text }
}

// WithFallbackReply overrides the canned reply used when the oracle fails.
func WithFallbackReply(text string) ComposerOption {
	return func(o *ComposerOpts) { o.Fallback = text }
}

// Composer produces natural-language replies via the completion oracle,
// falling back to a canned greeting when the oracle is unavailable.
type Composer struct {
	client    genai.ClientInterface
	knowledge string
	fallback  string
}

// NewComposer creates a composer over the given oracle client.
// A nil client is allowed and always yields the fallback reply.
func NewComposer(client genai.ClientInterface, opts ...ComposerOption) *Composer {
	cfg := ComposerOpts{Knowledge: DefaultKnowledgeText, Fallback: DefaultFallbackReply}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Composer{client: client, knowledge: cfg.Knowledge, fallback: cfg.Fallback}
}

// Fallback returns the canned reply used when the oracle fails.
func (c *Composer) Fallback() string {
	return c.fallback
}

// Compose returns a reply for the message given the recent history. The
// result is always non-empty: every oracle failure maps to the fallback.
func (c *Composer) Compose(ctx context.Context, message string, history []models.Turn) string {
	if c.client == nil {
		slog.Debug("Composer.Compose: no oracle client configured, using fallback")
		return c.fallback
	}

	if len(history) > MaxHistoryTurns {
		history = history[len(history)-MaxHistoryTurns:]
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(composerGuidelines+"\n\nBrand description:\n"+c.knowledge))
	for _, turn := range history {
		switch turn.Role {
		case models.TurnRoleAssistant:
			messages = append(messages, openai.AssistantMessage(turn.Content))
		default:
			messages = append(messages, openai.UserMessage(turn.Content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	reply, err := c.client.GenerateWithParams(ctx, messages, genai.GenerationParams{
		Temperature: ComposerTemperature,
		MaxTokens:   ComposerMaxTokens,
	})
	if err != nil || reply == "" {
		slog.Warn("Composer.Compose: oracle call failed, using fallback", "error", err)
		return c.fallback
	}
	return reply
}
