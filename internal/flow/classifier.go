// Package flow implements the bot's message handling: category
// classification, reply composition and the webhook orchestration that ties
// catalog, store and delivery together.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/openai/openai-go"

	"github.com/zulu-club/zulubot/internal/genai"
)

// Constants for classifier configuration
const (
	// ClassifierSentinel is the oracle's answer for "no matching category".
	ClassifierSentinel = "none"
	// ClassifierMaxTokens caps the oracle output; the expected answer is one
	// short category key.
	ClassifierMaxTokens = 16
)

const classifierSystemPrompt = `You are a product category classifier for a retail WhatsApp bot.
Given a customer message, answer with exactly one category from the provided list, copied verbatim.
If the message is not asking about products in any listed category, answer exactly "none".
Answer with the category only, no punctuation or explanation.`

// Classifier maps a free-text message to zero-or-one known category key.
type Classifier struct {
	client genai.ClientInterface
}

// NewClassifier creates a classifier over the given oracle client.
// A nil client is allowed and classifies nothing.
func NewClassifier(client genai.ClientInterface) *Classifier {
	return &Classifier{client: client}
}

// Classify returns the matched category key and true, or "" and false when
// the message matches no known category. Oracle failures degrade to a
// non-match so the caller falls through to the free-text reply path.
func (c *Classifier) Classify(ctx context.Context, message string, keys []string) (string, bool) {
	if len(keys) == 0 || c.client == nil {
		return "", false
	}

	userPrompt := fmt.Sprintf("Categories:\n%s\n\nCustomer message: %s", strings.Join(keys, "\n"), message)
	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(classifierSystemPrompt),
		openai.UserMessage(userPrompt),
	}

	answer, err := c.client.GenerateWithParams(ctx, messages, genai.GenerationParams{
		Temperature: 0,
		MaxTokens:   ClassifierMaxTokens,
	})
	if err != nil {
		slog.Warn("Classifier.Classify: oracle call failed, treating as no match", "error", err)
		return "", false
	}

	return ReconcileCategory(answer, keys)
}

// ReconcileCategory matches the oracle's raw answer against the known keys.
// The answer is lowercased and trimmed; the sentinel means no match. The
// oracle may paraphrase, so a bidirectional substring test is allowed. When
// several keys match, the longest key wins, with lexicographic order breaking
// remaining ties, so the result does not depend on map iteration order.
func ReconcileCategory(answer string, keys []string) (string, bool) {
	answer = strings.ToLower(strings.TrimSpace(answer))
	if answer == "" || answer == ClassifierSentinel {
		return "", false
	}

	var candidates []string
	for _, key := range keys {
		if key == "" {
			continue
		}
		if strings.Contains(key, answer) || strings.Contains(answer, key) {
			candidates = append(candidates, key)
		}
	}
	if len(candidates) == 0 {
		slog.Debug("Classifier.ReconcileCategory: oracle answer matched no key", "answer", answer)
		return "", false
	}

	sort.Slice(candidates, func(i, j int) bool {
		if len(candidates[i]) != len(candidates[j]) {
			return len(candidates[i]) > len(candidates[j])
		}
		return candidates[i] < candidates[j]
	})
	return candidates[0], true
}
