// Package models defines the core data structures for zulubot.
//
// It includes the product catalog record, conversation turns, and the
// webhook/response envelopes shared across modules.
package models

import (
	"errors"
	"strings"
)

// TurnRole identifies which party produced a conversation turn.
type TurnRole string

const (
	// TurnRoleUser marks a turn sent by the end user.
	TurnRoleUser TurnRole = "user"
	// TurnRoleAssistant marks a turn produced by the bot.
	TurnRoleAssistant TurnRole = "assistant"
)

// Validation constants for input validation
const (
	// MaxMessageLength defines the maximum accepted inbound message length
	MaxMessageLength = 4096
)

// Error variables for better error handling and testability
var (
	// ErrEmptyRecipient indicates a send was attempted without a recipient.
	ErrEmptyRecipient = errors.New("recipient cannot be empty")
	// ErrInvalidRecipient indicates the recipient failed canonicalization.
	ErrInvalidRecipient = errors.New("recipient must be a phone number in E.164 format")
	// ErrEmptyMessageBody indicates a send was attempted without a body.
	ErrEmptyMessageBody = errors.New("message body cannot be empty")
)

// Product is a single catalog record. Records are immutable once loaded.
type Product struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Price    string `json:"price"`
	ImageURL string `json:"image_url"`
}

// Turn is one message in a conversation session.
type Turn struct {
	Role    TurnRole `json:"role"`
	Content string   `json:"content"`
}

// WebhookEnvelope is the provider-shaped JSON body posted to the webhook.
// Only the fields the bot reads are modeled; everything else is ignored.
type WebhookEnvelope struct {
	Data WebhookData `json:"data"`
}

// WebhookData carries the sender identifier and message payload.
type WebhookData struct {
	From    string         `json:"from"`
	Message WebhookMessage `json:"message"`
}

// WebhookMessage carries the inbound message text.
type WebhookMessage struct {
	Text string `json:"text"`
}

// SenderID returns the trimmed sender identifier from the envelope.
func (e WebhookEnvelope) SenderID() string {
	return strings.TrimSpace(e.Data.From)
}

// Text returns the trimmed message text from the envelope.
func (e WebhookEnvelope) Text() string {
	return strings.TrimSpace(e.Data.Message.Text)
}
