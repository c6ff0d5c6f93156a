// Package messaging defines the delivery sink abstraction used to push
// outbound WhatsApp messages, with Gallabox, Twilio and direct-WhatsApp
// backends.
package messaging

import (
	"context"
	"strings"

	"github.com/zulu-club/zulubot/internal/models"
)

// Service defines a pluggable message delivery abstraction.
// Delivery is best effort: callers log failures and move on, they never
// surface them to the webhook caller.
type Service interface {
	// ValidateAndCanonicalizeRecipient validates and canonicalizes a recipient
	// identifier. Returns the canonicalized recipient and an error if
	// validation fails.
	ValidateAndCanonicalizeRecipient(recipient string) (string, error)

	// SendTextMessage sends a plain text message to a recipient.
	SendTextMessage(ctx context.Context, to string, body string) error

	// SendImageMessage sends an image by URL with an optional caption.
	SendImageMessage(ctx context.Context, to string, imageURL string, caption string) error

	// Start begins any background processing the backend needs.
	Start(ctx context.Context) error

	// Stop stops background processing and cleans up resources.
	Stop() error
}

// CanonicalizeRecipient normalizes a phone-number recipient to E.164-ish
// form: separators stripped, leading + added when missing. Shared by the
// backends, which may apply further provider-specific prefixes.
func CanonicalizeRecipient(recipient string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(recipient))

	if cleaned == "" {
		return "", models.ErrEmptyRecipient
	}
	digits := strings.TrimPrefix(cleaned, "+")
	if digits == "" {
		return "", models.ErrInvalidRecipient
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return "", models.ErrInvalidRecipient
		}
	}
	return "+" + digits, nil
}
