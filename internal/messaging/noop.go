package messaging

import (
	"context"
	"log/slog"
)

// NoopService satisfies Service when no delivery backend is configured.
// Sends are logged and dropped, keeping the bot responsive to webhooks even
// without provider credentials.
type NoopService struct{}

// NewNoopService creates the drop-everything delivery service.
func NewNoopService() *NoopService {
	return &NoopService{}
}

// ValidateAndCanonicalizeRecipient applies the shared canonicalization.
func (n *NoopService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return CanonicalizeRecipient(recipient)
}

// SendTextMessage logs and drops the message.
func (n *NoopService) SendTextMessage(ctx context.Context, to string, body string) error {
	slog.Warn("NoopService.SendTextMessage: no delivery backend configured, dropping message", "to", to, "body_length", len(body))
	return nil
}

// SendImageMessage logs and drops the message.
func (n *NoopService) SendImageMessage(ctx context.Context, to string, imageURL string, caption string) error {
	slog.Warn("NoopService.SendImageMessage: no delivery backend configured, dropping message", "to", to)
	return nil
}

// Start is a no-op.
func (n *NoopService) Start(ctx context.Context) error { return nil }

// Stop is a no-op.
func (n *NoopService) Stop() error { return nil }
