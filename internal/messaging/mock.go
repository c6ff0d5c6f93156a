package messaging

import (
	"context"
	"sync"
)

// SentMessage records one delivery made through the mock service.
type SentMessage struct {
	To       string
	Body     string
	ImageURL string
}

// MockService implements Service in memory for tests.
// In tests, use NewMockService() instead of a real backend to avoid network calls.
type MockService struct {
	mu            sync.Mutex
	TextMessages  []SentMessage
	ImageMessages []SentMessage
	// SendErr, when set, is returned from every send call.
	SendErr error
}

// NewMockService creates an empty mock delivery service.
func NewMockService() *MockService {
	return &MockService{}
}

// ValidateAndCanonicalizeRecipient applies the shared canonicalization.
func (m *MockService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return CanonicalizeRecipient(recipient)
}

// SendTextMessage records the text message.
func (m *MockService) SendTextMessage(ctx context.Context, to string, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.TextMessages = append(m.TextMessages, SentMessage{To: to, Body: body})
	return nil
}

// SendImageMessage records the image message.
func (m *MockService) SendImageMessage(ctx context.Context, to string, imageURL string, caption string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	m.ImageMessages = append(m.ImageMessages, SentMessage{To: to, Body: caption, ImageURL: imageURL})
	return nil
}

// Start is a no-op.
func (m *MockService) Start(ctx context.Context) error { return nil }

// Stop is a no-op.
func (m *MockService) Stop() error { return nil }

// Sent returns how many deliveries of both kinds were recorded.
func (m *MockService) Sent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.TextMessages) + len(m.ImageMessages)
}
