package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/zulu-club/zulubot/internal/models"
)

// TwilioOpts holds configuration options for the Twilio WhatsApp backend.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	FromWhats  string
}

// TwilioOption defines a configuration option for the Twilio backend.
type TwilioOption func(*TwilioOpts)

// WithTwilioAccountSID sets the Twilio account SID.
func WithTwilioAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithTwilioAuthToken sets the Twilio auth token.
func WithTwilioAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithTwilioFromNumber sets the sending WhatsApp number.
func WithTwilioFromNumber(from string) TwilioOption {
	return func(o *TwilioOpts) { o.FromWhats = from }
}

// TwilioService delivers messages through the Twilio WhatsApp API.
type TwilioService struct {
	client    *twilio.RestClient
	fromWhats string // WhatsApp number in "whatsapp:+1234567890" format
}

// NewTwilioService creates a Twilio-backed delivery service, falling back to
// TWILIO_* environment variables for any unset option.
func NewTwilioService(opts ...TwilioOption) (*TwilioService, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.FromWhats == "" {
		cfg.FromWhats = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("Twilio client config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"FromWhats_set", cfg.FromWhats != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.FromWhats == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &TwilioService{
		client:    client,
		fromWhats: "whatsapp:" + cfg.FromWhats,
	}, nil
}

// ValidateAndCanonicalizeRecipient normalizes the recipient phone number.
func (s *TwilioService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return CanonicalizeRecipient(recipient)
}

// SendTextMessage sends a WhatsApp text message using the Twilio API.
func (s *TwilioService) SendTextMessage(ctx context.Context, to string, body string) error {
	if body == "" {
		return models.ErrEmptyMessageBody
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom(s.fromWhats)
	params.SetBody(body)

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("TwilioService.SendTextMessage failed", "to", to, "error", err)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}
	slog.Debug("TwilioService.SendTextMessage: message sent", "to", to)
	return nil
}

// SendImageMessage sends an image as a media message with the caption as body.
func (s *TwilioService) SendImageMessage(ctx context.Context, to string, imageURL string, caption string) error {
	if imageURL == "" {
		return models.ErrEmptyMessageBody
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + to)
	params.SetFrom(s.fromWhats)
	params.SetMediaUrl([]string{imageURL})
	if caption != "" {
		params.SetBody(caption)
	}

	_, err := s.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("TwilioService.SendImageMessage failed", "to", to, "error", err)
		return fmt.Errorf("failed to send media message to %s: %w", to, err)
	}
	slog.Debug("TwilioService.SendImageMessage: media message sent", "to", to)
	return nil
}

// Start is a no-op; the Twilio backend is purely request/response.
func (s *TwilioService) Start(ctx context.Context) error {
	return nil
}

// Stop is a no-op for the Twilio backend.
func (s *TwilioService) Stop() error {
	return nil
}
