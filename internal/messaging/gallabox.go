package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/zulu-club/zulubot/internal/models"
)

// Constants for the Gallabox backend
const (
	// DefaultGallaboxBaseURL is the Gallabox conversation API endpoint.
	DefaultGallaboxBaseURL = "https://server.gallabox.com/devapi"
	// DefaultGallaboxTimeout bounds each outbound API call.
	DefaultGallaboxTimeout = 30 * time.Second
)

// GallaboxOpts holds configuration options for the Gallabox client.
type GallaboxOpts struct {
	APIKey    string
	APISecret string
	ChannelID string
	BaseURL   string
	Client    *http.Client
}

// GallaboxOption defines a configuration option for the Gallabox client.
type GallaboxOption func(*GallaboxOpts)

// WithGallaboxAPIKey sets the Gallabox API key.
func WithGallaboxAPIKey(key string) GallaboxOption {
	return func(o *GallaboxOpts) { o.APIKey = key }
}

// WithGallaboxAPISecret sets the Gallabox API secret.
func WithGallaboxAPISecret(secret string) GallaboxOption {
	return func(o *GallaboxOpts) { o.APISecret = secret }
}

// WithGallaboxChannelID sets the WhatsApp channel identifier.
func WithGallaboxChannelID(id string) GallaboxOption {
	return func(o *GallaboxOpts) { o.ChannelID = id }
}

// WithGallaboxBaseURL overrides the API base URL (used by tests).
func WithGallaboxBaseURL(url string) GallaboxOption {
	return func(o *GallaboxOpts) { o.BaseURL = url }
}

// WithGallaboxHTTPClient injects a custom HTTP client (used by tests).
func WithGallaboxHTTPClient(c *http.Client) GallaboxOption {
	return func(o *GallaboxOpts) { o.Client = c }
}

// GallaboxService delivers messages through the Gallabox WhatsApp API.
type GallaboxService struct {
	apiKey    string
	apiSecret string
	channelID string
	baseURL   string
	client    *http.Client
}

// gallaboxMessage is the request payload for the Gallabox send endpoint.
type gallaboxMessage struct {
	ChannelID   string           `json:"channelId"`
	ChannelType string           `json:"channelType"`
	Recipient   gallaboxContact  `json:"recipient"`
	WhatsApp    gallaboxWhatsApp `json:"whatsapp"`
}

type gallaboxContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone"`
}

type gallaboxWhatsApp struct {
	Type  string         `json:"type"`
	Text  *gallaboxText  `json:"text,omitempty"`
	Image *gallaboxImage `json:"image,omitempty"`
}

type gallaboxText struct {
	Body string `json:"body"`
}

type gallaboxImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// NewGallaboxService creates a Gallabox-backed delivery service, falling back
// to GALLABOX_* environment variables for any unset option.
func NewGallaboxService(opts ...GallaboxOption) (*GallaboxService, error) {
	var cfg GallaboxOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GALLABOX_API_KEY")
	}
	if cfg.APISecret == "" {
		cfg.APISecret = os.Getenv("GALLABOX_API_SECRET")
	}
	if cfg.ChannelID == "" {
		cfg.ChannelID = os.Getenv("GALLABOX_CHANNEL_ID")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = os.Getenv("GALLABOX_BASE_URL")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGallaboxBaseURL
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: DefaultGallaboxTimeout}
	}
	slog.Debug("Gallabox client config loaded",
		"api_key_set", cfg.APIKey != "",
		"api_secret_set", cfg.APISecret != "",
		"channel_id_set", cfg.ChannelID != "")

	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("gallabox API key and secret must be provided")
	}
	if cfg.ChannelID == "" {
		return nil, fmt.Errorf("gallabox channel ID must be provided")
	}

	return &GallaboxService{
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		channelID: cfg.ChannelID,
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		client:    cfg.Client,
	}, nil
}

// ValidateAndCanonicalizeRecipient normalizes the recipient phone number.
func (s *GallaboxService) ValidateAndCanonicalizeRecipient(recipient string) (string, error) {
	return CanonicalizeRecipient(recipient)
}

// SendTextMessage sends a plain text WhatsApp message via Gallabox.
func (s *GallaboxService) SendTextMessage(ctx context.Context, to string, body string) error {
	if body == "" {
		return models.ErrEmptyMessageBody
	}
	msg := gallaboxMessage{
		ChannelID:   s.channelID,
		ChannelType: "whatsapp",
		Recipient:   gallaboxContact{Phone: strings.TrimPrefix(to, "+")},
		WhatsApp:    gallaboxWhatsApp{Type: "text", Text: &gallaboxText{Body: body}},
	}
	return s.post(ctx, to, msg)
}

// SendImageMessage sends an image message with an optional caption.
func (s *GallaboxService) SendImageMessage(ctx context.Context, to string, imageURL string, caption string) error {
	if imageURL == "" {
		return models.ErrEmptyMessageBody
	}
	msg := gallaboxMessage{
		ChannelID:   s.channelID,
		ChannelType: "whatsapp",
		Recipient:   gallaboxContact{Phone: strings.TrimPrefix(to, "+")},
		WhatsApp:    gallaboxWhatsApp{Type: "image", Image: &gallaboxImage{URL: imageURL, Caption: caption}},
	}
	return s.post(ctx, to, msg)
}

// post delivers one message payload to the Gallabox send endpoint.
func (s *GallaboxService) post(ctx context.Context, to string, msg gallaboxMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal gallabox payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/messages/whatsapp", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build gallabox request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apiKey", s.apiKey)
	req.Header.Set("apiSecret", s.apiSecret)

	resp, err := s.client.Do(req)
	if err != nil {
		slog.Error("GallaboxService.post: request failed", "error", err, "to", to)
		return fmt.Errorf("gallabox request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		slog.Error("GallaboxService.post: non-2xx response", "status", resp.StatusCode, "to", to, "body", string(detail))
		return fmt.Errorf("gallabox returned status %d", resp.StatusCode)
	}

	slog.Debug("GallaboxService.post: message delivered", "to", to, "type", msg.WhatsApp.Type)
	return nil
}

// Start is a no-op; Gallabox delivery is purely request/response.
func (s *GallaboxService) Start(ctx context.Context) error {
	return nil
}

// Stop is a no-op for the Gallabox backend.
func (s *GallaboxService) Stop() error {
	return nil
}
