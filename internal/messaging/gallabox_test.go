package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zulu-club/zulubot/internal/models"
)

func newTestGallaboxService(t *testing.T, handler http.HandlerFunc) *GallaboxService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewGallaboxService(
		WithGallaboxAPIKey("key"),
		WithGallaboxAPISecret("secret"),
		WithGallaboxChannelID("channel-1"),
		WithGallaboxBaseURL(server.URL),
		WithGallaboxHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("failed to create gallabox service: %v", err)
	}
	return svc
}

func TestGallaboxRequiresCredentials(t *testing.T) {
	if _, err := NewGallaboxService(WithGallaboxChannelID("c")); err == nil {
		t.Fatal("expected error when API key and secret are missing")
	}
	if _, err := NewGallaboxService(WithGallaboxAPIKey("k"), WithGallaboxAPISecret("s")); err == nil {
		t.Fatal("expected error when channel ID is missing")
	}
}

func TestGallaboxSendTextMessage(t *testing.T) {
	var captured gallaboxMessage
	var apiKey, apiSecret string
	svc := newTestGallaboxService(t, func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("apiKey")
		apiSecret = r.Header.Get("apiSecret")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	})

	if err := svc.SendTextMessage(context.Background(), "+911234567890", "hello"); err != nil {
		t.Fatalf("SendTextMessage failed: %v", err)
	}

	if apiKey != "key" || apiSecret != "secret" {
		t.Errorf("expected auth headers, got apiKey=%q apiSecret=%q", apiKey, apiSecret)
	}
	if captured.ChannelID != "channel-1" || captured.ChannelType != "whatsapp" {
		t.Errorf("unexpected channel fields: %+v", captured)
	}
	if captured.Recipient.Phone != "911234567890" {
		t.Errorf("expected phone without plus, got %q", captured.Recipient.Phone)
	}
	if captured.WhatsApp.Type != "text" || captured.WhatsApp.Text == nil || captured.WhatsApp.Text.Body != "hello" {
		t.Errorf("unexpected whatsapp payload: %+v", captured.WhatsApp)
	}
}

func TestGallaboxSendImageMessage(t *testing.T) {
	var captured gallaboxMessage
	svc := newTestGallaboxService(t, func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("failed to decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})

	if err := svc.SendImageMessage(context.Background(), "+911234567890", "http://x/1.jpg", "Red Dress — ₹999"); err != nil {
		t.Fatalf("SendImageMessage failed: %v", err)
	}
	if captured.WhatsApp.Type != "image" || captured.WhatsApp.Image == nil {
		t.Fatalf("unexpected whatsapp payload: %+v", captured.WhatsApp)
	}
	if captured.WhatsApp.Image.URL != "http://x/1.jpg" || captured.WhatsApp.Image.Caption != "Red Dress — ₹999" {
		t.Errorf("unexpected image payload: %+v", captured.WhatsApp.Image)
	}
}

func TestGallaboxNon2xxIsError(t *testing.T) {
	svc := newTestGallaboxService(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	if err := svc.SendTextMessage(context.Background(), "+911234567890", "hello"); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestGallaboxEmptyBodyRejected(t *testing.T) {
	svc := newTestGallaboxService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be made for empty body")
	})
	if err := svc.SendTextMessage(context.Background(), "+911234567890", ""); !errors.Is(err, models.ErrEmptyMessageBody) {
		t.Errorf("expected ErrEmptyMessageBody, got %v", err)
	}
}
