package models

import "testing"

func TestWebhookEnvelopeAccessors(t *testing.T) {
	env := WebhookEnvelope{
		Data: WebhookData{
			From:    "  +911234567890 ",
			Message: WebhookMessage{Text: "  hello there  "},
		},
	}
	if got := env.SenderID(); got != "+911234567890" {
		t.Errorf("SenderID() = %q", got)
	}
	if got := env.Text(); got != "hello there" {
		t.Errorf("Text() = %q", got)
	}
}

func TestWebhookEnvelopeEmpty(t *testing.T) {
	var env WebhookEnvelope
	if env.SenderID() != "" || env.Text() != "" {
		t.Errorf("expected empty accessors, got %q / %q", env.SenderID(), env.Text())
	}
}
