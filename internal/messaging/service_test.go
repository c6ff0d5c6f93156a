package messaging

import (
	"errors"
	"testing"

	"github.com/zulu-club/zulubot/internal/models"
)

func TestCanonicalizeRecipient(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"+911234567890", "+911234567890"},
		{"911234567890", "+911234567890"},
		{" +91 12345 67890 ", "+911234567890"},
		{"+1 (555) 123-4567", "+15551234567"},
	}
	for _, tc := range cases {
		got, err := CanonicalizeRecipient(tc.in)
		if err != nil {
			t.Errorf("CanonicalizeRecipient(%q) failed: %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("CanonicalizeRecipient(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCanonicalizeRecipientRejectsInvalid(t *testing.T) {
	if _, err := CanonicalizeRecipient(""); !errors.Is(err, models.ErrEmptyRecipient) {
		t.Errorf("expected ErrEmptyRecipient, got %v", err)
	}
	for _, in := range []string{"not-a-number", "+", "+12ab34"} {
		if _, err := CanonicalizeRecipient(in); !errors.Is(err, models.ErrInvalidRecipient) {
			t.Errorf("CanonicalizeRecipient(%q): expected ErrInvalidRecipient, got %v", in, err)
		}
	}
}
