package models

import (
	"encoding/json"
	"testing"
)

func TestSuccess(t *testing.T) {
	resp := Success(APIStatusSent)
	if resp.Status != "sent" || resp.Message != "" || resp.Error != "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestSuccessWithMessage(t *testing.T) {
	resp := SuccessWithMessage(APIStatusOK, "running")
	if resp.Status != "ok" || resp.Message != "running" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestErrorResponseOmitsStatus(t *testing.T) {
	data, err := json.Marshal(Error("Invalid JSON"))
	if err != nil {
		t.Fatalf("failed to marshal response: %v", err)
	}
	if got := string(data); got != `{"error":"Invalid JSON"}` {
		t.Errorf("unexpected JSON: %s", got)
	}
}

func TestBuilderChaining(t *testing.T) {
	resp := NewAPIResponseBuilder().
		WithStatus(APIStatusIgnored).
		WithMessage("empty message").
		Build()
	if resp.Status != "ignored" || resp.Message != "empty message" {
		t.Errorf("unexpected response: %+v", resp)
	}
}
