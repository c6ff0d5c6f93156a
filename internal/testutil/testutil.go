// Package testutil provides common test utilities and helpers for zulubot tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"

	"github.com/zulu-club/zulubot/internal/api"
	"github.com/zulu-club/zulubot/internal/catalog"
	"github.com/zulu-club/zulubot/internal/flow"
	"github.com/zulu-club/zulubot/internal/genai"
	"github.com/zulu-club/zulubot/internal/messaging"
	"github.com/zulu-club/zulubot/internal/models"
	"github.com/zulu-club/zulubot/internal/store"
)

// MockOracle implements genai.ClientInterface with a canned response.
type MockOracle struct {
	Response string
	Err      error
	// Calls records the message sets passed to the oracle.
	Calls [][]openai.ChatCompletionMessageParamUnion
}

// GenerateWithMessages returns the canned response or error.
func (m *MockOracle) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return m.GenerateWithParams(ctx, messages, genai.GenerationParams{})
}

// GenerateWithParams returns the canned response or error.
func (m *MockOracle) GenerateWithParams(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, params genai.GenerationParams) (string, error) {
	m.Calls = append(m.Calls, messages)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// TestDeps bundles the fakes behind a test server.
type TestDeps struct {
	MsgService *messaging.MockService
	Store      *store.InMemoryStore
	Oracle     *MockOracle
}

// NewTestServer creates a test API server over an in-memory store, a mock
// delivery service and the given catalog records. A nil oracle disables the
// classifier and makes the composer fall back to the canned greeting.
func NewTestServer(t *testing.T, records []models.Product, oracle *MockOracle, opts ...api.Option) (*api.Server, *TestDeps) {
	t.Helper()
	deps := &TestDeps{
		MsgService: messaging.NewMockService(),
		Store:      store.NewInMemoryStore(),
		Oracle:     oracle,
	}

	var client genai.ClientInterface
	if oracle != nil {
		client = oracle
	}
	bot := flow.NewBot(
		catalog.New(records),
		flow.NewClassifier(client),
		flow.NewComposer(client),
		deps.Store,
		deps.MsgService,
	)
	return api.NewServer(bot, deps.MsgService, deps.Store, opts...), deps
}

// AssertHTTPStatus checks the HTTP status code and fails the test if it doesn't match.
func AssertHTTPStatus(t *testing.T, expected, actual int, context string) {
	t.Helper()
	if actual != expected {
		t.Errorf("%s: expected status %d, got %d", context, expected, actual)
	}
}

// DecodeAPIResponse decodes the recorded body into an APIResponse.
func DecodeAPIResponse(t *testing.T, rr *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode JSON response: %v", err)
	}
	return resp
}

// CreateHTTPRequest creates an HTTP request with an optional JSON body for testing.
func CreateHTTPRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("failed to create HTTP request: %v", err)
	}
	return req
}

// WebhookBody builds the provider envelope for a sender and message text.
func WebhookBody(from, text string) models.WebhookEnvelope {
	return models.WebhookEnvelope{
		Data: models.WebhookData{
			From:    from,
			Message: models.WebhookMessage{Text: text},
		},
	}
}
