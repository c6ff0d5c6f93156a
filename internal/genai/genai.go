// Package genai wraps the OpenAI chat completion API used as the bot's
// classification and reply oracle.
package genai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Constants for GenAI configuration
const (
	// DefaultModel is the chat completion model used when none is configured.
	DefaultModel = openai.ChatModelGPT4oMini
)

// GenerationParams bounds a single completion request.
type GenerationParams struct {
	// Temperature pins the sampling temperature; 0 makes output deterministic.
	Temperature float64
	// MaxTokens caps the completion length; 0 leaves the API default.
	MaxTokens int64
}

// ClientInterface defines the operations flows need from the oracle.
// Mock implementations satisfy it in tests.
type ClientInterface interface {
	// GenerateWithMessages requests a completion with default parameters.
	GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error)
	// GenerateWithParams requests a completion with explicit sampling bounds.
	GenerateWithParams(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, params GenerationParams) (string, error)
}

// Opts holds configuration options for the GenAI client.
type Opts struct {
	APIKey string
	Model  string
}

// Option defines a configuration option for the GenAI client.
type Option func(*Opts)

// WithAPIKey sets the OpenAI API key.
func WithAPIKey(key string) Option {
	return func(o *Opts) { o.APIKey = key }
}

// WithModel overrides the chat completion model.
func WithModel(model string) Option {
	return func(o *Opts) { o.Model = model }
}

// Client wraps the OpenAI chat completion service.
type Client struct {
	client openai.Client
	model  string
}

// NewClient creates a GenAI client, falling back to the OPENAI_API_KEY
// environment variable when no key option is provided.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Model == "" {
		cfg.Model = os.Getenv("OPENAI_MODEL")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	slog.Debug("GenAI client config loaded", "api_key_set", cfg.APIKey != "", "model", cfg.Model)

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not set")
	}

	return &Client{
		client: openai.NewClient(option.WithAPIKey(cfg.APIKey)),
		model:  cfg.Model,
	}, nil
}

// GenerateWithMessages requests a completion with the API's default sampling.
func (c *Client) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return c.GenerateWithParams(ctx, messages, GenerationParams{})
}

// GenerateWithParams requests a completion with explicit sampling bounds.
func (c *Client) GenerateWithParams(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, params GenerationParams) (string, error) {
	req := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(params.Temperature),
	}
	if params.MaxTokens > 0 {
		req.MaxTokens = openai.Int(params.MaxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, req)
	if err != nil {
		slog.Error("GenAI.GenerateWithParams: completion request failed", "error", err, "model", c.model)
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Error("GenAI.GenerateWithParams: no choices returned", "model", c.model)
		return "", fmt.Errorf("no choices returned")
	}
	slog.Debug("GenAI.GenerateWithParams: completion succeeded", "model", c.model, "response_length", len(resp.Choices[0].Message.Content))
	return resp.Choices[0].Message.Content, nil
}
