package flow

import (
	"context"

	"github.com/openai/openai-go"

	"github.com/zulu-club/zulubot/internal/genai"
)

// stubOracle implements genai.ClientInterface with a canned answer.
type stubOracle struct {
	response string
	err      error
	calls    [][]openai.ChatCompletionMessageParamUnion
}

func (s *stubOracle) GenerateWithMessages(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion) (string, error) {
	return s.GenerateWithParams(ctx, messages, genai.GenerationParams{})
}

func (s *stubOracle) GenerateWithParams(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, params genai.GenerationParams) (string, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}
