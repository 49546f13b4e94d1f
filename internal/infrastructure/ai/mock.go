package ai

import (
	"context"
	"strings"

	"github.com/backloghq/groom/pkg/domain/ai"
)

// MockProvider returns canned output without any network call. It exists
// for tests and for trying the CLI without a model backend.
type MockProvider struct {
	Model string
	// Responses, when set, are returned one per call in order; the last
	// one repeats once exhausted.
	Responses []string

	calls int
}

func (p *MockProvider) ID() string {
	return "mock:" + p.Model
}

func (p *MockProvider) Complete(_ context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	text := p.nextResponse(req)
	return &ai.CompletionResponse{
		Text:  text,
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt)/4 + 1,
			OutputTokens: len(text)/4 + 1,
		},
	}, nil
}

func (p *MockProvider) nextResponse(req ai.CompletionRequest) string {
	if len(p.Responses) > 0 {
		i := p.calls
		if i >= len(p.Responses) {
			i = len(p.Responses) - 1
		}
		p.calls++
		return p.Responses[i]
	}
	if strings.Contains(req.Prompt, "JSON") || strings.Contains(req.System, "JSON") {
		return `[{"id": "new-1", "type": "task", "title": "Mock task", "description": "Generated by the mock provider."}]`
	}
	return "mock response"
}
