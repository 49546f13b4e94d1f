// Package ai defines the contract every language model backend implements.
package ai

import "context"

// CompletionRequest is a single prompt sent to the model.
type CompletionRequest struct {
	Prompt      string
	System      string
	Temperature float32
	MaxTokens   int
}

// CompletionResponse is the model's answer.
type CompletionResponse struct {
	Text  string
	Usage TokenUsage
	Model string
}

// TokenUsage tracks cost per call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// Provider is implemented by all LLM backends.
type Provider interface {
	ID() string
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}
