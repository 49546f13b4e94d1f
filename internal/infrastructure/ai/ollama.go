package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/backloghq/groom/pkg/domain/ai"
)

const defaultOllamaBaseURL = "http://localhost:11434"

var safeModelName = regexp.MustCompile(`^[a-zA-Z0-9:._-]+$`)

type OllamaProvider struct {
	Model   string
	BaseURL string
}

func NewOllamaProvider(model string) *OllamaProvider {
	if model == "" {
		model = "llama3"
	}
	return &OllamaProvider{Model: model, BaseURL: defaultOllamaBaseURL}
}

func (p *OllamaProvider) ID() string {
	return "ollama:" + p.Model
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	System string `json:"system"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (p *OllamaProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if !safeModelName.MatchString(p.Model) {
		return nil, fmt.Errorf("invalid model name: %s", p.Model)
	}

	// Ollama can constrain output to valid JSON; all our prompts that
	// expect structure say so explicitly.
	format := ""
	if strings.Contains(req.Prompt, "JSON") || strings.Contains(req.System, "JSON") {
		format = "json"
	}

	body, err := json.Marshal(ollamaRequest{
		Model:  p.Model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Format: format,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", p.BaseURL+"/api/generate", bytes.NewBuffer(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: status %d", resp.StatusCode)
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return nil, fmt.Errorf("failed to decode ollama response: %w", err)
	}

	return &ai.CompletionResponse{
		Text:  strings.TrimSpace(oResp.Response),
		Model: p.Model,
		Usage: ai.TokenUsage{
			InputTokens:  len(req.Prompt) / 4,
			OutputTokens: len(oResp.Response) / 4,
		},
	}, nil
}
