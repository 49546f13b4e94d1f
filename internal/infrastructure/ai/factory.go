package ai

import (
	"fmt"
	"os"

	"github.com/backloghq/groom/pkg/domain/ai"
)

// NewProvider constructs a backend by name.
func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "ollama", "":
		return NewOllamaProvider(modelName), nil
	case "mock":
		return &MockProvider{Model: modelName}, nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(modelName, apiKey), nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		return NewAnthropicProvider(modelName, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider resolves the backend from environment variables,
// falling back to the given defaults.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	if env := os.Getenv("GROOM_AI_PROVIDER"); env != "" {
		providerName = env
	}
	if env := os.Getenv("GROOM_AI_MODEL"); env != "" {
		modelName = env
	}
	return NewProvider(providerName, modelName)
}
