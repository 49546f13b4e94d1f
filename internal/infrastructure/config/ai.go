package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/backloghq/groom/pkg/storage"
)

const aiConfigFile = "ai.yaml"

// AIConfig stores the workspace's provider defaults.
type AIConfig struct {
	Provider       string `yaml:"provider"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty"`
}

// LoadAIConfig reads .groom/ai.yaml. A missing file returns nil, nil.
func LoadAIConfig(ws *storage.Workspace) (*AIConfig, error) {
	path, err := ws.ResolvePath(aiConfigFile)
	if err != nil {
		return nil, err
	}

	// #nosec G304 -- path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read AI config: %w", err)
	}

	var cfg AIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal AI config: %w", err)
	}
	return &cfg, nil
}

// SaveAIConfig writes .groom/ai.yaml.
func SaveAIConfig(ws *storage.Workspace, cfg *AIConfig) error {
	if cfg == nil {
		return fmt.Errorf("AI config is nil")
	}

	path, err := ws.ResolvePath(aiConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal AI config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
