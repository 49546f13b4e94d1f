// Package config loads the workspace configuration files under .groom/.
package config

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/backloghq/groom/pkg/domain/workflow"
	"github.com/backloghq/groom/pkg/storage"
)

const registryFile = "registry.yaml"

// DefaultConfidenceThreshold is the minimum classifier confidence,
// inclusive, required to dispatch an agent.
const DefaultConfidenceThreshold = 0.7

// defaultRegistryYAML is the built-in intent catalog. A workspace can
// override or extend it with .groom/registry.yaml; the override deep-merges
// on top of this default.
const defaultRegistryYAML = `confidence_threshold: 0.7
intents:
  decompose_backlog:
    agent: backlog-groomer
    task: decompose
    description: Break a request down into new backlog items (features, stories, tasks).
  refine_item:
    agent: backlog-groomer
    task: refine
    description: Improve the description or acceptance criteria of an existing backlog item.
`

// IntentBinding maps one intent to the agent and task that handle it.
type IntentBinding struct {
	Agent       string `yaml:"agent"`
	Task        string `yaml:"task"`
	Description string `yaml:"description,omitempty"`
}

// RegistryConfig is the loaded agent registry. It implements
// workflow.Registry.
type RegistryConfig struct {
	ConfidenceThreshold float64                  `yaml:"confidence_threshold"`
	Intents             map[string]IntentBinding `yaml:"intents"`
}

// Resolve implements workflow.Registry.
func (c *RegistryConfig) Resolve(intentID string) (workflow.Binding, bool) {
	binding, ok := c.Intents[intentID]
	if !ok {
		return workflow.Binding{}, false
	}
	return workflow.Binding{AgentID: binding.Agent, Task: binding.Task}, true
}

// Threshold implements workflow.Registry.
func (c *RegistryConfig) Threshold() float64 {
	if c.ConfidenceThreshold <= 0 {
		return DefaultConfidenceThreshold
	}
	return c.ConfidenceThreshold
}

// IntentIDs returns the catalog's intent ids in stable order.
func (c *RegistryConfig) IntentIDs() []string {
	ids := make([]string, 0, len(c.Intents))
	for id := range c.Intents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LoadRegistry returns the default registry merged with the workspace
// override, when one exists. Maps merge per key recursively with the
// override winning; list values are replaced wholesale, never concatenated.
func LoadRegistry(ws *storage.Workspace) (*RegistryConfig, error) {
	var base map[string]any
	if err := yaml.Unmarshal([]byte(defaultRegistryYAML), &base); err != nil {
		return nil, fmt.Errorf("failed to parse built-in registry: %w", err)
	}

	path, err := ws.ResolvePath(registryFile)
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read registry override: %w", err)
	}
	if len(data) > 0 {
		var override map[string]any
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to parse registry override: %w", err)
		}
		base = deepMerge(base, override)
	}

	merged, err := yaml.Marshal(base)
	if err != nil {
		return nil, fmt.Errorf("failed to re-marshal merged registry: %w", err)
	}
	var cfg RegistryConfig
	if err := yaml.Unmarshal(merged, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse merged registry: %w", err)
	}
	return &cfg, nil
}

// deepMerge merges override on top of base. Nested maps merge per key;
// every other value, lists included, is replaced by the override.
func deepMerge(base, override map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(override))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range override {
		if vm, ok := v.(map[string]any); ok {
			if bm, ok := out[k].(map[string]any); ok {
				out[k] = deepMerge(bm, vm)
				continue
			}
		}
		out[k] = v
	}
	return out
}
