// Package wiring constructs the application services for a workspace root.
// Everything that used to be ambient (event sinks, registries, stores) is
// built here once and passed down explicitly.
package wiring

import (
	"fmt"
	"log/slog"
	"time"

	groomai "github.com/backloghq/groom/pkg/ai"
	domainai "github.com/backloghq/groom/pkg/domain/ai"
	"github.com/backloghq/groom/pkg/domain/events"
	"github.com/backloghq/groom/pkg/domain/workflow"
	"github.com/backloghq/groom/pkg/storage"

	"github.com/backloghq/groom/internal/application"
	"github.com/backloghq/groom/internal/application/agents"
	infraai "github.com/backloghq/groom/internal/infrastructure/ai"
	"github.com/backloghq/groom/internal/infrastructure/config"
)

// AppServices exposes the wired application layer.
type AppServices struct {
	Workspace  *storage.Workspace
	Backlog    *storage.FilesystemBacklogStore
	Events     *storage.FileEventStore
	Dispatcher *events.Dispatcher
	Registry   *config.RegistryConfig
	Provider   domainai.Provider
	Workflow   *application.WorkflowService
}

// BuildAppServices constructs the full service graph for a repo root.
func BuildAppServices(root string, logger *slog.Logger) (*AppServices, error) {
	if logger == nil {
		logger = slog.Default()
	}

	ws := storage.NewWorkspace(root)

	registry, err := config.LoadRegistry(ws)
	if err != nil {
		return nil, fmt.Errorf("load agent registry: %w", err)
	}

	provider, err := loadProvider(ws)
	if err != nil {
		return nil, err
	}

	backlogStore, err := storage.NewFilesystemBacklogStore(ws)
	if err != nil {
		return nil, err
	}
	eventStore, err := storage.NewFileEventStore(ws)
	if err != nil {
		return nil, err
	}

	dispatcher := events.NewDispatcher()
	dispatcher.ContinueOnError = true
	dispatcher.RegisterWildcard("timeline", eventStore.Publish)

	classifier := application.NewIntentClassifier(provider, intentCatalog(registry), logger)

	strategies := map[string]workflow.Strategy{
		agents.TaskDecompose: agents.NewDecomposeAgent(backlogStore, provider, logger),
		agents.TaskRefine:    agents.NewRefineAgent(backlogStore, provider, logger),
	}

	workflowSvc := application.NewWorkflowService(
		backlogStore,
		storage.NewFileCheckpointStore(ws),
		registry,
		classifier,
		strategies,
		dispatcher,
		logger,
	)

	return &AppServices{
		Workspace:  ws,
		Backlog:    backlogStore,
		Events:     eventStore,
		Dispatcher: dispatcher,
		Registry:   registry,
		Provider:   provider,
		Workflow:   workflowSvc,
	}, nil
}

// loadProvider builds the resilient AI provider from workspace config with
// environment overrides.
func loadProvider(ws *storage.Workspace) (domainai.Provider, error) {
	cfg, err := config.LoadAIConfig(ws)
	if err != nil {
		return nil, fmt.Errorf("load AI config: %w", err)
	}

	providerName, modelName := "", ""
	resilience := groomai.DefaultResilienceConfig()
	if cfg != nil {
		providerName = cfg.Provider
		modelName = cfg.Model
		if cfg.TimeoutSeconds > 0 {
			resilience.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
		}
	}

	inner, err := infraai.GetDefaultProvider(providerName, modelName)
	if err != nil {
		return nil, fmt.Errorf("build AI provider: %w", err)
	}
	return groomai.NewResilientProviderWithConfig(inner, resilience), nil
}

func intentCatalog(registry *config.RegistryConfig) []application.IntentOption {
	options := make([]application.IntentOption, 0, len(registry.Intents))
	for _, id := range registry.IntentIDs() {
		options = append(options, application.IntentOption{
			ID:          id,
			Description: registry.Intents[id].Description,
		})
	}
	return options
}
