// Package agents contains the concrete agent strategies the workflow can
// dispatch to. Every strategy conforms to the workflow.Strategy contract:
// it reads the shared run state, talks to the language model, and returns a
// sparse patch carrying an impact plan and a status.
package agents

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	groomai "github.com/backloghq/groom/pkg/ai"
	"github.com/backloghq/groom/pkg/domain/ai"
	"github.com/backloghq/groom/pkg/domain/backlog"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

// Task names the registry binds intents to.
const (
	TaskDecompose = "decompose"
	TaskRefine    = "refine"
)

const itemSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["id", "type", "title"],
    "properties": {
      "id": { "type": "string", "minLength": 1 },
      "type": { "type": "string", "enum": ["feature", "story", "task", "bug", "epic", "test_case"] },
      "title": { "type": "string", "minLength": 1 },
      "description": { "type": "string" },
      "parent_id": { "type": "string" },
      "acceptance_criteria": { "type": "array", "items": { "type": "string" } }
    }
  }
}`

var itemSchemaLoader = gojsonschema.NewStringLoader(itemSchemaJSON)

type itemPayload struct {
	ID                 string   `json:"id"`
	Type               string   `json:"type"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	ParentID           string   `json:"parent_id"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// DecomposeAgent breaks a user request down into new backlog items. It
// proposes creations only; the result always goes through human approval.
type DecomposeAgent struct {
	repo     backlog.Repository
	provider ai.Provider
	logger   *slog.Logger
}

// NewDecomposeAgent creates the decomposition strategy.
func NewDecomposeAgent(repo backlog.Repository, provider ai.Provider, logger *slog.Logger) *DecomposeAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &DecomposeAgent{repo: repo, provider: provider, logger: logger}
}

// Execute implements workflow.Strategy.
func (a *DecomposeAgent) Execute(ctx context.Context, state workflow.State) (workflow.Patch, error) {
	existing, err := a.repo.Load(state.ProjectID)
	if err != nil && !errors.Is(err, backlog.ErrNotFound) {
		return workflow.Patch{}, fmt.Errorf("load backlog: %w", err)
	}

	resp, err := a.provider.Complete(ctx, ai.CompletionRequest{
		Prompt: a.buildPrompt(state, existing),
		System: "You are an expert product owner. You decompose requests into small, well-formed backlog items. You respond ONLY with a JSON array.",
	})
	if err != nil {
		return workflow.Patch{}, fmt.Errorf("decomposition call failed: %w", err)
	}

	var payloads []itemPayload
	if err := groomai.ExtractInto(resp.Text, &payloads); err != nil {
		return workflow.Patch{}, fmt.Errorf("decomposition output unparsable: %w", err)
	}
	if err := validateItems(payloads); err != nil {
		return workflow.Patch{}, err
	}

	batch := make([]backlog.WorkItem, 0, len(payloads))
	for i, p := range payloads {
		placeholder := p.ID
		if placeholder == "" {
			placeholder = fmt.Sprintf("new-%d", i+1)
		}
		itemType := backlog.ItemType(p.Type)
		if !itemType.IsValid() {
			itemType = backlog.TypeTask
		}
		batch = append(batch, backlog.WorkItem{
			ID:                 placeholder,
			ProjectID:          state.ProjectID,
			Type:               itemType,
			Title:              p.Title,
			Description:        p.Description,
			ParentID:           p.ParentID,
			AcceptanceCriteria: p.AcceptanceCriteria,
			ValidationStatus:   backlog.ValidationAIGenerated,
		})
	}

	allocator := backlog.NewAllocator(state.ProjectID, existing)
	batch, _ = allocator.Assign(batch)

	a.logger.Info("decomposition proposed items",
		"project", state.ProjectID, "count", len(batch), "prefix", allocator.Prefix())

	return workflow.Patch{
		Plan:   &backlog.ImpactPlan{NewItems: batch},
		Status: workflow.StatusAwaitingApproval,
		Result: fmt.Sprintf("proposed %d new backlog items for review", len(batch)),
	}, nil
}

func (a *DecomposeAgent) buildPrompt(state workflow.State, existing []backlog.WorkItem) string {
	var b strings.Builder
	b.WriteString("Decompose the following request into backlog items.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. Give every item a unique placeholder id such as \"new-1\".\n")
	b.WriteString("2. Use parent_id with a placeholder id to express hierarchy inside this batch. A parent must appear before its children.\n")
	b.WriteString("3. Allowed types: feature, story, task, bug, epic, test_case.\n")
	b.WriteString("4. Return ONLY a JSON array:\n")
	b.WriteString(`[{"id": "new-1", "type": "story", "title": "...", "description": "...", "parent_id": "", "acceptance_criteria": ["..."]}]`)
	b.WriteString("\n\n")

	if len(existing) > 0 {
		b.WriteString("Existing backlog (do not duplicate):\n")
		for _, item := range existing {
			fmt.Fprintf(&b, "- %s [%s] %s\n", item.ID, item.Type, item.Title)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Request: %s\n", state.UserQuery)
	return b.String()
}

// validateItems checks the decoded payloads against the item schema and
// reports every violation the model produced.
func validateItems(payloads []itemPayload) error {
	result, err := gojsonschema.Validate(itemSchemaLoader, gojsonschema.NewGoLoader(payloads))
	if err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return fmt.Errorf("model output failed schema validation: %s", strings.Join(issues, "; "))
}
