package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	groomai "github.com/backloghq/groom/pkg/ai"
	"github.com/backloghq/groom/pkg/domain/ai"
	"github.com/backloghq/groom/pkg/domain/backlog"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

// RefineAgent improves the description and acceptance criteria of an
// existing item. The proposal keeps the before snapshot next to the after
// so the reviewer can diff them; a human-validated item that gets rewritten
// is demoted to ai_modified_after_validation, never left human_validated.
type RefineAgent struct {
	repo     backlog.Repository
	provider ai.Provider
	logger   *slog.Logger
}

// NewRefineAgent creates the refinement strategy.
func NewRefineAgent(repo backlog.Repository, provider ai.Provider, logger *slog.Logger) *RefineAgent {
	if logger == nil {
		logger = slog.Default()
	}
	return &RefineAgent{repo: repo, provider: provider, logger: logger}
}

type refinePayload struct {
	Description        string   `json:"description"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// Execute implements workflow.Strategy.
func (a *RefineAgent) Execute(ctx context.Context, state workflow.State) (workflow.Patch, error) {
	itemID, _ := state.Intent.Args["item_id"].(string)
	if itemID == "" {
		return workflow.Patch{}, fmt.Errorf("refine requires an item_id argument, none was extracted from the request")
	}

	items, err := a.repo.Load(state.ProjectID)
	if err != nil {
		return workflow.Patch{}, fmt.Errorf("load backlog: %w", err)
	}

	var target *backlog.WorkItem
	for i := range items {
		if items[i].ID == itemID {
			target = &items[i]
			break
		}
	}
	if target == nil {
		return workflow.Patch{}, fmt.Errorf("item %s does not exist in project %s", itemID, state.ProjectID)
	}

	resp, err := a.provider.Complete(ctx, ai.CompletionRequest{
		Prompt: a.buildPrompt(state, *target),
		System: "You are an experienced backlog groomer. You rewrite item descriptions for clarity and add testable acceptance criteria. You respond ONLY with a JSON object.",
	})
	if err != nil {
		return workflow.Patch{}, fmt.Errorf("refinement call failed: %w", err)
	}

	var payload refinePayload
	if err := groomai.ExtractInto(resp.Text, &payload); err != nil {
		return workflow.Patch{}, fmt.Errorf("refinement output unparsable: %w", err)
	}
	if payload.Description == "" {
		return workflow.Patch{}, fmt.Errorf("model returned an empty description for %s", itemID)
	}

	before := *target
	after := before
	after.Description = payload.Description
	if len(payload.AcceptanceCriteria) > 0 {
		after.AcceptanceCriteria = payload.AcceptanceCriteria
	}
	after.MarkAIEdited()

	a.logger.Info("refinement proposed", "project", state.ProjectID, "item", itemID)

	return workflow.Patch{
		Plan: &backlog.ImpactPlan{
			ModifiedItems: []backlog.ModifiedItem{{Before: before, After: after}},
		},
		Status: workflow.StatusAwaitingApproval,
		Result: fmt.Sprintf("proposed an improved description for %s", itemID),
	}, nil
}

func (a *RefineAgent) buildPrompt(state workflow.State, item backlog.WorkItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Improve this backlog item based on the user's request.\n\n")
	fmt.Fprintf(&b, "Item %s [%s]: %s\n", item.ID, item.Type, item.Title)
	if item.Description != "" {
		fmt.Fprintf(&b, "Current description: %s\n", item.Description)
	}
	if len(item.AcceptanceCriteria) > 0 {
		b.WriteString("Current acceptance criteria:\n")
		for _, ac := range item.AcceptanceCriteria {
			fmt.Fprintf(&b, "- %s\n", ac)
		}
	}
	b.WriteString("\nReturn ONLY a JSON object:\n")
	b.WriteString(`{"description": "...", "acceptance_criteria": ["..."]}`)
	fmt.Fprintf(&b, "\n\nRequest: %s\n", state.UserQuery)
	return b.String()
}
