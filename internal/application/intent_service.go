// Package application hosts the workflow engine and the services it
// sequences.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	groomai "github.com/backloghq/groom/pkg/ai"
	"github.com/backloghq/groom/pkg/domain/ai"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

// IntentOption is one intent the classifier may pick.
type IntentOption struct {
	ID          string
	Description string
}

// IntentClassifier turns a natural-language query into a structured intent
// with a confidence score. Classification never fails past this boundary:
// any LLM or parse failure collapses to the unknown intent, which routing
// turns into a rephrase request.
type IntentClassifier struct {
	provider ai.Provider
	options  []IntentOption
	logger   *slog.Logger
}

// NewIntentClassifier creates a classifier over the given intent catalog.
func NewIntentClassifier(provider ai.Provider, options []IntentOption, logger *slog.Logger) *IntentClassifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntentClassifier{provider: provider, options: options, logger: logger}
}

type intentPayload struct {
	ID         string         `json:"id"`
	Confidence float64        `json:"confidence"`
	Args       map[string]any `json:"args"`
}

// Classify returns the classified intent for a user query.
func (c *IntentClassifier) Classify(ctx context.Context, query string) workflow.Intent {
	prompt := c.buildPrompt(query)

	resp, err := c.provider.Complete(ctx, ai.CompletionRequest{
		Prompt: prompt,
		System: "You are an intent classifier for a backlog management assistant. You respond ONLY with a single JSON object.",
	})
	if err != nil {
		c.logger.Warn("intent classification failed, falling back to unknown",
			"error", err)
		return workflow.UnknownIntent()
	}

	var payload intentPayload
	if err := groomai.ExtractInto(resp.Text, &payload); err != nil {
		c.logger.Warn("intent response was not parsable, falling back to unknown",
			"error", err)
		return workflow.UnknownIntent()
	}
	if payload.ID == "" {
		c.logger.Warn("intent response carried no id, falling back to unknown")
		return workflow.UnknownIntent()
	}
	if payload.Args == nil {
		payload.Args = map[string]any{}
	}
	if payload.Confidence < 0 {
		payload.Confidence = 0
	}
	if payload.Confidence > 1 {
		payload.Confidence = 1
	}

	return workflow.Intent{ID: payload.ID, Confidence: payload.Confidence, Args: payload.Args}
}

func (c *IntentClassifier) buildPrompt(query string) string {
	var b strings.Builder
	b.WriteString("Classify the user request against the known intents.\n\n")
	b.WriteString("Known intents:\n")
	for _, opt := range c.options {
		fmt.Fprintf(&b, "- %s: %s\n", opt.ID, opt.Description)
	}
	b.WriteString("\nReturn ONLY a JSON object of the form:\n")
	b.WriteString(`{"id": "<intent id or unknown>", "confidence": 0.0, "args": {}}`)
	b.WriteString("\n\nPut any extracted parameters (item ids, counts, free text) into args.\n")
	fmt.Fprintf(&b, "\nUser request: %s\n", query)
	return b.String()
}
