package workflow

import "context"

// Strategy is one swappable unit of LLM-backed logic bound to a task name.
// Execute receives a read-only copy of the run state and returns the fields
// it owns as a Patch. Every strategy must set Status and Result; a strategy
// returning StatusAwaitingApproval must also set Plan.
//
// Errors and panics inside a strategy are caught at the engine boundary and
// converted to StatusError; they never abort the workflow run.
type Strategy interface {
	Execute(ctx context.Context, state State) (Patch, error)
}

// StrategyFunc adapts a function to the Strategy interface.
type StrategyFunc func(ctx context.Context, state State) (Patch, error)

func (f StrategyFunc) Execute(ctx context.Context, state State) (Patch, error) {
	return f(ctx, state)
}

// Binding names the agent and task an intent resolves to.
type Binding struct {
	AgentID string `json:"agent" yaml:"agent"`
	Task    string `json:"task" yaml:"task"`
}

// Registry resolves a classified intent to the agent binding that will
// handle it.
type Registry interface {
	// Resolve returns the binding for an intent id, false when unmapped.
	Resolve(intentID string) (Binding, bool)
	// Threshold is the minimum classifier confidence, inclusive, required
	// to dispatch an agent.
	Threshold() float64
}
