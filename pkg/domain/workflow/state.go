package workflow

import (
	"github.com/backloghq/groom/pkg/domain/backlog"
	"github.com/backloghq/groom/pkg/domain/events"
)

// State is the single record threaded through every workflow node. Nodes
// never replace it wholesale; each returns a sparse Patch that the engine
// merges into the keys that node owns.
type State struct {
	ThreadID         string                 `json:"thread_id"`
	ProjectID        string                 `json:"project_id"`
	UserQuery        string                 `json:"user_query"`
	Intent           Intent                 `json:"intent"`
	NextNode         Node                   `json:"next_node,omitempty"`
	AgentTask        string                 `json:"agent_task,omitempty"`
	Plan             *backlog.ImpactPlan    `json:"impact_plan,omitempty"`
	Status           Status                 `json:"status"`
	ApprovalDecision *bool                  `json:"approval_decision,omitempty"`
	Result           string                 `json:"result,omitempty"`
	AgentEvents      []events.WorkflowEvent `json:"agent_events,omitempty"`
}

// NewState creates a fresh run state for an incoming request.
func NewState(threadID, projectID, userQuery string) State {
	return State{
		ThreadID:  threadID,
		ProjectID: projectID,
		UserQuery: userQuery,
		Status:    StatusPending,
	}
}

// Patch is a sparse set of State field updates. Zero values mean "leave
// untouched" except Events, which always appends.
type Patch struct {
	Intent           *Intent
	NextNode         Node
	AgentTask        string
	Plan             *backlog.ImpactPlan
	Status           Status
	ApprovalDecision *bool
	Result           string
	Events           []events.WorkflowEvent
}

// Merge applies the patch to the state.
func (s *State) Merge(p Patch) {
	if p.Intent != nil {
		s.Intent = *p.Intent
	}
	if p.NextNode != "" {
		s.NextNode = p.NextNode
	}
	if p.AgentTask != "" {
		s.AgentTask = p.AgentTask
	}
	if p.Plan != nil {
		s.Plan = p.Plan
	}
	if p.Status != "" {
		s.Status = p.Status
	}
	if p.ApprovalDecision != nil {
		s.ApprovalDecision = p.ApprovalDecision
	}
	if p.Result != "" {
		s.Result = p.Result
	}
	s.AgentEvents = append(s.AgentEvents, p.Events...)
}
