// Package events defines the workflow's observability side channel. Events
// are push-only: the engine and agents write them, nothing in the decision
// path reads them back.
package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"
)

// Event types emitted by the engine and agents.
const (
	TypeWorkflowStarted   = "workflow.started"
	TypeIntentClassified  = "intent.classified"
	TypeWorkflowRouted    = "workflow.routed"
	TypeAgentStarted      = "agent.started"
	TypeAgentProgress     = "agent.progress"
	TypeAgentFinished     = "agent.finished"
	TypeWorkflowSuspended = "workflow.suspended"
	TypeWorkflowResumed   = "workflow.resumed"
	TypeWorkflowCompleted = "workflow.completed"
)

// WorkflowEvent is one timeline entry. Hash chains to the previous entry in
// the same log so tampering with history is detectable.
type WorkflowEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	ThreadID  string         `json:"thread_id"`
	ProjectID string         `json:"project_id,omitempty"`
	Node      string         `json:"node,omitempty"`
	Actor     string         `json:"actor,omitempty"`
	Message   string         `json:"message,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	PrevHash  string         `json:"prev_hash,omitempty"`
	Hash      string         `json:"hash,omitempty"`
}

// CalculateHash generates a deterministic SHA256 hash of the event.
func (e *WorkflowEvent) CalculateHash() string {
	h := sha256.New()
	h.Write([]byte(e.PrevHash))
	h.Write([]byte(e.ID))
	h.Write([]byte(e.Timestamp.Format(time.RFC3339Nano)))
	h.Write([]byte(e.Type))
	h.Write([]byte(e.ThreadID))
	h.Write([]byte(e.Node))
	h.Write([]byte(e.Message))
	h.Write([]byte(canonicalJSON(e.Metadata)))
	return hex.EncodeToString(h.Sum(nil))
}

// canonicalJSON produces a deterministic JSON representation of metadata.
func canonicalJSON(m map[string]any) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]byte, 0, 256)
	ordered = append(ordered, '{')
	for i, k := range keys {
		if i > 0 {
			ordered = append(ordered, ',')
		}
		keyJSON, _ := json.Marshal(k)
		valJSON, _ := json.Marshal(m[k])
		ordered = append(ordered, keyJSON...)
		ordered = append(ordered, ':')
		ordered = append(ordered, valJSON...)
	}
	ordered = append(ordered, '}')
	return string(ordered)
}
