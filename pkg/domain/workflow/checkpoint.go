package workflow

import (
	"errors"
	"time"
)

// Checkpoint errors surfaced to external callers. These are the only
// workflow failures allowed to reach the boundary as hard errors.
var (
	// ErrUnknownThread means no checkpoint was ever stored for the thread.
	ErrUnknownThread = errors.New("unknown thread id")
	// ErrNotPaused means the thread exists but is not suspended, typically
	// because it was already resumed once.
	ErrNotPaused = errors.New("workflow is not paused")
)

// Checkpoint is the suspended-execution record. It captures the state at
// the moment the engine halted before the approve node, keyed by thread id.
// A checkpoint is consumed exactly once: retirement after resumption makes
// a second resume fail with ErrNotPaused.
type Checkpoint struct {
	ThreadID  string    `json:"thread_id"`
	State     State     `json:"state"`
	NextNode  Node      `json:"next_node"`
	CreatedAt time.Time `json:"created_at"`
	Retired   bool      `json:"retired"`
}

// Paused reports whether the checkpoint can still be resumed.
func (c Checkpoint) Paused() bool {
	return !c.Retired && c.State.Status.IsSuspended()
}

// CheckpointStore persists suspended workflow runs. Implementations must be
// safe for concurrent use by independent threads; unrelated entries must
// never be corrupted by concurrent insert, lookup or retire.
type CheckpointStore interface {
	Save(cp Checkpoint) error
	// Load returns the checkpoint for a thread, or ErrUnknownThread.
	Load(threadID string) (Checkpoint, error)
	// IsPaused reports whether the thread exists and is resumable.
	IsPaused(threadID string) bool
	// Retire invalidates the checkpoint after resumption. Retiring an
	// unknown thread returns ErrUnknownThread.
	Retire(threadID string) error
}
