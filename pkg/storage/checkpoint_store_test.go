package storage

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/backloghq/groom/pkg/domain/workflow"
)

func suspendedCheckpoint(threadID string) workflow.Checkpoint {
	state := workflow.NewState(threadID, "recette-mvp", "break it down")
	state.Status = workflow.StatusAwaitingApproval
	return workflow.Checkpoint{
		ThreadID: threadID,
		State:    state,
		NextNode: workflow.NodeApprove,
	}
}

func runCheckpointStoreContract(t *testing.T, store workflow.CheckpointStore) {
	t.Helper()

	// Unknown thread.
	if _, err := store.Load("missing"); !errors.Is(err, workflow.ErrUnknownThread) {
		t.Errorf("Load unknown = %v, want ErrUnknownThread", err)
	}
	if err := store.Retire("missing"); !errors.Is(err, workflow.ErrUnknownThread) {
		t.Errorf("Retire unknown = %v, want ErrUnknownThread", err)
	}
	if store.IsPaused("missing") {
		t.Error("unknown thread should not be paused")
	}

	// Save and load.
	if err := store.Save(suspendedCheckpoint("thread-1")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	cp, err := store.Load("thread-1")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cp.State.UserQuery != "break it down" {
		t.Errorf("state not round-tripped: %q", cp.State.UserQuery)
	}
	if !store.IsPaused("thread-1") {
		t.Error("suspended thread should be paused")
	}
	if cp.CreatedAt.IsZero() {
		t.Error("Save should fill CreatedAt")
	}

	// Retire keeps the record but makes it unresumable.
	if err := store.Retire("thread-1"); err != nil {
		t.Fatalf("Retire failed: %v", err)
	}
	if store.IsPaused("thread-1") {
		t.Error("retired thread should not be paused")
	}
	cp, err = store.Load("thread-1")
	if err != nil {
		t.Fatalf("Load after retire failed: %v", err)
	}
	if !cp.Retired || cp.Paused() {
		t.Error("retired checkpoint should be a tombstone")
	}

	// Retiring again is fine; the distinction that matters is that the
	// thread is still known.
	if err := store.Retire("thread-1"); err != nil {
		t.Errorf("second Retire failed: %v", err)
	}
}

func TestMemoryCheckpointStore(t *testing.T) {
	runCheckpointStoreContract(t, NewMemoryCheckpointStore())
}

func TestFileCheckpointStore(t *testing.T) {
	runCheckpointStoreContract(t, NewFileCheckpointStore(newTestWorkspace(t)))
}

func TestFileCheckpointStore_SurvivesRestart(t *testing.T) {
	ws := newTestWorkspace(t)

	first := NewFileCheckpointStore(ws)
	if err := first.Save(suspendedCheckpoint("thread-9")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A new store over the same workspace sees the checkpoint, the way a
	// second CLI invocation would.
	second := NewFileCheckpointStore(ws)
	if !second.IsPaused("thread-9") {
		t.Error("checkpoint did not survive across store instances")
	}
	if err := second.Retire("thread-9"); err != nil {
		t.Fatalf("Retire failed: %v", err)
	}
	if first.IsPaused("thread-9") {
		t.Error("retirement not visible to the first instance")
	}
}

func TestMemoryCheckpointStore_ConcurrentThreads(t *testing.T) {
	store := NewMemoryCheckpointStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("thread-%d", n)
			if err := store.Save(suspendedCheckpoint(id)); err != nil {
				t.Errorf("Save(%s) failed: %v", id, err)
				return
			}
			if !store.IsPaused(id) {
				t.Errorf("thread %s should be paused", id)
			}
			if err := store.Retire(id); err != nil {
				t.Errorf("Retire(%s) failed: %v", id, err)
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		if store.IsPaused(fmt.Sprintf("thread-%d", i)) {
			t.Errorf("thread-%d still paused after retire", i)
		}
	}
}
