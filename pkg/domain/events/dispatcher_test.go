package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcher_RoutesByType(t *testing.T) {
	d := NewDispatcher()
	var gotStarted, gotOther int

	d.Register("started", func(_ context.Context, _ *WorkflowEvent) error {
		gotStarted++
		return nil
	}, TypeWorkflowStarted)
	d.Register("other", func(_ context.Context, _ *WorkflowEvent) error {
		gotOther++
		return nil
	}, TypeWorkflowCompleted)

	if err := d.Publish(context.Background(), &WorkflowEvent{Type: TypeWorkflowStarted}); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if gotStarted != 1 || gotOther != 0 {
		t.Errorf("handler counts = (%d, %d), want (1, 0)", gotStarted, gotOther)
	}
}

func TestDispatcher_Wildcard(t *testing.T) {
	d := NewDispatcher()
	var count int
	d.RegisterWildcard("all", func(_ context.Context, _ *WorkflowEvent) error {
		count++
		return nil
	})

	for _, eventType := range []string{TypeWorkflowStarted, TypeAgentFinished, TypeWorkflowCompleted} {
		if err := d.Publish(context.Background(), &WorkflowEvent{Type: eventType}); err != nil {
			t.Fatalf("Publish(%s) failed: %v", eventType, err)
		}
	}
	if count != 3 {
		t.Errorf("wildcard received %d events, want 3", count)
	}
}

func TestDispatcher_ContinueOnError(t *testing.T) {
	boom := errors.New("boom")
	d := NewDispatcher()
	d.ContinueOnError = true

	var reached bool
	d.Register("failing", func(_ context.Context, _ *WorkflowEvent) error {
		return boom
	}, TypeWorkflowStarted)
	d.Register("second", func(_ context.Context, _ *WorkflowEvent) error {
		reached = true
		return nil
	}, TypeWorkflowStarted)

	err := d.Publish(context.Background(), &WorkflowEvent{Type: TypeWorkflowStarted})
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if !reached {
		t.Error("second handler was skipped despite ContinueOnError")
	}

	var dispatchErr *DispatchError
	if !errors.As(err, &dispatchErr) {
		t.Fatalf("expected *DispatchError, got %T", err)
	}
	if !errors.Is(err, boom) {
		t.Error("DispatchError should unwrap to the handler error")
	}
}

func TestDispatcher_StopsOnFirstErrorByDefault(t *testing.T) {
	d := NewDispatcher()
	var reached bool
	d.Register("failing", func(_ context.Context, _ *WorkflowEvent) error {
		return errors.New("boom")
	}, TypeWorkflowStarted)
	d.Register("second", func(_ context.Context, _ *WorkflowEvent) error {
		reached = true
		return nil
	}, TypeWorkflowStarted)

	if err := d.Publish(context.Background(), &WorkflowEvent{Type: TypeWorkflowStarted}); err == nil {
		t.Fatal("expected error")
	}
	if reached {
		t.Error("dispatch continued past the failure")
	}
}

func TestDispatcher_HasHandlers(t *testing.T) {
	d := NewDispatcher()
	if d.HasHandlers(TypeWorkflowStarted) {
		t.Error("empty dispatcher should have no handlers")
	}
	d.RegisterWildcard("all", func(_ context.Context, _ *WorkflowEvent) error { return nil })
	if !d.HasHandlers(TypeWorkflowStarted) {
		t.Error("wildcard should count for any type")
	}
}

func TestWorkflowEvent_HashChain(t *testing.T) {
	first := &WorkflowEvent{ID: "e1", Type: TypeWorkflowStarted, ThreadID: "t1"}
	first.Hash = first.CalculateHash()

	second := &WorkflowEvent{ID: "e2", Type: TypeWorkflowCompleted, ThreadID: "t1", PrevHash: first.Hash}
	second.Hash = second.CalculateHash()

	if second.CalculateHash() != second.Hash {
		t.Error("hash should be deterministic")
	}

	// Changing content must change the hash.
	second.Message = "tampered"
	if second.CalculateHash() == second.Hash {
		t.Error("hash did not change with content")
	}
}

func TestWorkflowEvent_HashMetadataOrder(t *testing.T) {
	a := &WorkflowEvent{ID: "e1", Metadata: map[string]any{"x": 1, "y": "z"}}
	b := &WorkflowEvent{ID: "e1", Metadata: map[string]any{"y": "z", "x": 1}}
	if a.CalculateHash() != b.CalculateHash() {
		t.Error("metadata ordering changed the hash")
	}
}
