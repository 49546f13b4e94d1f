package workflow

import "testing"

func TestMachine_HappyPath(t *testing.T) {
	m, err := NewMachine(NodeEntry, "t1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	if m.Current() != NodeEntry {
		t.Fatalf("initial node = %s", m.Current())
	}

	steps := []struct {
		event string
		want  Node
	}{
		{EventReceived, NodeClassify},
		{EventClassified, NodeRoute},
		{EventDispatch, NodeInvoke},
		{EventFinish, NodeEnd},
	}
	for _, step := range steps {
		if err := m.Transition(step.event); err != nil {
			t.Fatalf("Transition(%s) failed: %v", step.event, err)
		}
		if m.Current() != step.want {
			t.Fatalf("after %s: node = %s, want %s", step.event, m.Current(), step.want)
		}
	}
	if !m.Done() {
		t.Error("machine should be done at end node")
	}
}

func TestMachine_SuspendPath(t *testing.T) {
	m, err := NewMachine(NodeEntry, "t1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	for _, event := range []string{EventReceived, EventClassified, EventDispatch, EventSuspend} {
		if err := m.Transition(event); err != nil {
			t.Fatalf("Transition(%s) failed: %v", event, err)
		}
	}
	if m.Current() != NodeApprove {
		t.Fatalf("node = %s, want approve", m.Current())
	}
	if err := m.Transition(EventFinish); err != nil {
		t.Fatalf("finish from approve failed: %v", err)
	}
	if !m.Done() {
		t.Error("machine should be done")
	}
}

func TestMachine_RejectsIllegalEvents(t *testing.T) {
	m, err := NewMachine(NodeEntry, "t1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}

	// The entry node only accepts received.
	if err := m.Transition(EventDispatch); err == nil {
		t.Error("expected error for dispatch at entry")
	}
	if m.Current() != NodeEntry {
		t.Errorf("illegal event moved the machine to %s", m.Current())
	}

	// Suspension is only legal from invoke.
	if err := m.Transition(EventReceived); err != nil {
		t.Fatalf("received failed: %v", err)
	}
	if err := m.Transition(EventSuspend); err == nil {
		t.Error("expected error for suspend at classify")
	}
}

func TestMachine_ResumesAtApprove(t *testing.T) {
	m, err := NewMachine(NodeApprove, "t1")
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	if m.Current() != NodeApprove {
		t.Fatalf("node = %s, want approve", m.Current())
	}
	if err := m.Transition(EventFinish); err != nil {
		t.Fatalf("finish failed: %v", err)
	}
	if !m.Done() {
		t.Error("machine should be done")
	}
}

func TestCheckpoint_Paused(t *testing.T) {
	cp := Checkpoint{
		ThreadID: "t1",
		State:    State{Status: StatusAwaitingApproval},
	}
	if !cp.Paused() {
		t.Error("suspended checkpoint should be paused")
	}

	cp.Retired = true
	if cp.Paused() {
		t.Error("retired checkpoint should not be paused")
	}

	cp = Checkpoint{ThreadID: "t2", State: State{Status: StatusCompleted}}
	if cp.Paused() {
		t.Error("completed checkpoint should not be paused")
	}
}
