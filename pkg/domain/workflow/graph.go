package workflow

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// Node identifies one step of the workflow graph.
type Node string

// Graph nodes. The approve node is the single designed interruption point:
// the engine halts before entering it and persists a checkpoint.
const (
	NodeEntry    Node = "entry"
	NodeClassify Node = "classify"
	NodeRoute    Node = "route"
	NodeInvoke   Node = "invoke"
	NodeApprove  Node = "approve"
	NodeEnd      Node = "end"
)

// Transition events between nodes.
const (
	EventReceived   = "received"
	EventClassified = "classified"
	EventDispatch   = "dispatch"
	EventSuspend    = "suspend"
	EventFinish     = "finish"
)

// RunContext carries state data for the graph machine.
type RunContext struct {
	ThreadID string
}

// Machine sequences workflow nodes. It is the single authority on which
// transitions are legal; the engine drives it with events and never jumps
// between nodes directly.
type Machine struct {
	interpreter *statekit.Interpreter[RunContext]
}

// NewMachine builds the workflow graph starting at the given node. Fresh
// runs start at NodeEntry; resumed runs start at NodeApprove.
func NewMachine(initial Node, threadID string) (*Machine, error) {
	builder := statekit.NewMachine[RunContext]("backlog-workflow").
		WithInitial(statekit.StateID(initial)).
		WithContext(RunContext{ThreadID: threadID})

	builder.State(statekit.StateID(NodeEntry)).
		On(EventReceived).Target(statekit.StateID(NodeClassify)).
		Done()

	// Classification never fails past its boundary, so the only way out
	// is forward to routing.
	builder.State(statekit.StateID(NodeClassify)).
		On(EventClassified).Target(statekit.StateID(NodeRoute)).
		Done()

	builder.State(statekit.StateID(NodeRoute)).
		On(EventDispatch).Target(statekit.StateID(NodeInvoke)).
		On(EventFinish).Target(statekit.StateID(NodeEnd)).
		Done()

	builder.State(statekit.StateID(NodeInvoke)).
		On(EventSuspend).Target(statekit.StateID(NodeApprove)).
		On(EventFinish).Target(statekit.StateID(NodeEnd)).
		Done()

	builder.State(statekit.StateID(NodeApprove)).
		On(EventFinish).Target(statekit.StateID(NodeEnd)).
		Done()

	builder.State(statekit.StateID(NodeEnd)).
		Done()

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build workflow machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter}, nil
}

// Transition attempts to advance the graph with the given event.
func (m *Machine) Transition(event string) error {
	before := m.Current()
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	after := m.Current()

	if before != after {
		return nil
	}
	// In statekit, an event that matches no transition leaves the state
	// unchanged rather than erroring.
	return fmt.Errorf("event %q is not allowed while the workflow is at node %q", event, before)
}

// Current returns the node the graph is at.
func (m *Machine) Current() Node {
	return Node(m.interpreter.State().Value)
}

// Done returns true once the graph reached the terminal node.
func (m *Machine) Done() bool {
	return m.Current() == NodeEnd
}
