package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backloghq/groom/pkg/domain/backlog"
	"github.com/backloghq/groom/pkg/domain/events"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

// RunResult is what the engine hands back to its caller, both when a run
// terminates and when it suspends for approval.
type RunResult struct {
	ThreadID  string
	ProjectID string
	Status    workflow.Status
	Result    string
	Plan      *backlog.ImpactPlan
}

// WorkflowService is the workflow engine. It sequences the graph nodes
// strictly in order (entry, classify, route, invoke, approve, end), halts
// before the approve node whenever an agent requests approval, and resumes
// suspended runs from their checkpoint.
//
// Node-local failures never escape a run: classification collapses to the
// unknown intent and agent errors become StatusError results. Only
// checkpoint misuse (unknown or non-paused thread ids) surfaces as a hard
// error, from Resume.
type WorkflowService struct {
	backlog     backlog.Repository
	checkpoints workflow.CheckpointStore
	registry    workflow.Registry
	classifier  *IntentClassifier
	strategies  map[string]workflow.Strategy
	sink        events.Sink
	logger      *slog.Logger

	// resumeMu serializes resumptions so a checkpoint is applied at most
	// once. Cross-process approval of the same thread is not guarded here;
	// the file checkpoint store's tombstone narrows but does not close that
	// window.
	resumeMu sync.Mutex
}

// NewWorkflowService wires the engine. The strategies map is keyed by task
// name as resolved from the agent registry.
func NewWorkflowService(
	repo backlog.Repository,
	checkpoints workflow.CheckpointStore,
	registry workflow.Registry,
	classifier *IntentClassifier,
	strategies map[string]workflow.Strategy,
	sink events.Sink,
	logger *slog.Logger,
) *WorkflowService {
	if sink == nil {
		sink = events.NopSink{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkflowService{
		backlog:     repo,
		checkpoints: checkpoints,
		registry:    registry,
		classifier:  classifier,
		strategies:  strategies,
		sink:        sink,
		logger:      logger,
	}
}

// Run executes a fresh workflow for a user query. An empty threadID is
// replaced with a generated one. When an agent proposes changes, Run
// persists a checkpoint and returns with StatusAwaitingApproval; the caller
// finishes the thread later via Resume.
func (s *WorkflowService) Run(ctx context.Context, projectID, userQuery, threadID string) (*RunResult, error) {
	if threadID == "" {
		threadID = uuid.New().String()
	}

	state := workflow.NewState(threadID, projectID, userQuery)
	machine, err := workflow.NewMachine(workflow.NodeEntry, threadID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, &state, events.TypeWorkflowStarted, string(workflow.NodeEntry), userQuery, nil)

	for !machine.Done() {
		switch machine.Current() {
		case workflow.NodeEntry:
			if err := machine.Transition(workflow.EventReceived); err != nil {
				return nil, err
			}

		case workflow.NodeClassify:
			intent := s.classifier.Classify(ctx, state.UserQuery)
			state.Merge(workflow.Patch{Intent: &intent})
			s.emit(ctx, &state, events.TypeIntentClassified, string(workflow.NodeClassify),
				fmt.Sprintf("classified as %s", intent.ID),
				map[string]any{"intent": intent.ID, "confidence": intent.Confidence})
			if err := machine.Transition(workflow.EventClassified); err != nil {
				return nil, err
			}

		case workflow.NodeRoute:
			patch, event := s.route(state)
			state.Merge(patch)
			s.emit(ctx, &state, events.TypeWorkflowRouted, string(workflow.NodeRoute),
				fmt.Sprintf("routing to %s", state.NextNode),
				map[string]any{"agent_task": state.AgentTask})
			if err := machine.Transition(event); err != nil {
				return nil, err
			}

		case workflow.NodeInvoke:
			patch := s.invoke(ctx, state)
			state.Merge(patch)

			if state.Status.IsSuspended() {
				if err := machine.Transition(workflow.EventSuspend); err != nil {
					return nil, err
				}
				cp := workflow.Checkpoint{
					ThreadID:  threadID,
					State:     state,
					NextNode:  workflow.NodeApprove,
					CreatedAt: time.Now(),
				}
				if err := s.checkpoints.Save(cp); err != nil {
					return nil, fmt.Errorf("failed to persist checkpoint: %w", err)
				}
				s.emit(ctx, &state, events.TypeWorkflowSuspended, string(workflow.NodeApprove),
					"waiting for human approval", map[string]any{"plan": state.Plan.Summary()})
				return resultOf(state), nil
			}
			if err := machine.Transition(workflow.EventFinish); err != nil {
				return nil, err
			}

		case workflow.NodeApprove, workflow.NodeEnd:
			// Approve is only ever entered through Resume; Run halts
			// before it.
			return nil, fmt.Errorf("unexpected node %s during run", machine.Current())
		}
	}

	s.emit(ctx, &state, events.TypeWorkflowCompleted, string(workflow.NodeEnd), state.Result, nil)
	return resultOf(state), nil
}

// Resume finishes a suspended thread with the human's decision. It fails
// with workflow.ErrUnknownThread when no checkpoint exists and with
// workflow.ErrNotPaused when the thread exists but was already resumed or
// never suspended. A true decision applies the impact plan as one new
// backlog version; false discards it without touching the store. Either
// way the checkpoint is retired and cannot be resumed again.
func (s *WorkflowService) Resume(ctx context.Context, threadID string, approved bool) (*RunResult, error) {
	s.resumeMu.Lock()
	defer s.resumeMu.Unlock()

	cp, err := s.checkpoints.Load(threadID)
	if err != nil {
		return nil, err
	}
	if !cp.Paused() {
		return nil, fmt.Errorf("thread %s: %w", threadID, workflow.ErrNotPaused)
	}

	state := cp.State
	decision := approved
	state.Merge(workflow.Patch{ApprovalDecision: &decision})

	machine, err := workflow.NewMachine(workflow.NodeApprove, threadID)
	if err != nil {
		return nil, err
	}

	s.emit(ctx, &state, events.TypeWorkflowResumed, string(workflow.NodeApprove),
		fmt.Sprintf("resumed with approved=%t", approved), nil)

	state.Merge(s.settle(state, approved))

	if err := machine.Transition(workflow.EventFinish); err != nil {
		return nil, err
	}
	if err := s.checkpoints.Retire(threadID); err != nil {
		return nil, fmt.Errorf("failed to retire checkpoint: %w", err)
	}

	s.emit(ctx, &state, events.TypeWorkflowCompleted, string(workflow.NodeEnd), state.Result, nil)
	return resultOf(state), nil
}

// route applies the confidence threshold and the registry lookup.
func (s *WorkflowService) route(state workflow.State) (workflow.Patch, string) {
	threshold := s.registry.Threshold()

	if state.Intent.IsUnknown() || state.Intent.Confidence < threshold {
		return workflow.Patch{
			NextNode: workflow.NodeEnd,
			Status:   workflow.StatusCompleted,
			Result: fmt.Sprintf(
				"I am not confident I understood that request (confidence %.2f). Please rephrase it.",
				state.Intent.Confidence),
		}, workflow.EventFinish
	}

	binding, ok := s.registry.Resolve(state.Intent.ID)
	if !ok {
		return workflow.Patch{
			NextNode: workflow.NodeEnd,
			Status:   workflow.StatusCompleted,
			Result:   fmt.Sprintf("intent %q is not recognized; no agent is registered for it", state.Intent.ID),
		}, workflow.EventFinish
	}

	return workflow.Patch{
		NextNode:  workflow.NodeInvoke,
		AgentTask: binding.Task,
	}, workflow.EventDispatch
}

// invoke runs the selected strategy behind a recovery boundary. Whatever
// goes wrong inside an agent comes back as a StatusError patch, never as a
// panic or error that could corrupt the run.
func (s *WorkflowService) invoke(ctx context.Context, state workflow.State) (patch workflow.Patch) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("agent panicked", "task", state.AgentTask, "panic", r)
			patch = errorPatch(fmt.Sprintf("agent %s failed: internal error: %v", state.AgentTask, r))
		}
	}()

	strategy, ok := s.strategies[state.AgentTask]
	if !ok {
		s.logger.Error("no strategy registered for task", "task", state.AgentTask)
		return errorPatch(fmt.Sprintf("no agent implementation is registered for task %q", state.AgentTask))
	}

	s.emit(ctx, &state, events.TypeAgentStarted, string(workflow.NodeInvoke),
		fmt.Sprintf("running %s", state.AgentTask), nil)

	patch, err := strategy.Execute(ctx, state)
	if err != nil {
		s.logger.Warn("agent returned an error", "task", state.AgentTask, "error", err)
		return errorPatch(fmt.Sprintf("agent %s failed: %v", state.AgentTask, err))
	}

	switch {
	case patch.Status == "":
		s.logger.Warn("agent returned no status, treating as completed", "task", state.AgentTask)
		patch.Status = workflow.StatusCompleted
	case !patch.Status.IsValid():
		s.logger.Warn("agent returned unrecognized status, treating as completed",
			"task", state.AgentTask, "status", patch.Status)
		patch.Status = workflow.StatusCompleted
	}

	if patch.Status.IsSuspended() && patch.Plan.IsEmpty() {
		s.logger.Warn("agent requested approval without an impact plan", "task", state.AgentTask)
		return errorPatch(fmt.Sprintf("agent %s requested approval without proposing changes", state.AgentTask))
	}

	s.emit(ctx, &state, events.TypeAgentFinished, string(workflow.NodeInvoke),
		fmt.Sprintf("%s finished with status %s", state.AgentTask, patch.Status), nil)
	return patch
}

// settle runs the approve node body: apply the plan on approval, discard it
// on rejection.
func (s *WorkflowService) settle(state workflow.State, approved bool) workflow.Patch {
	if !approved {
		return workflow.Patch{
			Status: workflow.StatusRejected,
			Result: "rejected: the proposed changes were discarded",
		}
	}

	items, err := s.backlog.Load(state.ProjectID)
	if err != nil {
		if !errors.Is(err, backlog.ErrNotFound) {
			return errorPatch(fmt.Sprintf("failed to load backlog for %s: %v", state.ProjectID, err))
		}
		// New project: approving against an empty backlog is fine.
		items = nil
	}

	applied, created, modified, deleted := state.Plan.Apply(items)
	version, err := s.backlog.Save(state.ProjectID, applied)
	if err != nil {
		return errorPatch(fmt.Sprintf("failed to persist backlog for %s: %v", state.ProjectID, err))
	}

	return workflow.Patch{
		Status: workflow.StatusApproved,
		Result: fmt.Sprintf("approved: %d created, %d modified, %d deleted (backlog version %d)",
			created, modified, deleted, version),
	}
}

func (s *WorkflowService) emit(ctx context.Context, state *workflow.State, eventType, node, message string, metadata map[string]any) {
	ev := events.WorkflowEvent{
		Type:      eventType,
		ThreadID:  state.ThreadID,
		ProjectID: state.ProjectID,
		Node:      node,
		Actor:     "engine",
		Message:   message,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}
	if err := s.sink.Publish(ctx, &ev); err != nil {
		// The timeline is observability only; a failing sink must not
		// affect the run.
		s.logger.Warn("failed to publish workflow event", "type", eventType, "error", err)
	}
	state.AgentEvents = append(state.AgentEvents, ev)
}

func errorPatch(result string) workflow.Patch {
	return workflow.Patch{
		NextNode: workflow.NodeEnd,
		Status:   workflow.StatusError,
		Result:   result,
	}
}

func resultOf(state workflow.State) *RunResult {
	return &RunResult{
		ThreadID:  state.ThreadID,
		ProjectID: state.ProjectID,
		Status:    state.Status,
		Result:    state.Result,
		Plan:      state.Plan,
	}
}
