package events

import (
	"context"
	"fmt"
	"sync"
)

// Sink receives workflow events. Implementations must not feed anything
// back into the workflow decision path.
type Sink interface {
	Publish(ctx context.Context, event *WorkflowEvent) error
}

// HandlerFunc handles a single workflow event.
type HandlerFunc func(ctx context.Context, event *WorkflowEvent) error

// Dispatcher fans events out to registered handlers by event type. The
// wildcard "*" receives everything. Dispatcher implements Sink.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	// ContinueOnError keeps dispatching when a handler fails instead of
	// stopping at the first error.
	ContinueOnError bool
}

type namedHandler struct {
	name    string
	handler HandlerFunc
}

// NewDispatcher creates an empty Dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]namedHandler)}
}

// Register registers a named handler for the given event types.
func (d *Dispatcher) Register(name string, handler HandlerFunc, eventTypes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	nh := namedHandler{name: name, handler: handler}
	for _, eventType := range eventTypes {
		d.handlers[eventType] = append(d.handlers[eventType], nh)
	}
}

// RegisterWildcard registers a handler for all events.
func (d *Dispatcher) RegisterWildcard(name string, handler HandlerFunc) {
	d.Register(name, handler, "*")
}

// Publish dispatches the event to all handlers registered for its type
// plus any wildcard handlers.
func (d *Dispatcher) Publish(ctx context.Context, event *WorkflowEvent) error {
	d.mu.RLock()
	handlers := make([]namedHandler, 0, len(d.handlers[event.Type])+len(d.handlers["*"]))
	handlers = append(handlers, d.handlers[event.Type]...)
	handlers = append(handlers, d.handlers["*"]...)
	d.mu.RUnlock()

	var errs []error
	for _, nh := range handlers {
		if err := nh.handler(ctx, event); err != nil {
			handlerErr := fmt.Errorf("handler %s failed for event %s: %w", nh.name, event.Type, err)
			if !d.ContinueOnError {
				return handlerErr
			}
			errs = append(errs, handlerErr)
		}
	}
	if len(errs) > 0 {
		return &DispatchError{Errors: errs}
	}
	return nil
}

// HasHandlers returns true if any handler would receive the event type.
func (d *Dispatcher) HasHandlers(eventType string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers[eventType]) > 0 || len(d.handlers["*"]) > 0
}

// DispatchError collects the failures of multiple handlers.
type DispatchError struct {
	Errors []error
}

func (e *DispatchError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("multiple dispatch errors (%d)", len(e.Errors))
}

// Unwrap returns the first error for errors.Is/As support.
func (e *DispatchError) Unwrap() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// NopSink discards every event. Useful for tests and embedding.
type NopSink struct{}

func (NopSink) Publish(context.Context, *WorkflowEvent) error { return nil }
