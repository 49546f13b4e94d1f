package cli

import (
	"errors"
	"fmt"

	"github.com/backloghq/groom/pkg/domain/backlog"
	"github.com/backloghq/groom/pkg/domain/workflow"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable
// hints. Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, workflow.ErrUnknownThread):
		return NewCLIError(
			"no workflow was found for that thread id",
			"Check the thread id printed by 'groom ask', or list pending approvals with 'groom timeline'",
			err,
		)
	case errors.Is(err, workflow.ErrNotPaused):
		return NewCLIError(
			"that workflow is not waiting for approval",
			"A thread can only be approved or rejected once; its decision has already been applied",
			err,
		)
	case errors.Is(err, backlog.ErrNotFound):
		return NewCLIError(
			"no backlog exists for that project yet",
			"Create items first, for example: groom ask \"add a login feature\" --project <id>",
			err,
		)
	}
	return err
}
