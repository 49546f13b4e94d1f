package workflow

import (
	"encoding/json"
	"fmt"
)

// Status is the shared contract between agent strategies and the engine.
// Agents return AwaitingApproval, Completed or Error; the resumption step
// produces Approved or Rejected as terminal outcomes.
type Status string

const (
	StatusPending          Status = "pending"
	StatusAwaitingApproval Status = "awaiting_approval"
	StatusCompleted        Status = "completed"
	StatusError            Status = "error"
	StatusApproved         Status = "approved"
	StatusRejected         Status = "rejected"
)

// AllStatuses returns all valid workflow statuses.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusAwaitingApproval,
		StatusCompleted,
		StatusError,
		StatusApproved,
		StatusRejected,
	}
}

// IsValid returns true if the status is a known workflow status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAwaitingApproval, StatusCompleted, StatusError, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// IsSuspended returns true if the status pauses the workflow for a human.
func (s Status) IsSuspended() bool { return s == StatusAwaitingApproval }

// IsTerminal returns true if no further node will run for this status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusError, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// ParseStatus parses a string into a Status.
func ParseStatus(str string) (Status, error) {
	status := Status(str)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid workflow status: %s", str)
	}
	return status, nil
}

// MarshalJSON implements json.Marshaler.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler. The empty string maps to
// pending so half-written checkpoints stay readable.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	if str == "" {
		*s = StatusPending
		return nil
	}
	status := Status(str)
	if !status.IsValid() {
		return fmt.Errorf("invalid workflow status: %s", str)
	}
	*s = status
	return nil
}
