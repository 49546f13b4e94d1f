package backlog

import "errors"

// ErrNotFound is returned when a project has no backlog snapshot yet.
var ErrNotFound = errors.New("backlog not found")

// Repository persists versioned backlog snapshots. Save never overwrites:
// it writes a new version and returns its number.
type Repository interface {
	// Load returns the latest snapshot, or an error wrapping ErrNotFound
	// when the project has none.
	Load(projectID string) ([]WorkItem, error)

	// Save persists the items as the next version and returns its number.
	Save(projectID string, items []WorkItem) (int, error)

	// Version returns the latest version number, 0 for a fresh project.
	Version(projectID string) (int, error)
}
