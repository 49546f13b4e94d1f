// Package storage implements the file-backed persistence under .groom/.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// GroomDir is the workspace directory created inside a project root.
const GroomDir = ".groom"

var safeNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Workspace anchors all stores to one project root directory.
type Workspace struct {
	root string
}

// NewWorkspace creates a workspace handle for a root directory. Nothing is
// written until Initialize is called.
func NewWorkspace(root string) *Workspace {
	return &Workspace{root: root}
}

// Root returns the workspace root directory.
func (w *Workspace) Root() string {
	return w.root
}

// BaseDir returns the .groom directory path.
func (w *Workspace) BaseDir() string {
	return filepath.Join(w.root, GroomDir)
}

// Initialize creates the .groom directory tree.
func (w *Workspace) Initialize() error {
	for _, dir := range []string{w.BaseDir(), filepath.Join(w.BaseDir(), "backlog"), filepath.Join(w.BaseDir(), "checkpoints")} {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create workspace directory: %w", err)
		}
	}
	return nil
}

// IsInitialized reports whether the .groom directory exists.
func (w *Workspace) IsInitialized() bool {
	_, err := os.Stat(w.BaseDir())
	return err == nil
}

// ResolvePath joins path elements under .groom and rejects traversal out of
// the workspace.
func (w *Workspace) ResolvePath(elems ...string) (string, error) {
	if len(elems) == 0 {
		return "", fmt.Errorf("path cannot be empty")
	}
	baseDir := w.BaseDir()
	fullPath := filepath.Join(append([]string{baseDir}, elems...)...)
	cleanPath := filepath.Clean(fullPath)

	if cleanPath != baseDir && !strings.HasPrefix(cleanPath, baseDir+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path: %s", filepath.Join(elems...))
	}
	return cleanPath, nil
}

// validName guards ids used as file or directory names.
func validName(name string) error {
	if !safeNamePattern.MatchString(name) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// writeFileAtomic writes data to path via a temp file and rename so readers
// never observe a torn file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
