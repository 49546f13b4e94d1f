package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWorkspace_Initialize(t *testing.T) {
	root := t.TempDir()
	ws := NewWorkspace(root)

	if ws.IsInitialized() {
		t.Error("fresh workspace should not be initialized")
	}
	if err := ws.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if !ws.IsInitialized() {
		t.Error("workspace should be initialized")
	}

	for _, dir := range []string{"backlog", "checkpoints"} {
		if _, err := os.Stat(filepath.Join(root, GroomDir, dir)); err != nil {
			t.Errorf("missing %s directory: %v", dir, err)
		}
	}
}

func TestWorkspace_ResolvePath(t *testing.T) {
	ws := NewWorkspace(t.TempDir())

	tests := []struct {
		name    string
		elems   []string
		wantErr bool
	}{
		{"simple", []string{"events.jsonl"}, false},
		{"nested", []string{"backlog", "p1", "v000001.json"}, false},
		{"traversal", []string{"..", "secrets"}, true},
		{"deep traversal", []string{"backlog", "..", "..", "etc"}, true},
		{"empty", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := ws.ResolvePath(tt.elems...)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolvePath(%v) error = %v, wantErr %v", tt.elems, err, tt.wantErr)
			}
			if err == nil && path == "" {
				t.Error("resolved path is empty")
			}
		})
	}
}

func TestValidName(t *testing.T) {
	valid := []string{"recette-mvp", "p1", "Thread_9", "a.b"}
	for _, name := range valid {
		if err := validName(name); err != nil {
			t.Errorf("validName(%q) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "../x", ".hidden", "a/b", "a b", "-dash"}
	for _, name := range invalid {
		if err := validName(name); err == nil {
			t.Errorf("validName(%q) = nil, want error", name)
		}
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	if err := writeFileAtomic(path, []byte(`{"a": 1}`)); err != nil {
		t.Fatalf("writeFileAtomic failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"a": 1}` {
		t.Errorf("content = %q", data)
	}

	// Overwrite must be atomic too.
	if err := writeFileAtomic(path, []byte(`{"a": 2}`)); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `{"a": 2}` {
		t.Errorf("content after overwrite = %q", data)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want 1", len(entries))
	}
}
