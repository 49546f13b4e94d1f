package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/backloghq/groom/pkg/domain/workflow"
)

// MemoryCheckpointStore keeps checkpoints in a mutex-guarded map. Suited
// for tests and embedded use; nothing survives a restart.
type MemoryCheckpointStore struct {
	mu          sync.RWMutex
	checkpoints map[string]workflow.Checkpoint
}

// NewMemoryCheckpointStore creates an empty in-memory store.
func NewMemoryCheckpointStore() *MemoryCheckpointStore {
	return &MemoryCheckpointStore{checkpoints: make(map[string]workflow.Checkpoint)}
}

func (s *MemoryCheckpointStore) Save(cp workflow.Checkpoint) error {
	if cp.ThreadID == "" {
		return fmt.Errorf("checkpoint thread id cannot be empty")
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkpoints[cp.ThreadID] = cp
	return nil
}

func (s *MemoryCheckpointStore) Load(threadID string) (workflow.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[threadID]
	if !ok {
		return workflow.Checkpoint{}, fmt.Errorf("thread %s: %w", threadID, workflow.ErrUnknownThread)
	}
	return cp, nil
}

func (s *MemoryCheckpointStore) IsPaused(threadID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp, ok := s.checkpoints[threadID]
	return ok && cp.Paused()
}

// Retire keeps the record as a tombstone so a second resume of the same
// thread fails with ErrNotPaused rather than looking like an unknown id.
func (s *MemoryCheckpointStore) Retire(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp, ok := s.checkpoints[threadID]
	if !ok {
		return fmt.Errorf("thread %s: %w", threadID, workflow.ErrUnknownThread)
	}
	cp.Retired = true
	s.checkpoints[threadID] = cp
	return nil
}

// FileCheckpointStore persists one JSON file per thread under
// .groom/checkpoints/, so a suspended workflow survives across processes: a
// CLI invocation can suspend and a later one resume. A suspended run holds
// no goroutine or other live resource, only this file.
type FileCheckpointStore struct {
	mu sync.Mutex
	ws *Workspace
}

// NewFileCheckpointStore creates a store rooted at the workspace.
func NewFileCheckpointStore(ws *Workspace) *FileCheckpointStore {
	return &FileCheckpointStore{ws: ws}
}

func (s *FileCheckpointStore) path(threadID string) (string, error) {
	if err := validName(threadID); err != nil {
		return "", err
	}
	return s.ws.ResolvePath("checkpoints", threadID+".json")
}

func (s *FileCheckpointStore) Save(cp workflow.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	path, err := s.path(cp.ThreadID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.ws.BaseDir()+"/checkpoints", 0700); err != nil {
		return fmt.Errorf("create checkpoints directory: %w", err)
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return writeFileAtomic(path, data)
}

func (s *FileCheckpointStore) Load(threadID string) (workflow.Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(threadID)
}

func (s *FileCheckpointStore) load(threadID string) (workflow.Checkpoint, error) {
	path, err := s.path(threadID)
	if err != nil {
		return workflow.Checkpoint{}, err
	}

	// #nosec G304 -- path is resolved and validated via ResolvePath
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return workflow.Checkpoint{}, fmt.Errorf("thread %s: %w", threadID, workflow.ErrUnknownThread)
		}
		return workflow.Checkpoint{}, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp workflow.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return workflow.Checkpoint{}, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return cp, nil
}

func (s *FileCheckpointStore) IsPaused(threadID string) bool {
	cp, err := s.Load(threadID)
	return err == nil && cp.Paused()
}

// Retire rewrites the checkpoint file as a tombstone. The record stays on
// disk so "already resumed" and "never existed" remain distinguishable.
func (s *FileCheckpointStore) Retire(threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp, err := s.load(threadID)
	if err != nil {
		return err
	}
	cp.Retired = true

	path, err := s.path(threadID)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	return writeFileAtomic(path, data)
}
