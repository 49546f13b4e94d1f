package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/backloghq/groom/pkg/domain/events"
)

const eventsFile = "events.jsonl"

// FileEventStore appends workflow events to a JSON Lines timeline file.
// Each event chains to the previous one by hash. The store implements
// events.Sink so it can be registered directly on the dispatcher.
type FileEventStore struct {
	mu       sync.Mutex
	path     string
	lastHash string
}

// NewFileEventStore creates a timeline store under the workspace. The file
// is created on first write.
func NewFileEventStore(ws *Workspace) (*FileEventStore, error) {
	path, err := ws.ResolvePath(eventsFile)
	if err != nil {
		return nil, err
	}
	store := &FileEventStore{path: path}

	if last, err := store.lastEvent(); err == nil && last != nil {
		store.lastHash = last.Hash
	}
	return store, nil
}

// Path returns the timeline file location, for tailing.
func (s *FileEventStore) Path() string {
	return s.path
}

// Publish implements events.Sink.
func (s *FileEventStore) Publish(_ context.Context, event *events.WorkflowEvent) error {
	return s.Append(event)
}

// Append adds an event to the timeline, filling in id, timestamp and the
// hash chain.
func (s *FileEventStore) Append(event *events.WorkflowEvent) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	event.PrevHash = s.lastHash
	event.Hash = event.CalculateHash()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close events file: %w", cerr)
		}
	}()

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}

	s.lastHash = event.Hash
	return nil
}

// Load reads the whole timeline in append order. A missing file is an
// empty timeline, not an error.
func (s *FileEventStore) Load() ([]events.WorkflowEvent, error) {
	// #nosec G304 -- path comes from ResolvePath at construction
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	var result []events.WorkflowEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev events.WorkflowEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, fmt.Errorf("corrupt event line: %w", err)
		}
		result = append(result, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan events file: %w", err)
	}
	return result, nil
}

// LoadThread returns the timeline entries for one thread id.
func (s *FileEventStore) LoadThread(threadID string) ([]events.WorkflowEvent, error) {
	all, err := s.Load()
	if err != nil {
		return nil, err
	}
	var result []events.WorkflowEvent
	for _, ev := range all {
		if ev.ThreadID == threadID {
			result = append(result, ev)
		}
	}
	return result, nil
}

// Verify walks the hash chain and reports the first broken link.
func (s *FileEventStore) Verify() error {
	all, err := s.Load()
	if err != nil {
		return err
	}
	prev := ""
	for i := range all {
		ev := all[i]
		if ev.PrevHash != prev {
			return fmt.Errorf("event %s: chain broken, expected prev hash %q", ev.ID, prev)
		}
		if ev.CalculateHash() != ev.Hash {
			return fmt.Errorf("event %s: stored hash does not match content", ev.ID)
		}
		prev = ev.Hash
	}
	return nil
}

func (s *FileEventStore) lastEvent() (*events.WorkflowEvent, error) {
	all, err := s.Load()
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return &all[len(all)-1], nil
}
