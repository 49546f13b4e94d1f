package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/backloghq/groom/pkg/domain/backlog"
)

const backlogCacheSize = 32

var snapshotPattern = regexp.MustCompile(`^v(\d{6})\.json$`)

// FilesystemBacklogStore keeps one directory per project under
// .groom/backlog/, holding immutable JSON snapshots v000001.json,
// v000002.json and so on. Save always writes the next version; prior
// versions are never touched.
//
// Snapshots are immutable once written, so parsed versions are cached in a
// small LRU keyed by project and version.
type FilesystemBacklogStore struct {
	ws          *Workspace
	cache       *lru.Cache[string, []backlog.WorkItem]
	retryConfig retry.Config
}

// NewFilesystemBacklogStore creates a store rooted at the workspace.
func NewFilesystemBacklogStore(ws *Workspace) (*FilesystemBacklogStore, error) {
	cache, err := lru.New[string, []backlog.WorkItem](backlogCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create backlog cache: %w", err)
	}
	return &FilesystemBacklogStore{
		ws:    ws,
		cache: cache,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}, nil
}

// Version returns the latest snapshot version for a project, 0 when the
// project has no backlog yet.
func (s *FilesystemBacklogStore) Version(projectID string) (int, error) {
	if err := validName(projectID); err != nil {
		return 0, err
	}
	dir, err := s.ws.ResolvePath("backlog", projectID)
	if err != nil {
		return 0, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read backlog directory: %w", err)
	}

	max := 0
	for _, entry := range entries {
		m := snapshotPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return max, nil
}

// Load returns the latest snapshot, or backlog.ErrNotFound when no version
// exists for the project.
func (s *FilesystemBacklogStore) Load(projectID string) ([]backlog.WorkItem, error) {
	version, err := s.Version(projectID)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, fmt.Errorf("project %s: %w", projectID, backlog.ErrNotFound)
	}

	cacheKey := fmt.Sprintf("%s@%d", projectID, version)
	if items, ok := s.cache.Get(cacheKey); ok {
		return append([]backlog.WorkItem(nil), items...), nil
	}

	path, err := s.ws.ResolvePath("backlog", projectID, snapshotName(version))
	if err != nil {
		return nil, err
	}

	retryer := retry.New[[]backlog.WorkItem](s.retryConfig)
	items, err := retryer.Do(context.Background(), func(ctx context.Context) ([]backlog.WorkItem, error) {
		// #nosec G304 -- path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read backlog snapshot: %w", err)
		}
		var items []backlog.WorkItem
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("unmarshal backlog snapshot: %w", err)
		}
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	s.cache.Add(cacheKey, append([]backlog.WorkItem(nil), items...))
	return items, nil
}

// Save writes the items as a new snapshot version and returns its number.
func (s *FilesystemBacklogStore) Save(projectID string, items []backlog.WorkItem) (int, error) {
	version, err := s.Version(projectID)
	if err != nil {
		return 0, err
	}
	next := version + 1

	dir, err := s.ws.ResolvePath("backlog", projectID)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return 0, fmt.Errorf("create backlog directory: %w", err)
	}

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal backlog snapshot: %w", err)
	}

	if err := writeFileAtomic(filepath.Join(dir, snapshotName(next)), data); err != nil {
		return 0, err
	}

	s.cache.Add(fmt.Sprintf("%s@%d", projectID, next), append([]backlog.WorkItem(nil), items...))
	return next, nil
}

func snapshotName(version int) string {
	return fmt.Sprintf("v%06d.json", version)
}
