package backlog

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultPrefix is used when a project id yields no letters at all.
const DefaultPrefix = "WI"

var (
	letterPattern = regexp.MustCompile(`[A-Za-z]`)
	suffixPattern = regexp.MustCompile(`^(\d+)$`)
)

// DerivePrefix turns a project id into a short uppercase item prefix. The
// first dash- or underscore-separated segment is stripped to its letters
// and truncated to three characters; a segment without letters falls back
// to the letters of the whole id, and an id without letters falls back to
// DefaultPrefix. One-letter results are padded with X so a prefix is
// always at least two characters.
func DerivePrefix(projectID string) string {
	segment := projectID
	if idx := strings.IndexAny(projectID, "-_"); idx >= 0 {
		segment = projectID[:idx]
	}

	letters := extractLetters(segment)
	if letters == "" {
		letters = extractLetters(projectID)
	}
	if letters == "" {
		return DefaultPrefix
	}

	prefix := strings.ToUpper(letters)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for len(prefix) < 2 {
		prefix += "X"
	}
	return prefix
}

func extractLetters(s string) string {
	return strings.Join(letterPattern.FindAllString(s, -1), "")
}

// NextIndex returns the next numeric suffix for the prefix: one past the
// highest suffix any existing item already uses, starting at 1 for a
// fresh backlog. Ids under other prefixes are ignored.
func NextIndex(existing []WorkItem, prefix string) int {
	max := 0
	for _, item := range existing {
		rest, ok := strings.CutPrefix(item.ID, prefix+"-")
		if !ok {
			continue
		}
		m := suffixPattern.FindStringSubmatch(rest)
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
	return max + 1
}

// Allocator assigns final item ids to a batch of proposed items. It is
// built against one snapshot of the backlog; concurrent allocation against
// the same project needs external serialization.
type Allocator struct {
	prefix string
	next   int
}

// NewAllocator derives the project prefix and positions the counter after
// the existing items.
func NewAllocator(projectID string, existing []WorkItem) *Allocator {
	prefix := DerivePrefix(projectID)
	return &Allocator{
		prefix: prefix,
		next:   NextIndex(existing, prefix),
	}
}

// Prefix returns the derived item prefix.
func (a *Allocator) Prefix() string {
	return a.prefix
}

// Assign replaces every placeholder id in the batch with the next
// sequential id and rewrites ParentID references that point at another
// item in the batch. Parent ids that refer to items outside the batch are
// left untouched. The returned map translates placeholder ids to the
// assigned ones.
func (a *Allocator) Assign(batch []WorkItem) ([]WorkItem, map[string]string) {
	idMap := make(map[string]string, len(batch))

	for i := range batch {
		assigned := a.prefix + "-" + strconv.Itoa(a.next)
		a.next++
		if batch[i].ID != "" {
			idMap[batch[i].ID] = assigned
		}
		batch[i].ID = assigned
	}

	for i := range batch {
		if mapped, ok := idMap[batch[i].ParentID]; ok {
			batch[i].ParentID = mapped
		}
	}
	return batch, idMap
}
