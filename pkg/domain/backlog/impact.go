package backlog

import "fmt"

// ModifiedItem pairs an item's snapshot before a proposed edit with the
// edited version, so a reviewer can diff the two.
type ModifiedItem struct {
	Before WorkItem `json:"before"`
	After  WorkItem `json:"after"`
}

// ImpactPlan is the full set of changes an agent proposes for one backlog.
// Nothing in the plan is applied until a human approves it.
type ImpactPlan struct {
	NewItems      []WorkItem     `json:"new_items,omitempty"`
	ModifiedItems []ModifiedItem `json:"modified_items,omitempty"`
	DeletedItems  []string       `json:"deleted_items,omitempty"`
}

// IsEmpty reports whether the plan proposes no changes. A nil plan is
// empty.
func (p *ImpactPlan) IsEmpty() bool {
	if p == nil {
		return true
	}
	return len(p.NewItems) == 0 && len(p.ModifiedItems) == 0 && len(p.DeletedItems) == 0
}

// Summary describes the plan in one line.
func (p *ImpactPlan) Summary() string {
	if p.IsEmpty() {
		return "no changes"
	}
	return fmt.Sprintf("%d new, %d modified, %d deleted",
		len(p.NewItems), len(p.ModifiedItems), len(p.DeletedItems))
}

// Apply produces the backlog that results from the plan: new items are
// appended, modified items are replaced by their After snapshot, deleted
// ids are dropped. Modified or deleted ids that no longer exist are
// skipped without error; the counts report what actually happened. The
// input slice is not mutated.
func (p *ImpactPlan) Apply(items []WorkItem) (result []WorkItem, created, modified, deleted int) {
	if p.IsEmpty() {
		return append([]WorkItem(nil), items...), 0, 0, 0
	}

	afterByID := make(map[string]WorkItem, len(p.ModifiedItems))
	for _, m := range p.ModifiedItems {
		afterByID[m.After.ID] = m.After
	}
	deletedIDs := make(map[string]bool, len(p.DeletedItems))
	for _, id := range p.DeletedItems {
		deletedIDs[id] = true
	}

	result = make([]WorkItem, 0, len(items)+len(p.NewItems))
	for _, item := range items {
		if deletedIDs[item.ID] {
			deleted++
			continue
		}
		if after, ok := afterByID[item.ID]; ok {
			result = append(result, after)
			modified++
			continue
		}
		result = append(result, item)
	}

	result = append(result, p.NewItems...)
	created = len(p.NewItems)
	return result, created, modified, deleted
}
