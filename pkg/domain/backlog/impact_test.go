package backlog

import "testing"

func TestImpactPlan_IsEmpty(t *testing.T) {
	var nilPlan *ImpactPlan
	if !nilPlan.IsEmpty() {
		t.Error("nil plan should be empty")
	}
	if !(&ImpactPlan{}).IsEmpty() {
		t.Error("zero plan should be empty")
	}
	if (&ImpactPlan{DeletedItems: []string{"REC-1"}}).IsEmpty() {
		t.Error("plan with deletions should not be empty")
	}
}

func TestImpactPlan_Apply(t *testing.T) {
	existing := []WorkItem{
		{ID: "REC-1", Title: "keep"},
		{ID: "REC-2", Title: "old title"},
		{ID: "REC-3", Title: "doomed"},
	}
	plan := &ImpactPlan{
		NewItems: []WorkItem{{ID: "REC-4", Title: "fresh"}},
		ModifiedItems: []ModifiedItem{
			{Before: existing[1], After: WorkItem{ID: "REC-2", Title: "new title"}},
		},
		DeletedItems: []string{"REC-3"},
	}

	result, created, modified, deleted := plan.Apply(existing)

	if created != 1 || modified != 1 || deleted != 1 {
		t.Errorf("counts = (%d, %d, %d), want (1, 1, 1)", created, modified, deleted)
	}
	if len(result) != 3 {
		t.Fatalf("result has %d items, want 3", len(result))
	}
	byID := map[string]WorkItem{}
	for _, item := range result {
		byID[item.ID] = item
	}
	if _, ok := byID["REC-3"]; ok {
		t.Error("deleted item still present")
	}
	if byID["REC-2"].Title != "new title" {
		t.Errorf("modified item title = %q, want %q", byID["REC-2"].Title, "new title")
	}
	if byID["REC-4"].Title != "fresh" {
		t.Error("new item missing")
	}

	// The input snapshot must stay untouched.
	if existing[1].Title != "old title" || len(existing) != 3 {
		t.Error("Apply mutated its input")
	}
}

func TestImpactPlan_ApplySkipsMissingIDs(t *testing.T) {
	plan := &ImpactPlan{
		ModifiedItems: []ModifiedItem{{After: WorkItem{ID: "GHO-1"}}},
		DeletedItems:  []string{"GHO-2"},
	}

	result, created, modified, deleted := plan.Apply([]WorkItem{{ID: "REC-1"}})

	if created != 0 || modified != 0 || deleted != 0 {
		t.Errorf("counts = (%d, %d, %d), want all zero", created, modified, deleted)
	}
	if len(result) != 1 || result[0].ID != "REC-1" {
		t.Errorf("result = %v, want the untouched backlog", result)
	}
}

func TestImpactPlan_Summary(t *testing.T) {
	if got := (&ImpactPlan{}).Summary(); got != "no changes" {
		t.Errorf("empty summary = %q", got)
	}
	plan := &ImpactPlan{NewItems: []WorkItem{{}, {}}, DeletedItems: []string{"x"}}
	if got := plan.Summary(); got != "2 new, 0 modified, 1 deleted" {
		t.Errorf("summary = %q", got)
	}
}
