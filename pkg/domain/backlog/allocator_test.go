package backlog

import (
	"testing"
)

func TestDerivePrefix(t *testing.T) {
	tests := []struct {
		projectID string
		want      string
	}{
		{"recette-mvp", "REC"},
		{"ab-test", "AB"},
		{"123-test", "TES"},
		{"", "WI"},
		{"shop", "SHO"},
		{"x", "XX"},
		{"a-long-project", "AX"},
		{"my_api_v2", "MY"},
		{"42", "WI"},
		{"9a-core", "AX"},
	}

	for _, tt := range tests {
		t.Run(tt.projectID, func(t *testing.T) {
			if got := DerivePrefix(tt.projectID); got != tt.want {
				t.Errorf("DerivePrefix(%q) = %q, want %q", tt.projectID, got, tt.want)
			}
		})
	}
}

func TestNextIndex(t *testing.T) {
	existing := []WorkItem{
		{ID: "REC-1"},
		{ID: "REC-7"},
		{ID: "REC-3"},
		{ID: "OTH-99"},
		{ID: "REC-notanumber"},
		{ID: "REC-2x"},
	}

	if got := NextIndex(existing, "REC"); got != 8 {
		t.Errorf("NextIndex = %d, want 8", got)
	}
	if got := NextIndex(existing, "NEW"); got != 1 {
		t.Errorf("NextIndex on unused prefix = %d, want 1", got)
	}
	if got := NextIndex(nil, "REC"); got != 1 {
		t.Errorf("NextIndex on empty backlog = %d, want 1", got)
	}
}

func TestAllocatorAssign(t *testing.T) {
	alloc := NewAllocator("recette-mvp", nil)
	batch := []WorkItem{
		{ID: "new-1", Title: "Epic"},
		{ID: "new-2", Title: "Story", ParentID: "new-1"},
		{ID: "new-3", Title: "Task", ParentID: "new-2"},
	}

	assigned, idMap := alloc.Assign(batch)

	wantIDs := []string{"REC-1", "REC-2", "REC-3"}
	for i, want := range wantIDs {
		if assigned[i].ID != want {
			t.Errorf("item %d id = %q, want %q", i, assigned[i].ID, want)
		}
	}
	if assigned[1].ParentID != "REC-1" {
		t.Errorf("in-batch parent not rewritten: got %q", assigned[1].ParentID)
	}
	if assigned[2].ParentID != "REC-2" {
		t.Errorf("in-batch parent not rewritten: got %q", assigned[2].ParentID)
	}
	if idMap["new-2"] != "REC-2" {
		t.Errorf("idMap[new-2] = %q, want REC-2", idMap["new-2"])
	}
}

func TestAllocatorAssign_ExternalParentUntouched(t *testing.T) {
	existing := []WorkItem{{ID: "REC-5"}}
	alloc := NewAllocator("recette-mvp", existing)

	batch := []WorkItem{{ID: "new-1", ParentID: "REC-5"}}
	assigned, _ := alloc.Assign(batch)

	if assigned[0].ID != "REC-6" {
		t.Errorf("id = %q, want REC-6", assigned[0].ID)
	}
	if assigned[0].ParentID != "REC-5" {
		t.Errorf("external parent was rewritten: got %q", assigned[0].ParentID)
	}
}

func TestAllocatorAssign_MonotonicAcrossBatches(t *testing.T) {
	items := []WorkItem{{ID: "SHO-1"}, {ID: "SHO-2"}}

	first, _ := NewAllocator("shop", items).Assign([]WorkItem{{ID: "a"}, {ID: "b"}})
	items = append(items, first...)
	second, _ := NewAllocator("shop", items).Assign([]WorkItem{{ID: "c"}})

	want := []string{"SHO-3", "SHO-4"}
	for i, item := range first {
		if item.ID != want[i] {
			t.Errorf("first batch item %d = %q, want %q", i, item.ID, want[i])
		}
	}
	if second[0].ID != "SHO-5" {
		t.Errorf("second batch id = %q, want SHO-5", second[0].ID)
	}
}
