// Package backlog holds the work item model: typed items with a validation
// lifecycle, impact plans describing proposed changes, and the allocator
// that hands out human-readable item identifiers.
package backlog

import (
	"encoding/json"
	"fmt"
)

// ItemType classifies a work item.
type ItemType string

const (
	TypeFeature  ItemType = "feature"
	TypeStory    ItemType = "story"
	TypeTask     ItemType = "task"
	TypeBug      ItemType = "bug"
	TypeEpic     ItemType = "epic"
	TypeTestCase ItemType = "test_case"
)

// IsValid reports whether the type is one of the known item types.
func (t ItemType) IsValid() bool {
	switch t {
	case TypeFeature, TypeStory, TypeTask, TypeBug, TypeEpic, TypeTestCase:
		return true
	}
	return false
}

func (t ItemType) String() string {
	return string(t)
}

// ValidationStatus tracks who last shaped an item's content. AI output
// starts as ai_generated; a human review promotes it to human_validated;
// any later AI edit demotes it to ai_modified_after_validation so the
// earlier sign-off is never silently kept.
type ValidationStatus string

const (
	ValidationAIGenerated          ValidationStatus = "ai_generated"
	ValidationHumanValidated       ValidationStatus = "human_validated"
	ValidationAIModifiedAfterHuman ValidationStatus = "ai_modified_after_validation"
)

// IsValid reports whether the status is one of the known values.
func (v ValidationStatus) IsValid() bool {
	switch v {
	case ValidationAIGenerated, ValidationHumanValidated, ValidationAIModifiedAfterHuman:
		return true
	}
	return false
}

func (v ValidationStatus) String() string {
	return string(v)
}

// AfterAIEdit returns the status an item carries once the AI rewrites it.
// A human-validated item loses its validation; everything else stays (or
// becomes) ai_generated.
func (v ValidationStatus) AfterAIEdit() ValidationStatus {
	if v == ValidationHumanValidated || v == ValidationAIModifiedAfterHuman {
		return ValidationAIModifiedAfterHuman
	}
	return ValidationAIGenerated
}

// UnmarshalJSON accepts an empty string as ai_generated so older snapshots
// without the field still load.
func (v *ValidationStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == "" {
		*v = ValidationAIGenerated
		return nil
	}
	status := ValidationStatus(raw)
	if !status.IsValid() {
		return fmt.Errorf("unknown validation status %q", raw)
	}
	*v = status
	return nil
}

// WorkItem is one backlog entry. Hierarchy is expressed through ParentID;
// an empty ParentID marks a top-level item. Attributes carries
// tracker-specific fields the core model does not interpret.
type WorkItem struct {
	ID                 string           `json:"id"`
	ProjectID          string           `json:"project_id"`
	Type               ItemType         `json:"type"`
	Title              string           `json:"title"`
	Description        string           `json:"description,omitempty"`
	ParentID           string           `json:"parent_id,omitempty"`
	AcceptanceCriteria []string         `json:"acceptance_criteria,omitempty"`
	ValidationStatus   ValidationStatus `json:"validation_status"`
	Attributes         map[string]any   `json:"attributes,omitempty"`
}

// MarkAIEdited records that the AI changed the item's content.
func (w *WorkItem) MarkAIEdited() {
	w.ValidationStatus = w.ValidationStatus.AfterAIEdit()
}
