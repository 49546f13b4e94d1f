package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/backloghq/groom/pkg/domain/ai"
	"github.com/backloghq/groom/pkg/domain/backlog"
)

// scriptedProvider returns canned responses in order; an empty script
// errors every call.
type scriptedProvider struct {
	responses []string
	calls     int
}

func (p *scriptedProvider) ID() string { return "scripted" }

func (p *scriptedProvider) Complete(_ context.Context, _ ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if len(p.responses) == 0 {
		return nil, errors.New("provider unavailable")
	}
	i := p.calls
	if i >= len(p.responses) {
		i = len(p.responses) - 1
	}
	p.calls++
	return &ai.CompletionResponse{Text: p.responses[i], Model: "scripted"}, nil
}

// memRepo is an in-memory backlog.Repository.
type memRepo struct {
	mu       sync.Mutex
	items    map[string][]backlog.WorkItem
	versions map[string]int
	saveErr  error
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[string][]backlog.WorkItem{}, versions: map[string]int{}}
}

func (r *memRepo) Load(projectID string) ([]backlog.WorkItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items, ok := r.items[projectID]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", projectID, backlog.ErrNotFound)
	}
	return append([]backlog.WorkItem(nil), items...), nil
}

func (r *memRepo) Save(projectID string, items []backlog.WorkItem) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	r.items[projectID] = append([]backlog.WorkItem(nil), items...)
	r.versions[projectID]++
	return r.versions[projectID], nil
}

func (r *memRepo) Version(projectID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.versions[projectID], nil
}

var testIntentCatalog = []IntentOption{
	{ID: "decompose_backlog", Description: "break work down"},
	{ID: "refine_item", Description: "improve an item"},
}

func TestIntentClassifier_Classify(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		`{"id": "decompose_backlog", "confidence": 0.92, "args": {"scope": "mvp"}}`,
	}}
	classifier := NewIntentClassifier(provider, testIntentCatalog, nil)

	intent := classifier.Classify(context.Background(), "break down the mvp")
	if intent.ID != "decompose_backlog" {
		t.Errorf("id = %q", intent.ID)
	}
	if intent.Confidence != 0.92 {
		t.Errorf("confidence = %v", intent.Confidence)
	}
	if intent.Args["scope"] != "mvp" {
		t.Errorf("args = %v", intent.Args)
	}
}

func TestIntentClassifier_FencedResponse(t *testing.T) {
	provider := &scriptedProvider{responses: []string{
		"Sure!\n```json\n{\"id\": \"refine_item\", \"confidence\": 0.8, \"args\": {\"item_id\": \"REC-2\"}}\n```",
	}}
	classifier := NewIntentClassifier(provider, testIntentCatalog, nil)

	intent := classifier.Classify(context.Background(), "improve REC-2")
	if intent.ID != "refine_item" || intent.Args["item_id"] != "REC-2" {
		t.Errorf("intent = %+v", intent)
	}
}

func TestIntentClassifier_ClampsConfidence(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{"above one", `{"id": "decompose_backlog", "confidence": 1.7}`, 1},
		{"negative", `{"id": "decompose_backlog", "confidence": -0.3}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewIntentClassifier(&scriptedProvider{responses: []string{tt.response}}, testIntentCatalog, nil)
			intent := classifier.Classify(context.Background(), "q")
			if intent.Confidence != tt.want {
				t.Errorf("confidence = %v, want %v", intent.Confidence, tt.want)
			}
		})
	}
}

func TestIntentClassifier_NeverFails(t *testing.T) {
	tests := []struct {
		name     string
		provider *scriptedProvider
	}{
		{"provider error", &scriptedProvider{}},
		{"prose response", &scriptedProvider{responses: []string{"I cannot classify that."}}},
		{"missing id", &scriptedProvider{responses: []string{`{"confidence": 0.9}`}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classifier := NewIntentClassifier(tt.provider, testIntentCatalog, nil)
			intent := classifier.Classify(context.Background(), "anything")
			if !intent.IsUnknown() {
				t.Errorf("intent = %+v, want unknown", intent)
			}
			if intent.Confidence != 0 {
				t.Errorf("unknown intent should carry zero confidence, got %v", intent.Confidence)
			}
		})
	}
}
