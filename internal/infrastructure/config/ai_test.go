package config

import "testing"

func TestAIConfig_RoundTrip(t *testing.T) {
	ws := testWorkspace(t)

	cfg, err := LoadAIConfig(ws)
	if err != nil {
		t.Fatalf("LoadAIConfig failed: %v", err)
	}
	if cfg != nil {
		t.Fatal("missing config should load as nil")
	}

	want := &AIConfig{Provider: "ollama", Model: "llama3", TimeoutSeconds: 120}
	if err := SaveAIConfig(ws, want); err != nil {
		t.Fatalf("SaveAIConfig failed: %v", err)
	}

	got, err := LoadAIConfig(ws)
	if err != nil {
		t.Fatalf("LoadAIConfig failed: %v", err)
	}
	if got == nil || *got != *want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestSaveAIConfig_NilRejected(t *testing.T) {
	if err := SaveAIConfig(testWorkspace(t), nil); err == nil {
		t.Error("expected error for nil config")
	}
}
