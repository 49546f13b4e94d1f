package ai

import (
	"context"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/felixgeelhaar/fortify/timeout"

	"github.com/backloghq/groom/pkg/domain/ai"
)

// ResilienceConfig bounds every LLM call. Model latency is unbounded in the
// worst case, so a timeout keeps one slow call from stalling a run forever;
// a failed or timed-out call surfaces to the engine as a normal error.
type ResilienceConfig struct {
	Timeout      time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultResilienceConfig returns the standard call bounds.
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		Timeout:      300 * time.Second,
		MaxAttempts:  2,
		InitialDelay: time.Second,
	}
}

// ResilientProvider decorates a provider with retry and timeout.
type ResilientProvider struct {
	inner ai.Provider
	cfg   ResilienceConfig
}

// NewResilientProvider wraps a provider with the default bounds.
func NewResilientProvider(inner ai.Provider) *ResilientProvider {
	return NewResilientProviderWithConfig(inner, DefaultResilienceConfig())
}

// NewResilientProviderWithConfig wraps a provider with custom bounds.
func NewResilientProviderWithConfig(inner ai.Provider, cfg ResilienceConfig) *ResilientProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResilienceConfig().Timeout
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultResilienceConfig().MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultResilienceConfig().InitialDelay
	}
	return &ResilientProvider{inner: inner, cfg: cfg}
}

func (p *ResilientProvider) ID() string {
	return p.inner.ID()
}

func (p *ResilientProvider) Complete(ctx context.Context, req ai.CompletionRequest) (*ai.CompletionResponse, error) {
	r := retry.New[*ai.CompletionResponse](retry.Config{
		MaxAttempts:   p.cfg.MaxAttempts,
		InitialDelay:  p.cfg.InitialDelay,
		BackoffPolicy: retry.BackoffExponential,
	})

	t := timeout.New[*ai.CompletionResponse](timeout.Config{
		DefaultTimeout: p.cfg.Timeout,
	})

	return t.Execute(ctx, p.cfg.Timeout, func(ctx context.Context) (*ai.CompletionResponse, error) {
		return r.Do(ctx, func(ctx context.Context) (*ai.CompletionResponse, error) {
			return p.inner.Complete(ctx, req)
		})
	})
}
