package provider

import (
	"context"
	"testing"
	"time"

	"github.com/routeforge/gateway/internal/provider/simexec"
	"github.com/routeforge/gateway/types"
)

func fastProvider(id string) types.ProviderConfig {
	return types.ProviderConfig{
		ProviderID: id,
		Cost:       types.CostTable{InputPricePer1K: 0.0005, OutputPricePer1K: 0.001},
		Models:     []string{"llama3-8b", "llama3-70b"},
		Breaker:    types.BreakerConfig{FailureThreshold: 3, OpenTimeout: time.Minute},
		IsEnabled:  true,
		Status:     types.ProviderStatusActive,
		Tags:       []string{"fast", "cheap"},
	}
}

func capableProvider(id string) types.ProviderConfig {
	return types.ProviderConfig{
		ProviderID: id,
		Cost:       types.CostTable{InputPricePer1K: 0.003, OutputPricePer1K: 0.015},
		Models:     []string{"claude-3-haiku", "claude-3-opus"},
		Breaker:    types.BreakerConfig{FailureThreshold: 3, OpenTimeout: time.Minute},
		IsEnabled:  true,
		Status:     types.ProviderStatusActive,
		Tags:       []string{"capable", "expensive"},
	}
}

func TestSelect_SimplePrefersFastTaggedProvider(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.Register(fastProvider("groq"))
	r.Register(capableProvider("anthropic"))

	sel, err := r.Select(types.ComplexitySimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.ProviderID != "groq" {
		t.Fatalf("expected groq selected for simple prompt, got %s", sel.ProviderID)
	}
	if sel.Model != "llama3-8b" {
		t.Fatalf("expected cheapest model picked, got %s", sel.Model)
	}
}

func TestSelect_ComplexPrefersCapableTaggedProvider(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	// Price groq like anthropic: at its own lower price groq's cost
	// component (0.25) outweighs the capable tag's 0.10 fit bonus.
	groq := fastProvider("groq")
	groq.Cost = capableProvider("anthropic").Cost
	r.Register(groq)
	r.Register(capableProvider("anthropic"))

	sel, err := r.Select(types.ComplexityComplex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.ProviderID != "anthropic" {
		t.Fatalf("expected anthropic selected for complex prompt, got %s", sel.ProviderID)
	}
	if sel.Model != "claude-3-opus" {
		t.Fatalf("expected most capable model picked, got %s", sel.Model)
	}
}

func TestSelect_TieBreaksByProviderIDLexicographic(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	// Identical configs except ID, so scores tie exactly.
	a := fastProvider("zzz")
	b := fastProvider("aaa")
	r.Register(a)
	r.Register(b)

	sel, err := r.Select(types.ComplexitySimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.ProviderID != "aaa" {
		t.Fatalf("expected lexicographically-first provider to win tie, got %s", sel.ProviderID)
	}
}

func TestSelect_ExcludesOpenBreakerProviders(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.Register(fastProvider("groq"))
	r.Register(capableProvider("anthropic"))

	// Trip groq's breaker.
	r.mu.RLock()
	breaker := r.breakers["groq"]
	r.mu.RUnlock()
	breaker.RecordFailure()
	breaker.RecordFailure()
	breaker.RecordFailure()

	sel, err := r.Select(types.ComplexitySimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sel.ProviderID != "anthropic" {
		t.Fatalf("expected groq excluded by open breaker, got selection %s", sel.ProviderID)
	}
}

func TestSelect_NoCandidatesReturnsError(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	if _, err := r.Select(types.ComplexitySimple); err == nil {
		t.Fatalf("expected error with no registered providers")
	}
}

func TestExecuteChain_FallsBackOnPrimaryFailure(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.Register(fastProvider("groq"))
	r.Register(capableProvider("anthropic"))

	sel, err := r.Select(types.ComplexitySimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exec := simexec.New("groq") // groq fails, must fall back
	resp, err := r.ExecuteChain(context.Background(), exec, "hello", sel, &types.Request{Prompt: "hello"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.ProviderID == "groq" {
		t.Fatalf("expected fallback away from failing primary")
	}
}

func TestExecuteChain_AllProvidersFailReturnsExhaustedError(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.Register(fastProvider("groq"))
	r.Register(capableProvider("anthropic"))

	sel, err := r.Select(types.ComplexitySimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exec := simexec.New("groq", "anthropic")
	_, err = r.ExecuteChain(context.Background(), exec, "hello", sel, &types.Request{Prompt: "hello"})
	if err == nil {
		t.Fatalf("expected an error when every provider fails")
	}
}

func TestExecuteChain_SuccessRecordsMetrics(t *testing.T) {
	t.Parallel()
	r := NewRegistry(nil)
	r.Register(fastProvider("groq"))

	sel, err := r.Select(types.ComplexitySimple)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	exec := simexec.New()
	if _, err := r.ExecuteChain(context.Background(), exec, "hello", sel, &types.Request{Prompt: "hello"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	metrics := r.Metrics()
	if len(metrics) != 1 || metrics[0].SuccessfulRequests != 1 {
		t.Fatalf("expected one successful request recorded, got %+v", metrics)
	}
}
