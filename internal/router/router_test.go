package router

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/routeforge/gateway/internal/budget"
	"github.com/routeforge/gateway/internal/cache"
	"github.com/routeforge/gateway/internal/complexity"
	"github.com/routeforge/gateway/internal/provider"
	"github.com/routeforge/gateway/internal/provider/simexec"
	"github.com/routeforge/gateway/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestRouter(t *testing.T, failProviders ...string) *Router {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	cacheMgr, err := cache.NewManager(cache.DefaultConfig(), rdb, db, zap.NewNop())
	require.NoError(t, err)

	budgetStore, err := budget.NewStore(db, zap.NewNop())
	require.NoError(t, err)
	budgetCtl := budget.NewController(zap.NewNop(), budgetStore)
	budgetCtl.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "u1", Period: types.BudgetPeriodMonthly, LimitUSD: 100, WarningThreshold: 0.8, Timezone: "UTC"})

	registry := provider.NewRegistry(zap.NewNop())
	registry.Register(types.ProviderConfig{
		ProviderID: "groq",
		Cost:       types.CostTable{InputPricePer1K: 0.0005, OutputPricePer1K: 0.001},
		Models:     []string{"llama3-8b"},
		Breaker:    types.BreakerConfig{FailureThreshold: 3, OpenTimeout: 0},
		IsEnabled:  true,
		Status:     types.ProviderStatusActive,
		Tags:       []string{"fast", "cheap"},
	})
	registry.Register(types.ProviderConfig{
		ProviderID: "anthropic",
		Cost:       types.CostTable{InputPricePer1K: 0.003, OutputPricePer1K: 0.015},
		Models:     []string{"claude-3-opus"},
		Breaker:    types.BreakerConfig{FailureThreshold: 3, OpenTimeout: 0},
		IsEnabled:  true,
		Status:     types.ProviderStatusActive,
		Tags:       []string{"capable"},
	})

	return New(complexity.New(complexity.DefaultConfig()), budgetCtl, cacheMgr, registry, simexec.New(failProviders...), zap.NewNop())
}

func TestRoute_SuccessfulRequestReturnsContent(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	resp := r.Route(context.Background(), &types.Request{UserID: "u1", Prompt: "please explain how compilers work"})
	if !resp.Success {
		t.Fatalf("expected success, got error %q", resp.Error)
	}
	if resp.Content == "" {
		t.Fatalf("expected non-empty content")
	}
	if resp.CacheHit {
		t.Fatalf("expected a cache miss on first request")
	}
}

func TestRoute_SecondIdenticalRequestHitsCache(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	req1 := &types.Request{UserID: "u1", Prompt: "what is the capital of france"}
	first := r.Route(context.Background(), req1)
	if !first.Success {
		t.Fatalf("unexpected failure: %s", first.Error)
	}

	req2 := &types.Request{UserID: "u1", Prompt: "what is the capital of france"}
	second := r.Route(context.Background(), req2)
	if !second.Success || !second.CacheHit {
		t.Fatalf("expected second identical request to hit cache, got %+v", second)
	}
}

func TestRoute_BudgetDenialShortCircuitsBeforeProviderCall(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)
	r.budget.SetConfig(types.BudgetConfig{Level: types.BudgetLevelUser, EntityID: "broke", Period: types.BudgetPeriodMonthly, LimitUSD: 0.0001, WarningThreshold: 0.8, Timezone: "UTC"})

	resp := r.Route(context.Background(), &types.Request{UserID: "broke", Prompt: "a fairly long prompt to push the estimated cost up over the tiny limit"})
	if resp.Success {
		t.Fatalf("expected budget denial")
	}
	if resp.Diagnostics.AdmissionStatus != types.BudgetStatusExceeded {
		t.Fatalf("expected exceeded admission status, got %s", resp.Diagnostics.AdmissionStatus)
	}
}

func TestRoute_AllProvidersFailReturnsErrorResponse(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t, "groq", "anthropic")

	resp := r.Route(context.Background(), &types.Request{UserID: "u1", Prompt: "hello"})
	if resp.Success {
		t.Fatalf("expected failure when every provider fails")
	}
	if resp.Error == "" {
		t.Fatalf("expected an error message")
	}
}

func TestRoute_AssignsRequestIDWhenMissing(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)

	resp := r.Route(context.Background(), &types.Request{UserID: "u1", Prompt: "hi"})
	if resp.RequestID == "" {
		t.Fatalf("expected a generated request ID")
	}
}

func TestRoute_SystemStatsAndBudgetSummary(t *testing.T) {
	t.Parallel()
	r := newTestRouter(t)
	r.Route(context.Background(), &types.Request{UserID: "u1", Prompt: "hi there"})

	stats := r.SystemStats()
	if len(stats.ProviderMetrics) == 0 {
		t.Fatalf("expected provider metrics to be populated")
	}

	summary := r.BudgetSummary(&types.Request{UserID: "u1"})
	if len(summary) != 1 {
		t.Fatalf("expected one budget scope in summary, got %d", len(summary))
	}
}
