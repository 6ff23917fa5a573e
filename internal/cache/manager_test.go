package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/routeforge/gateway/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupTestManager(t *testing.T) *Manager {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	m, err := NewManager(DefaultConfig(), rdb, db, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestManager_StoreThenLookupHitsL1(t *testing.T) {
	t.Parallel()
	m := setupTestManager(t)
	ctx := context.Background()

	resp := &types.ProviderResponse{Content: "hello world", Model: "m1", ProviderID: "p1", CostUSD: 0.01}
	require.True(t, m.Store(ctx, "what is go", resp))

	result := m.Lookup(ctx, "what is go")
	if !result.Hit || result.HitLevel != types.CacheHitL1 {
		t.Fatalf("expected L1 hit, got %+v", result)
	}
	if result.Entry.Content != "hello world" {
		t.Fatalf("unexpected content: %q", result.Entry.Content)
	}
}

func TestManager_Miss(t *testing.T) {
	t.Parallel()
	m := setupTestManager(t)

	result := m.Lookup(context.Background(), "never stored")
	if result.Hit {
		t.Fatalf("expected miss")
	}
	if result.HitLevel != types.CacheHitNone {
		t.Fatalf("expected none hit level, got %s", result.HitLevel)
	}
}

func TestManager_L3OnlySeedPromotesToFasterTiers(t *testing.T) {
	t.Parallel()
	m := setupTestManager(t)
	ctx := context.Background()

	entry := types.CacheEntry{
		Key:       Key("seed prompt"),
		Content:   "seeded answer",
		CreatedAt: time.Now(),
		ExpiresAt: time.Now().Add(time.Hour),
	}
	require.True(t, m.setL3(ctx, entry.Key, entry))

	result := m.Lookup(ctx, "seed prompt")
	if !result.Hit || result.HitLevel != types.CacheHitL3 {
		t.Fatalf("expected L3 hit on first lookup, got %+v", result)
	}
	if result.LevelsChecked != 3 {
		t.Fatalf("expected all three levels checked, got %d", result.LevelsChecked)
	}

	// Promoted into L1, so the second lookup should be served there.
	second := m.Lookup(ctx, "seed prompt")
	if second.HitLevel != types.CacheHitL1 {
		t.Fatalf("expected promotion to L1, got %s", second.HitLevel)
	}
}

func TestManager_ClearAllEmptiesEveryTier(t *testing.T) {
	t.Parallel()
	m := setupTestManager(t)
	ctx := context.Background()

	resp := &types.ProviderResponse{Content: "x", Model: "m", ProviderID: "p"}
	m.Store(ctx, "to clear", resp)

	m.ClearAll(ctx)

	result := m.Lookup(ctx, "to clear")
	if result.Hit {
		t.Fatalf("expected miss after clearing all tiers")
	}
}

func TestManager_StatsReportsHitsAndMisses(t *testing.T) {
	t.Parallel()
	m := setupTestManager(t)
	ctx := context.Background()

	m.Lookup(ctx, "miss me")
	resp := &types.ProviderResponse{Content: "x", Model: "m", ProviderID: "p"}
	m.Store(ctx, "hit me", resp)
	m.Lookup(ctx, "hit me")

	stats := m.Stats()
	if stats.L1.Hits == 0 {
		t.Fatalf("expected at least one L1 hit, got %+v", stats.L1)
	}
}

func TestManager_LookupSingleflightDedupesConcurrentMisses(t *testing.T) {
	t.Parallel()
	m := setupTestManager(t)
	ctx := context.Background()

	done := make(chan types.CacheLookupResult, 8)
	for i := 0; i < 8; i++ {
		go func() { done <- m.LookupSingleflight(ctx, "same prompt") }()
	}
	for i := 0; i < 8; i++ {
		r := <-done
		if r.Hit {
			t.Fatalf("expected a miss, got a hit")
		}
	}
}
