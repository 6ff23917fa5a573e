// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/routeforge/gateway/internal/lru"
	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// cacheRow is the T3 gorm model. It is structurally identical to
// types.CacheEntry; the two are kept distinct so the domain type stays
// free of storage tags a caller might otherwise copy by accident.
type cacheRow struct {
	Key              string `gorm:"primaryKey;column:cache_key"`
	Content          string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	CostUSD          float64
	ProviderID       string
	Model            string
	CreatedAt        time.Time
	ExpiresAt        time.Time
	AccessCount      int64
}

func (cacheRow) TableName() string { return "response_cache" }

func rowFromEntry(e types.CacheEntry) cacheRow {
	return cacheRow{
		Key:              e.Key,
		Content:          e.Content,
		PromptTokens:     e.Tokens.PromptTokens,
		CompletionTokens: e.Tokens.CompletionTokens,
		TotalTokens:      e.Tokens.TotalTokens,
		CostUSD:          e.CostUSD,
		ProviderID:       e.ProviderID,
		Model:            e.Model,
		CreatedAt:        e.CreatedAt,
		ExpiresAt:        e.ExpiresAt,
		AccessCount:      e.AccessCount,
	}
}

func (r cacheRow) entry() types.CacheEntry {
	return types.CacheEntry{
		Key:     r.Key,
		Content: r.Content,
		Tokens: types.TokenCounts{
			PromptTokens:     r.PromptTokens,
			CompletionTokens: r.CompletionTokens,
			TotalTokens:      r.TotalTokens,
		},
		CostUSD:     r.CostUSD,
		ProviderID:  r.ProviderID,
		Model:       r.Model,
		CreatedAt:   r.CreatedAt,
		ExpiresAt:   r.ExpiresAt,
		AccessCount: r.AccessCount,
	}
}

// tierCounters tracks hit/miss/error counts for a tier that isn't backed
// by internal/lru (which already tracks its own).
type tierCounters struct {
	hits, misses, errors int64
}

func (c *tierCounters) hit()  { atomic.AddInt64(&c.hits, 1) }
func (c *tierCounters) miss() { atomic.AddInt64(&c.misses, 1) }
func (c *tierCounters) err()  { atomic.AddInt64(&c.errors, 1) }

// Manager implements the three-tier response cache. l2 and l3 may be
// nil, in which case that tier is skipped on both lookup and store —
// the gateway degrades to an L1-only cache rather than failing.
type Manager struct {
	cfg Config

	l1 *lru.Cache[types.CacheEntry]

	l2     redis.UniversalClient
	l2TTL  time.Duration
	l2Stat tierCounters

	l3     *gorm.DB
	l3TTL  time.Duration
	l3Stat tierCounters

	sf     singleflight.Group
	sfMu   sync.Mutex
	logger *zap.Logger
}

// NewManager builds a Manager. redisClient and db are both optional; pass
// nil to run without that tier. When db is non-nil, NewManager migrates
// the response_cache table.
func NewManager(cfg Config, redisClient redis.UniversalClient, db *gorm.DB, logger *zap.Logger) (*Manager, error) {
	if db != nil {
		if err := db.AutoMigrate(&cacheRow{}); err != nil {
			return nil, err
		}
	}

	return &Manager{
		cfg:    cfg,
		l1:     lru.New[types.CacheEntry](cfg.L1Capacity, cfg.L1TTL),
		l2:     redisClient,
		l2TTL:  cfg.L2TTL,
		l3:     db,
		l3TTL:  cfg.L3TTL,
		logger: logger,
	}, nil
}

// Key derives the cache key for a prompt: the MD5 hex digest of the
// prompt text alone, independent of model, temperature, or max_tokens.
func Key(prompt string) string {
	sum := md5.Sum([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Lookup walks L1, then L2, then L3, returning on the first hit and
// promoting the entry into every faster tier it skipped.
func (m *Manager) Lookup(ctx context.Context, prompt string) types.CacheLookupResult {
	start := time.Now()
	key := Key(prompt)
	levelsChecked := 0

	levelsChecked++
	if entry, ok := m.l1.Get(key); ok {
		return types.CacheLookupResult{
			Hit: true, Entry: &entry, HitLevel: types.CacheHitL1,
			LevelsChecked: levelsChecked, LookupTimeMs: elapsedMs(start),
		}
	}

	if m.l2 != nil {
		levelsChecked++
		if entry, ok := m.getL2(ctx, key); ok {
			m.l1.Set(key, entry)
			return types.CacheLookupResult{
				Hit: true, Entry: &entry, HitLevel: types.CacheHitL2,
				LevelsChecked: levelsChecked, LookupTimeMs: elapsedMs(start),
			}
		}
	}

	if m.l3 != nil {
		levelsChecked++
		if entry, ok := m.getL3(ctx, key); ok {
			m.l1.Set(key, entry)
			m.setL2(ctx, key, entry)
			return types.CacheLookupResult{
				Hit: true, Entry: &entry, HitLevel: types.CacheHitL3,
				LevelsChecked: levelsChecked, LookupTimeMs: elapsedMs(start),
			}
		}
	}

	return types.CacheLookupResult{
		Hit: false, HitLevel: types.CacheHitNone,
		LevelsChecked: levelsChecked, LookupTimeMs: elapsedMs(start),
	}
}

// LookupSingleflight is Lookup with miss-path deduplication: concurrent
// lookups for the same prompt collapse into one walk of the tiers. Use
// this on the hot path where bursts of identical prompts are expected;
// plain Lookup has no such coordination overhead.
func (m *Manager) LookupSingleflight(ctx context.Context, prompt string) types.CacheLookupResult {
	key := Key(prompt)
	v, _, _ := m.sf.Do(key, func() (interface{}, error) {
		return m.Lookup(ctx, prompt), nil
	})
	return v.(types.CacheLookupResult)
}

// Store writes a provider response into every configured tier,
// best-effort. It succeeds if at least one tier accepts the write.
func (m *Manager) Store(ctx context.Context, prompt string, resp *types.ProviderResponse) bool {
	key := Key(prompt)
	now := time.Now()

	entry := types.CacheEntry{
		Key:         key,
		Content:     resp.Content,
		Tokens:      resp.Tokens,
		CostUSD:     resp.CostUSD,
		ProviderID:  resp.ProviderID,
		Model:       resp.Model,
		CreatedAt:   now,
		ExpiresAt:   now.Add(m.cfg.L1TTL),
		AccessCount: 0,
	}

	m.l1.Set(key, entry)
	m.setL2(ctx, key, entry)
	m.setL3(ctx, key, entry)

	// L1 accepts unconditionally, so the fan-out always has a home.
	return true
}

// ClearAll empties every configured tier. L2/L3 errors are logged, not
// returned — a partial clear still leaves the cache in a safe state
// (stale-but-not-wrong, since every entry carries its own expiry).
func (m *Manager) ClearAll(ctx context.Context) {
	m.l1.Clear()

	if m.l2 != nil {
		if err := m.l2.FlushDB(ctx).Err(); err != nil && m.logger != nil {
			m.logger.Warn("cache l2 clear failed", zap.Error(err))
		}
	}

	if m.l3 != nil {
		if err := m.l3.Exec("DELETE FROM response_cache").Error; err != nil && m.logger != nil {
			m.logger.Warn("cache l3 clear failed", zap.Error(err))
		}
	}
}

// Stats reports hit/miss/eviction counters for every tier.
func (m *Manager) Stats() types.CacheStats {
	entryCount, hits, misses, evictions := m.l1.Stats()
	l1 := types.CacheTierStats{
		Hits: hits, Misses: misses, Evictions: evictions, EntryCount: int64(entryCount),
		HitRate: hitRate(hits, misses),
	}

	l2Hits := atomic.LoadInt64(&m.l2Stat.hits)
	l2Misses := atomic.LoadInt64(&m.l2Stat.misses)
	l2 := types.CacheTierStats{
		Hits: l2Hits, Misses: l2Misses, Errors: atomic.LoadInt64(&m.l2Stat.errors),
		HitRate: hitRate(l2Hits, l2Misses),
	}

	l3Hits := atomic.LoadInt64(&m.l3Stat.hits)
	l3Misses := atomic.LoadInt64(&m.l3Stat.misses)
	l3 := types.CacheTierStats{
		Hits: l3Hits, Misses: l3Misses, Errors: atomic.LoadInt64(&m.l3Stat.errors),
		HitRate: hitRate(l3Hits, l3Misses),
	}

	return types.CacheStats{L1: l1, L2: l2, L3: l3}
}

func (m *Manager) getL2(ctx context.Context, key string) (types.CacheEntry, bool) {
	data, err := m.l2.Get(ctx, "cache:"+key).Bytes()
	if err == redis.Nil {
		m.l2Stat.miss()
		return types.CacheEntry{}, false
	}
	if err != nil {
		m.l2Stat.err()
		if m.logger != nil {
			m.logger.Warn("cache l2 get failed", zap.String("key", key), zap.Error(err))
		}
		return types.CacheEntry{}, false
	}

	var entry types.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		m.l2Stat.err()
		return types.CacheEntry{}, false
	}
	m.l2Stat.hit()
	return entry, true
}

func (m *Manager) setL2(ctx context.Context, key string, entry types.CacheEntry) bool {
	if m.l2 == nil {
		return false
	}
	data, err := json.Marshal(entry)
	if err != nil {
		m.l2Stat.err()
		return false
	}
	if err := m.l2.Set(ctx, "cache:"+key, data, m.l2TTL).Err(); err != nil {
		m.l2Stat.err()
		if m.logger != nil {
			m.logger.Warn("cache l2 set failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

func (m *Manager) getL3(ctx context.Context, key string) (types.CacheEntry, bool) {
	var row cacheRow
	err := m.l3.WithContext(ctx).Where("cache_key = ? AND expires_at > ?", key, time.Now()).First(&row).Error
	if err != nil {
		m.l3Stat.miss()
		return types.CacheEntry{}, false
	}
	m.l3Stat.hit()
	return row.entry(), true
}

func (m *Manager) setL3(ctx context.Context, key string, entry types.CacheEntry) bool {
	if m.l3 == nil {
		return false
	}
	entry.ExpiresAt = time.Now().Add(m.l3TTL)
	row := rowFromEntry(entry)

	err := m.l3.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cache_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"content", "prompt_tokens", "completion_tokens", "total_tokens", "cost_usd", "provider_id", "model", "expires_at"}),
	}).Create(&row).Error

	if err != nil {
		m.l3Stat.err()
		if m.logger != nil {
			m.logger.Warn("cache l3 set failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	return true
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func hitRate(hits, misses int64) float64 {
	total := hits + misses
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
