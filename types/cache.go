package types

import "time"

// CacheTier identifies one of the three cache layers.
type CacheTier int

const (
	CacheTierL1 CacheTier = 1
	CacheTierL2 CacheTier = 2
	CacheTierL3 CacheTier = 3
)

func (t CacheTier) String() string {
	switch t {
	case CacheTierL1:
		return "l1"
	case CacheTierL2:
		return "l2"
	case CacheTierL3:
		return "l3"
	default:
		return "unknown"
	}
}

// CacheEntry is the unit stored and retrieved by the cache manager. It is
// content-identical across tiers: an entry present at tier N < 3 is also
// legal to store at tier N+1.
type CacheEntry struct {
	Key         string      `json:"key" gorm:"primaryKey;column:cache_key"`
	Content     string      `json:"content"`
	Tokens      TokenCounts `json:"tokens" gorm:"embedded"`
	CostUSD     float64     `json:"cost_usd"`
	ProviderID  string      `json:"provider_id"`
	Model       string      `json:"model"`
	CreatedAt   time.Time   `json:"created_at"`
	ExpiresAt   time.Time   `json:"expires_at"`
	AccessCount int64       `json:"access_count"`
}

// CacheLookupResult is returned by CacheManager.Lookup.
type CacheLookupResult struct {
	Hit           bool
	Entry         *CacheEntry
	HitLevel      CacheHitLevel
	LevelsChecked int
	LookupTimeMs  float64
}

// CacheTierStats reports hit/miss/eviction counters for one tier.
type CacheTierStats struct {
	Hits       int64   `json:"hits"`
	Misses     int64   `json:"misses"`
	HitRate    float64 `json:"hit_rate"`
	EntryCount int64   `json:"entry_count"`
	Evictions  int64   `json:"evictions"`
	Errors     int64   `json:"errors"`
}

// CacheStats aggregates stats across all three tiers.
type CacheStats struct {
	L1 CacheTierStats `json:"l1"`
	L2 CacheTierStats `json:"l2"`
	L3 CacheTierStats `json:"l3"`
}
