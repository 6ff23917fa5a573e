package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- DefaultConfig aggregate ---

func TestDefaultConfig_ContainsAllSubConfigs(t *testing.T) {
	cfg := DefaultConfig()
	require.NotNil(t, cfg)

	assert.NotEqual(t, ServerConfig{}, cfg.Server)
	assert.NotEqual(t, RedisConfig{}, cfg.Redis)
	assert.NotEqual(t, DatabaseConfig{}, cfg.Database)
	assert.NotEqual(t, CacheConfig{}, cfg.Cache)
	assert.NotEqual(t, BudgetConfig{}, cfg.Budget)
	assert.NotEmpty(t, cfg.Providers)
	assert.NotEqual(t, LogConfig{}, cfg.Log)
}

// --- Individual Default*Config functions ---

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 9091, cfg.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.WriteTimeout)
	assert.Equal(t, 15*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, float64(100), cfg.RateLimitRPS)
	assert.Equal(t, 200, cfg.RateLimitBurst)
	assert.Empty(t, cfg.CORSAllowedOrigins)
	assert.Empty(t, cfg.APIKeys)
}

func TestDefaultRedisConfig(t *testing.T) {
	cfg := DefaultRedisConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, 0, cfg.DB)
	assert.Equal(t, 10, cfg.PoolSize)
	assert.Equal(t, 2, cfg.MinIdleConns)
}

func TestDefaultDatabaseConfig(t *testing.T) {
	cfg := DefaultDatabaseConfig()
	assert.Equal(t, "postgres", cfg.Driver)
	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
	assert.Equal(t, "gateway", cfg.User)
	assert.Empty(t, cfg.Password)
	assert.Equal(t, "gateway", cfg.Name)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 5*time.Minute, cfg.ConnMaxLifetime)
}

func TestDefaultCacheConfig(t *testing.T) {
	cfg := DefaultCacheConfig()
	assert.Equal(t, 1000, cfg.L1Capacity)
	assert.Equal(t, 5*time.Minute, cfg.L1TTL)
	assert.Equal(t, time.Hour, cfg.L2TTL)
	assert.Equal(t, 24*time.Hour, cfg.L3TTL)
}

func TestDefaultBudgetConfig(t *testing.T) {
	cfg := DefaultBudgetConfig()
	assert.Equal(t, "monthly", cfg.Period)
	assert.InDelta(t, 0.8, cfg.WarningThreshold, 0.001)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.True(t, cfg.UserLimitUSD > 0)
	assert.True(t, cfg.TeamLimitUSD > cfg.UserLimitUSD)
	assert.True(t, cfg.CompanyLimitUSD > cfg.TeamLimitUSD)
}

func TestDefaultProviders(t *testing.T) {
	providers := DefaultProviders()
	require.Len(t, providers, 2)

	ids := map[string]bool{}
	for _, p := range providers {
		ids[p.ProviderID] = true
		assert.True(t, p.IsEnabled)
		assert.NotEmpty(t, p.Models)
	}
	assert.True(t, ids["groq"])
	assert.True(t, ids["anthropic"])
}

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, []string{"stdout"}, cfg.OutputPaths)
	assert.True(t, cfg.EnableCaller)
	assert.False(t, cfg.EnableStacktrace)
}
