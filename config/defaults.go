// =============================================================================
// 📦 路由网关默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Server:    DefaultServerConfig(),
		Redis:     DefaultRedisConfig(),
		Database:  DefaultDatabaseConfig(),
		Cache:     DefaultCacheConfig(),
		Budget:    DefaultBudgetConfig(),
		Providers: DefaultProviders(),
		JWT:       DefaultJWTConfig(),
		Log:       DefaultLogConfig(),
	}
}

// DefaultServerConfig 返回默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:           8080,
		MetricsPort:        9091,
		ReadTimeout:        30 * time.Second,
		WriteTimeout:       30 * time.Second,
		ShutdownTimeout:    15 * time.Second,
		RateLimitRPS:       100,
		RateLimitBurst:     200,
		CORSAllowedOrigins: nil,
		APIKeys:            nil,
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "postgres",
		Host:            "localhost",
		Port:            5432,
		User:            "gateway",
		Password:        "",
		Name:            "gateway",
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	}
}

// DefaultCacheConfig mirrors internal/cache.DefaultConfig's tiering.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		L1Capacity: 1000,
		L1TTL:      5 * time.Minute,
		L2TTL:      time.Hour,
		L3TTL:      24 * time.Hour,
	}
}

// DefaultBudgetConfig 返回默认预算配置
func DefaultBudgetConfig() BudgetConfig {
	return BudgetConfig{
		Period:           "monthly",
		WarningThreshold: 0.8,
		Timezone:         "UTC",
		UserLimitUSD:     50,
		TeamLimitUSD:     500,
		CompanyLimitUSD:  5000,
	}
}

// DefaultProviders returns a minimal two-provider fleet spanning a cheap/fast
// tier and a capable tier, enough for the router to exercise its tiered
// selection without requiring a populated config file.
func DefaultProviders() []ProviderConfig {
	return []ProviderConfig{
		{
			ProviderID:        "groq",
			BaseURL:           "https://api.groq.com/openai/v1",
			CredentialEnvVar:  "GROQ_API_KEY",
			Timeout:           30 * time.Second,
			InputPricePer1K:   0.0005,
			OutputPricePer1K:  0.0008,
			Models:            []string{"llama3-8b-8192"},
			FailureThreshold:  5,
			OpenTimeout:       30 * time.Second,
			RequestsPerMinute: 1000,
			IsEnabled:         true,
			Tags:              []string{"fast", "cheap"},
		},
		{
			ProviderID:        "anthropic",
			BaseURL:           "https://api.anthropic.com/v1",
			CredentialEnvVar:  "ANTHROPIC_API_KEY",
			Timeout:           60 * time.Second,
			InputPricePer1K:   0.003,
			OutputPricePer1K:  0.015,
			Models:            []string{"claude-3-5-sonnet-20241022"},
			FailureThreshold:  5,
			OpenTimeout:       30 * time.Second,
			RequestsPerMinute: 300,
			IsEnabled:         true,
			Tags:              []string{"capable"},
		},
	}
}

// DefaultJWTConfig 返回默认 JWT 配置（空白，必须由部署方配置）
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "json",
		OutputPaths:      []string{"stdout"},
		EnableCaller:     true,
		EnableStacktrace: false,
	}
}
