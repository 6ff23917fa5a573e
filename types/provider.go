package types

import "time"

// BreakerState is one of the three circuit-breaker states.
type BreakerState int

const (
	BreakerClosed BreakerState = iota
	BreakerOpen
	BreakerHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case BreakerClosed:
		return "closed"
	case BreakerOpen:
		return "open"
	case BreakerHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// ProviderStatus is the administrative status of a registered provider.
type ProviderStatus string

const (
	ProviderStatusActive      ProviderStatus = "active"
	ProviderStatusInactive    ProviderStatus = "inactive"
	ProviderStatusDeprecated  ProviderStatus = "deprecated"
)

// CostTable holds per-1k-token prices for a provider.
type CostTable struct {
	InputPricePer1K  float64 `json:"input_price_per_1k"`
	OutputPricePer1K float64 `json:"output_price_per_1k"`
}

// RateLimits are optional per-provider throughput caps. provider.Registry
// enforces RequestsPerMinute; TokensPerMinute is carried but not enforced.
type RateLimits struct {
	RequestsPerMinute int `json:"requests_per_minute,omitempty"`
	TokensPerMinute   int `json:"tokens_per_minute,omitempty"`
}

// BreakerConfig configures a provider's circuit breaker.
type BreakerConfig struct {
	FailureThreshold int           `json:"failure_threshold"`
	OpenTimeout      time.Duration `json:"open_timeout"`
}

// ProviderConfig describes one registered upstream provider.
type ProviderConfig struct {
	ProviderID  string         `json:"provider_id"`
	BaseURL     string         `json:"base_url"`
	CredentialEnvVar string    `json:"credential_env_var"`
	APIVersion  string         `json:"api_version,omitempty"`
	Timeout     time.Duration  `json:"timeout"`
	Cost        CostTable      `json:"cost"`
	Models      []string       `json:"models"`
	Breaker     BreakerConfig  `json:"breaker"`
	RateLimits  RateLimits     `json:"rate_limits,omitempty"`
	IsEnabled   bool           `json:"is_enabled"`
	Status      ProviderStatus `json:"status"`
	Tags        []string       `json:"tags,omitempty"`
}

// HasTag reports whether the provider carries the given selection tag
// (e.g. "fast", "capable", "cheap").
func (p ProviderConfig) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ErrorKindCounts tallies failures by category for a provider.
type ErrorKindCounts map[string]int64

// ProviderMetrics accumulates observed behavior for one provider.
type ProviderMetrics struct {
	ProviderID            string          `json:"provider_id"`
	TotalRequests         int64           `json:"total_requests"`
	SuccessfulRequests    int64           `json:"successful_requests"`
	FailedRequests        int64           `json:"failed_requests"`
	SuccessRate           float64         `json:"success_rate"`
	AvgResponseTimeMs     float64         `json:"avg_response_time_ms"`
	MinResponseTimeMs     float64         `json:"min_response_time_ms"`
	MaxResponseTimeMs     float64         `json:"max_response_time_ms"`
	TotalInputTokens      int64           `json:"total_input_tokens"`
	TotalOutputTokens     int64           `json:"total_output_tokens"`
	TotalCostUSD          float64         `json:"total_cost_usd"`
	ErrorKindCounts       ErrorKindCounts `json:"error_kind_counts"`
	LastError             string          `json:"last_error,omitempty"`
	LastErrorTime         time.Time       `json:"last_error_time,omitempty"`
	CircuitBreakerTrips   int64           `json:"circuit_breaker_trips"`
	LastRequestTime       time.Time       `json:"last_request_time,omitempty"`
	LastSuccessfulRequest time.Time       `json:"last_successful_request,omitempty"`
}

// ProviderResponse is what an Executor returns on a successful call.
type ProviderResponse struct {
	Content    string
	Model      string
	ProviderID string
	Tokens     TokenCounts
	CostUSD    float64
	LatencyMs  float64
}

// ProviderSelection is the outcome of ProviderRegistry.Select.
type ProviderSelection struct {
	ProviderID   string
	Model        string
	Score        float64
	Reason       string
	Alternatives []string
	Fallbacks    []string
}
