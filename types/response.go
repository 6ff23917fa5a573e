package types

import "time"

// CacheHitLevel identifies which cache tier served a hit, or "none" on miss.
type CacheHitLevel string

const (
	CacheHitNone CacheHitLevel = "none"
	CacheHitL1   CacheHitLevel = "l1"
	CacheHitL2   CacheHitLevel = "l2"
	CacheHitL3   CacheHitLevel = "l3"
)

// TokenCounts mirrors a provider's reported (or cached) token usage.
type TokenCounts struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Diagnostics carries the per-request decisions made along the pipeline,
// surfaced to the caller for observability and to tests for assertions.
type Diagnostics struct {
	ComplexityTier      ComplexityTier `json:"complexity_tier,omitempty"`
	OptimizationRatio   float64        `json:"optimization_ratio,omitempty"`
	AdmissionStatus     BudgetStatus   `json:"admission_status,omitempty"`
	AdmissionScope      BudgetLevel    `json:"admission_scope,omitempty"`
	ProviderSelectReason string        `json:"provider_select_reason,omitempty"`
	LevelsChecked       int            `json:"levels_checked,omitempty"`
	LookupTimeMs        float64        `json:"lookup_time_ms,omitempty"`
}

// Response is the routing core's outbound result for one Request.
type Response struct {
	RequestID    string        `json:"request_id"`
	Success      bool          `json:"success"`
	Content      string        `json:"content,omitempty"`
	ProviderID   string        `json:"provider_id,omitempty"`
	Model        string        `json:"model,omitempty"`
	Tokens       TokenCounts   `json:"tokens"`
	CostUSD      float64       `json:"cost_usd"`
	LatencyMs    float64       `json:"latency_ms"`
	CacheHit     bool          `json:"cache_hit"`
	CacheLevel   CacheHitLevel `json:"cache_level"`
	Error        string        `json:"error,omitempty"`
	ErrorCode    ErrorCode     `json:"error_code,omitempty"`
	Diagnostics  Diagnostics   `json:"diagnostics"`
	CompletedAt  time.Time     `json:"completed_at"`
}
