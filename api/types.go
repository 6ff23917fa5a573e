// Package api provides the HTTP-facing request/response types for the
// routing gateway.
package api

import "time"

// =============================================================================
// Response Envelope
// =============================================================================

// Response is the canonical JSON envelope returned by every endpoint.
// @Description Standard API response envelope
type Response struct {
	Success   bool       `json:"success"`
	Data      any        `json:"data,omitempty"`
	Error     *ErrorInfo `json:"error,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	RequestID string     `json:"request_id,omitempty"`
}

// ErrorInfo carries structured error details in a Response.
// @Description Structured error information
type ErrorInfo struct {
	Code       string `json:"code" example:"BUDGET_EXCEEDED"`
	Message    string `json:"message"`
	Retryable  bool   `json:"retryable"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// =============================================================================
// Completion Types
// =============================================================================

// CompletionRequest is the public request body for POST /v1/chat/completions.
// @Description Routing request: a prompt plus optional budget scope hints
type CompletionRequest struct {
	Prompt      string            `json:"prompt" binding:"required"`
	UserID      string            `json:"user_id,omitempty"`
	TeamID      string            `json:"team_id,omitempty"`
	CompanyID   string            `json:"company_id,omitempty"`
	Priority    string            `json:"priority,omitempty" example:"normal"`
	Temperature float64           `json:"temperature,omitempty" example:"0.7"`
	MaxTokens   int               `json:"max_tokens,omitempty" example:"1024"`
	Provider    string            `json:"provider,omitempty"`
	Requirements map[string]string `json:"requirements,omitempty"`
}

// CompletionResponse is the public response body for a routed completion.
// @Description Routed completion result with selection diagnostics
type CompletionResponse struct {
	RequestID   string         `json:"request_id"`
	Content     string         `json:"content,omitempty"`
	ProviderID  string         `json:"provider_id,omitempty"`
	Model       string         `json:"model,omitempty"`
	Tokens      TokenUsage     `json:"tokens"`
	CostUSD     float64        `json:"cost_usd"`
	LatencyMs   float64        `json:"latency_ms"`
	CacheHit    bool           `json:"cache_hit"`
	CacheLevel  string         `json:"cache_level"`
	Diagnostics RouteDiagnostics `json:"diagnostics"`
}

// TokenUsage reports prompt/completion/total token counts.
// @Description Token accounting for one completion
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens" example:"100"`
	CompletionTokens int `json:"completion_tokens" example:"50"`
	TotalTokens      int `json:"total_tokens" example:"150"`
}

// RouteDiagnostics surfaces the routing decisions behind a completion, for
// debugging and billing transparency.
// @Description Per-request routing diagnostics
type RouteDiagnostics struct {
	ComplexityTier       string  `json:"complexity_tier,omitempty"`
	OptimizationRatio    float64 `json:"optimization_ratio,omitempty"`
	AdmissionStatus      string  `json:"admission_status,omitempty"`
	ProviderSelectReason string  `json:"provider_select_reason,omitempty"`
	LevelsChecked        int     `json:"levels_checked,omitempty"`
	LookupTimeMs         float64 `json:"lookup_time_ms,omitempty"`
}

// =============================================================================
// Stats and Budget Types
// =============================================================================

// StatsResponse is the body returned by GET /v1/stats.
// @Description Aggregate cache and provider metrics
type StatsResponse struct {
	Cache     CacheStatsView      `json:"cache"`
	Providers []ProviderMetricsView `json:"providers"`
}

// CacheStatsView summarizes hit/miss counters per cache tier.
// @Description Cache tier hit/miss counters
type CacheStatsView struct {
	L1 TierStatsView `json:"l1"`
	L2 TierStatsView `json:"l2"`
	L3 TierStatsView `json:"l3"`
}

// TierStatsView reports one cache tier's counters.
// @Description One cache tier's hit/miss/error counters
type TierStatsView struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Errors  int64   `json:"errors"`
	HitRate float64 `json:"hit_rate"`
}

// ProviderMetricsView summarizes one provider's observed health.
// @Description One provider's running metrics
type ProviderMetricsView struct {
	ProviderID          string  `json:"provider_id"`
	TotalRequests       int64   `json:"total_requests"`
	SuccessfulRequests  int64   `json:"successful_requests"`
	FailedRequests      int64   `json:"failed_requests"`
	AvgResponseTimeMs   float64 `json:"avg_response_time_ms"`
	BreakerState        string  `json:"breaker_state"`
	CircuitBreakerTrips int64   `json:"circuit_breaker_trips"`
}

// BudgetSummaryRequest is the body for POST /v1/budget/summary.
// @Description Scope identifiers to report budget usage for
type BudgetSummaryRequest struct {
	UserID    string `json:"user_id,omitempty"`
	TeamID    string `json:"team_id,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
}

// BudgetUsageView reports one scope's usage window.
// @Description One budget scope's usage snapshot
type BudgetUsageView struct {
	Level        string    `json:"level"`
	EntityID     string    `json:"entity_id"`
	PeriodStart  time.Time `json:"period_start"`
	PeriodEnd    time.Time `json:"period_end"`
	UsedUSD      float64   `json:"used_usd"`
	RemainingUSD float64   `json:"remaining_usd"`
	Percentage   float64   `json:"percentage"`
	RequestCount int64     `json:"request_count"`
	Status       string    `json:"status"`
}
