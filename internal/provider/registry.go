// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

package provider

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const costCeilingPer1K = 0.003

// Registry holds every configured provider along with its live metrics,
// circuit breaker, and optional rate limiter. It is constructed once and
// shared across requests; all mutation is guarded by mu.
//
// Grounded on original_source/backend/app/core/providers.py's
// ProviderRegistry (select/_calculate_provider_score/_select_model/
// execute_chain) for the selection and fallback semantics, and the
// teacher's llm/router.WeightedRouter for the Go composition idiom:
// sub-components (breakers, limiters) are built once at registration
// time rather than looked up lazily.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]types.ProviderConfig
	metrics   map[string]*types.ProviderMetrics
	breakers  map[string]*Breaker
	limiters  map[string]*rate.Limiter
	logger    *zap.Logger
}

// NewRegistry creates an empty Registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		providers: make(map[string]types.ProviderConfig),
		metrics:   make(map[string]*types.ProviderMetrics),
		breakers:  make(map[string]*Breaker),
		limiters:  make(map[string]*rate.Limiter),
		logger:    logger,
	}
}

// Register adds or replaces a provider's configuration, (re)building its
// breaker and rate limiter from the new config.
func (r *Registry) Register(cfg types.ProviderConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[cfg.ProviderID] = cfg
	if _, ok := r.metrics[cfg.ProviderID]; !ok {
		r.metrics[cfg.ProviderID] = &types.ProviderMetrics{ProviderID: cfg.ProviderID, ErrorKindCounts: types.ErrorKindCounts{}}
	}
	r.breakers[cfg.ProviderID] = NewBreaker(cfg.Breaker)

	if cfg.RateLimits.RequestsPerMinute > 0 {
		r.limiters[cfg.ProviderID] = rate.NewLimiter(rate.Limit(float64(cfg.RateLimits.RequestsPerMinute)/60.0), cfg.RateLimits.RequestsPerMinute)
	} else {
		delete(r.limiters, cfg.ProviderID)
	}
}

// candidates returns every enabled, active provider whose breaker is not
// open or has an elapsed open timeout (Breaker.Available), in no
// particular order.
func (r *Registry) candidates() []types.ProviderConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.ProviderConfig, 0, len(r.providers))
	for id, cfg := range r.providers {
		if !cfg.IsEnabled || cfg.Status != types.ProviderStatusActive {
			continue
		}
		if !r.breakers[id].Available() {
			continue
		}
		out = append(out, cfg)
	}
	return out
}

type scoredCandidate struct {
	cfg   types.ProviderConfig
	score float64
}

// Select scores every eligible candidate and returns the winner along
// with alternatives/fallbacks, in descending score order with
// provider_id as the deterministic tie-break.
func (r *Registry) Select(tier types.ComplexityTier) (types.ProviderSelection, error) {
	candidates := r.candidates()
	if len(candidates) == 0 {
		return types.ProviderSelection{}, types.NewError(types.ErrAllProvidersFailed, "no available providers")
	}

	r.mu.RLock()
	scored := make([]scoredCandidate, 0, len(candidates))
	for _, cfg := range candidates {
		scored = append(scored, scoredCandidate{cfg: cfg, score: r.score(cfg, tier)})
	}
	r.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].cfg.ProviderID < scored[j].cfg.ProviderID
	})

	winner := scored[0]
	alternatives := make([]string, 0, 2)
	for _, c := range scored[1:] {
		if len(alternatives) == 2 {
			break
		}
		alternatives = append(alternatives, c.cfg.ProviderID)
	}
	fallbacks := make([]string, 0, len(scored)-1)
	for _, c := range scored[1:] {
		fallbacks = append(fallbacks, c.cfg.ProviderID)
	}

	return types.ProviderSelection{
		ProviderID:   winner.cfg.ProviderID,
		Model:        selectModel(winner.cfg, tier),
		Score:        winner.score,
		Reason:       selectionReason(winner.cfg, tier),
		Alternatives: alternatives,
		Fallbacks:    fallbacks,
	}, nil
}

// score computes the cost/fit/reliability/availability components and
// clamps the sum to [0,1], exactly as specified.
func (r *Registry) score(cfg types.ProviderConfig, tier types.ComplexityTier) float64 {
	costComponent := 1.0 - (cfg.Cost.InputPricePer1K / costCeilingPer1K)
	score := clamp01(costComponent) * 0.30

	switch {
	case tier == types.ComplexitySimple:
		if cfg.HasTag("fast") {
			score += 0.40
		} else {
			score += 0.30
		}
	case tier == types.ComplexityComplex || tier == types.ComplexityVeryComplex:
		if cfg.HasTag("capable") {
			score += 0.40
		} else {
			score += 0.30
		}
	default:
		score += 0.30
	}

	if m, ok := r.metrics[cfg.ProviderID]; ok {
		score += m.SuccessRate * 0.20
	}

	if r.breakers[cfg.ProviderID].State() == types.BreakerClosed {
		score += 0.10
	}

	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// selectModel picks the cheapest listed model for simple prompts, the
// most capable for complex/very_complex, and the first listed model
// otherwise.
func selectModel(cfg types.ProviderConfig, tier types.ComplexityTier) string {
	if len(cfg.Models) == 0 {
		return "default"
	}

	switch tier {
	case types.ComplexitySimple:
		for _, m := range cfg.Models {
			if containsAny(m, "3.5", "haiku", "8b") {
				return m
			}
		}
	case types.ComplexityComplex, types.ComplexityVeryComplex:
		for _, m := range cfg.Models {
			if containsAny(m, "4", "opus", "70b") {
				return m
			}
		}
	}
	return cfg.Models[0]
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func selectionReason(cfg types.ProviderConfig, tier types.ComplexityTier) string {
	switch {
	case tier == types.ComplexitySimple && cfg.HasTag("fast"):
		return "fast, cost-effective choice for a simple prompt"
	case (tier == types.ComplexityComplex || tier == types.ComplexityVeryComplex) && cfg.HasTag("capable"):
		return "most capable provider for a complex reasoning task"
	default:
		return "balanced performance and cost for this request"
	}
}

// ExecuteChain attempts the primary provider, then walks selection's
// fallbacks in order on failure. It returns the first successful
// response, or an exhausted-fallback error if every attempt failed.
func (r *Registry) ExecuteChain(ctx context.Context, exec Executor, prompt string, selection types.ProviderSelection, req *types.Request) (*types.ProviderResponse, error) {
	attempts := append([]string{selection.ProviderID}, selection.Fallbacks...)
	models := map[string]string{selection.ProviderID: selection.Model}

	var lastErr error
	for _, providerID := range attempts {
		model, ok := models[providerID]
		if !ok {
			model = r.fallbackModel(providerID)
		}

		resp, err := r.attempt(ctx, exec, providerID, model, prompt, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = types.NewError(types.ErrAllProvidersFailed, "no providers attempted")
	}
	return nil, types.NewError(types.ErrAllProvidersFailed, "all providers failed").WithCause(lastErr)
}

func (r *Registry) fallbackModel(providerID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.providers[providerID]
	if !ok || len(cfg.Models) == 0 {
		return "default"
	}
	return cfg.Models[0]
}

func (r *Registry) attempt(ctx context.Context, exec Executor, providerID, model, prompt string, req *types.Request) (*types.ProviderResponse, error) {
	r.mu.RLock()
	cfg, ok := r.providers[providerID]
	breaker := r.breakers[providerID]
	limiter := r.limiters[providerID]
	r.mu.RUnlock()

	if !ok {
		return nil, types.NewError(types.ErrProviderUnavailable, "unknown provider "+providerID)
	}
	if !breaker.CanExecute() {
		return nil, types.NewError(types.ErrCircuitOpen, "circuit open for "+providerID).WithProvider(providerID)
	}

	if limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			r.recordFailure(providerID, err)
			return nil, err
		}
	}

	callCtx := ctx
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		callCtx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := exec.Execute(callCtx, cfg, model, prompt, req)
	latency := float64(time.Since(start).Microseconds()) / 1000.0

	if err != nil {
		r.recordFailure(providerID, err)
		return nil, err
	}
	if resp.LatencyMs == 0 {
		resp.LatencyMs = latency
	}
	r.recordSuccess(providerID, resp)
	return resp, nil
}

func (r *Registry) recordSuccess(providerID string, resp *types.ProviderResponse) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.breakers[providerID].RecordSuccess()

	m := r.metrics[providerID]
	if m == nil {
		return
	}
	now := time.Now()
	m.TotalRequests++
	m.SuccessfulRequests++
	m.SuccessRate = float64(m.SuccessfulRequests) / float64(m.TotalRequests)
	m.TotalInputTokens += int64(resp.Tokens.PromptTokens)
	m.TotalOutputTokens += int64(resp.Tokens.CompletionTokens)
	m.TotalCostUSD += resp.CostUSD
	m.LastRequestTime = now
	m.LastSuccessfulRequest = now
	updateLatency(m, resp.LatencyMs)
}

func (r *Registry) recordFailure(providerID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	breaker := r.breakers[providerID]
	wasClosed := breaker != nil && breaker.State() != types.BreakerOpen
	if breaker != nil {
		breaker.RecordFailure()
	}

	m := r.metrics[providerID]
	if m == nil {
		return
	}
	now := time.Now()
	m.TotalRequests++
	m.FailedRequests++
	if m.TotalRequests > 0 {
		m.SuccessRate = float64(m.SuccessfulRequests) / float64(m.TotalRequests)
	}
	m.LastError = err.Error()
	m.LastErrorTime = now
	m.LastRequestTime = now
	if m.ErrorKindCounts == nil {
		m.ErrorKindCounts = types.ErrorKindCounts{}
	}
	m.ErrorKindCounts[errorKind(err)]++
	if wasClosed && breaker != nil && breaker.State() == types.BreakerOpen {
		m.CircuitBreakerTrips++
	}
}

func updateLatency(m *types.ProviderMetrics, latencyMs float64) {
	if m.SuccessfulRequests <= 1 {
		m.AvgResponseTimeMs = latencyMs
		m.MinResponseTimeMs = latencyMs
		m.MaxResponseTimeMs = latencyMs
		return
	}
	n := float64(m.SuccessfulRequests)
	m.AvgResponseTimeMs = m.AvgResponseTimeMs + (latencyMs-m.AvgResponseTimeMs)/n
	if latencyMs < m.MinResponseTimeMs {
		m.MinResponseTimeMs = latencyMs
	}
	if latencyMs > m.MaxResponseTimeMs {
		m.MaxResponseTimeMs = latencyMs
	}
}

func errorKind(err error) string {
	if gwErr, ok := err.(*types.Error); ok {
		return string(gwErr.Code)
	}
	return "unknown"
}

// Metrics returns a snapshot of every provider's accumulated metrics.
func (r *Registry) Metrics() []types.ProviderMetrics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]types.ProviderMetrics, 0, len(r.metrics))
	for _, m := range r.metrics {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProviderID < out[j].ProviderID })
	return out
}

// BreakerStates returns the current state of every registered breaker.
func (r *Registry) BreakerStates() map[string]types.BreakerState {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]types.BreakerState, len(r.breakers))
	for id, b := range r.breakers {
		out[id] = b.State()
	}
	return out
}
