// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

package router

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/routeforge/gateway/internal/budget"
	"github.com/routeforge/gateway/internal/cache"
	"github.com/routeforge/gateway/internal/complexity"
	"github.com/routeforge/gateway/internal/optimizer"
	"github.com/routeforge/gateway/internal/provider"
	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
)

// Router wires the routing core's components into the request pipeline.
// It holds no business logic itself; every decision belongs to the
// component that makes it. Constructed once at startup from already-
// built sub-component handles, matching the teacher's
// llm/router.WeightedRouter composition idiom — no ambient globals, no
// lazy internal construction.
type Router struct {
	analyzer *complexity.Analyzer
	budget   *budget.Controller
	cache    *cache.Manager
	registry *provider.Registry
	executor provider.Executor
	logger   *zap.Logger
}

// New creates a Router from its fully-constructed collaborators.
func New(analyzer *complexity.Analyzer, budgetCtl *budget.Controller, cacheMgr *cache.Manager, registry *provider.Registry, executor provider.Executor, logger *zap.Logger) *Router {
	return &Router{
		analyzer: analyzer,
		budget:   budgetCtl,
		cache:    cacheMgr,
		registry: registry,
		executor: executor,
		logger:   logger,
	}
}

// Route executes the full nine-step pipeline: assign request ID,
// optimize, analyze complexity, estimate cost, check budget (deny
// short-circuits), cache lookup (hit short-circuits), select provider,
// execute with fallbacks (exhaustion short-circuits), debit budget,
// store in cache, respond.
func (r *Router) Route(ctx context.Context, req *types.Request) *types.Response {
	start := time.Now()

	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}

	optimizedPrompt, optStats := optimizer.OptimizeWithStats(req.Prompt)

	score := r.analyzer.Analyze(optimizedPrompt)

	estimatedCost := budget.EstimateCost(req, score.Score, score.RecommendedProvider)

	admission := r.budget.CheckAuthorization(ctx, req, estimatedCost)
	if !admission.Approved() {
		deniedMsg := fmt.Sprintf("%s scope", admission.DeniedScope)
		return r.errorResponse(req, start, types.NewError(types.ErrBudgetExceeded, deniedMsg), types.Diagnostics{
			ComplexityTier:  score.Tier,
			AdmissionStatus: admission.Status,
			AdmissionScope:  admission.DeniedScope,
		})
	}

	lookup := r.cache.Lookup(ctx, optimizedPrompt)
	if lookup.Hit {
		return &types.Response{
			RequestID:  req.RequestID,
			Success:    true,
			Content:    lookup.Entry.Content,
			ProviderID: lookup.Entry.ProviderID,
			Model:      lookup.Entry.Model,
			Tokens:     lookup.Entry.Tokens,
			CostUSD:    lookup.Entry.CostUSD,
			LatencyMs:  elapsedMs(start),
			CacheHit:   true,
			CacheLevel: lookup.HitLevel,
			Diagnostics: types.Diagnostics{
				ComplexityTier:    score.Tier,
				OptimizationRatio: optStats.ReductionPercent,
				AdmissionStatus:   admission.Status,
				LevelsChecked:     lookup.LevelsChecked,
				LookupTimeMs:      lookup.LookupTimeMs,
			},
			CompletedAt: time.Now(),
		}
	}

	selection, err := r.registry.Select(score.Tier)
	if err != nil {
		return r.errorResponse(req, start, err, types.Diagnostics{ComplexityTier: score.Tier, AdmissionStatus: admission.Status})
	}

	resp, err := r.registry.ExecuteChain(ctx, r.executor, optimizedPrompt, selection, req)
	if err != nil {
		return r.errorResponse(req, start, err, types.Diagnostics{
			ComplexityTier:       score.Tier,
			AdmissionStatus:      admission.Status,
			ProviderSelectReason: selection.Reason,
		})
	}

	if err := r.budget.RecordUsage(ctx, req, resp.CostUSD); err != nil && r.logger != nil {
		r.logger.Warn("failed to record budget usage", zap.String("request_id", req.RequestID), zap.Error(err))
	}

	r.cache.Store(ctx, optimizedPrompt, resp)

	return &types.Response{
		RequestID:  req.RequestID,
		Success:    true,
		Content:    resp.Content,
		ProviderID: resp.ProviderID,
		Model:      resp.Model,
		Tokens:     resp.Tokens,
		CostUSD:    resp.CostUSD,
		LatencyMs:  elapsedMs(start),
		CacheHit:   false,
		CacheLevel: types.CacheHitNone,
		Diagnostics: types.Diagnostics{
			ComplexityTier:       score.Tier,
			OptimizationRatio:    optStats.ReductionPercent,
			AdmissionStatus:      admission.Status,
			ProviderSelectReason: selection.Reason,
			LookupTimeMs:         lookup.LookupTimeMs,
			LevelsChecked:        lookup.LevelsChecked,
		},
		CompletedAt: time.Now(),
	}
}

// errorResponse builds an unsuccessful Response whose Error string begins
// with one of the four externally meaningful prefixes clients key off of:
// "budget exceeded:", "all providers failed:", "authorization:",
// "internal:". err.Error()'s own "[CODE] message" rendering is for logs,
// not for this field.
func (r *Router) errorResponse(req *types.Request, start time.Time, err error, diag types.Diagnostics) *types.Response {
	code := types.ErrInternalError
	detail := err.Error()
	if typed, ok := err.(*types.Error); ok {
		code = typed.Code
		detail = typed.Message
		if typed.Cause != nil {
			detail = fmt.Sprintf("%s: %v", typed.Message, typed.Cause)
		}
	}
	return &types.Response{
		RequestID:   req.RequestID,
		Success:     false,
		Error:       fmt.Sprintf("%s: %s", errorPrefix(code), detail),
		ErrorCode:   code,
		LatencyMs:   elapsedMs(start),
		CacheLevel:  types.CacheHitNone,
		Diagnostics: diag,
		CompletedAt: time.Now(),
	}
}

// errorPrefix maps an error code onto the four literal prefixes spec'd
// for Response.Error so clients can branch on string prefix alone.
func errorPrefix(code types.ErrorCode) string {
	switch code {
	case types.ErrBudgetExceeded:
		return "budget exceeded"
	case types.ErrAllProvidersFailed, types.ErrCircuitOpen, types.ErrProviderUnavailable:
		return "all providers failed"
	case types.ErrAuthentication, types.ErrUnauthorized, types.ErrForbidden:
		return "authorization"
	default:
		return "internal"
	}
}

func elapsedMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

// Stats aggregates cross-cutting observability for the HTTP stats
// endpoint.
type Stats struct {
	Cache           types.CacheStats
	ProviderMetrics []types.ProviderMetrics
	BreakerStates   map[string]types.BreakerState
}

// SystemStats reports cache and provider metrics across the whole
// router, mirroring original_source's get_system_stats.
func (r *Router) SystemStats() Stats {
	return Stats{
		Cache:           r.cache.Stats(),
		ProviderMetrics: r.registry.Metrics(),
		BreakerStates:   r.registry.BreakerStates(),
	}
}

// BudgetSummary reports the usage snapshot for every scope present on
// req, mirroring original_source's get_budget_summary.
func (r *Router) BudgetSummary(req *types.Request) []types.BudgetUsage {
	return r.budget.HierarchySummary(req)
}

// ClearCaches empties the response cache and the complexity analyzer's
// result cache, mirroring original_source's clear_caches.
func (r *Router) ClearCaches(ctx context.Context) {
	r.cache.ClearAll(ctx)
	r.analyzer.ClearCache()
}
