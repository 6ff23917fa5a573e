package handlers

import (
	"net/http"

	"github.com/routeforge/gateway/api"
	"github.com/routeforge/gateway/internal/router"
	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
)

// =============================================================================
// 📊 系统状态 Handler
// =============================================================================

// SystemHandler exposes the router's cross-cutting observability and
// control surface: aggregate stats, budget summaries, and cache clearing.
type SystemHandler struct {
	router *router.Router
	logger *zap.Logger
}

// NewSystemHandler creates a system handler over an already-wired Router.
func NewSystemHandler(r *router.Router, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{router: r, logger: logger}
}

// HandleStats reports cache tier hit/miss counters and per-provider
// running metrics.
// @Summary Aggregate routing stats
// @Description Cache tier counters and provider health metrics
// @Tags system
// @Produce json
// @Success 200 {object} api.StatsResponse "aggregate stats"
// @Router /v1/stats [get]
func (h *SystemHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.router.SystemStats()
	WriteSuccess(w, h.convertStats(stats))
}

// HandleBudgetSummary reports the usage snapshot for every budget scope
// named by the request body.
// @Summary Budget usage summary
// @Description Reports usage for the user/team/company scopes present on the request
// @Tags system
// @Accept json
// @Produce json
// @Param request body api.BudgetSummaryRequest true "scope identifiers"
// @Success 200 {object} []api.BudgetUsageView "per-scope usage"
// @Router /v1/budget/summary [post]
func (h *SystemHandler) HandleBudgetSummary(w http.ResponseWriter, r *http.Request) {
	if !ValidateContentType(w, r, h.logger) {
		return
	}

	var req api.BudgetSummaryRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	summary := h.router.BudgetSummary(&types.Request{UserID: req.UserID, TeamID: req.TeamID, CompanyID: req.CompanyID})
	views := make([]api.BudgetUsageView, len(summary))
	for i, u := range summary {
		views[i] = api.BudgetUsageView{
			Level:        string(u.Level),
			EntityID:     u.EntityID,
			PeriodStart:  u.PeriodStart,
			PeriodEnd:    u.PeriodEnd,
			UsedUSD:      u.UsedUSD,
			RemainingUSD: u.RemainingUSD,
			Percentage:   u.Percentage,
			RequestCount: u.RequestCount,
			Status:       string(u.Status),
		}
	}

	WriteSuccess(w, views)
}

// HandleCacheClear empties every cache tier and the complexity analyzer's
// result cache.
// @Summary Clear all caches
// @Description Empties every response cache tier and the complexity cache
// @Tags system
// @Produce json
// @Success 200 {object} Response "cleared"
// @Router /v1/cache/clear [post]
func (h *SystemHandler) HandleCacheClear(w http.ResponseWriter, r *http.Request) {
	h.router.ClearCaches(r.Context())
	WriteSuccess(w, map[string]string{"status": "cleared"})
}

func (h *SystemHandler) convertStats(stats router.Stats) api.StatsResponse {
	providers := make([]api.ProviderMetricsView, len(stats.ProviderMetrics))
	for i, m := range stats.ProviderMetrics {
		providers[i] = api.ProviderMetricsView{
			ProviderID:         m.ProviderID,
			TotalRequests:      m.TotalRequests,
			SuccessfulRequests: m.SuccessfulRequests,
			FailedRequests:     m.FailedRequests,
			AvgResponseTimeMs:  m.AvgResponseTimeMs,
			BreakerState:       string(stats.BreakerStates[m.ProviderID]),
			CircuitBreakerTrips: m.CircuitBreakerTrips,
		}
	}

	return api.StatsResponse{
		Cache: api.CacheStatsView{
			L1: convertTierStats(stats.Cache.L1),
			L2: convertTierStats(stats.Cache.L2),
			L3: convertTierStats(stats.Cache.L3),
		},
		Providers: providers,
	}
}

func convertTierStats(s types.CacheTierStats) api.TierStatsView {
	return api.TierStatsView{
		Hits:    s.Hits,
		Misses:  s.Misses,
		Errors:  s.Errors,
		HitRate: s.HitRate,
	}
}
