package budget

import (
	"context"
	"sync"
	"time"

	"github.com/routeforge/gateway/types"
	"go.uber.org/zap"
)

// scopeUsage is the mutable per-(level,entity_id) accumulation, guarded
// by its own mutex so one scope's compare-and-update never blocks
// another's.
type scopeUsage struct {
	mu    sync.Mutex
	usage types.BudgetUsage
}

// ensureWindow rolls usage over to the current period window if the
// stored window has expired. Callers must hold s.mu.
func (s *scopeUsage) ensureWindow(cfg types.BudgetConfig, level types.BudgetLevel, entityID string, now time.Time) {
	loc := locationFor(cfg)
	start, end := windowFor(cfg.Period, now, loc)

	if s.usage.PeriodStart.Equal(start) {
		return
	}

	carried := 0.0
	if cfg.Rollover {
		carried = s.usage.UsedUSD
	}

	s.usage = types.BudgetUsage{
		Level:       level,
		EntityID:    entityID,
		PeriodStart: start,
		PeriodEnd:   end,
		UsedUSD:     carried,
		LastUpdated: now,
	}
	recomputeDerived(&s.usage, cfg)
}

func recomputeDerived(u *types.BudgetUsage, cfg types.BudgetConfig) {
	if u.UsedUSD < 0 {
		u.UsedUSD = 0
	}
	remaining := cfg.LimitUSD - u.UsedUSD
	if remaining < 0 {
		remaining = 0
	}
	u.RemainingUSD = remaining

	if cfg.LimitUSD <= 0 {
		u.Percentage = 0
		u.Status = types.BudgetStatusApproved
		return
	}

	u.Percentage = u.UsedUSD / cfg.LimitUSD
	switch {
	case u.Percentage >= 1.0:
		u.Status = types.BudgetStatusExceeded
	case u.Percentage >= cfg.WarningThreshold:
		u.Status = types.BudgetStatusWarning
	default:
		u.Status = types.BudgetStatusApproved
	}
}

func scopeKey(level types.BudgetLevel, entityID string) string {
	return string(level) + ":" + entityID
}

// Controller enforces the user → team → company spending hierarchy.
// Configs and usage are process-local singletons, constructed once and
// passed by reference; there is no ambient global state.
type Controller struct {
	mu       sync.RWMutex
	configs  map[string]types.BudgetConfig
	defaults map[types.BudgetLevel]types.BudgetConfig
	usage    map[string]*scopeUsage
	logger   *zap.Logger
	store    *Store
	now      func() time.Time
}

// NewController creates a Controller. store may be nil, in which case
// usage is tracked only in-process and never persisted.
func NewController(logger *zap.Logger, store *Store) *Controller {
	return &Controller{
		configs:  make(map[string]types.BudgetConfig),
		defaults: make(map[types.BudgetLevel]types.BudgetConfig),
		usage:    make(map[string]*scopeUsage),
		logger:   logger,
		store:    store,
		now:      time.Now,
	}
}

// SetConfig registers or replaces the budget configuration for a scope.
func (c *Controller) SetConfig(cfg types.BudgetConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configs[scopeKey(cfg.Level, cfg.EntityID)] = cfg
}

// SetDefaultConfig overrides the fallback configuration used for any
// entity at level that has no explicit SetConfig entry, e.g. the
// operator's deployment-wide user/team/company limits.
func (c *Controller) SetDefaultConfig(cfg types.BudgetConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults[cfg.Level] = cfg
}

func (c *Controller) configFor(level types.BudgetLevel, entityID string) types.BudgetConfig {
	c.mu.RLock()
	cfg, ok := c.configs[scopeKey(level, entityID)]
	if !ok {
		cfg, ok = c.defaults[level]
	}
	c.mu.RUnlock()
	if ok {
		fallback := cfg
		fallback.EntityID = entityID
		return fallback
	}
	fallback := defaultConfigFor(level)
	fallback.EntityID = entityID
	return fallback
}

func (c *Controller) stateFor(level types.BudgetLevel, entityID string) *scopeUsage {
	key := scopeKey(level, entityID)

	c.mu.RLock()
	s, ok := c.usage[key]
	c.mu.RUnlock()
	if ok {
		return s
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.usage[key]; ok {
		return s
	}
	s = &scopeUsage{}
	c.usage[key] = s
	return s
}

// CheckAuthorization evaluates every present scope on the request in
// order [user, team?, company?]. The first scope whose projected usage
// exceeds its limit denies the request immediately. A scope at or above
// its warning threshold approves with a warning and, per this core's
// codified behavior, continues evaluating remaining scopes — a deeper
// scope may still deny.
func (c *Controller) CheckAuthorization(ctx context.Context, req *types.Request, estimatedCost float64) types.AdmissionResult {
	result := types.AdmissionResult{
		Status:        types.BudgetStatusApproved,
		Usage:         make(map[types.BudgetLevel]types.BudgetUsage),
		EstimatedCost: estimatedCost,
	}

	now := c.now()
	for _, level := range req.Scopes() {
		entityID := req.EntityID(level)
		cfg := c.configFor(level, entityID)
		state := c.stateFor(level, entityID)

		state.mu.Lock()
		state.ensureWindow(cfg, level, entityID, now)
		snapshot := state.usage
		state.mu.Unlock()

		result.Usage[level] = snapshot
		projected := snapshot.UsedUSD + estimatedCost

		if projected > cfg.LimitUSD {
			result.Status = types.BudgetStatusExceeded
			result.DeniedScope = level
			return result
		}

		if cfg.LimitUSD > 0 && projected/cfg.LimitUSD >= cfg.WarningThreshold {
			if result.Status != types.BudgetStatusWarning {
				result.Status = types.BudgetStatusWarning
				result.WarningScope = level
			}
		}
	}

	return result
}

// RecordUsage debits actualCost against every scope on the request. It
// must only be called after a successful provider completion — cache
// hits never call it, since the original call already debited. A
// negative actualCost is rejected; zero is accepted.
func (c *Controller) RecordUsage(ctx context.Context, req *types.Request, actualCost float64) error {
	if actualCost < 0 {
		return types.NewError(types.ErrInvalidRequest, "actual cost must not be negative")
	}

	now := c.now()
	for _, level := range req.Scopes() {
		entityID := req.EntityID(level)
		cfg := c.configFor(level, entityID)
		state := c.stateFor(level, entityID)

		state.mu.Lock()
		state.ensureWindow(cfg, level, entityID, now)
		state.usage.UsedUSD += actualCost
		state.usage.RequestCount++
		state.usage.LastUpdated = now
		recomputeDerived(&state.usage, cfg)
		snapshot := state.usage
		state.mu.Unlock()

		if c.store != nil {
			go c.store.persist(snapshot)
		}
	}

	return nil
}

// Summary returns the current usage snapshot for one scope, rolling the
// window over first if it has expired.
func (c *Controller) Summary(level types.BudgetLevel, entityID string) types.BudgetUsage {
	cfg := c.configFor(level, entityID)
	state := c.stateFor(level, entityID)

	state.mu.Lock()
	defer state.mu.Unlock()
	state.ensureWindow(cfg, level, entityID, c.now())
	return state.usage
}

// HierarchySummary returns the usage snapshot for every scope present on
// the request.
func (c *Controller) HierarchySummary(req *types.Request) []types.BudgetUsage {
	scopes := req.Scopes()
	out := make([]types.BudgetUsage, 0, len(scopes))
	for _, level := range scopes {
		out = append(out, c.Summary(level, req.EntityID(level)))
	}
	return out
}

// EstimateCost computes the pre-call cost estimate for a request given
// its complexity score and the selection tag of the provider most
// likely to serve it.
func EstimateCost(req *types.Request, complexityScore float64, providerTag string) float64 {
	estimatedTokens := len(req.Prompt) / 4
	complexityMultiplier := 1.0 + 2.0*complexityScore
	providerMultiplier := ProviderMultiplier(providerTag)
	temperatureMultiplier := 1.0 + 0.5*req.Temperature

	cost := costBaseUSD * (float64(estimatedTokens) / 1000) * complexityMultiplier * providerMultiplier * temperatureMultiplier
	if cost < costFloorUSD {
		return costFloorUSD
	}
	return cost
}
