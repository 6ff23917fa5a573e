// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package types holds the shared, dependency-free types for the routing
gateway: request/response envelopes, the structured error model, budget
and cache domain types, provider descriptors, complexity scoring, and
context-propagation helpers. Nothing in this package imports from
internal/ or api/, so it is safe for every other package to depend on it
without risk of import cycles.

# Core types

  - Error / ErrorCode  — structured error with HTTP status, retryable flag,
    and an optional provider tag
  - Request / Response — the routing core's request and response envelopes
  - BudgetConfig / BudgetUsage / BudgetStatus — hierarchical budget tracking
  - CacheEntry / CacheTier — three-tier response cache types
  - ProviderConfig / ProviderMetrics / BreakerState — provider registry types
  - ComplexityScore / ComplexityTier — prompt complexity analysis output

# Context propagation

WithUserID / WithTeamID / WithCompanyID / WithRequestID / WithTraceID attach
identity and correlation values to a context.Context; the matching accessor
functions extract them downstream in handlers, the router, and logging.
*/
package types
