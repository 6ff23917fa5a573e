// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package simexec implements a deterministic in-memory provider.Executor
for tests and local/dev runs, letting the full routing pipeline execute
without any network access.

Grounded on original_source/backend/app/core/providers.py's
_execute_provider mock (fixed-shape response, synthetic token counts
derived from prompt length, a configurable simulated failure for
exercising the fallback chain).
*/
package simexec

import (
	"context"
	"fmt"

	"github.com/routeforge/gateway/types"
)

// Executor returns a synthetic response for every call, unless the
// provider ID is listed in FailProviders, in which case it returns an
// error — useful for exercising ExecuteChain's fallback walk in tests.
type Executor struct {
	FailProviders map[string]bool
}

// New creates a simexec.Executor. failProviders names providers whose
// calls should fail.
func New(failProviders ...string) *Executor {
	set := make(map[string]bool, len(failProviders))
	for _, id := range failProviders {
		set[id] = true
	}
	return &Executor{FailProviders: set}
}

func (e *Executor) Execute(ctx context.Context, cfg types.ProviderConfig, model, prompt string, req *types.Request) (*types.ProviderResponse, error) {
	if e.FailProviders[cfg.ProviderID] {
		return nil, types.NewError(types.ErrUpstreamError, fmt.Sprintf("simulated failure for provider %s", cfg.ProviderID)).WithProvider(cfg.ProviderID).WithRetryable(true)
	}

	promptTokens := len(prompt) / 4
	completionTokens := len(prompt) / 8

	return &types.ProviderResponse{
		Content:    fmt.Sprintf("simulated response from %s for: %s", cfg.ProviderID, truncate(prompt, 80)),
		Model:      model,
		ProviderID: cfg.ProviderID,
		Tokens: types.TokenCounts{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
		CostUSD: 0.01,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
