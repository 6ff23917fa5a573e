package provider

import (
	"context"

	"github.com/routeforge/gateway/types"
)

// Executor performs the actual network call to a provider's completion
// endpoint. Concrete adapters (httpexec, simexec) implement this; the
// registry itself never speaks a vendor's wire protocol.
type Executor interface {
	Execute(ctx context.Context, cfg types.ProviderConfig, model, prompt string, req *types.Request) (*types.ProviderResponse, error)
}
