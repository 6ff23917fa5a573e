// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package provider implements the provider registry: candidate filtering,
cost/fit/reliability/availability scoring, model selection, fallback
execution, per-provider circuit breakers, and metrics accounting.

Network calls to a provider's completion endpoint are made through the
Executor interface; concrete adapters live in the httpexec and simexec
subpackages so this package stays free of any one vendor's wire format.
*/
package provider
