// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package router implements the gateway's orchestration: Router.Route
sequences optimization, complexity analysis, budget admission, cache
lookup, provider selection, fallback execution, budget debit, and cache
store into the nine-step pipeline. It carries no business logic of its
own beyond that sequencing — every decision is delegated to the
component that owns it.
*/
package router
