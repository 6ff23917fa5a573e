// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

// Package complexity scores a prompt on a 0-1 scale across seven
// weighted factors and classifies it into a complexity tier used
// downstream for provider scoring and cost estimation. Analyze is pure;
// results are cached in memory keyed by a hash of the prompt since the
// score depends only on the prompt's content.
package complexity
