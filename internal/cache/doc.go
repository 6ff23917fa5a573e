// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package cache implements the three-tier response cache described by the
routing core: an in-process LRU (T1, ~5 minutes), a shared Redis tier
(T2, ~1 hour), and a durable gorm-backed tier (T3, ~24 hours). Lookup
walks the tiers fastest-first and promotes a hit into every faster tier
it skipped; Store fans out to all three tiers best-effort, succeeding if
at least one tier accepts the write.

The cache key is the MD5 hex digest of the prompt text alone — model,
temperature, and max_tokens are deliberately excluded from the key so
that cost-reducing prompt rewrites still share a cache entry across
requests that only differ in those fields.
*/
package cache
