// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

// Package optimizer canonicalizes prompts before they reach the rest of
// the routing pipeline: it strips filler and redundant phrasing, shortens
// long connectives, drops context asides, normalizes whitespace and
// punctuation, and compresses multi-clause instructions — without
// changing the prompt's intent. Optimize is pure and idempotent.
package optimizer
