// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

// Package budget implements hierarchical spending admission: for each
// request, every present scope in [user, team?, company?] must approve
// before the request proceeds. Usage counters roll over on wall-clock
// period boundaries (daily/weekly/monthly/yearly) and are mirrored,
// best-effort and asynchronously, to a durable ledger so usage survives
// a restart; the in-process counters remain the source of truth for
// admission decisions.
package budget
