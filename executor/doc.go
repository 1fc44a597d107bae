/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package executor drives one task from a fetched tracker issue to a
// terminal state, persisting the result with optimistic concurrency and
// reporting progress back to the issue.
//
// Persistence is the single durability checkpoint: the completion comment is
// never posted without a successful write, and because result paths are
// deterministic, re-running a task that failed after persisting simply
// overwrites the file with an equivalent result.
package executor
