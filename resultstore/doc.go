/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package resultstore commits task results to a GitHub results repository
// with optimistic concurrency: each write carries the revision marker
// observed by the preceding read, so a concurrent writer's update is never
// silently overwritten.
package resultstore
