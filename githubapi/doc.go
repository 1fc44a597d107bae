/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package githubapi provides a rate-limit-aware GitHub API client.
//
// All outbound calls flow through a single bounded-retry policy: transient
// server and transport failures are retried with exponential backoff, quota
// exhaustion waits for the advertised reset without consuming the retry
// budget, and 404 on reads is surfaced as valid absence rather than an error.
package githubapi
