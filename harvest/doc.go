/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package harvest discovers repositories matching search criteria and scores
// them. It is the executor's collaborator: given fully-resolved parameters it
// returns scored records, and it can also sink a scheduled run's records to
// the local filesystem.
package harvest
