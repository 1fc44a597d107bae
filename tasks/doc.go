/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tasks turns issues in a tracker repository into task descriptors.
//
// An issue is a task when its JSON body declares a recognized type (the
// authoritative signal) or, secondarily, when its title carries a recognized
// keyword. Malformed bodies on otherwise-matching issues yield descriptors
// of type Unknown carrying the parse error, so one bad task is reported
// without aborting the rest of a batch.
package tasks
