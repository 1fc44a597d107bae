/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package executor

import (
	"fmt"
	"slices"
	"strings"

	"chainguard.dev/harvester/harvest"
	"chainguard.dev/harvester/tasks"
)

// completedComment summarizes a successful harvest for the source issue.
func completedComment(task tasks.Descriptor, params harvest.Params, records []harvest.Record, locator string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "DONE ✅ Task `%s` (Type: `%s`) completed successfully.\n\n", task.ID, task.RawType)
	sb.WriteString("📊 **Results Summary:**\n")
	fmt.Fprintf(&sb, "- Topics searched: %s\n", strings.Join(params.Topics, ", "))
	fmt.Fprintf(&sb, "- Projects harvested: %d\n", len(records))
	if top := topScores(records, 3); top != "" {
		fmt.Fprintf(&sb, "- Top value scores: %s\n", top)
	}
	fmt.Fprintf(&sb, "\n📄 Full results stored at: %s", locator)
	return sb.String()
}

// topScores renders the n highest-scoring records as "name (score)" pairs.
func topScores(records []harvest.Record, n int) string {
	if len(records) == 0 {
		return ""
	}
	sorted := slices.Clone(records)
	slices.SortFunc(sorted, func(a, b harvest.Record) int {
		switch {
		case a.ValueScore > b.ValueScore:
			return -1
		case a.ValueScore < b.ValueScore:
			return 1
		default:
			return 0
		}
	})

	parts := make([]string, 0, n)
	for _, r := range sorted[:min(n, len(sorted))] {
		parts = append(parts, fmt.Sprintf("%s (%.0f)", r.Name, r.ValueScore))
	}
	return strings.Join(parts, ", ")
}
