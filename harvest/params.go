/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package harvest

import "encoding/json"

// Params are the fully-resolved harvest parameters. Resolution happens in
// exactly one place (ResolveParams); downstream code never consults the raw
// payload again.
type Params struct {
	// Topics are the repository topics searched, one query per topic.
	Topics []string `json:"topics"`
	// MinStars is the star-count floor for a repository to qualify.
	MinStars int `json:"min_stars"`
	// CreatedAfter is the ISO-date floor on repository creation.
	CreatedAfter string `json:"created_after"`
	// CountPerTopic caps how many repositories each topic search returns.
	CountPerTopic int `json:"count_per_topic"`
}

// DefaultTaskParams are the defaults applied to a harvest task whose payload
// omits a field.
func DefaultTaskParams() Params {
	return Params{
		Topics:        []string{"ai", "agent", "automation", "llm"},
		MinStars:      50,
		CreatedAfter:  "2024-01-01",
		CountPerTopic: 5,
	}
}

// DefaultScheduledParams are the defaults for scheduled (non-task) runs.
func DefaultScheduledParams() Params {
	return Params{
		Topics:        []string{"ai-agent", "automation", "saas-template", "trading-bot"},
		MinStars:      10,
		CreatedAfter:  "2024-01-01",
		CountPerTopic: 3,
	}
}

// ResolveParams merges a task payload over the given defaults. A key present
// in the payload always wins, even when its value is zero; only absent keys
// fall back. Unrecognized keys are ignored.
func ResolveParams(payload map[string]any, defaults Params) Params {
	p := defaults
	if v, ok := payload["topics"]; ok {
		p.Topics = toStringSlice(v)
	}
	if v, ok := payload["min_stars"]; ok {
		p.MinStars = toInt(v)
	}
	if v, ok := payload["created_after"]; ok {
		if s, ok := v.(string); ok {
			p.CreatedAfter = s
		}
	}
	if v, ok := payload["count_per_topic"]; ok {
		p.CountPerTopic = toInt(v)
	}
	return p
}

// toStringSlice coerces a decoded JSON array into strings, dropping
// non-string elements.
func toStringSlice(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// toInt coerces the numeric shapes encoding/json produces.
func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
	}
	return 0
}
