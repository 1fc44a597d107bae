/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tasks

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/go-github/v84/github"
	"github.com/tidwall/gjson"
)

// Type is the closed set of task variants.
type Type int

const (
	// TypeUnknown marks a task whose body could not be parsed or whose
	// declared type is not recognized.
	TypeUnknown Type = iota
	// TypeHarvest requests a repository harvest.
	TypeHarvest
)

func (t Type) String() string {
	switch t {
	case TypeHarvest:
		return "harvest"
	default:
		return "unknown"
	}
}

// harvestKeyword is the recognized task keyword, both as the JSON type value
// and as the secondary title signal.
const harvestKeyword = "harvest"

// fallbackType mirrors the reported type when the body declares none.
const fallbackType = "unknown_type"

// Descriptor is a parsed task. It is immutable after parsing; ParseErr is
// non-nil when the issue matched as a task but its body was not valid JSON.
type Descriptor struct {
	ID          string
	Type        Type
	RawType     string
	Payload     map[string]any
	IssueNumber int
	ParseErr    error
}

// IsTask reports whether an issue should be treated as a task. The JSON
// body's type field is authoritative; a keyword in the title is a secondary
// signal that catches issues whose bodies fail to parse.
func IsTask(issue *github.Issue) bool {
	if body := issue.GetBody(); gjson.Valid(body) {
		if gjson.Get(body, "type").String() == harvestKeyword {
			return true
		}
	}
	return strings.Contains(strings.ToLower(issue.GetTitle()), harvestKeyword)
}

// Parse builds a Descriptor from an issue body. An empty body parses as an
// empty document; a body that is not valid JSON yields a TypeUnknown
// descriptor carrying the parse error for the executor to report.
func Parse(issue *github.Issue) Descriptor {
	number := issue.GetNumber()
	body := strings.TrimSpace(issue.GetBody())
	if body == "" {
		body = "{}"
	}

	var raw struct {
		ID      string         `json:"id"`
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	if err := json.Unmarshal([]byte(body), &raw); err != nil {
		return Descriptor{
			ID:          fmt.Sprintf("unknown_id_%d", number),
			Type:        TypeUnknown,
			RawType:     fallbackType,
			IssueNumber: number,
			ParseErr:    fmt.Errorf("parsing task body: %w", err),
		}
	}

	d := Descriptor{
		ID:          raw.ID,
		RawType:     raw.Type,
		Payload:     raw.Payload,
		IssueNumber: number,
	}
	if d.ID == "" {
		d.ID = fmt.Sprintf("unknown_id_%d", number)
	}
	if d.RawType == "" {
		d.RawType = fallbackType
	}
	if raw.Type == harvestKeyword {
		d.Type = TypeHarvest
	}
	return d
}
