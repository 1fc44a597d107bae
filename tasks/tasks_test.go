/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tasks

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-github/v84/github"
	"github.com/stretchr/testify/require"
)

func issue(number int, title, body string) *github.Issue {
	return &github.Issue{
		Number: github.Ptr(number),
		Title:  github.Ptr(title),
		Body:   github.Ptr(body),
	}
}

func TestIsTask(t *testing.T) {
	for _, tc := range []struct {
		name string
		in   *github.Issue
		want bool
	}{{
		name: "json type is authoritative",
		in:   issue(1, "please do the thing", `{"id":"t1","type":"harvest","payload":{}}`),
		want: true,
	}, {
		name: "title keyword is a secondary signal",
		in:   issue(2, "Harvest trending repos", `not-json`),
		want: true,
	}, {
		name: "unrelated issue is excluded",
		in:   issue(3, "fix the build", "the build is broken"),
		want: false,
	}, {
		name: "json with unrecognized type and plain title is excluded",
		in:   issue(4, "do something else", `{"id":"t4","type":"deploy"}`),
		want: false,
	}, {
		name: "empty body with keyword title",
		in:   issue(5, "harvest", ""),
		want: true,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, IsTask(tc.in))
		})
	}
}

func TestParse(t *testing.T) {
	d := Parse(issue(42, "harvest", `{"id":"t1","type":"harvest","payload":{"min_stars":100}}`))
	require.NoError(t, d.ParseErr)

	want := Descriptor{
		ID:          "t1",
		Type:        TypeHarvest,
		RawType:     "harvest",
		Payload:     map[string]any{"min_stars": float64(100)},
		IssueNumber: 42,
	}
	if diff := cmp.Diff(want, d); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmptyBody(t *testing.T) {
	d := Parse(issue(7, "harvest", "  "))

	require.NoError(t, d.ParseErr, "an empty body is an empty document, not a parse failure")
	require.Equal(t, TypeUnknown, d.Type)
	require.Equal(t, "unknown_id_7", d.ID)
	require.Equal(t, "unknown_type", d.RawType)
}

func TestParseMalformedBody(t *testing.T) {
	d := Parse(issue(43, "harvest", "not-json"))

	require.Error(t, d.ParseErr)
	require.Equal(t, TypeUnknown, d.Type)
	require.Equal(t, "unknown_id_43", d.ID)
	require.Equal(t, 43, d.IssueNumber)
}

func TestParseUnrecognizedType(t *testing.T) {
	d := Parse(issue(8, "harvest", `{"id":"t8","type":"deploy","payload":{}}`))

	require.NoError(t, d.ParseErr)
	require.Equal(t, TypeUnknown, d.Type)
	require.Equal(t, "deploy", d.RawType, "the declared type is kept for the failure report")
}

func TestTypeString(t *testing.T) {
	require.Equal(t, "harvest", TypeHarvest.String())
	require.Equal(t, "unknown", TypeUnknown.String())
}
