/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package harvest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-github/v84/github"
	"github.com/stretchr/testify/require"
)

type fakeSearcher struct {
	queries  []string
	perPages []int
	results  map[string][]*github.Repository
	failures map[string]error
}

func (f *fakeSearcher) SearchRepositories(_ context.Context, query string, perPage int) ([]*github.Repository, error) {
	f.queries = append(f.queries, query)
	f.perPages = append(f.perPages, perPage)
	if err, ok := f.failures[query]; ok {
		return nil, err
	}
	return f.results[query], nil
}

func repo(id int64, fullName string, stars int, topics []string, description string) *github.Repository {
	return &github.Repository{
		ID:              github.Ptr(id),
		Name:            github.Ptr(fullName),
		FullName:        github.Ptr(fullName),
		StargazersCount: github.Ptr(stars),
		Topics:          topics,
		Description:     github.Ptr(description),
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRunPassesExactParameters(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]*github.Repository{
		"topic:x stars:>100 created:>2024-01-01": {repo(1, "a/x", 120, nil, "")},
	}}
	h := New(searcher, WithTopicPause(0))

	params := ResolveParams(payload(t, `{"topics": ["x"], "min_stars": 100, "count_per_topic": 2}`), DefaultTaskParams())
	records, err := h.Run(context.Background(), params)
	require.NoError(t, err)
	require.Len(t, records, 1)

	require.Equal(t, []string{"topic:x stars:>100 created:>2024-01-01"}, searcher.queries,
		"explicitly supplied fields must reach the search verbatim")
	require.Equal(t, []int{2}, searcher.perPages)
}

func TestRunSearchesEveryTopic(t *testing.T) {
	searcher := &fakeSearcher{results: map[string][]*github.Repository{
		"topic:ai stars:>10 created:>2024-01-01":         {repo(1, "a/ai", 100, nil, "")},
		"topic:automation stars:>10 created:>2024-01-01": {repo(2, "b/auto", 200, nil, "")},
	}}
	h := New(searcher, WithTopicPause(0))

	records, err := h.Run(context.Background(), Params{
		Topics: []string{"ai", "automation"}, MinStars: 10, CreatedAfter: "2024-01-01", CountPerTopic: 3,
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Len(t, searcher.queries, 2)
}

func TestRunSingleTopicFailureIsNonFatal(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]*github.Repository{
			"topic:b stars:>10 created:>2024-01-01": {repo(2, "x/b", 50, nil, "")},
		},
		failures: map[string]error{
			"topic:a stars:>10 created:>2024-01-01": errors.New("search exhausted retries"),
		},
	}
	h := New(searcher, WithTopicPause(0))

	records, err := h.Run(context.Background(), Params{
		Topics: []string{"a", "b"}, MinStars: 10, CreatedAfter: "2024-01-01", CountPerTopic: 3,
	})
	require.NoError(t, err, "partial results are acceptable")
	require.Len(t, records, 1)
	require.Equal(t, "x/b", records[0].FullName)
}

func TestRunAllTopicsFailingIsAnError(t *testing.T) {
	searcher := &fakeSearcher{failures: map[string]error{
		"topic:a stars:>10 created:>2024-01-01": errors.New("boom"),
		"topic:b stars:>10 created:>2024-01-01": errors.New("boom"),
	}}
	h := New(searcher, WithTopicPause(0))

	_, err := h.Run(context.Background(), Params{
		Topics: []string{"a", "b"}, MinStars: 10, CreatedAfter: "2024-01-01", CountPerTopic: 3,
	})
	require.ErrorContains(t, err, "all 2 topic searches failed")
}

func TestAnalyzeRecordFields(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	r := repo(7, "octo/widget", 250, []string{"tooling"}, "a widget")
	r.HTMLURL = github.Ptr("https://github.com/octo/widget")
	r.Language = github.Ptr("Go")
	r.ForksCount = github.Ptr(12)
	r.License = &github.License{Name: github.Ptr("Apache License 2.0")}
	r.CreatedAt = &github.Timestamp{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)}

	rec := analyze(r, now)
	require.Equal(t, int64(7), rec.ID)
	require.Equal(t, "octo/widget", rec.FullName)
	require.Equal(t, "https://github.com/octo/widget", rec.URL)
	require.Equal(t, "Go", rec.Language)
	require.Equal(t, 12, rec.Forks)
	require.Equal(t, "Apache License 2.0", rec.License)
	require.Equal(t, now, rec.HarvestedAt)
	require.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), rec.CreatedAt)
}

func TestScore(t *testing.T) {
	for _, tc := range []struct {
		name string
		repo *github.Repository
		want float64
	}{{
		name: "stars only, capped at 50",
		repo: repo(1, "a/b", 10000, nil, "simple tool"),
		want: 50,
	}, {
		name: "stars below cap",
		repo: repo(2, "a/c", 120, nil, "simple tool"),
		want: 12,
	}, {
		name: "keyword in topics",
		repo: repo(3, "a/d", 500, []string{"ai"}, "something"),
		want: 70,
	}, {
		name: "keyword in description",
		repo: repo(4, "a/e", 0, nil, "an automation helper"),
		want: 20,
	}, {
		name: "total capped at 100",
		repo: repo(5, "a/f", 10000, []string{"ai", "automation", "saas"}, "api bot"),
		want: 100,
	}} {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, score(tc.repo))
		})
	}
}
