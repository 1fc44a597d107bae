/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package harvest

import (
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// defaultTopicPause spaces out consecutive topic searches to stay friendly
// to the search API's secondary limits.
const defaultTopicPause = time.Second

// highValueKeywords raise a repository's value score when they appear among
// its topics or description.
var highValueKeywords = []string{"ai", "automation", "saas", "api", "bot"}

// Record is one scored repository.
type Record struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	URL         string    `json:"url"`
	Description string    `json:"description"`
	Stars       int       `json:"stars"`
	Forks       int       `json:"forks"`
	Language    string    `json:"language"`
	Topics      []string  `json:"topics"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
	License     string    `json:"license,omitempty"`
	HarvestedAt time.Time `json:"harvested_at"`
	ValueScore  float64   `json:"value_score"`
}

// Searcher is the slice of the API client the harvester needs.
type Searcher interface {
	SearchRepositories(ctx context.Context, query string, perPage int) ([]*github.Repository, error)
}

// Harvester searches for repositories per topic and scores the results.
type Harvester struct {
	searcher Searcher
	pause    time.Duration
	now      func() time.Time
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithTopicPause overrides the pause between consecutive topic searches.
func WithTopicPause(d time.Duration) Option {
	return func(h *Harvester) { h.pause = d }
}

// WithClock overrides the harvested_at timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Harvester) { h.now = now }
}

// New constructs a Harvester over the given searcher.
func New(searcher Searcher, opts ...Option) *Harvester {
	h := &Harvester{
		searcher: searcher,
		pause:    defaultTopicPause,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run searches every topic in params and returns the scored records.
//
// A single topic's failure is non-fatal: the remaining topics still run and
// partial results are returned. Only when every topic fails does Run report
// an error.
func (h *Harvester) Run(ctx context.Context, params Params) ([]Record, error) {
	log := clog.FromContext(ctx)

	var records []Record
	var failed int
	var lastErr error
	for i, topic := range params.Topics {
		if i > 0 && h.pause > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(h.pause):
			}
		}

		query := buildQuery(topic, params)
		log.With("topic", topic).With("query", query).Info("Searching for repositories")
		repos, err := h.searcher.SearchRepositories(ctx, query, params.CountPerTopic)
		if err != nil {
			log.With("topic", topic).With("error", err.Error()).Warn("Topic search failed, continuing with remaining topics")
			failed++
			lastErr = err
			continue
		}

		harvestedAt := h.now().UTC()
		for _, repo := range repos {
			rec := analyze(repo, harvestedAt)
			log.With("repo", rec.FullName).With("value_score", rec.ValueScore).Info("Harvested repository")
			records = append(records, rec)
		}
	}

	if failed > 0 && failed == len(params.Topics) {
		return nil, fmt.Errorf("all %d topic searches failed, last error: %w", failed, lastErr)
	}
	return records, nil
}

// buildQuery renders the search query for one topic.
func buildQuery(topic string, params Params) string {
	return fmt.Sprintf("topic:%s stars:>%d created:>%s", topic, params.MinStars, params.CreatedAfter)
}

// analyze projects a repository into a scored Record.
func analyze(repo *github.Repository, harvestedAt time.Time) Record {
	var license string
	if repo.GetLicense() != nil {
		license = repo.GetLicense().GetName()
	}
	return Record{
		ID:          repo.GetID(),
		Name:        repo.GetName(),
		FullName:    repo.GetFullName(),
		URL:         repo.GetHTMLURL(),
		Description: repo.GetDescription(),
		Stars:       repo.GetStargazersCount(),
		Forks:       repo.GetForksCount(),
		Language:    repo.GetLanguage(),
		Topics:      repo.Topics,
		CreatedAt:   repo.GetCreatedAt().Time,
		UpdatedAt:   repo.GetUpdatedAt().Time,
		PushedAt:    repo.GetPushedAt().Time,
		License:     license,
		HarvestedAt: harvestedAt,
		ValueScore:  score(repo),
	}
}

// score computes a repository's value score: up to 50 points from stars,
// plus 20 per high-value keyword found among topics or description, capped
// at 100.
func score(repo *github.Repository) float64 {
	s := math.Min(float64(repo.GetStargazersCount())/10, 50)

	haystack := slices.Clone(repo.Topics)
	haystack = append(haystack, repo.GetDescription())
	for _, keyword := range highValueKeywords {
		if slices.ContainsFunc(haystack, func(h string) bool {
			return strings.Contains(strings.ToLower(h), keyword)
		}) {
			s += 20
		}
	}
	return math.Min(s, 100)
}
