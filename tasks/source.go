/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tasks

import (
	"context"
	"fmt"

	"chainguard.dev/harvester/githubapi"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// DefaultLabel filters the tracker repository's open issues to queued work.
const DefaultLabel = "in-progress"

// IssueLister is the slice of the API client the source needs.
type IssueLister interface {
	ListOpenIssues(ctx context.Context, owner, repo, label string) ([]*github.Issue, error)
}

// Source enumerates pending task descriptors from a tracker repository.
type Source struct {
	lister IssueLister
	owner  string
	repo   string
	label  string
}

// NewSource constructs a Source over the given "owner/name" tracker
// repository. An empty label falls back to DefaultLabel.
func NewSource(lister IssueLister, repository, label string) (*Source, error) {
	owner, repo, err := githubapi.SplitRepo(repository)
	if err != nil {
		return nil, fmt.Errorf("tracker repository: %w", err)
	}
	if label == "" {
		label = DefaultLabel
	}
	return &Source{lister: lister, owner: owner, repo: repo, label: label}, nil
}

// ListPending returns a snapshot of the pending tasks: open issues carrying
// the source's label that classify as tasks. Issues that are not tasks are
// silently excluded; malformed task bodies are included as TypeUnknown
// descriptors so the executor can report them.
func (s *Source) ListPending(ctx context.Context) ([]Descriptor, error) {
	issues, err := s.lister.ListOpenIssues(ctx, s.owner, s.repo, s.label)
	if err != nil {
		return nil, fmt.Errorf("listing open issues: %w", err)
	}

	log := clog.FromContext(ctx)
	var pending []Descriptor
	for _, issue := range issues {
		if issue.IsPullRequest() {
			continue
		}
		if !IsTask(issue) {
			continue
		}
		d := Parse(issue)
		if d.ParseErr != nil {
			log.With("issue", d.IssueNumber).With("error", d.ParseErr.Error()).
				Warn("Task body failed to parse, queueing for failure report")
		}
		pending = append(pending, d)
	}
	log.With("label", s.label).With("pending", len(pending)).Info("Enumerated pending tasks")
	return pending, nil
}
