/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package resultstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/harvester/githubapi"
	"github.com/chainguard-dev/clog"
)

const defaultBranch = "main"

// Store writes files to a single results repository.
type Store struct {
	client *githubapi.Client
	owner  string
	repo   string
	branch string
}

// Option configures a Store.
type Option func(*Store)

// WithBranch overrides the branch written to (default "main").
func WithBranch(branch string) Option {
	return func(s *Store) { s.branch = branch }
}

// New constructs a Store bound to the given "owner/name" repository.
func New(client *githubapi.Client, repository string, opts ...Option) (*Store, error) {
	owner, repo, err := githubapi.SplitRepo(repository)
	if err != nil {
		return nil, fmt.Errorf("results repository: %w", err)
	}
	s := &Store{
		client: client,
		owner:  owner,
		repo:   repo,
		branch: defaultBranch,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Put commits the full content at path under the given message and returns a
// locator (HTML URL) for the committed file.
//
// The current revision marker is read first; absence means "create new". If
// the revision moves between read and write, the remote rejects the write
// and the resulting *githubapi.ConflictError is surfaced unretried — the
// caller decides whether re-fetching and overwriting is legitimate.
func (s *Store) Put(ctx context.Context, path string, content []byte, message string) (string, error) {
	_, sha, found, err := s.client.GetFile(ctx, s.owner, s.repo, path, s.branch)
	if err != nil {
		return "", fmt.Errorf("reading current revision of %q: %w", path, err)
	}

	log := clog.FromContext(ctx).With("path", path)
	if found {
		log.With("revision", sha).Info("Updating existing file")
	} else {
		log.Info("Creating new file")
	}

	locator, err := s.client.PutFile(ctx, s.owner, s.repo, path, content, message, sha, s.branch)
	if err != nil {
		return "", err
	}
	return locator, nil
}

// Get reads the file at path. Absence is valid: found is false, error nil.
func (s *Store) Get(ctx context.Context, path string) (content []byte, found bool, err error) {
	content, _, found, err = s.client.GetFile(ctx, s.owner, s.repo, path, s.branch)
	return content, found, err
}

// ResultPath derives the deterministic storage path for a task result. The
// same (date, type, id) always maps to the same path, which is what makes
// re-running a task after a partial failure safe.
func ResultPath(date time.Time, taskType, taskID string) string {
	return fmt.Sprintf("outputs/%s/%s_%s.json", date.Format("2006-01-02"), taskType, sanitize(taskID))
}

// sanitize replaces path-unsafe runes in a task id with underscores.
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '.':
			return r
		default:
			return '_'
		}
	}, id)
}
