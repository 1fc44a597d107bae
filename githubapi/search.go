/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"

	"github.com/google/go-github/v84/github"
)

// SearchRepositories runs a repository search sorted by stars descending and
// returns at most perPage results.
func (c *Client) SearchRepositories(ctx context.Context, query string, perPage int) ([]*github.Repository, error) {
	opts := &github.SearchOptions{
		Sort:        "stars",
		Order:       "desc",
		ListOptions: github.ListOptions{PerPage: perPage},
	}
	result, err := execute(ctx, c, "GET /search/repositories",
		func() (*github.RepositoriesSearchResult, *github.Response, error) {
			return c.gh.Search.Repositories(ctx, query, opts)
		})
	if err != nil {
		return nil, err
	}
	return result.Repositories, nil
}
