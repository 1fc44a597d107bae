/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"fmt"

	"github.com/google/go-github/v84/github"
)

// GetIssue fetches a single issue. A missing issue is valid absence: the
// returned issue is nil and the error is nil.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error) {
	issue, err := execute(ctx, c, fmt.Sprintf("GET /repos/%s/%s/issues/%d", owner, repo, number),
		func() (*github.Issue, *github.Response, error) {
			return c.gh.Issues.Get(ctx, owner, repo, number)
		})
	if IsNotFound(err) {
		return nil, nil
	}
	return issue, err
}

// ListOpenIssues enumerates all open issues carrying the given label,
// following pagination. The result is a snapshot at call time.
func (c *Client) ListOpenIssues(ctx context.Context, owner, repo, label string) ([]*github.Issue, error) {
	opts := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	if label != "" {
		opts.Labels = []string{label}
	}

	var all []*github.Issue
	for {
		var next int
		issues, err := execute(ctx, c, fmt.Sprintf("GET /repos/%s/%s/issues", owner, repo),
			func() ([]*github.Issue, *github.Response, error) {
				issues, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
				if resp != nil {
					next = resp.NextPage
				}
				return issues, resp, err
			})
		if err != nil {
			return nil, err
		}
		all = append(all, issues...)
		if next == 0 {
			break
		}
		opts.ListOptions.Page = next
	}
	return all, nil
}

// PostComment posts a plain-text comment on an issue.
func (c *Client) PostComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, err := execute(ctx, c, fmt.Sprintf("POST /repos/%s/%s/issues/%d/comments", owner, repo, number),
		func() (*github.IssueComment, *github.Response, error) {
			return c.gh.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
				Body: github.Ptr(body),
			})
		})
	return err
}

// CloseIssue transitions an issue to the closed state.
func (c *Client) CloseIssue(ctx context.Context, owner, repo string, number int) error {
	_, err := execute(ctx, c, fmt.Sprintf("PATCH /repos/%s/%s/issues/%d", owner, repo, number),
		func() (*github.Issue, *github.Response, error) {
			return c.gh.Issues.Edit(ctx, owner, repo, number, &github.IssueRequest{
				State: github.Ptr("closed"),
			})
		})
	return err
}
