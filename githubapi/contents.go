/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-github/v84/github"
)

// GetFile reads a file from a repository. Absence is not an error: found is
// false and the error is nil when the file does not exist. The returned sha
// is the file's current revision marker, to be passed back to PutFile.
func (c *Client) GetFile(ctx context.Context, owner, repo, path, branch string) (content []byte, sha string, found bool, err error) {
	var opts *github.RepositoryContentGetOptions
	if branch != "" {
		opts = &github.RepositoryContentGetOptions{Ref: branch}
	}
	file, err := execute(ctx, c, fmt.Sprintf("GET /repos/%s/%s/contents/%s", owner, repo, path),
		func() (*github.RepositoryContent, *github.Response, error) {
			file, _, resp, err := c.gh.Repositories.GetContents(ctx, owner, repo, path, opts)
			return file, resp, err
		})
	if IsNotFound(err) {
		return nil, "", false, nil
	}
	if err != nil {
		return nil, "", false, err
	}
	if file == nil {
		return nil, "", false, fmt.Errorf("%q is a directory, not a file", path)
	}
	decoded, err := file.GetContent()
	if err != nil {
		return nil, "", false, fmt.Errorf("decoding %q: %w", path, err)
	}
	return []byte(decoded), file.GetSHA(), true, nil
}

// PutFile writes a file's full content under the given commit message and
// returns the committed content's HTML URL.
//
// An empty sha signals "create new"; a non-empty sha must be the most
// recently observed revision marker for the path. A revision mismatch is
// surfaced as *ConflictError and never retried here.
func (c *Client) PutFile(ctx context.Context, owner, repo, path string, content []byte, message, sha, branch string) (string, error) {
	opts := &github.RepositoryContentFileOptions{
		Message: github.Ptr(message),
		Content: content,
	}
	if branch != "" {
		opts.Branch = github.Ptr(branch)
	}

	op := fmt.Sprintf("PUT /repos/%s/%s/contents/%s", owner, repo, path)
	var resp *github.RepositoryContentResponse
	var err error
	if sha == "" {
		resp, err = execute(ctx, c, op, func() (*github.RepositoryContentResponse, *github.Response, error) {
			resp, ghResp, err := c.gh.Repositories.CreateFile(ctx, owner, repo, path, opts)
			return resp, ghResp, err
		})
	} else {
		opts.SHA = github.Ptr(sha)
		resp, err = execute(ctx, c, op, func() (*github.RepositoryContentResponse, *github.Response, error) {
			resp, ghResp, err := c.gh.Repositories.UpdateFile(ctx, owner, repo, path, opts)
			return resp, ghResp, err
		})
	}
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && isRevisionConflict(apiErr.StatusCode) {
			return "", &ConflictError{Path: path, err: err}
		}
		return "", err
	}
	return resp.GetContent().GetHTMLURL(), nil
}

// isRevisionConflict reports whether a contents-API status code signals that
// the file's revision moved between read and write. GitHub answers 409 for a
// stale sha and 422 when no sha was supplied but the file already exists.
func isRevisionConflict(status int) bool {
	return status == http.StatusConflict || status == http.StatusUnprocessableEntity
}
