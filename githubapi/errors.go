/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"errors"
	"fmt"

	"github.com/google/go-github/v84/github"
)

// APIError is the terminal failure returned once an API call has exhausted
// its retry budget or hit a non-retryable response. StatusCode is 0 for
// transport-level failures (timeouts, connection resets).
type APIError struct {
	StatusCode int
	Message    string

	err error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("github api transport failure: %v", e.err)
	}
	return fmt.Sprintf("github api failure: %d %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

// Transport reports whether the failure happened below the HTTP layer.
func (e *APIError) Transport() bool { return e.StatusCode == 0 }

// ConflictError is returned when an optimistic write is rejected because the
// file's revision moved between read and write. It is never retried
// automatically: retrying blindly could overwrite a legitimate concurrent
// update, so callers must re-fetch and decide.
type ConflictError struct {
	Path string

	err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("revision conflict writing %q: %v", e.Path, e.err)
}

func (e *ConflictError) Unwrap() error { return e.err }

// newAPIError classifies a raw go-github error into an APIError.
func newAPIError(err error) *APIError {
	var ger *github.ErrorResponse
	if errors.As(err, &ger) && ger.Response != nil {
		return &APIError{
			StatusCode: ger.Response.StatusCode,
			Message:    ger.Message,
			err:        err,
		}
	}
	var rle *github.RateLimitError
	if errors.As(err, &rle) && rle.Response != nil {
		return &APIError{
			StatusCode: rle.Response.StatusCode,
			Message:    rle.Message,
			err:        err,
		}
	}
	return &APIError{err: err}
}

// IsNotFound reports whether err represents an HTTP 404. Read paths treat
// this as valid absence rather than a failure.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

// isRetryable classifies an error as transient. Rate-limit errors are
// handled separately (they wait for the advertised reset instead of backing
// off); everything else retries only on server errors and transport
// failures.
func isRetryable(err error) bool {
	var ger *github.ErrorResponse
	if errors.As(err, &ger) {
		if ger.Response == nil {
			return false
		}
		return ger.Response.StatusCode >= 500
	}
	// Anything that never produced an HTTP response is a transport failure.
	return true
}
