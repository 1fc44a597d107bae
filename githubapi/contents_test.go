/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/results/contents/outputs/2024-01-01/harvest_t1.json", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "main", r.URL.Query().Get("ref"))
		fmt.Fprintf(w, `{"type": "file", "encoding": "base64", "sha": "abc123", "content": %q}`,
			base64.StdEncoding.EncodeToString([]byte(`{"task_id":"t1"}`)))
	})
	c, _ := newTestClient(t, mux)

	content, sha, found, err := c.GetFile(context.Background(), "octo", "results", "outputs/2024-01-01/harvest_t1.json", "main")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "abc123", sha)
	require.JSONEq(t, `{"task_id":"t1"}`, string(content))
}

func TestGetFileAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/results/contents/missing.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})
	c, _ := newTestClient(t, mux)

	_, sha, found, err := c.GetFile(context.Background(), "octo", "results", "missing.json", "")
	require.NoError(t, err, "a not-yet-existing file is valid absence")
	require.False(t, found)
	require.Empty(t, sha)
}

func TestPutFileCreate(t *testing.T) {
	var got struct {
		Message string  `json:"message"`
		Content string  `json:"content"`
		Branch  string  `json:"branch"`
		SHA     *string `json:"sha"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/octo/results/contents/outputs/f.json", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"content": {"sha": "r1", "html_url": "https://example.com/f.json"}}`)
	})
	c, _ := newTestClient(t, mux)

	url, err := c.PutFile(context.Background(), "octo", "results", "outputs/f.json", []byte("hello"), "feat: store", "", "main")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/f.json", url)
	require.Equal(t, "feat: store", got.Message)
	require.Equal(t, "main", got.Branch)
	require.Nil(t, got.SHA, "create must omit the revision marker")

	decoded, err := base64.StdEncoding.DecodeString(got.Content)
	require.NoError(t, err)
	require.Equal(t, "hello", string(decoded), "payload is base64-encoded for transport")
}

func TestPutFileUpdateSendsRevision(t *testing.T) {
	var got struct {
		SHA *string `json:"sha"`
	}
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/octo/results/contents/outputs/f.json", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"content": {"sha": "r2", "html_url": "https://example.com/f.json"}}`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.PutFile(context.Background(), "octo", "results", "outputs/f.json", []byte("v2"), "update", "r1", "")
	require.NoError(t, err)
	require.NotNil(t, got.SHA)
	require.Equal(t, "r1", *got.SHA)
}

func TestPutFileStaleRevisionConflicts(t *testing.T) {
	var calls int
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/octo/results/contents/outputs/f.json", func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusConflict)
		fmt.Fprint(w, `{"message": "outputs/f.json does not match r0"}`)
	})
	c, rec := newTestClient(t, mux)

	_, err := c.PutFile(context.Background(), "octo", "results", "outputs/f.json", []byte("v2"), "update", "r0", "")
	require.Error(t, err)
	require.Equal(t, 1, calls, "conflicts are surfaced, not retried")
	require.Empty(t, rec.recorded())

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, "outputs/f.json", conflict.Path)
}
