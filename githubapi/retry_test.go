/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRetryConfigValidate(t *testing.T) {
	require.NoError(t, DefaultRetryConfig().Validate())

	for name, cfg := range map[string]RetryConfig{
		"negative retries": {MaxRetries: -1},
		"negative base":    {BaseBackoff: -time.Second},
		"negative max":     {MaxBackoff: -time.Second},
		"negative jitter":  {MaxJitter: -time.Millisecond},
	} {
		require.Error(t, cfg.Validate(), name)
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	cfg := RetryConfig{BaseBackoff: time.Second, MaxBackoff: 5 * time.Second}

	require.Equal(t, 1*time.Second, cfg.backoff(0))
	require.Equal(t, 2*time.Second, cfg.backoff(1))
	require.Equal(t, 4*time.Second, cfg.backoff(2))
	require.Equal(t, 5*time.Second, cfg.backoff(3), "capped at MaxBackoff")
}

func TestBackoffJitterBounded(t *testing.T) {
	cfg := RetryConfig{BaseBackoff: time.Second, MaxBackoff: time.Minute, MaxJitter: 100 * time.Millisecond}

	for range 20 {
		d := cfg.backoff(0)
		require.GreaterOrEqual(t, d, time.Second)
		require.Less(t, d, time.Second+100*time.Millisecond)
	}
}
