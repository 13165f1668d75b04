package objectreader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deltakit/deltakit/pkg/deltaerr"
)

func TestIsTransient(t *testing.T) {
	assert.True(t, isTransient(deltaerr.IO(deltaerr.Network, "timeout", nil)))
	assert.False(t, isTransient(deltaerr.IO(deltaerr.NotFound, "missing", nil)))
	assert.False(t, isTransient(errors.New("plain")))
}

func TestWithRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	result, err := withRetry(context.Background(), "test", "op", func(ctx context.Context) (string, error) {
		attempts++
		if attempts < 3 {
			return "", deltaerr.IO(deltaerr.Network, "flaky", nil)
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result)
	assert.Equal(t, 3, attempts)
}

func TestWithRetry_PermanentFailsImmediately(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), "test", "op", func(ctx context.Context) (string, error) {
		attempts++
		return "", deltaerr.IO(deltaerr.NotFound, "missing", nil)
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestWithRetry_ExhaustsRetries(t *testing.T) {
	attempts := 0
	_, err := withRetry(context.Background(), "test", "op", func(ctx context.Context) (string, error) {
		attempts++
		return "", deltaerr.IO(deltaerr.Network, "always flaky", nil)
	})
	require.Error(t, err)
	assert.Equal(t, maxRetryAttempts+1, attempts)
}
