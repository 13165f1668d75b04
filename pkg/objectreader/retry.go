package objectreader

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/deltakit/deltakit/pkg/deltaerr"
	"github.com/deltakit/deltakit/pkg/log"
	"github.com/deltakit/deltakit/pkg/metrics"
)

const (
	maxRetryAttempts  = 4
	maxRetryElapsed   = 30 * time.Second
	retryInitialDelay = 200 * time.Millisecond
)

// isTransient reports whether err is a Network-kind IoError worth retrying.
// NotFound, Forbidden, and Malformed never retry.
func isTransient(err error) bool {
	var de *deltaerr.Error
	if !errors.As(err, &de) {
		return false
	}
	return de.Kind == deltaerr.IoError && de.IOKind == deltaerr.Network
}

// withRetry runs fn with bounded exponential backoff, retrying only
// transient Network errors. Every attempt is tagged with a request ID for
// correlating retry log lines.
func withRetry[T any](ctx context.Context, backendName, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	reqID := uuid.NewString()
	logger := log.WithComponent("objectreader").With().Str("backend", backendName).Str("op", op).Str("request_id", reqID).Logger()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = retryInitialDelay
	bo.MaxElapsedTime = maxRetryElapsed
	bounded := backoff.WithMaxRetries(bo, maxRetryAttempts)
	withCtx := backoff.WithContext(bounded, ctx)

	timer := metrics.NewTimer()
	var result T
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		metrics.ObjectRequestsTotal.WithLabelValues(backendName, op).Inc()
		r, ferr := fn(ctx)
		if ferr == nil {
			result = r
			return nil
		}
		if !isTransient(ferr) {
			return backoff.Permanent(ferr)
		}
		metrics.ObjectRetriesTotal.WithLabelValues(backendName).Inc()
		logger.Debug().Int("attempt", attempt).Err(ferr).Msg("retrying transient object read")
		return ferr
	}, withCtx)
	metrics.ObjectRequestDuration.WithLabelValues(backendName, op).Observe(timer.Duration().Seconds())

	if err != nil {
		var permErr *backoff.PermanentError
		if errors.As(err, &permErr) {
			return result, permErr.Err
		}
		return result, err
	}
	return result, nil
}
