package fetcher

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IshaanNene/CompareGoat/internal/config"
	"github.com/IshaanNene/CompareGoat/internal/observability"
	"github.com/IshaanNene/CompareGoat/internal/types"
)

// Retrier wraps a Fetcher with the bounded retry policy: up to Attempts
// tries, sleeping BackoffBase*(n+1) after the n-th failed try. Only
// retryable FetchErrors are tried again.
type Retrier struct {
	next        Fetcher
	attempts    int
	backoffBase time.Duration
	metrics     *observability.Metrics
	logger      *slog.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// NewRetrier wraps next with the retry policy from cfg.
func NewRetrier(next Fetcher, cfg *config.FetcherConfig, metrics *observability.Metrics, logger *slog.Logger) *Retrier {
	attempts := cfg.RetryCount
	if attempts < 1 {
		attempts = 1
	}
	return &Retrier{
		next:        next,
		attempts:    attempts,
		backoffBase: cfg.BackoffBase,
		metrics:     metrics,
		logger:      logger.With("component", "retrier"),
		sleep:       Sleep,
	}
}

// Fetch runs the wrapped fetcher until it succeeds, returns a permanent
// error, or runs out of attempts.
func (r *Retrier) Fetch(ctx context.Context, req *types.Request) (*types.Response, error) {
	var lastErr error
	for attempt := 0; attempt < r.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, &types.FetchError{URL: req.URLString(), Err: err, Attempts: attempt}
		}

		resp, err := r.next.Fetch(ctx, req)
		if err == nil {
			r.metrics.PagesFetched.Add(1)
			r.metrics.BytesFetched.Add(int64(len(resp.Body)))
			return resp, nil
		}
		lastErr = err

		var fe *types.FetchError
		if !errors.As(err, &fe) || !fe.IsRetryable() {
			r.metrics.FetchFailures.Add(1)
			if fe != nil {
				fe.Attempts = attempt + 1
			}
			return nil, err
		}

		if attempt == r.attempts-1 {
			break
		}

		wait := r.backoffBase * time.Duration(attempt+1)
		if fe.RetryAfter > wait {
			wait = fe.RetryAfter
		}
		r.metrics.FetchRetries.Add(1)
		r.logger.Debug("retrying fetch",
			"url", req.URLString(),
			"attempt", attempt+1,
			"wait", wait,
			"error", err,
		)
		if err := r.sleep(ctx, wait); err != nil {
			r.metrics.FetchFailures.Add(1)
			return nil, &types.FetchError{URL: req.URLString(), Err: err, Attempts: attempt + 1}
		}
	}

	r.metrics.FetchFailures.Add(1)
	fe := &types.FetchError{
		URL:      req.URLString(),
		Err:      errors.Join(types.ErrMaxRetries, lastErr),
		Attempts: r.attempts,
	}
	var last *types.FetchError
	if errors.As(lastErr, &last) {
		fe.StatusCode = last.StatusCode
	}
	return nil, fe
}

// Close closes the wrapped fetcher.
func (r *Retrier) Close() error { return r.next.Close() }

// Type returns the wrapped fetcher's type.
func (r *Retrier) Type() string { return r.next.Type() }
