package services

import (
	"context"
	"log/slog"
	"time"
)

// DefaultMaxRetries is the number of retries applied to each stage call on
// top of the initial attempt.
const DefaultMaxRetries = 2

// RetryOptions controls the retry helper. A zero value uses the defaults:
// two retries with 2s/4s exponential backoff. MaxRetries below zero disables
// retries entirely.
type RetryOptions struct {
	MaxRetries int
	BaseDelay  time.Duration
	Operation  string
}

func (o RetryOptions) normalized() RetryOptions {
	if o.MaxRetries == 0 {
		o.MaxRetries = DefaultMaxRetries
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = time.Second
	}
	if o.Operation == "" {
		o.Operation = "operation"
	}
	return o
}

// Retry invokes fn, retrying on failures that classify as recoverable with
// exponential backoff (BaseDelay * 2^attempt). Non-recoverable failures and
// context cancellation end the loop immediately. The last error is returned
// when all attempts exhaust.
func Retry(ctx context.Context, logger *slog.Logger, opts RetryOptions, fn func(context.Context) error) error {
	opts = opts.normalized()

	var lastErr error
	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := opts.BaseDelay << attempt
			if logger != nil {
				logger.Warn("retrying after failure",
					slog.String("operation", opts.Operation),
					slog.Int("attempt", attempt),
					slog.Duration("backoff", delay),
					slog.Any("error", lastErr),
				)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if !IsRecoverable(lastErr) {
			return lastErr
		}
	}
	return lastErr
}
