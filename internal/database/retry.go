package database

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gogotex/docshare/pkg/logger"
)

// Retry runs op up to attempts times with a fixed delay between tries. It is
// meant for the one-time startup connection, not for request paths.
func Retry(ctx context.Context, what string, attempts int, delay time.Duration, op func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewConstantBackOff(delay), uint64(attempts-1)), ctx)
	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		return op(ctx)
	}, b, func(err error, wait time.Duration) {
		logger.Warnf("%s attempt %d/%d failed, retrying in %s: %v", what, attempt, attempts, wait, err)
	})
}
