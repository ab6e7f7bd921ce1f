package main

import (
	"context"
	"fmt"

	"github.com/aniladanir/retry"
	"go.uber.org/zap"
)

// withRetry calls fn until it succeeds or attempts run out.
func withRetry(ctx context.Context, logger *zap.Logger, name string, attempts int, fn func() error) error {
	retrier, err := retry.New(retry.WithMaxAttemps(attempts))
	if err != nil {
		return fmt.Errorf("failed to initialize retrier: %w", err)
	}

	var lastErr error
	ok := <-retrier.Retry(ctx, func(attempt int) bool {
		if lastErr = fn(); lastErr != nil {
			logger.Warn("Dependency not ready",
				zap.String("dependency", name),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			return false
		}
		return true
	}, true)

	if !ok {
		return fmt.Errorf("%s unavailable after %d attempts: %w", name, attempts, lastErr)
	}
	return nil
}
