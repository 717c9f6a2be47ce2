package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryWithBackoff runs fn up to maxRetries times with quadratic backoff.
// maxRetries below 1 means a single attempt.
func RetryWithBackoff(ctx context.Context, maxRetries int, fn func() error, logger *Logger) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt*attempt) * time.Second
			logger.Warn("Retrying (attempt %d/%d) after %v...", attempt+1, maxRetries, backoff)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
		if err := fn(); err != nil {
			lastErr = err
			if maxRetries > 1 {
				logger.Error("Attempt %d failed: %v", attempt+1, err)
			}
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}
		return nil
	}
	if maxRetries == 1 {
		return lastErr
	}
	return fmt.Errorf("all %d attempts failed, last error: %w", maxRetries, lastErr)
}
