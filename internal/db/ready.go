package db

import (
	"context"
	"fmt"
	"time"
)

// readyPollInterval is the gap between readiness probes.
const readyPollInterval = 100 * time.Millisecond

// WaitForReady polls p until it answers or timeout expires.
func WaitForReady(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Ping(ctx); err == nil {
		return nil
	}

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var lastErr error
	for {
		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("timeout waiting for database: %w (last error: %v)", ctx.Err(), lastErr)
			}
			return fmt.Errorf("timeout waiting for database: %w", ctx.Err())
		case <-ticker.C:
			lastErr = p.Ping(ctx)
			if lastErr == nil {
				return nil
			}
		}
	}
}
