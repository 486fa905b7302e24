package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultInitialBackoff = time.Second
	defaultMaxBackoff     = 60 * time.Second
)

// RetryGenerator retries a Generator with randomized exponential backoff
type RetryGenerator struct {
	next           Generator
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         zerolog.Logger
	sleep          func(ctx context.Context, d time.Duration) error
}

// NewRetryGenerator wraps next with retries. With maxRetries <= 0 next is
// returned unchanged, which is the default deployment.
func NewRetryGenerator(next Generator, maxRetries int, initialBackoff time.Duration, logger zerolog.Logger) Generator {
	if maxRetries <= 0 {
		return next
	}
	if initialBackoff <= 0 {
		initialBackoff = defaultInitialBackoff
	}
	return &RetryGenerator{
		next:           next,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		maxBackoff:     defaultMaxBackoff,
		logger:         logger,
		sleep:          sleepContext,
	}
}

// Generate calls the wrapped generator until it succeeds or retries run out
func (g *RetryGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	backoff := g.initialBackoff
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(rand.Int64N(int64(backoff)) + 1)
			g.logger.Warn().
				Err(lastErr).
				Int("attempt", attempt).
				Dur("backoff", wait).
				Msg("Retrying generation call")
			if err := g.sleep(ctx, wait); err != nil {
				return "", err
			}
			backoff *= 2
			if backoff > g.maxBackoff {
				backoff = g.maxBackoff
			}
		}

		text, err := g.next.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err
	}

	return "", fmt.Errorf("generation failed after %d attempts: %w", g.maxRetries+1, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
