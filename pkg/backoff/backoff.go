// Package backoff computes retry delays for calls to external services.
package backoff

import (
	"context"
	"math/rand"
	"time"
)

// Strategy defines how to calculate the next wait time.
type Strategy interface {
	Next(attempt int) time.Duration
}

// Exponential implements exponential backoff with jitter.
type Exponential struct {
	Base   time.Duration
	Max    time.Duration
	Factor float64
	Jitter float64 // 0.0 to 1.0
}

// Default returns the strategy used for catalog and API retries.
// Base: 500ms, Max: 10s, Factor: 2.0, Jitter: 0.2
func Default() *Exponential {
	return &Exponential{
		Base:   500 * time.Millisecond,
		Max:    10 * time.Second,
		Factor: 2.0,
		Jitter: 0.2,
	}
}

// Next calculates the wait duration for the given attempt (0-based).
func (b *Exponential) Next(attempt int) time.Duration {
	if attempt < 0 {
		return b.Base
	}

	delay := float64(b.Base)
	for i := 0; i < attempt; i++ {
		delay *= b.Factor
	}

	if delay > float64(b.Max) {
		delay = float64(b.Max)
	}

	// delay * (1 +/- Jitter)
	if b.Jitter > 0 {
		jitterFactor := (rand.Float64()*2 - 1) * b.Jitter
		delay += delay * jitterFactor
	}

	if delay < 0 {
		return 0
	}
	return time.Duration(delay)
}

// Sleep waits for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
