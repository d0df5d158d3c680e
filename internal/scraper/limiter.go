package scraper

import (
	"context"
	"time"
)

// Limiter paces page requests. Wait is called before every fetch.
type Limiter interface {
	Wait(ctx context.Context) error
}

// FixedDelay sleeps for Delay before every request, including the first
type FixedDelay struct {
	Delay time.Duration
}

// Wait blocks for the delay or until ctx is done
func (f FixedDelay) Wait(ctx context.Context) error {
	timer := time.NewTimer(f.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// NoDelay never sleeps; it only reports context cancellation
type NoDelay struct{}

// Wait returns ctx.Err()
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}
