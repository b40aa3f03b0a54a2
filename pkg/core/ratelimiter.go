package core

import (
	"context"
	"errors"
	"math"
	"time"
)

// RateLimiter gates outbound API calls.
type RateLimiter interface {
	Wait(ctx context.Context) error
}

type bucketLimiter struct {
	tokens chan struct{}
	stop   chan struct{}
}

// NewRateLimiter returns a token-bucket limiter refilled at rps, with the
// given burst capacity, plus a stop function that releases the refill
// goroutine.
func NewRateLimiter(rps float64, burst int) (RateLimiter, func(), error) {
	if rps <= 0 {
		return nil, func() {}, errors.New("rate limiter: rps must be > 0")
	}
	if burst <= 0 {
		burst = 1
	}

	interval := time.Duration(math.Round(float64(time.Second) / rps))
	if interval <= 0 {
		interval = time.Nanosecond
	}

	b := &bucketLimiter{
		tokens: make(chan struct{}, burst),
		stop:   make(chan struct{}),
	}
	for i := 0; i < burst; i++ {
		b.tokens <- struct{}{}
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-b.stop:
				return
			case <-ticker.C:
				select {
				case b.tokens <- struct{}{}:
				default:
				}
			}
		}
	}()

	return b, func() { close(b.stop) }, nil
}

func (b *bucketLimiter) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}
