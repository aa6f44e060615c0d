package source

import (
	"context"

	"golang.org/x/time/rate"
)

// Throttle enforces a minimum spacing between outbound requests. With a
// rate of R requests/second each Wait blocks roughly 1/R seconds; a
// non-positive R disables throttling entirely.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle builds a throttle for perSec requests per second.
func NewThrottle(perSec float64) *Throttle {
	if perSec <= 0 {
		return &Throttle{}
	}
	// Burst 1 turns the limiter into a fixed-interval pacer.
	return &Throttle{limiter: rate.NewLimiter(rate.Limit(perSec), 1)}
}

// Wait blocks until the next request slot, or until ctx is cancelled.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}
