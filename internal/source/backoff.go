package source

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// Backoff produces an exponential retry schedule. With zero Jitter the
// schedule is exactly Initial * Multiplier^attempt, which is what the
// fetch retry contract requires; jitter exists for callers that talk to
// shared upstreams and want to avoid retry alignment.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration // 0 means uncapped
	Multiplier float64
	Jitter     float64 // fraction of the delay, 0..1

	attempt int
}

// NewBackoff returns a deterministic doubling schedule starting at the
// given initial delay.
func NewBackoff(initial time.Duration) *Backoff {
	return &Backoff{
		Initial:    initial,
		Multiplier: 2.0,
	}
}

// Next returns the delay before the next attempt and advances the
// schedule.
func (b *Backoff) Next() time.Duration {
	delay := float64(b.Initial) * math.Pow(b.Multiplier, float64(b.attempt))
	if b.Max > 0 && delay > float64(b.Max) {
		delay = float64(b.Max)
	}
	if b.Jitter > 0 {
		delay += (rand.Float64()*2 - 1) * delay * b.Jitter
	}
	if delay < 0 {
		delay = float64(b.Initial)
	}
	b.attempt++
	return time.Duration(delay)
}

// Reset rewinds the schedule to the first attempt.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Attempt returns how many delays have been handed out.
func (b *Backoff) Attempt() int {
	return b.attempt
}

// sleep waits for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
