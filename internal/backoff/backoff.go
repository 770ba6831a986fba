package backoff

import (
	"context"
	rand "math/rand/v2"
	"time"
)

// DefaultMultiplier is the growth factor applied to the previous delay.
const DefaultMultiplier = 2.0

// Backoff generates jittered exponential reconnect delays.
//
// Backoff is not safe for concurrent use. A listener hands its generator from one
// worker goroutine to the next, so only one goroutine ever touches it at a time.
type Backoff struct {
	minDelay time.Duration
	maxDelay time.Duration
	mult     float64
	rng      *rand.Rand

	count uint64
	next  time.Duration
}

// Option configures a Backoff.
type Option func(*Backoff)

// WithMultiplier sets the growth factor. Values below 1.0 fall back to 1.0 (no growth).
func WithMultiplier(mult float64) Option {
	return func(b *Backoff) {
		b.mult = mult
	}
}

// WithSeed makes jitter deterministic. A zero seed uses the package-level PRNG.
func WithSeed(seed int64) Option {
	return func(b *Backoff) {
		b.rng = newRetryRNG(seed)
	}
}

// New creates a Backoff whose delays stay within [minDelay, maxDelay].
//
// Parameters:
//   - minDelay: First delay and lower bound (defaults to 50ms when <= 0)
//   - maxDelay: Upper bound; values below minDelay are raised to minDelay
//   - opts: Optional multiplier and seed
//
// Returns:
//   - *Backoff: Generator positioned at its first delay
func New(minDelay, maxDelay time.Duration, opts ...Option) *Backoff {
	if minDelay <= 0 {
		minDelay = 50 * time.Millisecond
	}
	if maxDelay < minDelay {
		maxDelay = minDelay
	}

	b := &Backoff{
		minDelay: minDelay,
		maxDelay: maxDelay,
		mult:     DefaultMultiplier,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.mult < 1.0 {
		b.mult = 1.0
	}
	b.next = minDelay

	return b
}

// Count returns the number of waits completed since creation or the last Reset.
func (b *Backoff) Count() uint64 {
	return b.count
}

// NextDelay returns the delay the next Wait will sleep.
//
// The value is stable until Wait completes or Reset is called.
func (b *Backoff) NextDelay() time.Duration {
	return b.next
}

// Wait sleeps for NextDelay, then advances the sequence.
//
// If ctx is cancelled first, Wait returns ctx.Err() and the sequence is left unchanged.
func (b *Backoff) Wait(ctx context.Context) error {
	timer := time.NewTimer(b.next)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}

	b.count++
	b.next = b.advance(b.next)

	return nil
}

// Reset returns the generator to its minimum delay and zero count.
func (b *Backoff) Reset() {
	b.count = 0
	b.next = b.minDelay
}

// advance computes the delay following prev, never smaller than prev.
func (b *Backoff) advance(prev time.Duration) time.Duration {
	next := jitterBackoff(prev, b.minDelay, b.mult, b.maxDelay, b.rng)
	if next < prev {
		next = prev
	}

	return next
}

// jitterBackoff implements decorrelated jitter backoff with a cap.
// See: https://aws.amazon.com/blogs/architecture/exponential-backoff-and-jitter/
//
// Given previous delay (prev), computes next delay as:
//
//	next = min(cap, base + rand(prev*multiplier - base))
//
// Behavior:
//   - If prev <= 0, start from base
//   - Cap <= base returns cap
func jitterBackoff(prev, base time.Duration, mult float64, capDur time.Duration, rng *rand.Rand) time.Duration {
	if capDur > 0 && capDur < base {
		return capDur
	}
	if prev <= 0 {
		return base
	}

	span := time.Duration(float64(prev)*mult) - base
	if span <= 0 {
		span = base
	}

	var jitter int64
	if rng != nil {
		jitter = rng.Int64N(int64(span))
	} else {
		jitter = rand.Int64N(int64(span)) //nolint:gosec // non-crypto backoff jitter
	}

	next := base + time.Duration(jitter)
	if capDur > 0 && next > capDur {
		return capDur
	}

	return next
}

// newRetryRNG returns a deterministic RNG only when a non-zero seed is provided.
// When seed == 0 it returns nil so callers can use the package-level PRNG instead.
//
//nolint:gosec
func newRetryRNG(seed int64) *rand.Rand {
	if seed == 0 {
		return nil
	}
	s1 := uint64(seed)
	s2 := s1 ^ 0x9e3779b97f4a7c15

	return rand.New(rand.NewPCG(s1, s2))
}
