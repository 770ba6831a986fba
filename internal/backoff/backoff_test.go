package backoff

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func stddev(durs []time.Duration) time.Duration {
	if len(durs) == 0 {
		return 0
	}
	vals := make([]float64, len(durs))
	for i, d := range durs {
		vals[i] = float64(d) / float64(time.Second)
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	var varSum float64
	for _, v := range vals {
		d := v - mean
		varSum += d * d
	}

	return time.Duration(math.Sqrt(varSum/float64(len(vals))) * float64(time.Second))
}

// step advances the generator without sleeping.
func step(b *Backoff) {
	b.count++
	b.next = b.advance(b.next)
}

func TestBackoff_StartsAtMinimum(t *testing.T) {
	b := New(time.Second, 5*time.Minute)

	require.Equal(t, uint64(0), b.Count())
	require.Equal(t, time.Second, b.NextDelay())
	require.Equal(t, time.Second, b.NextDelay(), "NextDelay must be stable between waits")
}

func TestBackoff_NonDecreasingWithinBounds(t *testing.T) {
	minDelay := 200 * time.Millisecond
	maxDelay := 5 * time.Second
	b := New(minDelay, maxDelay, WithSeed(42))

	prev := b.NextDelay()
	for i := 0; i < 200; i++ {
		step(b)
		next := b.NextDelay()
		require.GreaterOrEqual(t, next, prev)
		require.GreaterOrEqual(t, next, minDelay)
		require.LessOrEqual(t, next, maxDelay)
		prev = next
	}
	require.Equal(t, uint64(200), b.Count())
	require.Equal(t, maxDelay, b.NextDelay(), "sequence should saturate at the cap")
}

func TestBackoff_Reset(t *testing.T) {
	b := New(100*time.Millisecond, time.Minute, WithSeed(7))
	for i := 0; i < 10; i++ {
		step(b)
	}
	require.Greater(t, b.NextDelay(), 100*time.Millisecond)

	b.Reset()
	require.Equal(t, uint64(0), b.Count())
	require.Equal(t, 100*time.Millisecond, b.NextDelay())
}

func TestBackoff_WaitAdvances(t *testing.T) {
	b := New(5*time.Millisecond, 50*time.Millisecond, WithSeed(1))

	start := time.Now()
	require.NoError(t, b.Wait(context.Background()))
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
	require.Equal(t, uint64(1), b.Count())
	require.GreaterOrEqual(t, b.NextDelay(), 5*time.Millisecond)
}

func TestBackoff_WaitCancelled(t *testing.T) {
	b := New(time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := b.Wait(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, uint64(0), b.Count(), "cancelled wait must not advance")
	require.Equal(t, time.Hour, b.NextDelay())
}

func TestBackoff_ConfigGuards(t *testing.T) {
	b := New(0, 0)
	require.Equal(t, 50*time.Millisecond, b.NextDelay())

	b = New(time.Second, time.Millisecond)
	step(b)
	require.Equal(t, time.Second, b.NextDelay(), "max below min is raised to min")

	b = New(time.Second, time.Minute, WithMultiplier(0.5), WithSeed(3))
	require.InDelta(t, 1.0, b.mult, 0)
}

func TestJitterBackoff_CapLessThanBase(t *testing.T) {
	base := 200 * time.Millisecond
	capDur := 100 * time.Millisecond
	rng := newRetryRNG(1)

	require.Equal(t, capDur, jitterBackoff(0, base, 1.6, capDur, rng))
	require.Equal(t, capDur, jitterBackoff(base, base, 1.6, capDur, rng))
}

func TestJitterBackoff_VarianceAcrossSeeds(t *testing.T) {
	const seeds = 5
	const steps = 6
	lasts := make([]time.Duration, 0, seeds)
	for s := int64(1); s <= seeds; s++ {
		b := New(200*time.Millisecond, time.Minute, WithSeed(s))
		for i := 0; i < steps; i++ {
			step(b)
		}
		lasts = append(lasts, b.NextDelay())
	}

	require.GreaterOrEqual(t, stddev(lasts), 50*time.Millisecond, "expected jitter across seeds")
}
