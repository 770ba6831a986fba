package ntfysub

import (
	"context"
	"testing"
	"time"

	"github.com/arloliu/ntfysub/internal/logger"
	ntfytest "github.com/arloliu/ntfysub/testing"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T) *Pool {
	t.Helper()

	p := NewPool(WithLogger(logger.NewTest(t)))
	t.Cleanup(func() {
		p.Range(func(_ string, l *Listener) bool {
			drain(l)
			return true
		})
		ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
		defer cancel()
		require.NoError(t, p.Shutdown(ctx))
	})

	return p
}

func TestPool_SubscribeAndLookup(t *testing.T) {
	srv := ntfytest.NewStreamServer(t, ntfytest.Response{Hold: true}, ntfytest.Response{Hold: true})
	p := newTestPool(t)

	cfgA := testListenerConfig(srv)
	cfgA.Topic = "alpha"
	cfgB := testListenerConfig(srv)
	cfgB.Topic = "beta"

	a, err := p.Subscribe(cfgA)
	require.NoError(t, err)
	b, err := p.Subscribe(cfgB)
	require.NoError(t, err)
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, 2, p.Len())

	got, ok := p.Get(a.ID())
	require.True(t, ok)
	require.Same(t, a, got)

	got, ok = p.Lookup(srv.URL()+"/", "beta")
	require.True(t, ok)
	require.Same(t, b, got)

	seen := map[string]bool{}
	p.Range(func(id string, _ *Listener) bool {
		seen[id] = true
		return true
	})
	require.Len(t, seen, 2)

	nextState(t, a, StateUninitialized)
	nextState(t, a, StateConnected)
	nextState(t, b, StateUninitialized)
	nextState(t, b, StateConnected)
}

func TestPool_RejectsDuplicate(t *testing.T) {
	srv := ntfytest.NewStreamServer(t, ntfytest.Response{Hold: true})
	p := newTestPool(t)

	_, err := p.Subscribe(testListenerConfig(srv))
	require.NoError(t, err)

	_, err = p.Subscribe(testListenerConfig(srv))
	require.ErrorIs(t, err, ErrAlreadySubscribed)
	require.Equal(t, 1, p.Len())
}

func TestPool_RejectsInvalidConfig(t *testing.T) {
	p := newTestPool(t)

	_, err := p.Subscribe(Config{Topic: "x"})
	require.ErrorIs(t, err, ErrInvalidConfig)
	require.Zero(t, p.Len())
}

func TestPool_Unsubscribe(t *testing.T) {
	srv := ntfytest.NewStreamServer(t, ntfytest.Response{Hold: true})
	p := newTestPool(t)
	ctx := context.Background()

	l, err := p.Subscribe(testListenerConfig(srv))
	require.NoError(t, err)
	drain(l)

	require.NoError(t, p.Unsubscribe(ctx, l.ID()))
	require.Zero(t, p.Len())
	requireDone(t, l)

	require.ErrorIs(t, p.Unsubscribe(ctx, l.ID()), ErrSubscriptionNotFound)

	// the subscription can be added again afterwards
	_, err = p.Subscribe(testListenerConfig(srv))
	require.NoError(t, err)
}

func TestPool_RemovesEndedListeners(t *testing.T) {
	srv := ntfytest.NewStreamServer(t,
		ntfytest.Response{Lines: []string{ntfytest.MessageLine("m", 1, "test", "bye")}},
	)
	p := newTestPool(t)

	l, err := p.Subscribe(testListenerConfig(srv))
	require.NoError(t, err)
	drain(l)

	requireDone(t, l)
	require.Eventually(t, func() bool { return p.Len() == 0 }, eventTimeout, 5*time.Millisecond)
}

func TestPool_Shutdown(t *testing.T) {
	srv := ntfytest.NewStreamServer(t)
	p := NewPool(WithLogger(logger.NewTest(t)))

	var listeners []*Listener
	for _, topic := range []string{"a", "b", "c"} {
		cfg := testListenerConfig(srv)
		cfg.Topic = topic
		l, err := p.Subscribe(cfg)
		require.NoError(t, err)
		drain(l)
		listeners = append(listeners, l)
	}

	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))

	for _, l := range listeners {
		requireDone(t, l)
	}
	require.Zero(t, p.Len())

	_, err := p.Subscribe(testListenerConfig(srv))
	require.ErrorIs(t, err, ErrPoolClosed)
}

func requireDone(t *testing.T, l *Listener) {
	t.Helper()

	select {
	case <-l.Done():
	case <-time.After(eventTimeout):
		t.Fatal("listener did not end")
	}
}
