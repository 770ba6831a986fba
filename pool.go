package ntfysub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/ntfysub/subscription"
	"github.com/puzpuzpuz/xsync/v4"
)

// Pool hosts many independent listeners that share one HTTP client, credential store,
// logger and metrics collector.
//
// Listeners are keyed by subscription ID, so a pool holds at most one listener per
// endpoint and topic. A listener that ends on its own (the server closed the stream,
// or it panicked) is removed automatically.
type Pool struct {
	opts   []Option
	logger Logger

	// mu serializes registry mutations; reads go straight to the map.
	mu        sync.Mutex
	listeners *xsync.Map[string, *Listener]
	closed    bool

	wg sync.WaitGroup
}

// NewPool creates an empty pool. opts apply to every listener it starts.
func NewPool(opts ...Option) *Pool {
	return &Pool{
		opts:      opts,
		logger:    newListenerOptions(opts...).logger,
		listeners: xsync.NewMap[string, *Listener](),
	}
}

// Subscribe starts a listener for cfg.
//
// Parameters:
//   - cfg: Listener configuration
//   - opts: Options applied after the pool's shared options
//
// Returns:
//   - *Listener: The running listener
//   - error: ErrAlreadySubscribed, ErrPoolClosed, or a configuration error
func (p *Pool) Subscribe(cfg Config, opts ...Option) (*Listener, error) {
	all := make([]Option, 0, len(p.opts)+len(opts))
	all = append(all, p.opts...)
	all = append(all, opts...)

	l, o, err := newListener(cfg, all...)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, ErrPoolClosed
	}
	if _, ok := p.listeners.Load(l.id); ok {
		return nil, fmt.Errorf("%w: %s on %s", ErrAlreadySubscribed, cfg.Topic, cfg.Endpoint)
	}
	p.listeners.Store(l.id, l)
	l.start(o)

	p.wg.Add(1)
	go p.reap(l)

	p.logger.Info("subscribed", "id", l.id, "topic", cfg.Topic, "endpoint", cfg.Endpoint)

	return l, nil
}

// reap removes l from the registry once it has ended.
func (p *Pool) reap(l *Listener) {
	defer p.wg.Done()
	<-l.Done()

	p.mu.Lock()
	defer p.mu.Unlock()

	if cur, ok := p.listeners.Load(l.id); ok && cur == l {
		p.listeners.Delete(l.id)
		if err := l.Err(); err != nil {
			p.logger.Error("listener ended abnormally", "id", l.id, "topic", l.cfg.Topic, "error", err)
		} else {
			p.logger.Debug("listener removed", "id", l.id, "topic", l.cfg.Topic)
		}
	}
}

// Get returns the listener for a subscription ID.
func (p *Pool) Get(id string) (*Listener, bool) {
	return p.listeners.Load(id)
}

// Lookup returns the listener for an endpoint and topic.
func (p *Pool) Lookup(endpoint, topic string) (*Listener, bool) {
	return p.Get(subscription.ID(endpoint, topic))
}

// Len returns the number of registered listeners.
func (p *Pool) Len() int {
	return p.listeners.Size()
}

// Range calls fn for each registered listener until fn returns false.
func (p *Pool) Range(fn func(id string, l *Listener) bool) {
	p.listeners.Range(fn)
}

// Unsubscribe shuts down the listener for id and removes it.
func (p *Pool) Unsubscribe(ctx context.Context, id string) error {
	p.mu.Lock()
	l, ok := p.listeners.LoadAndDelete(id)
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, id)
	}

	p.logger.Info("unsubscribing", "id", id, "topic", l.cfg.Topic)

	return l.Shutdown(ctx)
}

// Shutdown stops every listener and rejects further subscriptions.
//
// Listeners are stopped concurrently. The returned error joins the failures of
// individual listeners.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	var all []*Listener
	p.listeners.Range(func(_ string, l *Listener) bool {
		all = append(all, l)
		return true
	})
	p.mu.Unlock()

	errs := make([]error, len(all))
	var wg sync.WaitGroup
	for i, l := range all {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Shutdown(ctx); err != nil {
				errs[i] = fmt.Errorf("listener %s: %w", l.id, err)
			}
		}()
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
