package ntfysub

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/arloliu/ntfysub/subscription"
	"github.com/arloliu/ntfysub/types"
)

// Listener is the handle of one topic subscription.
//
// The subscription itself runs in an actor goroutine started by NewListener. The handle
// talks to it only through channels: Events delivers messages and state changes, and
// commands (Restart, Shutdown, GetState) go through a single-slot command channel.
//
// All methods are safe for concurrent use.
type Listener struct {
	id  string
	cfg Config

	events   chan Event
	commands chan Command

	closing   chan struct{}
	closeOnce sync.Once

	// done is closed after the actor has ended and events has been closed.
	done chan struct{}
	// err is written by the actor before done is closed.
	err error
}

// NewListener creates a listener and starts its actor. It returns immediately; the
// first connection attempt happens in the background.
//
// Parameters:
//   - cfg: Listener configuration; unset fields receive defaults
//   - opts: Optional HTTP client, credential store, logger and metrics collector
//
// Returns:
//   - *Listener: Running listener handle
//   - error: ErrInvalidConfig when the configuration is invalid
//
// Example:
//
//	cfg := ntfysub.DefaultConfig()
//	cfg.Endpoint = "https://ntfy.sh"
//	cfg.Topic = "alerts"
//	l, err := ntfysub.NewListener(cfg, ntfysub.WithLogger(logging.NewSlogDefault()))
func NewListener(cfg Config, opts ...Option) (*Listener, error) {
	l, o, err := newListener(cfg, opts...)
	if err != nil {
		return nil, err
	}
	l.start(o)

	return l, nil
}

// newListener builds a handle without starting the actor.
func newListener(cfg Config, opts ...Option) (*Listener, listenerOptions, error) {
	SetDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, listenerOptions{}, err
	}

	o := newListenerOptions(opts...)
	cfg.ValidateWithWarnings(o.logger)

	l := &Listener{
		id:       subscription.ID(cfg.Endpoint, cfg.Topic),
		cfg:      cfg,
		events:   make(chan Event, cfg.EventBufferSize),
		commands: make(chan Command, 1),
		closing:  make(chan struct{}),
		done:     make(chan struct{}),
	}

	return l, o, nil
}

func (l *Listener) start(o listenerOptions) {
	a := &actor{
		cfg:      l.cfg,
		client:   o.httpClient,
		creds:    o.credentials,
		metrics:  o.metrics,
		logger:   logger.With(o.logger, "topic", l.cfg.Topic, "endpoint", l.cfg.Endpoint),
		events:   l.events,
		commands: l.commands,
		closing:  l.closing,
		state:    types.Uninitialized(),
		since:    l.cfg.Since,
	}

	go func() {
		l.err = a.run()
		close(l.done)
	}()
}

// ID returns the subscription ID derived from endpoint and topic.
func (l *Listener) ID() string {
	return l.id
}

// Config returns the effective configuration, with defaults applied.
func (l *Listener) Config() Config {
	return l.cfg
}

// Events returns the channel delivering messages and state changes in order.
//
// The first event is always StateChanged(Uninitialized). The channel is closed when the
// listener ends; buffered events remain readable after that.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Done returns a channel that is closed when the listener has ended.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// Err returns why the listener ended abnormally.
//
// It returns nil while the listener runs and after a normal end (Shutdown, Close, or
// the server closing the stream). It wraps ErrActorPanicked after a panic.
func (l *Listener) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return nil
	}
}

// Send delivers a command to the actor.
//
// It blocks while the single command slot is occupied.
//
// Returns:
//   - error: ErrInvalidCommand, ErrCommandChannelClosed after Close, ErrListenerStopped
//     after the actor ended, or ctx.Err()
func (l *Listener) Send(ctx context.Context, cmd Command) error {
	switch c := cmd.(type) {
	case nil:
		return fmt.Errorf("%w: nil", ErrInvalidCommand)
	case types.GetState:
		if c.Reply == nil {
			return fmt.Errorf("%w: %s without reply channel", ErrInvalidCommand, c.Name())
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-l.closing:
		return ErrCommandChannelClosed
	default:
	}
	select {
	case <-l.done:
		return ErrListenerStopped
	default:
	}

	select {
	case l.commands <- cmd:
		return nil
	case <-l.closing:
		return ErrCommandChannelClosed
	case <-l.done:
		return ErrListenerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current connection state.
//
// It never cancels or delays the in-flight connection attempt, and fails with
// ErrListenerStopped instead of hanging when the actor has ended.
func (l *Listener) State(ctx context.Context) (ConnectionState, error) {
	reply := make(chan ConnectionState, 1)
	if err := l.Send(ctx, GetState{Reply: reply}); err != nil {
		return ConnectionState{}, err
	}

	select {
	case st := <-reply:
		return st, nil
	case <-l.done:
		select {
		case st := <-reply:
			return st, nil
		default:
			return ConnectionState{}, ErrListenerStopped
		}
	case <-ctx.Done():
		return ConnectionState{}, ctx.Err()
	}
}

// Restart abandons the in-flight connection attempt and starts a new one from the
// current cursor. The reconnect backoff is not reset.
func (l *Listener) Restart(ctx context.Context) error {
	return l.Send(ctx, Restart{})
}

// Shutdown stops the listener and waits until it has ended.
//
// Calling Shutdown on a listener that has already ended returns nil.
func (l *Listener) Shutdown(ctx context.Context) error {
	err := l.Send(ctx, Shutdown{})
	if err != nil && !errors.Is(err, ErrListenerStopped) && !errors.Is(err, ErrCommandChannelClosed) {
		return err
	}

	select {
	case <-l.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the handle. The actor treats it as an abnormal loss of its command
// channel: it logs an error, abandons the in-flight attempt and ends.
//
// Close does not wait; use Done to observe the end. It is safe to call more than once.
func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		close(l.closing)
	})
}
