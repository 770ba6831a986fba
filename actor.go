package ntfysub

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/arloliu/ntfysub/internal/backoff"
	"github.com/arloliu/ntfysub/internal/metrics"
	"github.com/arloliu/ntfysub/types"
)

// actor owns the connection state of one listener and serves its commands.
//
// The supervised loop runs in a separate worker goroutine. The actor starts at most one
// worker at a time; the worker owns the cursor and the backoff generator while it runs
// and hands both back when it exits, so no state is ever shared between goroutines.
type actor struct {
	cfg     Config
	client  HTTPClient
	creds   CredentialStore
	metrics MetricsCollector
	logger  Logger

	events   chan<- Event
	commands <-chan Command
	closing  <-chan struct{}

	state ConnectionState
	since uint64
	retry *backoff.Backoff

	current *workerRun
}

// workerRun tracks the running worker.
type workerRun struct {
	cancel  context.CancelFunc
	stateCh <-chan ConnectionState
	results <-chan workerResult
}

// workerResult is what a worker hands back to the actor when it exits.
type workerResult struct {
	since uint64
	retry *backoff.Backoff
	// ended reports a clean end of the subscription stream.
	ended bool
	err   error
}

// run is the actor body. It returns when the listener ends; the returned error is
// non-nil only for a panic.
func (a *actor) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrActorPanicked, r)
			a.logger.Error("listener actor panicked", "panic", r, "stack", string(debug.Stack()))
		}
		if a.current != nil {
			a.stopWorker()
		}
		close(a.events)
		a.logger.Debug("listener actor stopped")
	}()

	a.retry = backoff.New(a.cfg.Backoff.Min, a.cfg.Backoff.Max,
		backoff.WithMultiplier(a.cfg.Backoff.Multiplier),
		backoff.WithSeed(a.cfg.Backoff.Seed),
	)
	a.metrics.SetConnectionState(a.cfg.Topic, a.state.Kind)

	// The events channel is still empty and holds at least one event, so this never
	// blocks. Sending it here keeps it first even when a command beats the first worker.
	a.events <- types.StateChanged(a.state)

	for {
		a.startWorker()

		restart, err := a.serve()
		if err != nil || !restart {
			return err
		}
	}
}

// serve waits for the running worker to end or for a command that ends it.
// It reports whether a new worker should be started.
func (a *actor) serve() (bool, error) {
	for {
		select {
		case st := <-a.current.stateCh:
			a.state = st
		case res := <-a.current.results:
			a.finishWorker(res)
			if res.err != nil {
				return false, res.err
			}
			a.logger.Info("supervised loop ended")

			return false, nil
		case cmd := <-a.commands:
			switch c := cmd.(type) {
			case types.Restart:
				a.logger.Info("restarting listener")
				return true, a.stopWorker()
			case types.Shutdown:
				a.logger.Info("shutting down listener")
				return false, a.stopWorker()
			case types.GetState:
				a.logger.Debug("getting listener state")
				select {
				case c.Reply <- a.state:
				default:
					a.logger.Warn("failed to send state - reply slot full")
				}
			default:
				a.logger.Warn("ignoring unknown command", "command", fmt.Sprintf("%T", cmd))
			}
		case <-a.closing:
			a.logger.Error("command channel closed")
			return false, a.stopWorker()
		}
	}
}

func (a *actor) startWorker() {
	ctx, cancel := context.WithCancel(context.Background())
	stateCh := make(chan ConnectionState)
	results := make(chan workerResult, 1)

	w := &worker{
		cfg:     a.cfg,
		client:  a.client,
		creds:   a.creds,
		metrics: a.metrics,
		logger:  a.logger,
		events:  a.events,
		stateCh: stateCh,
		since:   a.since,
		retry:   a.retry,
	}
	a.since, a.retry = 0, nil
	a.current = &workerRun{cancel: cancel, stateCh: stateCh, results: results}

	go w.run(ctx, results)
}

// stopWorker cancels the running worker and waits for it to exit. State updates sent
// while it shuts down are still applied.
func (a *actor) stopWorker() error {
	a.current.cancel()
	for {
		select {
		case st := <-a.current.stateCh:
			a.state = st
		case res := <-a.current.results:
			a.finishWorker(res)
			return res.err
		}
	}
}

func (a *actor) finishWorker(res workerResult) {
	a.current.cancel()
	a.current = nil
	a.since, a.retry = res.since, res.retry
}

// worker runs the supervised loop of one listener until it is cancelled or the server
// ends the stream cleanly.
type worker struct {
	cfg     Config
	client  HTTPClient
	creds   CredentialStore
	metrics MetricsCollector
	logger  Logger

	events  chan<- Event
	stateCh chan<- ConnectionState

	since uint64
	retry *backoff.Backoff
}

func (w *worker) run(ctx context.Context, results chan<- workerResult) {
	res := workerResult{}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("%w: %v", ErrActorPanicked, r)
			w.logger.Error("listener worker panicked", "panic", r, "stack", string(debug.Stack()))
		}
		res.since, res.retry = w.since, w.retry
		results <- res
	}()

	res.ended = w.supervise(ctx)
}

// supervise keeps attempting connections until one ends cleanly (true) or ctx is
// cancelled (false).
func (w *worker) supervise(ctx context.Context) bool {
	for {
		start := time.Now()
		err := w.attempt(ctx)
		if err == nil {
			return true
		}

		uptime := time.Since(start)
		w.metrics.RecordConnectionUptime(w.cfg.Topic, uptime.Seconds())

		if ctx.Err() != nil {
			w.metrics.RecordConnectionAttempt(w.cfg.Topic, metrics.ResultCancelled)
			return false
		}
		w.metrics.RecordConnectionAttempt(w.cfg.Topic, metrics.ResultFailed)

		if uptime > w.cfg.Backoff.StableUptime {
			w.logger.Debug("resetting retry delay due to sufficient uptime", "uptime", uptime)
			w.retry.Reset()
		}

		w.logger.Error("connection error", "error", err, "uptime", uptime)
		delay := w.retry.NextDelay()
		if !w.setState(ctx, types.Reconnecting(w.retry.Count(), delay, err)) {
			return false
		}
		w.metrics.RecordReconnectDelay(w.cfg.Topic, delay.Seconds())

		w.logger.Info("waiting before reconnect attempt", "delay", delay, "retry_count", w.retry.Count())
		if err := w.retry.Wait(ctx); err != nil {
			return false
		}
	}
}

// setState hands st to the actor, then emits it to the consumer.
// It returns false when ctx was cancelled first.
func (w *worker) setState(ctx context.Context, st ConnectionState) bool {
	select {
	case w.stateCh <- st:
	case <-ctx.Done():
		return false
	}
	w.metrics.SetConnectionState(w.cfg.Topic, st.Kind)

	return w.emit(ctx, types.StateChanged(st))
}

// emit sends ev to the consumer, blocking while the events channel is full.
// It returns false when ctx was cancelled first; no event is sent after cancellation.
func (w *worker) emit(ctx context.Context, ev Event) bool {
	if ctx.Err() != nil {
		return false
	}

	select {
	case w.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
