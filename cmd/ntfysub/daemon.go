package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/arloliu/ntfysub"
	"github.com/arloliu/ntfysub/credentials"
	"github.com/arloliu/ntfysub/internal/config"
	"github.com/arloliu/ntfysub/internal/logging"
	"github.com/arloliu/ntfysub/internal/metrics"
	"github.com/arloliu/ntfysub/types"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

type daemonOptions struct {
	stdout io.Writer
	stderr io.Writer

	// registry receives listener metrics; prometheus.DefaultRegisterer when nil.
	registry *prometheus.Registry

	// listenerOpts are appended to the pool options.
	listenerOpts []ntfysub.Option
}

// output serializes message lines written by concurrent listener consumers.
type output struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (o *output) write(msg *types.ReceivedMessage) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.enc.Encode(msg)
}

// runDaemon starts one listener per configured subscription and prints messages until ctx ends.
func runDaemon(ctx context.Context, cfg *config.Config, opts daemonOptions) error {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	log, err := logging.New(opts.stderr, cfg.Log.Format, level)
	if err != nil {
		return err
	}

	store, closeStore, err := openCredentials(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	poolOpts := []ntfysub.Option{
		ntfysub.WithLogger(log),
		ntfysub.WithCredentials(store),
	}

	var wg sync.WaitGroup
	if cfg.Metrics.Enabled {
		var (
			reg      prometheus.Registerer = prometheus.DefaultRegisterer
			gatherer prometheus.Gatherer   = prometheus.DefaultGatherer
		)
		if opts.registry != nil {
			reg, gatherer = opts.registry, opts.registry
		}
		poolOpts = append(poolOpts, ntfysub.WithMetrics(metrics.NewPrometheus(reg, cfg.Metrics.Namespace)))

		srv := metrics.NewServer(cfg.Metrics.Address, gatherer, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.Run(ctx); err != nil {
				log.Error("metrics server stopped", "error", err)
			}
		}()
	}
	poolOpts = append(poolOpts, opts.listenerOpts...)

	pool := ntfysub.NewPool(poolOpts...)
	out := &output{enc: json.NewEncoder(opts.stdout)}

	var subscribeErr error
	for _, sub := range cfg.Subscriptions {
		l, err := pool.Subscribe(sub)
		if err != nil {
			subscribeErr = fmt.Errorf("subscribe %s on %s: %w", sub.Topic, sub.Endpoint, err)
			break
		}
		log.Info("subscribed", "id", l.ID(), "topic", sub.Topic, "endpoint", sub.Endpoint)

		wg.Add(1)
		go func() {
			defer wg.Done()
			consume(l, out, log)
		}()
	}

	if subscribeErr == nil {
		<-ctx.Done()
		log.Info("shutting down", "listeners", pool.Len())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	shutdownErr := pool.Shutdown(shutdownCtx)
	wg.Wait()

	return errors.Join(subscribeErr, shutdownErr)
}

// consume prints messages and logs state changes until the listener's events channel closes.
func consume(l *ntfysub.Listener, out *output, log types.Logger) {
	topic := l.Config().Topic

	for ev := range l.Events() {
		switch ev.Kind {
		case ntfysub.EventMessage:
			if err := out.write(ev.Message); err != nil {
				log.Error("failed to write message", "topic", topic, "id", ev.Message.ID, "error", err)
			}
		case ntfysub.EventStateChanged:
			switch ev.State.Kind {
			case ntfysub.StateReconnecting:
				log.Warn("reconnecting", "topic", topic,
					"retry", ev.State.RetryCount, "delay", ev.State.Delay, "error", ev.State.Err)
			default:
				log.Info("connection state changed", "topic", topic, "state", ev.State.Kind.String())
			}
		}
	}

	<-l.Done()
	if err := l.Err(); err != nil {
		log.Error("listener ended", "topic", topic, "error", err)
	}
}

// openCredentials builds the credential store from the static configuration entries,
// layering the NATS KV store on top when a NATS URL is configured.
func openCredentials(ctx context.Context, cfg *config.Config, log types.Logger) (types.CredentialStore, func(), error) {
	entries := make(map[string]types.Credentials, len(cfg.Credentials))
	for _, c := range cfg.Credentials {
		entries[c.Endpoint] = types.Credentials{Username: c.Username, Password: c.Password}
	}
	static := credentials.NewStatic(entries)

	if cfg.NATS.URL == "" {
		return static, func() {}, nil
	}

	nc, err := nats.Connect(cfg.NATS.URL, nats.Name("ntfysub"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to init JetStream: %w", err)
	}

	kv, err := credentials.NewKV(ctx, js,
		credentials.WithBucket(cfg.NATS.CredentialsBucket),
		credentials.WithLogger(log),
	)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	log.Info("credential store connected", "bucket", cfg.NATS.CredentialsBucket, "entries", kv.Len())

	closeFn := func() {
		kv.Close()
		nc.Close()
	}

	return credentials.Chain{kv, static}, closeFn, nil
}
