package credentials

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/arloliu/ntfysub/subscription"
	"github.com/arloliu/ntfysub/types"
	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/puzpuzpuz/xsync/v4"
	"github.com/zeebo/xxh3"
)

// DefaultBucket is the KV bucket used when none is configured.
const DefaultBucket = "ntfysub-credentials"

// ErrStoreClosed is returned by KV writes after Close.
var ErrStoreClosed = errors.New("credential store closed")

// record is the JSON value stored for each endpoint.
type record struct {
	Endpoint string `json:"endpoint"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// KVOption configures a KV store.
type KVOption func(*kvOptions)

type kvOptions struct {
	bucket     string
	replicas   int
	storage    jetstream.StorageType
	maxRetries int
	logger     types.Logger
}

// WithBucket sets the KV bucket name.
func WithBucket(name string) KVOption {
	return func(o *kvOptions) {
		if name != "" {
			o.bucket = name
		}
	}
}

// WithReplicas sets the bucket replica count used when the bucket is created.
func WithReplicas(n int) KVOption {
	return func(o *kvOptions) {
		if n > 0 {
			o.replicas = n
		}
	}
}

// WithStorage sets the bucket storage type used when the bucket is created.
func WithStorage(st jetstream.StorageType) KVOption {
	return func(o *kvOptions) { o.storage = st }
}

// WithLogger sets the logger for watcher diagnostics.
func WithLogger(l types.Logger) KVOption {
	return func(o *kvOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// KV is a credential store backed by a NATS JetStream KeyValue bucket.
//
// Reads are served from a local cache that a bucket watcher keeps current, so Get never
// blocks on the network. Keys are the xxh3 hash of the normalized endpoint.
type KV struct {
	kv     jetstream.KeyValue
	cache  *xsync.Map[string, types.Credentials]
	logger types.Logger

	watcher jetstream.KeyWatcher
	cancel  context.CancelFunc
	doneCh  chan struct{}

	closeOnce sync.Once
	closed    chan struct{}
}

var _ types.CredentialStore = (*KV)(nil)

// NewKV opens (creating if needed) the credentials bucket and loads its contents.
//
// NewKV returns once the initial contents of the bucket have been cached. Later
// changes made by any process are applied in the background until Close.
//
// Parameters:
//   - ctx: Bounds bucket setup and the initial load
//   - js: JetStream context
//   - opts: Optional configuration
//
// Returns:
//   - *KV: Store ready for use
//   - error: Bucket or watcher setup failure
func NewKV(ctx context.Context, js jetstream.JetStream, opts ...KVOption) (*KV, error) {
	o := kvOptions{
		bucket:     DefaultBucket,
		replicas:   1,
		storage:    jetstream.FileStorage,
		maxRetries: 3,
		logger:     logger.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	kv, err := ensureBucket(ctx, js, jetstream.KeyValueConfig{
		Bucket:      o.bucket,
		Description: "ntfy subscription credentials",
		History:     1,
		Replicas:    o.replicas,
		Storage:     o.storage,
	}, o.maxRetries)
	if err != nil {
		return nil, err
	}

	watchCtx, cancel := context.WithCancel(context.Background())
	watcher, err := kv.WatchAll(watchCtx)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to watch bucket %s: %w", o.bucket, err)
	}

	s := &KV{
		kv:      kv,
		cache:   xsync.NewMap[string, types.Credentials](),
		logger:  o.logger,
		watcher: watcher,
		cancel:  cancel,
		doneCh:  make(chan struct{}),
		closed:  make(chan struct{}),
	}

	ready := make(chan struct{})
	go s.processUpdates(watchCtx, ready)

	select {
	case <-ready:
		return s, nil
	case <-s.doneCh:
		s.Close()
		return nil, fmt.Errorf("watcher for bucket %s stopped before initial load", o.bucket)
	case <-ctx.Done():
		s.Close()
		return nil, ctx.Err()
	}
}

// Key returns the bucket key for an endpoint.
func Key(endpoint string) string {
	return fmt.Sprintf("%016x", xxh3.HashString(subscription.NormalizeEndpoint(endpoint)))
}

// Get implements types.CredentialStore.
func (s *KV) Get(endpoint string) (types.Credentials, bool) {
	return s.cache.Load(Key(endpoint))
}

// Set writes credentials for endpoint to the bucket.
func (s *KV) Set(ctx context.Context, endpoint string, creds types.Credentials) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	data, err := json.Marshal(record{
		Endpoint: subscription.NormalizeEndpoint(endpoint),
		Username: creds.Username,
		Password: creds.Password,
	})
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	key := Key(endpoint)
	if _, err := s.kv.Put(ctx, key, data); err != nil {
		return fmt.Errorf("failed to store credentials for %s: %w", endpoint, err)
	}
	s.cache.Store(key, creds)

	return nil
}

// Delete removes the credentials for endpoint from the bucket.
func (s *KV) Delete(ctx context.Context, endpoint string) error {
	if s.isClosed() {
		return ErrStoreClosed
	}

	key := Key(endpoint)
	if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("failed to delete credentials for %s: %w", endpoint, err)
	}
	s.cache.Delete(key)

	return nil
}

// Len returns the number of cached endpoints.
func (s *KV) Len() int {
	return s.cache.Size()
}

// Close stops the bucket watcher. Cached credentials stay readable.
func (s *KV) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
		if err := s.watcher.Stop(); err != nil {
			s.logger.Warn("failed to stop credentials watcher", "error", err)
		}
		s.cancel()
		<-s.doneCh
	})
}

func (s *KV) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// processUpdates applies watcher entries to the cache.
// ready is closed once the initial replay marker (a nil entry) arrives.
func (s *KV) processUpdates(ctx context.Context, ready chan struct{}) {
	defer close(s.doneCh)

	initialized := false
	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-s.watcher.Updates():
			if !ok {
				return
			}
			if entry == nil {
				if !initialized {
					initialized = true
					close(ready)
				}

				continue
			}
			s.apply(entry)
		}
	}
}

func (s *KV) apply(entry jetstream.KeyValueEntry) {
	switch entry.Operation() {
	case jetstream.KeyValuePut:
		var rec record
		if err := json.Unmarshal(entry.Value(), &rec); err != nil {
			s.logger.Warn("ignoring malformed credentials entry", "key", entry.Key(), "error", err)
			return
		}
		s.cache.Store(entry.Key(), types.Credentials{Username: rec.Username, Password: rec.Password})
	case jetstream.KeyValueDelete, jetstream.KeyValuePurge:
		s.cache.Delete(entry.Key())
	}
}
