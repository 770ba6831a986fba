package ntfysub

import (
	"net/http"

	"github.com/arloliu/ntfysub/credentials"
	"github.com/arloliu/ntfysub/internal/logger"
	"github.com/arloliu/ntfysub/internal/metrics"
)

// Option configures a Listener or Pool with optional dependencies.
type Option func(*listenerOptions)

// listenerOptions holds optional Listener configuration.
type listenerOptions struct {
	httpClient  HTTPClient
	credentials CredentialStore
	logger      Logger
	metrics     MetricsCollector
}

// defaultHTTPClient has no total timeout: subscription responses stream indefinitely.
var defaultHTTPClient = &http.Client{Transport: http.DefaultTransport}

func newListenerOptions(opts ...Option) listenerOptions {
	o := listenerOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	if o.httpClient == nil {
		o.httpClient = defaultHTTPClient
	}
	if o.credentials == nil {
		o.credentials = credentials.NewStatic(nil)
	}
	if o.logger == nil {
		o.logger = logger.NewNop()
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}

	return o
}

// WithHTTPClient sets the HTTP client used for subscription requests.
//
// The client must not impose a total request timeout (http.Client.Timeout), since
// subscription responses never finish on their own. It is shared by every listener of a
// pool and must be safe for concurrent use.
//
// Parameters:
//   - client: HTTPClient implementation, typically *http.Client
//
// Returns:
//   - Option: Functional option for NewListener and NewPool
func WithHTTPClient(client HTTPClient) Option {
	return func(o *listenerOptions) {
		o.httpClient = client
	}
}

// WithCredentials sets the credential store consulted before each connection attempt.
//
// The store is queried on every attempt, so credentials changed in the store are picked
// up by the next reconnect.
//
// Parameters:
//   - store: CredentialStore implementation
//
// Returns:
//   - Option: Functional option for NewListener and NewPool
//
// Example:
//
//	store := credentials.NewStatic(map[string]ntfysub.Credentials{
//	    "https://ntfy.example.com": {Username: "alice", Password: "secret"},
//	})
//	l, _ := ntfysub.NewListener(cfg, ntfysub.WithCredentials(store))
func WithCredentials(store CredentialStore) Option {
	return func(o *listenerOptions) {
		o.credentials = store
	}
}

// WithLogger sets a logger.
//
// Parameters:
//   - logger: Logger implementation (e.g. logging.NewSlogDefault())
//
// Returns:
//   - Option: Functional option for NewListener and NewPool
func WithLogger(logger Logger) Option {
	return func(o *listenerOptions) {
		o.logger = logger
	}
}

// WithMetrics sets a metrics collector.
//
// Parameters:
//   - metrics: MetricsCollector implementation
//
// Returns:
//   - Option: Functional option for NewListener and NewPool
//
// Example:
//
//	collector := myPrometheusCollector
//	l, _ := ntfysub.NewListener(cfg, ntfysub.WithMetrics(collector))
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *listenerOptions) {
		o.metrics = metrics
	}
}
