package metrics

import (
	"sync"

	"github.com/arloliu/ntfysub/types"
	"github.com/prometheus/client_golang/prometheus"
)

// Label values shared by listeners and collectors.
const (
	ResultConnected = "connected"
	ResultFailed    = "failed"
	ResultCancelled = "cancelled"

	StageMin      = "min"
	StageFull     = "full"
	StageOversize = "oversize"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// Collectors are created and registered lazily on first use so that constructing a
// collector never panics on duplicate registration until it is actually exercised.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	attempts     *prometheus.CounterVec
	uptime       *prometheus.HistogramVec
	reconnect    *prometheus.HistogramVec
	state        *prometheus.GaugeVec
	serverEvents *prometheus.CounterVec
	decodeErrors *prometheus.CounterVec
	cursor       *prometheus.GaugeVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a new Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer interface (uses prometheus.DefaultRegisterer if nil)
//   - namespace: Prometheus metrics namespace (defaults to "ntfysub" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "ntfysub"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.attempts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "listener",
			Name:      "connection_attempts_total",
			Help:      "Connection attempts by topic and result (connected, failed, cancelled).",
		}, []string{"topic", "result"})

		p.uptime = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "listener",
			Name:      "connection_uptime_seconds",
			Help:      "Lifetime of connection attempts in seconds.",
			Buckets:   []float64{1, 10, 60, 240, 900, 3600, 14400, 86400},
		}, []string{"topic"})

		p.reconnect = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Subsystem: "listener",
			Name:      "reconnect_delay_seconds",
			Help:      "Scheduled reconnect delays in seconds.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10), // 1s .. ~8.5m
		}, []string{"topic"})

		p.state = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "listener",
			Name:      "connection_state",
			Help:      "Current connection state (0=uninitialized, 1=connected, 2=reconnecting).",
		}, []string{"topic"})

		p.serverEvents = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "stream",
			Name:      "server_events_total",
			Help:      "Decoded server events by topic and event tag.",
		}, []string{"topic", "event"})

		p.decodeErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Subsystem: "stream",
			Name:      "decode_errors_total",
			Help:      "Lines that failed to decode by stage (min, full, oversize).",
		}, []string{"topic", "stage"})

		p.cursor = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Subsystem: "stream",
			Name:      "cursor_unix_seconds",
			Help:      "Current resume cursor of the subscription.",
		}, []string{"topic"})

		p.reg.MustRegister(p.attempts)
		p.reg.MustRegister(p.uptime)
		p.reg.MustRegister(p.reconnect)
		p.reg.MustRegister(p.state)
		p.reg.MustRegister(p.serverEvents)
		p.reg.MustRegister(p.decodeErrors)
		p.reg.MustRegister(p.cursor)
	})
}

// ConnectionMetrics implementation

// RecordConnectionAttempt increments the attempt counter for the given result.
func (p *PrometheusCollector) RecordConnectionAttempt(topic string, result string) {
	p.ensureRegistered()
	p.attempts.WithLabelValues(topic, result).Inc()
}

// RecordConnectionUptime observes how long an attempt stayed up.
func (p *PrometheusCollector) RecordConnectionUptime(topic string, seconds float64) {
	p.ensureRegistered()
	p.uptime.WithLabelValues(topic).Observe(seconds)
}

// RecordReconnectDelay observes a scheduled reconnect delay.
func (p *PrometheusCollector) RecordReconnectDelay(topic string, seconds float64) {
	p.ensureRegistered()
	p.reconnect.WithLabelValues(topic).Observe(seconds)
}

// SetConnectionState sets the state gauge.
func (p *PrometheusCollector) SetConnectionState(topic string, state types.StateKind) {
	p.ensureRegistered()
	p.state.WithLabelValues(topic).Set(float64(state))
}

// StreamMetrics implementation

// IncrementServerEvents increments the server event counter.
func (p *PrometheusCollector) IncrementServerEvents(topic string, tag string) {
	p.ensureRegistered()
	p.serverEvents.WithLabelValues(topic, tag).Inc()
}

// IncrementDecodeErrors increments the decode error counter.
func (p *PrometheusCollector) IncrementDecodeErrors(topic string, stage string) {
	p.ensureRegistered()
	p.decodeErrors.WithLabelValues(topic, stage).Inc()
}

// SetCursor sets the cursor gauge.
func (p *PrometheusCollector) SetCursor(topic string, since uint64) {
	p.ensureRegistered()
	p.cursor.WithLabelValues(topic).Set(float64(since))
}
