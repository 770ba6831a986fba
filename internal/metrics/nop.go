// Package metrics provides MetricsCollector implementations for listeners.
package metrics

import "github.com/arloliu/ntfysub/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Useful for testing or when external
// metrics collection is used.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
//
// Example:
//
//	l, err := ntfysub.NewListener(cfg, ntfysub.WithMetrics(metrics.NewNop()))
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// ConnectionMetrics implementation

// RecordConnectionAttempt discards the attempt outcome.
func (n *NopMetrics) RecordConnectionAttempt(_ /* topic */, _ /* result */ string) {}

// RecordConnectionUptime discards the attempt uptime.
func (n *NopMetrics) RecordConnectionUptime(_ /* topic */ string, _ /* seconds */ float64) {}

// RecordReconnectDelay discards the reconnect delay.
func (n *NopMetrics) RecordReconnectDelay(_ /* topic */ string, _ /* seconds */ float64) {}

// SetConnectionState discards the state gauge.
func (n *NopMetrics) SetConnectionState(_ /* topic */ string, _ /* state */ types.StateKind) {}

// StreamMetrics implementation

// IncrementServerEvents discards the event count.
func (n *NopMetrics) IncrementServerEvents(_ /* topic */, _ /* tag */ string) {}

// IncrementDecodeErrors discards the decode error count.
func (n *NopMetrics) IncrementDecodeErrors(_ /* topic */, _ /* stage */ string) {}

// SetCursor discards the cursor gauge.
func (n *NopMetrics) SetCursor(_ /* topic */ string, _ /* since */ uint64) {}
