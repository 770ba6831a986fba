package types

// MetricsCollector defines methods for recording listener metrics.
//
// Implementations should be non-blocking and handle failures gracefully.
// Methods are called from listener goroutines and must be thread-safe.
//
// This interface composes smaller, domain-focused interfaces for better modularity.
type MetricsCollector interface {
	ConnectionMetrics
	StreamMetrics
}

// ConnectionMetrics defines metrics for connection lifecycle.
type ConnectionMetrics interface {
	// RecordConnectionAttempt records the outcome of one connection attempt.
	//
	// Parameters:
	//   - topic: Subscribed topic
	//   - result: "connected", "failed" or "cancelled"
	RecordConnectionAttempt(topic string, result string)

	// RecordConnectionUptime records how long an attempt stayed up before it ended.
	//
	// Parameters:
	//   - topic: Subscribed topic
	//   - seconds: Attempt lifetime in seconds
	RecordConnectionUptime(topic string, seconds float64)

	// RecordReconnectDelay records a scheduled reconnect delay.
	//
	// Parameters:
	//   - topic: Subscribed topic
	//   - seconds: Delay before the next attempt in seconds
	RecordReconnectDelay(topic string, seconds float64)

	// SetConnectionState sets the current state gauge for a topic.
	SetConnectionState(topic string, state StateKind)
}

// StreamMetrics defines metrics for the subscription event stream.
type StreamMetrics interface {
	// IncrementServerEvents counts a decoded server event by tag (open, message, keepalive).
	IncrementServerEvents(topic string, tag string)

	// IncrementDecodeErrors counts lines that failed to decode by stage ("min", "full", "oversize").
	IncrementDecodeErrors(topic string, stage string)

	// SetCursor sets the current resume cursor (unix seconds) for a topic.
	SetCursor(topic string, since uint64)
}
