// Package types provides core type definitions and interfaces for the ntfysub library.
//
// This package contains shared types that are used across multiple packages in the
// ntfysub library. By keeping these types in a separate package, internal packages
// (metrics, logging, credential stores) can depend on them without importing the root
// ntfysub package.
//
// Key types:
//   - ConnectionState: Listener connection state machine value
//   - ServerEvent: Closed sum type of events sent by the ntfy server
//   - ReceivedMessage: Application message delivered to consumers
//   - Event: Consumer-facing event (message or state change)
//   - Command: Control commands accepted by a listener
//   - Logger: Structured logging interface
//   - MetricsCollector: Metrics recording interface
package types
