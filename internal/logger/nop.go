// Package logger provides no-op and test loggers for the ntfysub library.
package logger

import "github.com/arloliu/ntfysub/types"

// NopLogger is a no-op logger that discards all log messages.
//
// It is the default logger of every listener and pool when no logger option is given.
//
// Example:
//
//	l, err := ntfysub.NewListener(cfg, ntfysub.WithLogger(logger.NewNop()))
type NopLogger struct{}

// Compile-time assertion that NopLogger implements Logger.
var _ types.Logger = (*NopLogger)(nil)

// NewNop creates a new no-op logger that discards all messages.
func NewNop() *NopLogger {
	return &NopLogger{}
}

// Debug discards the message.
func (n *NopLogger) Debug(string, ...any) {}

// Info discards the message.
func (n *NopLogger) Info(string, ...any) {}

// Warn discards the message.
func (n *NopLogger) Warn(string, ...any) {}

// Error discards the message.
func (n *NopLogger) Error(string, ...any) {}

// Fatal discards the message and, unlike production loggers, does not exit.
func (n *NopLogger) Fatal(string, ...any) {}
