package types

import (
	"fmt"
	"time"
)

// StateKind identifies the variant of a ConnectionState.
//
// A listener moves through the kinds as follows:
//
//	StateUninitialized → StateConnected → StateReconnecting → StateConnected → ...
//
// There is no terminal kind. When a listener stops, its events channel is closed instead.
type StateKind int

const (
	// StateUninitialized is the initial state before the first connection attempt completes.
	StateUninitialized StateKind = iota

	// StateConnected indicates the subscription request was accepted by the server.
	// It does not imply that any event has been received yet.
	StateConnected

	// StateReconnecting indicates the last attempt failed and a retry is scheduled.
	StateReconnecting
)

// String returns the string representation of the state kind.
func (k StateKind) String() string {
	switch k {
	case StateUninitialized:
		return "Uninitialized"
	case StateConnected:
		return "Connected"
	case StateReconnecting:
		return "Reconnecting"
	default:
		return "Unknown"
	}
}

// ConnectionState is the connection state of a listener.
//
// RetryCount, Delay and Err are only meaningful when Kind is StateReconnecting.
// ConnectionState values are immutable snapshots and safe to share between goroutines.
type ConnectionState struct {
	Kind StateKind

	// RetryCount is the number of backoff waits already performed before this failure.
	RetryCount uint64

	// Delay is how long the listener waits before the next attempt.
	Delay time.Duration

	// Err is the error that ended the previous attempt.
	Err error
}

// Uninitialized returns the initial connection state.
func Uninitialized() ConnectionState {
	return ConnectionState{Kind: StateUninitialized}
}

// Connected returns the connected state.
func Connected() ConnectionState {
	return ConnectionState{Kind: StateConnected}
}

// Reconnecting returns a reconnecting state carrying retry diagnostics.
func Reconnecting(retryCount uint64, delay time.Duration, err error) ConnectionState {
	return ConnectionState{
		Kind:       StateReconnecting,
		RetryCount: retryCount,
		Delay:      delay,
		Err:        err,
	}
}

// IsConnected reports whether the state is StateConnected.
func (s ConnectionState) IsConnected() bool {
	return s.Kind == StateConnected
}

// IsReconnecting reports whether the state is StateReconnecting.
func (s ConnectionState) IsReconnecting() bool {
	return s.Kind == StateReconnecting
}

// String returns a human-readable description of the state.
func (s ConnectionState) String() string {
	if s.Kind != StateReconnecting {
		return s.Kind.String()
	}
	if s.Err == nil {
		return fmt.Sprintf("Reconnecting(retry=%d, delay=%s)", s.RetryCount, s.Delay)
	}

	return fmt.Sprintf("Reconnecting(retry=%d, delay=%s, error=%v)", s.RetryCount, s.Delay, s.Err)
}
