package ntfysub

import "errors"

// Sentinel errors returned by Listener and Pool.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrListenerStopped is returned when a command is sent to a listener whose actor has ended.
	ErrListenerStopped = errors.New("listener stopped")

	// ErrCommandChannelClosed is returned when a command is sent through a closed handle.
	ErrCommandChannelClosed = errors.New("command channel closed")

	// ErrInvalidCommand is returned by Send for a nil command or a GetState without a reply channel.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrActorPanicked is returned by Listener.Err when the actor ended because of a panic.
	ErrActorPanicked = errors.New("listener actor panicked")

	// ErrAlreadySubscribed is returned when a pool already has a listener for the subscription.
	ErrAlreadySubscribed = errors.New("already subscribed")

	// ErrSubscriptionNotFound is returned when a pool has no listener for the subscription.
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrPoolClosed is returned by Subscribe after the pool has been shut down.
	ErrPoolClosed = errors.New("pool closed")
)
