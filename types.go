package ntfysub

import "github.com/arloliu/ntfysub/types"

// Re-export types from the types package.
//
// Internal packages depend on `types` rather than on the root package, which avoids
// import cycles while still giving users `ntfysub.Event`, `ntfysub.Logger` and so on.
type (
	ConnectionState = types.ConnectionState
	StateKind       = types.StateKind
	Event           = types.Event
	EventKind       = types.EventKind
	ReceivedMessage = types.ReceivedMessage
	Attachment      = types.Attachment
	Action          = types.Action
	MinMessage      = types.MinMessage
	Credentials     = types.Credentials
)

// Re-export the server event sum type and its variants.
type (
	ServerEvent    = types.ServerEvent
	OpenEvent      = types.OpenEvent
	MessageEvent   = types.MessageEvent
	KeepaliveEvent = types.KeepaliveEvent
)

// Re-export commands.
type (
	Command  = types.Command
	Restart  = types.Restart
	Shutdown = types.Shutdown
	GetState = types.GetState
)

// Re-export interfaces from the types package for convenience.
type (
	CredentialStore  = types.CredentialStore
	HTTPClient       = types.HTTPClient
	MetricsCollector = types.MetricsCollector
	Logger           = types.Logger
)

// Re-export connection attempt error types.
type (
	RequestError           = types.RequestError
	StatusError            = types.StatusError
	StreamError            = types.StreamError
	InvalidMinMessageError = types.InvalidMinMessageError
	InvalidMessageError    = types.InvalidMessageError
)

// Re-export state and event kind constants.
const (
	StateUninitialized = types.StateUninitialized
	StateConnected     = types.StateConnected
	StateReconnecting  = types.StateReconnecting

	EventMessage      = types.EventMessage
	EventStateChanged = types.EventStateChanged
)

// ErrConnectionFailed is matched by every connection attempt error via errors.Is.
var ErrConnectionFailed = types.ErrConnectionFailed
