package types

// Command is a control request accepted by a listener.
//
// The set of implementations is closed: Restart, Shutdown and GetState.
type Command interface {
	// Name returns a short name used in logs.
	Name() string

	isCommand()
}

// Restart abandons the in-flight connection attempt and starts a new one.
// The backoff attempt counter is not reset.
type Restart struct{}

// Shutdown abandons the in-flight connection attempt and stops the listener.
type Shutdown struct{}

// GetState asks the listener for its current connection state.
//
// Reply must have capacity for one value; the listener never blocks on it.
type GetState struct {
	Reply chan<- ConnectionState
}

// Name implements Command.
func (Restart) Name() string { return "restart" }

// Name implements Command.
func (Shutdown) Name() string { return "shutdown" }

// Name implements Command.
func (GetState) Name() string { return "get_state" }

func (Restart) isCommand()  {}
func (Shutdown) isCommand() {}
func (GetState) isCommand() {}
