package types

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrUnknownEventKind is returned when a server event carries an unrecognized event tag.
var ErrUnknownEventKind = errors.New("unknown server event kind")

// ErrMissingField is returned when a server event lacks one of id, time or topic.
var ErrMissingField = errors.New("missing required field")

// Server event tags as sent in the "event" field of each NDJSON line.
const (
	EventTagOpen      = "open"
	EventTagMessage   = "message"
	EventTagKeepalive = "keepalive"
)

// ServerEvent is a single event received on a subscription stream.
//
// The set of implementations is closed: OpenEvent, MessageEvent and KeepaliveEvent.
// Consumers are expected to switch over all three; a new server event kind must be
// added here as a new variant rather than handled by a default branch.
type ServerEvent interface {
	// Tag returns the wire tag of the event.
	Tag() string

	isServerEvent()
}

// OpenEvent acknowledges that a subscription was opened.
type OpenEvent struct {
	ID      string  `json:"id"`
	Time    uint64  `json:"time"`
	Expires *uint64 `json:"expires,omitempty"`
	Topic   string  `json:"topic"`
}

// MessageEvent carries an application message.
type MessageEvent struct {
	Message ReceivedMessage
}

// KeepaliveEvent is a periodic liveness ping with no payload.
type KeepaliveEvent struct {
	ID      string  `json:"id"`
	Time    uint64  `json:"time"`
	Expires *uint64 `json:"expires,omitempty"`
	Topic   string  `json:"topic"`
}

// Tag implements ServerEvent.
func (OpenEvent) Tag() string { return EventTagOpen }

// Tag implements ServerEvent.
func (MessageEvent) Tag() string { return EventTagMessage }

// Tag implements ServerEvent.
func (KeepaliveEvent) Tag() string { return EventTagKeepalive }

func (OpenEvent) isServerEvent()      {}
func (MessageEvent) isServerEvent()   {}
func (KeepaliveEvent) isServerEvent() {}

// DecodeServerEvent decodes one NDJSON line into its ServerEvent variant.
//
// The "event" field selects the variant. Lines without a tag or with an unknown
// tag return an error wrapping ErrUnknownEventKind; lines missing id, time or topic
// return an error wrapping ErrMissingField.
func DecodeServerEvent(line []byte) (ServerEvent, error) {
	var envelope struct {
		Event *string `json:"event"`
		ID    *string `json:"id"`
		Time  *uint64 `json:"time"`
		Topic *string `json:"topic"`
	}
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, err
	}
	if envelope.Event == nil {
		return nil, fmt.Errorf("%w: missing %q tag", ErrUnknownEventKind, "event")
	}

	switch *envelope.Event {
	case EventTagOpen, EventTagMessage, EventTagKeepalive:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, *envelope.Event)
	}

	// every variant carries id, time and topic
	switch {
	case envelope.ID == nil:
		return nil, fmt.Errorf("%w: %q in %s event", ErrMissingField, "id", *envelope.Event)
	case envelope.Time == nil:
		return nil, fmt.Errorf("%w: %q in %s event", ErrMissingField, "time", *envelope.Event)
	case envelope.Topic == nil:
		return nil, fmt.Errorf("%w: %q in %s event", ErrMissingField, "topic", *envelope.Event)
	}

	switch *envelope.Event {
	case EventTagOpen:
		var ev OpenEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, err
		}

		return ev, nil
	case EventTagMessage:
		var msg ReceivedMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			return nil, err
		}

		return MessageEvent{Message: msg}, nil
	case EventTagKeepalive:
		var ev KeepaliveEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return nil, err
		}

		return ev, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventKind, *envelope.Event)
	}
}

// EventKind identifies the variant of a consumer-facing Event.
type EventKind int

const (
	// EventMessage carries a delivered application message.
	EventMessage EventKind = iota

	// EventStateChanged carries a connection state change.
	EventStateChanged
)

// String returns the string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventMessage:
		return "Message"
	case EventStateChanged:
		return "ConnectionStateChanged"
	default:
		return "Unknown"
	}
}

// Event is emitted by a listener on its events channel.
//
// Messages and state changes share one channel and are produced by a single goroutine,
// so their relative order is exactly the order in which they happened.
type Event struct {
	Kind EventKind

	// Message is set when Kind is EventMessage.
	Message *ReceivedMessage

	// State is set when Kind is EventStateChanged.
	State ConnectionState
}

// MessageReceived returns an EventMessage event.
func MessageReceived(msg ReceivedMessage) Event {
	return Event{Kind: EventMessage, Message: &msg}
}

// StateChanged returns an EventStateChanged event.
func StateChanged(state ConnectionState) Event {
	return Event{Kind: EventStateChanged, State: state}
}

// String returns a short description of the event.
func (e Event) String() string {
	switch e.Kind {
	case EventMessage:
		if e.Message == nil {
			return "Message(<nil>)"
		}

		return fmt.Sprintf("Message(id=%s)", e.Message.ID)
	case EventStateChanged:
		return fmt.Sprintf("ConnectionStateChanged(%s)", e.State)
	default:
		return "Unknown"
	}
}
