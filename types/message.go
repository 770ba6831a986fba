package types

import (
	"fmt"

	"github.com/goccy/go-json"
)

// ReceivedMessage is an application message published to an ntfy topic.
//
// Only ID and Time are inspected by the listener; the remaining fields are passed
// through to consumers unchanged.
type ReceivedMessage struct {
	ID         string      `json:"id"`
	Time       uint64      `json:"time"`
	Expires    *uint64     `json:"expires,omitempty"`
	Topic      string      `json:"topic"`
	Message    string      `json:"message,omitempty"`
	Title      string      `json:"title,omitempty"`
	Tags       []string    `json:"tags,omitempty"`
	Priority   int         `json:"priority,omitempty"`
	Click      string      `json:"click,omitempty"`
	Icon       string      `json:"icon,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	Actions    []Action    `json:"actions,omitempty"`
}

// Attachment describes a file attached to a message.
type Attachment struct {
	Name    string  `json:"name"`
	Type    string  `json:"type,omitempty"`
	Size    int64   `json:"size,omitempty"`
	Expires *uint64 `json:"expires,omitempty"`
	URL     string  `json:"url"`
}

// Action is a user action button attached to a message.
type Action struct {
	ID      string            `json:"id,omitempty"`
	Action  string            `json:"action"`
	Label   string            `json:"label"`
	URL     string            `json:"url,omitempty"`
	Method  string            `json:"method,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body,omitempty"`
	Clear   bool              `json:"clear,omitempty"`
}

// MinMessage is the minimal shape shared by every server event.
//
// It is decoded before the full event so the resume cursor can advance even when the
// complete event cannot be decoded.
type MinMessage struct {
	Time uint64 `json:"time"`
}

// DecodeMinMessage extracts the timestamp of a raw server event line.
//
// A missing time field is an error; zero is never a valid event time.
func DecodeMinMessage(line []byte) (MinMessage, error) {
	var raw struct {
		Time *uint64 `json:"time"`
	}
	if err := json.Unmarshal(line, &raw); err != nil {
		return MinMessage{}, err
	}
	if raw.Time == nil {
		return MinMessage{}, fmt.Errorf("missing field %q", "time")
	}

	return MinMessage{Time: *raw.Time}, nil
}
