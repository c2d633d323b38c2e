package protocol

import (
	"errors"
	"fmt"
)

// EventKind identifies the type of client event.
type EventKind string

const (
	EventClick  EventKind = "click"
	EventResize EventKind = "resize"
)

// Event is a client interaction forwarded to the server.
type Event struct {
	// Seq is the client-assigned sequence number.
	Seq uint64 `json:"seq"`

	// Kind is the event type.
	Kind EventKind `json:"kind"`

	// HID is the hydration ID of the clicked element. Empty for resize.
	HID string `json:"hid,omitempty"`

	// Width is the new viewport width. Only set for resize.
	Width int `json:"width,omitempty"`
}

// ErrMalformedEvent is returned by Validate for malformed events.
var ErrMalformedEvent = errors.New("protocol: invalid event")

// Validate checks that the event carries the fields its kind needs.
func (e *Event) Validate() error {
	switch e.Kind {
	case EventClick:
		if e.HID == "" {
			return fmt.Errorf("%w: click without hid", ErrMalformedEvent)
		}
	case EventResize:
		if e.Width < 0 {
			return fmt.Errorf("%w: negative width %d", ErrMalformedEvent, e.Width)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrMalformedEvent, e.Kind)
	}
	return nil
}

func (e *Event) String() string {
	if e.Kind == EventResize {
		return fmt.Sprintf("resize(%d)", e.Width)
	}
	return fmt.Sprintf("%s(%s)", e.Kind, e.HID)
}
