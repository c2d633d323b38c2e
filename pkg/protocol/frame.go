package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MaxFrameSize is the largest frame accepted from a client.
const MaxFrameSize = 64 * 1024

// FrameType identifies the type of frame.
type FrameType string

const (
	FrameHandshake FrameType = "handshake" // Connection setup
	FrameEvent     FrameType = "event"     // Client → Server events
	FramePatches   FrameType = "patches"   // Server → Client patches
	FramePing      FrameType = "ping"      // Heartbeat request
	FramePong      FrameType = "pong"      // Heartbeat response
	FrameError     FrameType = "error"     // Error message
)

// Valid reports whether ft is a known frame type.
func (ft FrameType) Valid() bool {
	switch ft {
	case FrameHandshake, FrameEvent, FramePatches, FramePing, FramePong, FrameError:
		return true
	}
	return false
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
	ErrEmptyPayload     = errors.New("protocol: empty payload")
)

// Frame is the envelope for every message on the wire.
type Frame struct {
	Type    FrameType       `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewFrame wraps v as the payload of a frame of the given type.
func NewFrame(ft FrameType, v any) (*Frame, error) {
	f := &Frame{Type: ft}
	if v == nil {
		return f, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s payload: %w", ft, err)
	}
	f.Payload = payload
	return f, nil
}

// Encode serializes the frame.
func (f *Frame) Encode() ([]byte, error) {
	return json.Marshal(f)
}

// DecodeFrame parses a frame from bytes.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	var f Frame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("protocol: decode frame: %w", err)
	}
	if !f.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFrameType, f.Type)
	}
	return &f, nil
}

// Decode unmarshals the frame payload into v.
func (f *Frame) Decode(v any) error {
	if len(f.Payload) == 0 {
		return ErrEmptyPayload
	}
	if err := json.Unmarshal(f.Payload, v); err != nil {
		return fmt.Errorf("protocol: decode %s payload: %w", f.Type, err)
	}
	return nil
}

// Handshake is the first frame a client sends after connecting.
type Handshake struct {
	// Href is the full current location of the page (location.href).
	Href string `json:"href"`

	// Width is the viewport width in CSS pixels.
	Width int `json:"width"`

	// PushState reports whether the browser supports history.pushState.
	PushState bool `json:"pushState"`
}

// Validate checks the handshake for obviously bad input.
func (h *Handshake) Validate() error {
	if h.Href == "" {
		return errors.New("protocol: handshake missing href")
	}
	if h.Width < 0 {
		return fmt.Errorf("protocol: handshake width %d out of range", h.Width)
	}
	return nil
}

// PingPong carries a client or server timestamp for latency measurement.
type PingPong struct {
	Timestamp int64 `json:"ts"`
}
