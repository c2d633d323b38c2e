package server

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/semiresponsive/pkg/protocol"
)

// TracerName is the name of the tracer event spans are recorded under.
const TracerName = "semiresponsive"

// ReadLoop continuously reads messages from the WebSocket connection.
// It decodes frames, answers pings and queues events.
// This method blocks until the connection is closed or an error occurs.
func (s *Session) ReadLoop() {
	defer s.Close()

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
				s.metrics.wsError("read")
			}
			return
		}

		s.UpdateLastActive()
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.metrics.wsError("decode")
			s.sendErrorMessage(protocol.ErrInvalidFrame, "Invalid frame")
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame)

		case protocol.FramePing:
			var pp protocol.PingPong
			if err := frame.Decode(&pp); err == nil {
				s.sendPong(pp.Timestamp)
			}

		case protocol.FramePong:
			s.logger.Debug("received pong")

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type)
		}
	}
}

// handleEventFrame decodes and queues an event from the client.
func (s *Session) handleEventFrame(frame *protocol.Frame) {
	var event protocol.Event
	if err := frame.Decode(&event); err != nil {
		s.logger.Error("event decode error", "error", err)
		s.sendErrorMessage(protocol.ErrInvalidEvent, "Invalid event format")
		return
	}
	if err := event.Validate(); err != nil {
		s.logger.Warn("invalid event", "error", err)
		s.sendErrorMessage(protocol.ErrInvalidEvent, err.Error())
		return
	}

	if err := s.QueueEvent(&event); err != nil {
		s.metrics.event(string(event.Kind), "dropped", 0)
		s.sendErrorMessage(protocol.ErrRateLimited, "Event queue full")
	}
}

// WriteLoop handles periodic tasks like heartbeats.
// It runs until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop processes queued events one at a time. It is the only
// goroutine that touches the session's document and switcher.
func (s *Session) EventLoop() {
	tracer := otel.Tracer(TracerName)
	for {
		select {
		case event := <-s.events:
			s.processEvent(tracer, event)

		case <-s.done:
			return
		}
	}
}

// processEvent runs one event inside a span, recovering handler panics.
func (s *Session) processEvent(tracer trace.Tracer, event *protocol.Event) {
	start := time.Now()
	_, span := tracer.Start(context.Background(), "semiresponsive."+string(event.Kind),
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(
			attribute.String("semiresponsive.session_id", s.ID),
			attribute.String("semiresponsive.event_kind", string(event.Kind)),
			attribute.String("semiresponsive.event_target", event.HID),
			attribute.Int("semiresponsive.width", event.Width),
		),
	)
	defer span.End()

	status := "ok"
	defer func() {
		if r := recover(); r != nil {
			herr := &HandlerError{
				SessionID: s.ID,
				Event:     event.String(),
				Panic:     r,
				Stack:     debug.Stack(),
			}
			s.logger.Error("handler panic",
				"event", herr.Event,
				"panic", r,
				"stack", string(herr.Stack))
			span.RecordError(herr)
			span.SetStatus(codes.Error, "panic")
			s.pending = nil
			s.sendErrorMessage(protocol.ErrHandlerPanic, "Internal error")
			status = "panic"
		}
		s.metrics.event(string(event.Kind), status, time.Since(start).Seconds())
	}()

	patchesBefore := s.patchCount.Load()
	if err := s.handleEvent(event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		status = "error"
		return
	}
	span.SetAttributes(
		attribute.Int64("semiresponsive.patch_count", int64(s.patchCount.Load()-patchesBefore)),
		attribute.String("semiresponsive.mode", s.switcher.Mode().String()),
	)
}

// Start starts all session loops.
// This should be called after the handshake is complete.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}
