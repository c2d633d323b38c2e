package server

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/semiresponsive/pkg/page"
	"github.com/vango-dev/semiresponsive/pkg/protocol"
	"github.com/vango-dev/semiresponsive/pkg/switcher"
	"github.com/vango-dev/semiresponsive/pkg/urlstate"
)

// Session is one connected browser tab. It owns a parsed copy of the page
// and the switcher bound to it; both are only touched from the event loop.
type Session struct {
	// Identity
	ID         string
	CreatedAt  time.Time
	LastActive time.Time
	activeMu   sync.Mutex

	// Connection
	conn   *websocket.Conn
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	// Sequence numbers
	sendSeq atomic.Uint64 // Last patch sequence sent
	recvSeq atomic.Uint64 // Last received event sequence

	// Page state, owned by the event loop
	page      *page.Page
	switcher  *switcher.Switcher
	width     *switcher.Width
	navigator *urlstate.Navigator
	pending   []protocol.Patch

	// Channels
	events chan *protocol.Event // Incoming events
	done   chan struct{}        // Shutdown signal

	// Configuration
	config *SessionConfig

	logger  *slog.Logger
	metrics *Metrics

	// Counters
	eventCount atomic.Uint64
	patchCount atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64

	onClose func(*Session)
}

// newSession creates a new session with the given connection.
func newSession(conn *websocket.Conn, config *SessionConfig, logger *slog.Logger, metrics *Metrics) *Session {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	now := time.Now()
	id := uuid.NewString()

	return &Session{
		ID:         id,
		CreatedAt:  now,
		LastActive: now,
		conn:       conn,
		events:     make(chan *protocol.Event, config.MaxEventQueue),
		done:       make(chan struct{}),
		config:     config,
		logger:     logger.With("session_id", id),
		metrics:    metrics,
	}
}

// Bind attaches the prepared page to the session and runs the switcher's
// initial selection for the client's URL and width. The resulting patches
// are queued; call Flush to send them.
func (s *Session) Bind(p *page.Page, hello *protocol.Handshake, cfg switcher.Config) {
	s.page = p
	s.width = switcher.NewWidth(hello.Width)
	s.navigator = urlstate.NewNavigator(hello.Href, s.queuePatch)
	p.Doc.Observe(s.queuePatch)

	env := switcher.Env{
		Location: s.navigator,
		Viewport: s.width,
	}
	if hello.PushState {
		env.History = s.navigator
	}

	s.switcher = p.Switch(env,
		switcher.WithConfig(cfg),
		switcher.WithLogger(s.logger),
		switcher.OnApply(func(sel switcher.Selection) {
			s.metrics.stylesheetSwitched(sel.Mode.String())
		}),
	)

	s.logger.Info("session bound",
		"href", hello.Href,
		"width", hello.Width,
		"buttons", p.Buttons,
		"mode", s.switcher.Mode())
}

// Switcher returns the session's switcher.
func (s *Session) Switcher() *switcher.Switcher {
	return s.switcher
}

// Href returns the client's current URL as the server knows it.
func (s *Session) Href() string {
	if s.navigator == nil {
		return ""
	}
	return s.navigator.Href()
}

// handleEvent applies one client event to the switcher and sends the
// patches it produced.
func (s *Session) handleEvent(event *protocol.Event) error {
	s.eventCount.Add(1)
	if event.Seq > 0 {
		s.recvSeq.Store(event.Seq)
	}

	switch event.Kind {
	case protocol.EventClick:
		el := s.page.Doc.ElementByHID(event.HID)
		if el == nil {
			s.sendErrorMessage(protocol.ErrHandlerNotFound, "No element "+event.HID)
			return NewSessionError(s.ID, "click", ErrElementNotFound)
		}
		if !s.switcher.Click(el) {
			s.logger.Debug("click ignored, already selected", "hid", event.HID)
		}

	case protocol.EventResize:
		s.width.Set(event.Width)
		s.switcher.Resize()
	}

	s.Flush()
	return nil
}

// queuePatch buffers a patch until the next Flush.
func (s *Session) queuePatch(p protocol.Patch) {
	s.pending = append(s.pending, p)
}

// Flush sends every queued patch in one frame.
func (s *Session) Flush() {
	if len(s.pending) == 0 {
		return
	}
	patches := s.pending
	s.pending = nil
	s.SendPatches(patches)
}

// SendPatches sends a patches frame.
func (s *Session) SendPatches(patches []protocol.Patch) {
	seq := s.sendSeq.Add(1)
	n, err := s.writeFrame(protocol.FramePatches, &protocol.PatchesFrame{
		Seq:     seq,
		Patches: patches,
	})
	if err != nil {
		return
	}

	s.patchCount.Add(uint64(len(patches)))
	s.metrics.patches(len(patches))
	s.logger.Debug("sent patches",
		"seq", seq,
		"count", len(patches),
		"bytes", n)
}

// sendErrorMessage sends an error frame to the client.
func (s *Session) sendErrorMessage(code protocol.ErrorCode, message string) {
	s.writeFrame(protocol.FrameError, &protocol.ErrorMessage{Code: code, Message: message})
}

// sendPing sends a heartbeat ping to the client.
func (s *Session) sendPing() error {
	_, err := s.writeFrame(protocol.FramePing, &protocol.PingPong{Timestamp: time.Now().UnixMilli()})
	return err
}

// sendPong answers a client ping.
func (s *Session) sendPong(ts int64) {
	s.writeFrame(protocol.FramePong, &protocol.PingPong{Timestamp: ts})
}

// writeFrame encodes and writes one frame, closing the session on write
// failure. It returns the encoded size.
func (s *Session) writeFrame(ft protocol.FrameType, v any) (int, error) {
	frame, err := protocol.NewFrame(ft, v)
	if err != nil {
		s.logger.Error("frame encode error", "type", ft, "error", err)
		return 0, err
	}
	data, err := frame.Encode()
	if err != nil {
		s.logger.Error("frame encode error", "type", ft, "error", err)
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return 0, ErrSessionClosed
	}
	if s.conn == nil {
		s.logger.Warn("write: no connection available", "type", ft)
		return 0, ErrNoConnection
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		s.logger.Error("write error", "type", ft, "error", err)
		s.metrics.wsError("write")
		go s.Close()
		return 0, err
	}
	s.bytesSent.Add(uint64(len(data)))
	return len(data), nil
}

// Close gracefully closes the session.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		// Already closed
		return
	}

	close(s.done)

	s.mu.Lock()
	if s.conn != nil {
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	}
	s.mu.Unlock()

	s.logger.Info("session closed",
		"events", s.eventCount.Load(),
		"patches", s.patchCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_recv", s.bytesRecv.Load())

	if s.onClose != nil {
		s.onClose(s)
	}
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// QueueEvent queues an event for processing.
func (s *Session) QueueEvent(event *protocol.Event) error {
	select {
	case s.events <- event:
		return nil
	default:
		s.logger.Warn("event queue full, dropping event", "event", event.String())
		return ErrEventQueueFull
	}
}

// UpdateLastActive updates the last activity timestamp.
func (s *Session) UpdateLastActive() {
	s.activeMu.Lock()
	s.LastActive = time.Now()
	s.activeMu.Unlock()
}

// lastActive returns the last activity timestamp.
func (s *Session) lastActive() time.Time {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	return s.LastActive
}

// SessionStats is a snapshot of a session's counters.
type SessionStats struct {
	ID         string
	CreatedAt  time.Time
	LastActive time.Time
	Events     uint64
	Patches    uint64
	BytesSent  uint64
	BytesRecv  uint64
}

// Stats returns a snapshot of the session's counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:         s.ID,
		CreatedAt:  s.CreatedAt,
		LastActive: s.lastActive(),
		Events:     s.eventCount.Load(),
		Patches:    s.patchCount.Load(),
		BytesSent:  s.bytesSent.Load(),
		BytesRecv:  s.bytesRecv.Load(),
	}
}
