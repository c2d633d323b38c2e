package server

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// SessionManager manages all active sessions.
// It handles session creation, lookup, cleanup, and lifecycle callbacks.
type SessionManager struct {
	// Sessions map protected by RWMutex
	sessions map[string]*Session
	mu       sync.RWMutex

	// Configuration
	config      *SessionConfig
	maxSessions int

	// Cleanup
	cleanupInterval time.Duration
	done            chan struct{}
	cleanupDone     chan struct{} // Signals that cleanup goroutine has exited
	shutdownOnce    sync.Once

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int
	metrics      *Metrics

	// Callbacks
	onSessionClose func(*Session)

	// Logger
	logger *slog.Logger
}

// NewSessionManager creates a SessionManager and starts its cleanup loop.
// maxSessions of 0 means no limit.
func NewSessionManager(config *SessionConfig, maxSessions int, cleanupInterval time.Duration, logger *slog.Logger, metrics *Metrics) *SessionManager {
	if config == nil {
		config = DefaultSessionConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cleanupInterval <= 0 {
		cleanupInterval = 30 * time.Second
	}

	sm := &SessionManager{
		sessions:        make(map[string]*Session),
		config:          config,
		maxSessions:     maxSessions,
		cleanupInterval: cleanupInterval,
		done:            make(chan struct{}),
		cleanupDone:     make(chan struct{}),
		metrics:         metrics,
		logger:          logger.With("component", "session_manager"),
	}

	go sm.cleanupLoop()

	return sm
}

// Create creates a new session for the given WebSocket connection.
func (sm *SessionManager) Create(conn *websocket.Conn) (*Session, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.maxSessions > 0 && len(sm.sessions) >= sm.maxSessions {
		sm.logger.Warn("session limit reached", "max", sm.maxSessions)
		return nil, ErrMaxSessionsReached
	}

	session := newSession(conn, sm.config, sm.logger, sm.metrics)
	session.onClose = sm.release
	sm.sessions[session.ID] = session
	sm.totalCreated.Add(1)
	if len(sm.sessions) > sm.peakSessions {
		sm.peakSessions = len(sm.sessions)
	}
	sm.metrics.sessionOpened()

	sm.logger.Info("session created",
		"session_id", session.ID,
		"active_sessions", len(sm.sessions))

	return session, nil
}

// release drops a closed session from the map. It runs from Session.Close.
func (sm *SessionManager) release(session *Session) {
	sm.mu.Lock()
	_, ok := sm.sessions[session.ID]
	delete(sm.sessions, session.ID)
	sm.mu.Unlock()

	if !ok {
		return
	}
	sm.totalClosed.Add(1)
	sm.metrics.sessionClosed()
	if sm.onSessionClose != nil {
		sm.onSessionClose(session)
	}
}

// Get returns a session by ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Close closes a session by ID and removes it from the manager.
func (sm *SessionManager) Close(id string) error {
	session := sm.Get(id)
	if session == nil {
		return ErrSessionNotFound
	}
	session.Close()
	return nil
}

// Count returns the number of active sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ForEach calls fn for every session until fn returns false.
func (sm *SessionManager) ForEach(fn func(*Session) bool) {
	for _, s := range sm.snapshot() {
		if !fn(s) {
			return
		}
	}
}

// SetOnSessionClose registers a callback run after a session closes.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.onSessionClose = fn
}

func (sm *SessionManager) snapshot() []*Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		out = append(out, s)
	}
	return out
}

// cleanupLoop periodically removes expired sessions.
func (sm *SessionManager) cleanupLoop() {
	defer close(sm.cleanupDone)

	ticker := time.NewTicker(sm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.cleanupExpired()
		case <-sm.done:
			return
		}
	}
}

// cleanupExpired closes sessions that have exceeded their idle timeout.
func (sm *SessionManager) cleanupExpired() int {
	now := time.Now()
	var expired []*Session
	for _, s := range sm.snapshot() {
		if now.Sub(s.lastActive()) > sm.config.IdleTimeout {
			expired = append(expired, s)
		}
	}

	for _, s := range expired {
		s.Close()
	}

	if len(expired) > 0 {
		sm.logger.Info("cleaned up expired sessions",
			"count", len(expired),
			"remaining", sm.Count())
	}
	return len(expired)
}

// Shutdown gracefully shuts down all sessions.
func (sm *SessionManager) Shutdown() {
	sm.ShutdownWithContext(context.Background())
}

// ShutdownWithContext closes every session, giving up when ctx is done.
func (sm *SessionManager) ShutdownWithContext(ctx context.Context) error {
	sm.shutdownOnce.Do(func() {
		close(sm.done)
	})
	<-sm.cleanupDone

	sessions := sm.snapshot()

	var wg sync.WaitGroup
	for _, session := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.Close()
		}(session)
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		return ctx.Err()
	}

	sm.logger.Info("session manager shutdown",
		"closed_sessions", len(sessions))

	return nil
}

// ManagerStats is a snapshot of the manager's counters.
type ManagerStats struct {
	Active       int
	TotalCreated uint64
	TotalClosed  uint64
	Peak         int
}

// Stats returns aggregated session statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
		Peak:         sm.peakSessions,
	}
}
