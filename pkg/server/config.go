package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/vango-dev/semiresponsive/pkg/switcher"
)

// Default paths the server mounts its own endpoints under.
const (
	DefaultSocketPath = "/_sr/ws"
	DefaultClientPath = "/_sr/client.js"
)

// SessionConfig holds configuration for individual sessions.
type SessionConfig struct {
	// Timeouts

	// ReadTimeout is the maximum time to wait for a message from the client.
	// Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// IdleTimeout is the time after which an inactive session is closed.
	// Default: 5 minutes.
	IdleTimeout time.Duration

	// HandshakeTimeout is the maximum time for the initial handshake.
	// Default: 10 seconds.
	HandshakeTimeout time.Duration

	// HeartbeatInterval is the time between heartbeat pings.
	// Default: 30 seconds.
	HeartbeatInterval time.Duration

	// Limits

	// MaxMessageSize is the maximum size of an incoming WebSocket message.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxEventQueue is the size of the event channel buffer.
	// Default: 64.
	MaxEventQueue int
}

// DefaultSessionConfig returns a SessionConfig with sensible defaults.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       5 * time.Minute,
		HandshakeTimeout:  10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		MaxMessageSize:    64 * 1024, // 64KB
		MaxEventQueue:     64,
	}
}

// Clone returns a copy of the SessionConfig.
func (c *SessionConfig) Clone() *SessionConfig {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// ServerConfig holds configuration for the HTTP/WebSocket server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080" or "localhost:3000").
	// Default: ":8080".
	Address string

	// Page

	// Container is the CSS selector of the switcher container.
	// Default: "body".
	Container string

	// Switcher overrides button class, attribute and parameter names.
	Switcher switcher.Config

	// DefaultWidth is the viewport width assumed for server-side rendering
	// when the request carries no viewport client hint.
	// Default: 1024.
	DefaultWidth int

	// Endpoints

	// SocketPath is the WebSocket endpoint.
	// Default: "/_sr/ws".
	SocketPath string

	// ClientPath serves the thin client script.
	// Default: "/_sr/client.js".
	ClientPath string

	// DisableMetrics removes the /metrics endpoint.
	DisableMetrics bool

	// StaticDir is a directory whose files are served ahead of the page,
	// typically the stylesheets the page's buttons reference. Empty
	// serves nothing.
	StaticDir string

	// StaticPrefix is the URL prefix StaticDir is mounted at.
	// Default: "/".
	StaticPrefix string

	// StaticCache is the Cache-Control policy for static files.
	StaticCache CacheControl

	// WebSocket buffer sizes

	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// Origins

	// AllowedOrigins lists origins permitted for CORS and WebSocket
	// upgrades. Empty means same-origin only. "*" allows any origin.
	AllowedOrigins []string

	// CheckOrigin validates WebSocket upgrade origins. When nil it is
	// derived from AllowedOrigins.
	CheckOrigin func(r *http.Request) bool

	// Session configuration

	// SessionConfig is the configuration for individual sessions.
	// Default: DefaultSessionConfig().
	SessionConfig *SessionConfig

	// Server lifecycle

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// ReadHeaderTimeout bounds how long the HTTP server reads request
	// headers. Default: 10 seconds.
	ReadHeaderTimeout time.Duration

	// Limits

	// MaxSessions is the maximum number of concurrent sessions.
	// 0 means no limit.
	MaxSessions int

	// SessionRate is the number of new sessions admitted per second.
	// 0 means no limit.
	SessionRate float64

	// SessionBurst is the burst size for SessionRate.
	// Default: 20.
	SessionBurst int

	// Cleanup

	// CleanupInterval is the interval for the session cleanup loop.
	// Default: 30 seconds.
	CleanupInterval time.Duration
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		Container:         "body",
		DefaultWidth:      1024,
		SocketPath:        DefaultSocketPath,
		ClientPath:        DefaultClientPath,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		SessionConfig:     DefaultSessionConfig(),
		ShutdownTimeout:   30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		MaxSessions:       0, // No limit
		SessionRate:       0, // No limit
		SessionBurst:      20,
		CleanupInterval:   30 * time.Second,
	}
}

// Clone returns a deep copy of the ServerConfig.
func (c *ServerConfig) Clone() *ServerConfig {
	if c == nil {
		return nil
	}
	clone := *c
	clone.SessionConfig = c.SessionConfig.Clone()
	if c.AllowedOrigins != nil {
		clone.AllowedOrigins = append([]string(nil), c.AllowedOrigins...)
	}
	return &clone
}

// withDefaults fills unset fields from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	out := c.Clone()
	if out.Address == "" {
		out.Address = defaults.Address
	}
	if out.Container == "" {
		out.Container = defaults.Container
	}
	if out.DefaultWidth == 0 {
		out.DefaultWidth = defaults.DefaultWidth
	}
	if out.SocketPath == "" {
		out.SocketPath = defaults.SocketPath
	}
	if out.ClientPath == "" {
		out.ClientPath = defaults.ClientPath
	}
	if out.ReadBufferSize == 0 {
		out.ReadBufferSize = defaults.ReadBufferSize
	}
	if out.WriteBufferSize == 0 {
		out.WriteBufferSize = defaults.WriteBufferSize
	}
	if out.SessionConfig == nil {
		out.SessionConfig = defaults.SessionConfig
	}
	if out.ShutdownTimeout == 0 {
		out.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if out.ReadHeaderTimeout == 0 {
		out.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if out.SessionBurst == 0 {
		out.SessionBurst = defaults.SessionBurst
	}
	if out.CleanupInterval == 0 {
		out.CleanupInterval = defaults.CleanupInterval
	}
	if out.CheckOrigin == nil {
		out.CheckOrigin = originChecker(out.AllowedOrigins)
	}
	return out
}

// ValidateConfig reports the first invalid setting.
func (c *ServerConfig) ValidateConfig() error {
	if c.MaxSessions < 0 {
		return fmt.Errorf("server: MaxSessions must be >= 0, got %d", c.MaxSessions)
	}
	if c.SessionRate < 0 {
		return fmt.Errorf("server: SessionRate must be >= 0, got %v", c.SessionRate)
	}
	if c.DefaultWidth < 0 {
		return fmt.Errorf("server: DefaultWidth must be >= 0, got %d", c.DefaultWidth)
	}
	for _, p := range []string{c.SocketPath, c.ClientPath} {
		if p != "" && !strings.HasPrefix(p, "/") {
			return fmt.Errorf("server: endpoint path %q must start with /", p)
		}
	}
	if sc := c.SessionConfig; sc != nil {
		if sc.MaxEventQueue <= 0 {
			return fmt.Errorf("server: MaxEventQueue must be > 0, got %d", sc.MaxEventQueue)
		}
		if sc.HeartbeatInterval <= 0 {
			return fmt.Errorf("server: HeartbeatInterval must be > 0, got %v", sc.HeartbeatInterval)
		}
	}
	return nil
}

// SameOriginCheck validates that the WebSocket request origin matches the host.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// No Origin header (e.g., same-origin request or curl)
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(originURL.Host, r.Host)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return SameOriginCheck
	}
	return func(r *http.Request) bool {
		if SameOriginCheck(r) {
			return true
		}
		origin := r.Header.Get("Origin")
		for _, a := range allowed {
			if a == "*" || strings.EqualFold(a, origin) {
				return true
			}
		}
		return false
	}
}
