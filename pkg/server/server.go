package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	clientdist "github.com/vango-dev/semiresponsive/client/dist"
	"github.com/vango-dev/semiresponsive/pkg/page"
	"github.com/vango-dev/semiresponsive/pkg/protocol"
)

// Server serves one page with a live style switcher. Page requests are
// rendered server-side for the width the client hints at; the thin client
// then opens a WebSocket session that keeps the page in sync as the
// viewport changes or the reader picks a layout.
type Server struct {
	config   *ServerConfig
	source   page.Source
	sessions *SessionManager
	upgrader websocket.Upgrader
	limiter  *rate.Limiter
	static   *staticFiles
	demo     *staticFiles

	registry *prometheus.Registry
	metrics  *Metrics

	handler    http.Handler
	httpServer *http.Server
	logger     *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistry registers metrics with reg instead of a private registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

// New creates a Server for the page loaded from source.
func New(config *ServerConfig, source page.Source, opts ...Option) *Server {
	config = config.withDefaults()
	if source == nil {
		source = page.Demo()
	}

	s := &Server{
		config: config,
		source: source,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "server")

	if err := config.ValidateConfig(); err != nil {
		s.logger.Error("config validation failed", "error", err)
	}

	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	s.metrics = NewMetrics(s.registry, DefaultMetricsNamespace)

	if config.SessionRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.SessionRate), config.SessionBurst)
	}

	s.sessions = NewSessionManager(config.SessionConfig, config.MaxSessions,
		config.CleanupInterval, s.logger, s.metrics)
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}
	if config.StaticDir != "" {
		s.static = newStaticFiles(os.DirFS(config.StaticDir), config.StaticPrefix, config.StaticCache)
	}
	s.demo = newStaticFiles(page.DemoAssets, page.DemoAssetPrefix, CacheControlProduction)
	s.handler = s.routes()

	return s
}

// Handler returns the HTTP handler with all routes mounted.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if len(s.config.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.config.AllowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodHead, http.MethodOptions},
			AllowedHeaders: []string{"Sec-CH-Viewport-Width", "Viewport-Width"},
			MaxAge:         300,
		}))
	}

	r.Get("/healthz", s.handleHealth)
	if !s.config.DisableMetrics {
		r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}
	r.Get(s.config.ClientPath, s.handleClient)
	r.Handle(page.DemoAssetPrefix+"*", s.demo)
	r.With(s.admit).Get(s.config.SocketPath, s.HandleWebSocket)
	r.Get("/*", s.handlePage)

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleClient(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(clientdist.ClientJS)
}

// handlePage renders the page for the request URL and hinted width.
// Files under StaticDir are served instead when the path names one.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if s.static.Has(r.URL.Path) {
		s.static.ServeHTTP(w, r)
		return
	}

	markup, err := s.source.Load(r.Context())
	if err != nil {
		s.logger.Error("page load failed", "source", s.source.String(), "error", err)
		s.metrics.pageRendered("error")
		http.Error(w, "page unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Accept-CH", acceptCH)
	w.Header().Set("Vary", acceptCH)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	width := viewportWidth(r, s.config.DefaultWidth)
	sw, err := page.Render(w, markup, page.RenderOptions{
		Container:    s.config.Container,
		Switcher:     s.config.Switcher,
		Href:         requestHref(r),
		Width:        width,
		ClientScript: s.config.ClientPath,
		SocketPath:   s.config.SocketPath,
		Logger:       s.logger,
	})
	if err != nil {
		s.logger.Error("page render failed", "error", err)
		s.metrics.pageRendered("error")
		http.Error(w, "page render failed", http.StatusInternalServerError)
		return
	}

	s.metrics.pageRendered("ok")
	s.logger.Debug("page rendered",
		"path", r.URL.Path,
		"width", width,
		"mode", sw.Mode())
}

// admit rejects new sessions beyond SessionRate with 429.
func (s *Server) admit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		reservation := s.limiter.Reserve()
		if !reservation.OK() {
			s.rejectHTTP(w, 0)
			return
		}
		if delay := reservation.Delay(); delay > 0 {
			reservation.Cancel()
			s.rejectHTTP(w, int(delay.Seconds())+1)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rejectHTTP(w http.ResponseWriter, retryAfter int) {
	s.metrics.sessionRejected("rate")
	if retryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	}
	http.Error(w, ErrRateLimited.Error(), http.StatusTooManyRequests)
}

// HandleWebSocket handles WebSocket upgrade and connection.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.metrics.wsError("upgrade")
		return
	}

	conn.SetReadLimit(s.config.SessionConfig.MaxMessageSize)
	conn.SetReadDeadline(time.Now().Add(s.config.SessionConfig.HandshakeTimeout))

	hello, err := readHandshake(conn)
	if err != nil {
		s.logger.Warn("handshake failed", "error", err)
		s.metrics.sessionRejected("handshake")
		s.rejectConn(conn, protocol.ErrInvalidFrame, "Invalid handshake")
		return
	}

	markup, err := s.source.Load(r.Context())
	if err != nil {
		s.logger.Error("page load failed", "source", s.source.String(), "error", err)
		s.rejectConn(conn, protocol.ErrServerError, "Page unavailable")
		return
	}
	p, err := page.Prepare(markup, s.config.Container, s.config.Switcher)
	if err != nil {
		s.logger.Error("page prepare failed", "error", err)
		s.rejectConn(conn, protocol.ErrServerError, "Page unavailable")
		return
	}

	session, err := s.sessions.Create(conn)
	if err != nil {
		s.metrics.sessionRejected("max_sessions")
		s.rejectConn(conn, protocol.ErrRateLimited, "Too many sessions")
		return
	}

	session.Bind(p, hello, s.config.Switcher)
	session.Flush()
	session.Start()
}

// readHandshake reads and validates the client's first frame.
func readHandshake(conn *websocket.Conn) (*protocol.Handshake, error) {
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, err
	}
	frame, err := protocol.DecodeFrame(msg)
	if err != nil {
		return nil, errors.Join(ErrInvalidHandshake, err)
	}
	if frame.Type != protocol.FrameHandshake {
		return nil, ErrInvalidHandshake
	}
	var hello protocol.Handshake
	if err := frame.Decode(&hello); err != nil {
		return nil, errors.Join(ErrInvalidHandshake, err)
	}
	if err := hello.Validate(); err != nil {
		return nil, errors.Join(ErrInvalidHandshake, err)
	}
	return &hello, nil
}

// rejectConn sends a fatal error frame and closes conn.
func (s *Server) rejectConn(conn *websocket.Conn, code protocol.ErrorCode, message string) {
	defer conn.Close()

	frame, err := protocol.NewFrame(protocol.FrameError, &protocol.ErrorMessage{
		Code:    code,
		Message: message,
		Fatal:   true,
	})
	if err != nil {
		return
	}
	data, err := frame.Encode()
	if err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(s.config.SessionConfig.WriteTimeout))
	conn.WriteMessage(websocket.TextMessage, data)
}

// Run listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	if err := s.config.ValidateConfig(); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the server fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting", "address", ln.Addr().String(), "page", s.source.String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	})

	return g.Wait()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	// Close all sessions first
	if err := s.sessions.ShutdownWithContext(ctx); err != nil {
		s.logger.Warn("session shutdown incomplete", "error", err)
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Sessions returns the session manager.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Registry returns the registry the server's metrics live in.
func (s *Server) Registry() *prometheus.Registry {
	return s.registry
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}
