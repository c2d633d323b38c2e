package main

import (
	"context"
	stderrors "errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/semiresponsive/internal/errors"
	"github.com/vango-dev/semiresponsive/pkg/server"
)

func serveCmd(flags *globalFlags) *cobra.Command {
	var (
		addr      string
		pageURI   string
		container string
		width     int
		staticDir string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the page with a live style switcher",
		Long: `Serve the page with a live style switcher.

Pages are rendered for the width the browser reports through the
Sec-CH-Viewport-Width client hint, then kept in sync over a WebSocket.

Examples:
  semiresponsive serve
  semiresponsive serve --page site/index.html --container "#layouts"
  semiresponsive serve --page s3://assets/index.html --addr :9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Address = addr
			}
			if container != "" {
				cfg.Container = container
			}
			if width > 0 {
				cfg.Server.DefaultWidth = width
			}
			if staticDir != "" {
				cfg.Server.StaticDir = staticDir
			}

			src, err := openPage(cfg, pageURI)
			if err != nil {
				return err
			}

			static := cfg.StaticPath()
			cache := server.CacheControlNone
			if cfg.Server.CacheStatic {
				cache = server.CacheControlProduction
			}

			srv := server.New(&server.ServerConfig{
				Address:         cfg.Server.Address,
				Container:       cfg.Container,
				Switcher:        cfg.Switcher,
				DefaultWidth:    cfg.Server.DefaultWidth,
				AllowedOrigins:  cfg.Server.AllowedOrigins,
				DisableMetrics:  cfg.Server.DisableMetrics,
				MaxSessions:     cfg.Server.MaxSessions,
				SessionRate:     cfg.Server.SessionRate,
				ShutdownTimeout: cfg.ShutdownTimeout(),
				StaticDir:       static,
				StaticPrefix:    cfg.Server.StaticPrefix,
				StaticCache:     cache,
			}, src, server.WithLogger(logger))

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				if stderrors.Is(err, context.DeadlineExceeded) {
					return errors.New("E301").Wrap(err)
				}
				return errors.New("E300").
					WithDetail("Listening on " + cfg.Server.Address + " failed").
					Wrap(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from config, :8080)")
	cmd.Flags().StringVarP(&pageURI, "page", "p", "", "Page source: file path, s3://bucket/key or demo:")
	cmd.Flags().StringVar(&container, "container", "", "CSS selector of the switcher container")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Viewport width assumed when the browser sends no hint")
	cmd.Flags().StringVar(&staticDir, "static", "", "Directory of stylesheets served ahead of the page")

	return cmd
}
