package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/semiresponsive/internal/config"
	"github.com/vango-dev/semiresponsive/internal/errors"
	"github.com/vango-dev/semiresponsive/pkg/page"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:   "semiresponsive",
		Short: "Serve pages whose stylesheet follows the viewport or the URL",
		Long: `semiresponsive swaps a page's active stylesheet.

Selector buttons in the page name a stylesheet, an optional minimum
viewport width and an optional value for the "view" query parameter.
Without the parameter the widest matching breakpoint wins and follows
window resizes; with it, the named stylesheet is pinned and the choice
lives in the address bar.

The server renders the page for the width the browser hints at and keeps
it in sync over a WebSocket.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "Config file (default: semiresponsive.json or .yaml in the working directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(
		serveCmd(&flags),
		renderCmd(&flags),
		inspectCmd(&flags),
		versionCmd(),
	)

	return rootCmd
}

// loadConfig resolves the config file and applies logging flags. With no
// --config and no config file in the working directory, defaults are used.
func loadConfig(flags *globalFlags, stderr io.Writer) (*config.Config, *slog.Logger, error) {
	var (
		cfg *config.Config
		err error
	)
	switch {
	case flags.configPath != "":
		cfg, err = config.LoadFile(flags.configPath)
	default:
		wd, wdErr := os.Getwd()
		if wdErr == nil && config.Exists(wd) {
			cfg, err = config.Load(wd)
		} else {
			cfg = config.New()
		}
	}
	if err != nil {
		return nil, nil, err
	}

	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.logFormat != "" {
		cfg.Log.Format = flags.logFormat
	}
	logger, err := newLogger(stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// newLogger builds the process logger.
func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.New("E400").
			WithDetail(fmt.Sprintf("--log-level %q is not a level", level)).
			WithSuggestion("Use debug, info, warn or error")
	}
	opts := &slog.HandlerOptions{Level: lvl}

	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, errors.New("E400").
			WithDetail(fmt.Sprintf("--log-format %q is not supported", format)).
			WithSuggestion("Use text or json")
	}
}

// openPage resolves the page source from the config, with an optional
// override from the command line.
func openPage(cfg *config.Config, override string) (page.Source, error) {
	uri := cfg.PagePath()
	if override != "" {
		uri = override
	}
	return page.Open(uri, page.WithS3Options(page.S3Options{
		Region:          cfg.S3.Region,
		Endpoint:        cfg.S3.Endpoint,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		UsePathStyle:    cfg.S3.UsePathStyle,
	}))
}
