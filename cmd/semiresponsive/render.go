package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/semiresponsive/pkg/page"
	"github.com/vango-dev/semiresponsive/pkg/server"
)

func renderCmd(flags *globalFlags) *cobra.Command {
	var (
		pageURI   string
		href      string
		width     int
		out       string
		container string
		withJS    bool
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the page for a URL and viewport width",
		Long: `Render the page as the switcher would leave it for a given URL and
viewport width, and print the HTML.

Examples:
  semiresponsive render --width 600
  semiresponsive render --page site/index.html --url "/?view=wide" -o wide.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(flags, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if container != "" {
				cfg.Container = container
			}
			if width < 0 {
				width = cfg.Server.DefaultWidth
			}

			src, err := openPage(cfg, pageURI)
			if err != nil {
				return err
			}
			markup, err := src.Load(cmd.Context())
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			opts := page.RenderOptions{
				Container: cfg.Container,
				Switcher:  cfg.Switcher,
				Href:      href,
				Width:     width,
				Logger:    logger,
			}
			if withJS {
				opts.ClientScript = server.DefaultClientPath
				opts.SocketPath = server.DefaultSocketPath
			}

			sw, err := page.Render(w, markup, opts)
			if err != nil {
				return err
			}
			logger.Info("rendered",
				"page", src.String(),
				"url", href,
				"width", width,
				"mode", sw.Mode(),
				"enabled", sw.Enabled())
			return nil
		},
	}

	cmd.Flags().StringVarP(&pageURI, "page", "p", "", "Page source: file path, s3://bucket/key or demo:")
	cmd.Flags().StringVarP(&href, "url", "u", "/", "URL the page is rendered for, including the query string")
	cmd.Flags().IntVarP(&width, "width", "w", -1, "Viewport width (default from config, 1024)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Write HTML to a file instead of stdout")
	cmd.Flags().StringVar(&container, "container", "", "CSS selector of the switcher container")
	cmd.Flags().BoolVar(&withJS, "client", false, "Inject the live client script")

	return cmd
}
