package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/vango-dev/semiresponsive/pkg/page"
	"github.com/vango-dev/semiresponsive/pkg/switcher"
	"github.com/vango-dev/semiresponsive/pkg/urlstate"
)

func inspectCmd(flags *globalFlags) *cobra.Command {
	var (
		pageURI   string
		href      string
		width     int
		container string
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show the selector buttons, breakpoints and selection of a page",
		Long: `Show the selector buttons the switcher finds in a page, their
breakpoints in evaluation order, and which stylesheet a URL and width
select.

Examples:
  semiresponsive inspect
  semiresponsive inspect --page site/index.html --width 800 --url "/?view=narrow"`,
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
			p, err := page.Prepare(markup, cfg.Container, cfg.Switcher)
			if err != nil {
				return err
			}

			sw := p.Switch(switcher.Env{
				Location: urlstate.StaticLocation(href),
				Viewport: switcher.NewWidth(width),
			}, switcher.WithConfig(cfg.Switcher), switcher.WithLogger(logger))

			fmt.Fprint(cmd.OutOrStdout(), inspectTree(src.String(), cfg.Container, p, sw, href, width).String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&pageURI, "page", "p", "", "Page source: file path, s3://bucket/key or demo:")
	cmd.Flags().StringVarP(&href, "url", "u", "/", "URL to evaluate, including the query string")
	cmd.Flags().IntVarP(&width, "width", "w", -1, "Viewport width (default from config, 1024)")
	cmd.Flags().StringVar(&container, "container", "", "CSS selector of the switcher container")

	return cmd
}

// inspectTree lays out what the switcher sees in p.
func inspectTree(source, container string, p *page.Page, sw *switcher.Switcher, href string, width int) treeprint.Tree {
	cfg := sw.Config()
	tree := treeprint.NewWithRoot(fmt.Sprintf("%s %s", source, container))

	buttons := tree.AddBranch(fmt.Sprintf("buttons (%d)", p.Buttons))
	elems := p.Container.Buttons(cfg.ButtonClass)
	for _, b := range elems {
		label := b.Text()
		if label == "" {
			label = "<" + b.Tag() + ">"
		}
		branch := buttons.AddMetaBranch(b.HID(), label)
		for _, attr := range []string{cfg.LinkHrefAttr, cfg.MinWidthAttr, cfg.ParamValueAttr} {
			if v, ok := b.Attr(attr); ok {
				branch.AddMetaNode(attr, v)
			}
		}
		if _, ok := b.Attr(cfg.ParamValueAttr); !ok {
			branch.AddNode("auto")
		}
		if b.HasClass(cfg.SelectedClass) {
			branch.AddNode("selected")
		}
	}

	order := tree.AddBranch("breakpoints")
	for _, bp := range sw.Breakpoints() {
		hid := "?"
		if bp.Index < len(elems) {
			hid = elems[bp.Index].HID()
		}
		order.AddMetaNode(hid, ">= "+strconv.Itoa(bp.Width)+"px")
	}

	sel := tree.AddBranch("selection")
	sel.AddMetaNode("url", href)
	sel.AddMetaNode("width", strconv.Itoa(width)+"px")
	sel.AddMetaNode("mode", sw.Mode().String())
	for _, css := range p.Doc.Head().Stylesheets() {
		sel.AddMetaNode("stylesheet", css)
	}

	return tree
}
