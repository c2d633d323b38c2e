package page

import (
	"bytes"
	"context"
	"embed"
	"io/fs"

	g "maragu.dev/gomponents"
	h "maragu.dev/gomponents/html"

	"github.com/vango-dev/semiresponsive/pkg/switcher"
)

//go:embed demo/*.css
var demoCSS embed.FS

// DemoAssets holds the stylesheets referenced by the demo page, rooted so
// that "wide.css" resolves. The server mounts them under DemoAssetPrefix.
var DemoAssets, _ = fs.Sub(demoCSS, "demo")

// DemoAssetPrefix is the URL prefix the demo stylesheets are served from.
const DemoAssetPrefix = "/_sr/demo/"

type demoLayout struct {
	label    string
	value    string
	minWidth string
}

var demoLayouts = []demoLayout{
	{label: "Wide", value: "wide", minWidth: "1100"},
	{label: "Narrow", value: "narrow", minWidth: "720"},
	{label: "Mobile", value: "mobile", minWidth: "0"},
}

// Demo is the built-in page: an article with a layout switcher offering
// wide, narrow and mobile stylesheets plus an auto button.
func Demo() Source {
	return demoSource{}
}

type demoSource struct{}

func (demoSource) Load(context.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := demoPage().Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (demoSource) String() string {
	return "demo:"
}

func demoPage() g.Node {
	return h.Doctype(
		h.HTML(
			h.Lang("en"),
			h.Head(
				h.Meta(h.Charset("utf-8")),
				h.Meta(h.Name("viewport"), h.Content("width=device-width, initial-scale=1")),
				h.TitleEl(g.Text("semiresponsive demo")),
			),
			h.Body(
				h.Nav(
					h.ID("switcher"),
					g.Map(demoLayouts, demoButton),
					h.Button(h.Class(switcher.DefaultButtonClass), h.Type("button"), g.Text("Auto")),
				),
				h.Main(
					h.H1(g.Text("Semi-responsive layouts")),
					h.P(g.Text("Resize the window to watch the layout follow the viewport. "+
						"Pick a layout to pin it; the choice is kept in the address bar, so reloading "+
						"or sharing the link keeps it. Auto hands control back to the viewport.")),
					h.P(g.Text("Stylesheets are swapped server-side and streamed to this page over a WebSocket.")),
				),
			),
		),
	)
}

func demoButton(l demoLayout) g.Node {
	return h.Button(
		h.Class(switcher.DefaultButtonClass),
		h.Type("button"),
		g.Attr(switcher.DefaultLinkHrefAttr, DemoAssetPrefix+l.value+".css"),
		g.Attr(switcher.DefaultMinWidthAttr, l.minWidth),
		g.Attr(switcher.DefaultParamValueAttr, l.value),
		g.Text(l.label),
	)
}
