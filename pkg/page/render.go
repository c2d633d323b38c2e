package page

import (
	"io"
	"log/slog"

	"github.com/vango-dev/semiresponsive/internal/errors"
	"github.com/vango-dev/semiresponsive/pkg/dom"
	"github.com/vango-dev/semiresponsive/pkg/switcher"
	"github.com/vango-dev/semiresponsive/pkg/urlstate"
)

// AttrSocket is the body attribute the client reads its WebSocket path from.
const AttrSocket = "data-sr-ws"

// Page is parsed markup with its switcher container located and its
// buttons numbered.
type Page struct {
	Doc       *dom.Document
	Container *dom.Element
	Buttons   int
}

// Prepare parses markup and binds the container matched by selector.
func Prepare(markup []byte, selector string, cfg switcher.Config) (*Page, error) {
	doc, err := dom.ParseBytes(markup)
	if err != nil {
		return nil, errors.New("E204").Wrap(err)
	}
	container, err := doc.Container(selector)
	if err != nil {
		return nil, errors.New("E203").
			WithDetail("No element matches " + selector).
			WithSuggestion("Set \"container\" in the config to a selector present in the page").
			Wrap(err)
	}
	cfg = switcher.DefaultConfig().Merge(cfg)
	n := doc.AssignHIDs(cfg.ButtonClass)
	return &Page{Doc: doc, Container: container, Buttons: n}, nil
}

// Switch binds a switcher to the page's container.
func (p *Page) Switch(env switcher.Env, opts ...switcher.Option) *switcher.Switcher {
	if env.Head == nil {
		env.Head = p.Doc.Head()
	}
	return switcher.New(p.Container, env, opts...)
}

// RenderOptions controls server-side rendering.
type RenderOptions struct {
	// Container is the CSS selector of the switcher container.
	Container string

	// Switcher overrides class, attribute and parameter names.
	Switcher switcher.Config

	// Href is the full request URL, including the query string.
	Href string

	// Width is the assumed viewport width.
	Width int

	// ClientScript, when set, is injected as a deferred script.
	ClientScript string

	// SocketPath is handed to the client through a body attribute.
	SocketPath string

	// Logger receives switcher debug logs.
	Logger *slog.Logger
}

// Render applies the switcher to markup for the given URL and width and
// writes the resulting HTML. The returned switcher reflects the rendered
// state.
func Render(w io.Writer, markup []byte, opts RenderOptions) (*switcher.Switcher, error) {
	p, err := Prepare(markup, opts.Container, opts.Switcher)
	if err != nil {
		return nil, err
	}

	sw := p.Switch(switcher.Env{
		Location: urlstate.StaticLocation(opts.Href),
		Viewport: switcher.NewWidth(opts.Width),
	}, switcher.WithConfig(opts.Switcher), switcher.WithLogger(opts.Logger))

	if opts.ClientScript != "" {
		p.Doc.AppendScript(opts.ClientScript)
		if opts.SocketPath != "" {
			p.Doc.SetBodyAttr(AttrSocket, opts.SocketPath)
		}
	}

	if err := p.Doc.Render(w); err != nil {
		return nil, err
	}
	return sw, nil
}
