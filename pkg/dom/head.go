package dom

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/semiresponsive/pkg/protocol"
	"github.com/vango-dev/semiresponsive/pkg/switcher"
)

var _ switcher.Head = (*Head)(nil)

// Head manages the stylesheet links of a document head.
type Head struct {
	doc *Document
}

// linkMatcher matches <link> elements with an exact href.
type linkMatcher string

func (m linkMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Link {
		return false
	}
	v, ok := getAttr(n, "href")
	return ok && v == string(m)
}

var linkSelector = cascadia.MustCompile("link[href]")

// RemoveStylesheet removes every head link whose href equals href.
func (h *Head) RemoveStylesheet(href string) {
	for _, n := range cascadia.QueryAll(h.doc.head, linkMatcher(href)) {
		n.Parent.RemoveChild(n)
	}
	h.doc.emit(protocol.NewRemoveHeadLinkPatch(href))
}

// AppendStylesheet appends <link rel="stylesheet" type="text/css" href=href>.
func (h *Head) AppendStylesheet(href string) {
	h.doc.head.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Link,
		Data:     "link",
		Attr: []html.Attribute{
			{Key: "rel", Val: "stylesheet"},
			{Key: "type", Val: "text/css"},
			{Key: "href", Val: href},
		},
	})
	h.doc.emit(protocol.NewAppendHeadLinkPatch(href))
}

// Stylesheets returns the hrefs of all head links in order.
func (h *Head) Stylesheets() []string {
	var out []string
	for _, n := range cascadia.QueryAll(h.doc.head, linkSelector) {
		v, _ := getAttr(n, "href")
		out = append(out, v)
	}
	return out
}
