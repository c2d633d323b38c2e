package dom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/semiresponsive/pkg/protocol"
	"github.com/vango-dev/semiresponsive/pkg/switcher"
)

var (
	_ switcher.Element   = (*Element)(nil)
	_ switcher.Container = (*Element)(nil)
)

// Element wraps an element node of a Document.
type Element struct {
	doc  *Document
	node *html.Node
}

// Node returns the underlying parse tree node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns the element name.
func (e *Element) Tag() string {
	return e.node.Data
}

// HID returns the hydration ID, or "" if none was assigned.
func (e *Element) HID() string {
	v, _ := getAttr(e.node, HIDAttr)
	return v
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	return getAttr(e.node, name)
}

// Classes returns the class list.
func (e *Element) Classes() []string {
	v, _ := getAttr(e.node, "class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries class.
func (e *Element) HasClass(class string) bool {
	v, ok := getAttr(e.node, "class")
	return ok && containsClass(v, class)
}

// AddClass adds class to the element. The patch is emitted even when the
// class is already present, so a client rendered from different markup
// converges on the same state.
func (e *Element) AddClass(class string) {
	if !e.HasClass(class) {
		classes := append(e.Classes(), class)
		setAttr(e.node, "class", strings.Join(classes, " "))
	}
	if hid := e.HID(); hid != "" {
		e.doc.emit(protocol.NewAddClassPatch(hid, class))
	}
}

// RemoveClass removes class from the element.
func (e *Element) RemoveClass(class string) {
	if e.HasClass(class) {
		kept := e.Classes()[:0]
		for _, c := range e.Classes() {
			if c != class {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			removeAttr(e.node, "class")
		} else {
			setAttr(e.node, "class", strings.Join(kept, " "))
		}
	}
	if hid := e.HID(); hid != "" {
		e.doc.emit(protocol.NewRemoveClassPatch(hid, class))
	}
}

// FindByClass returns the descendants carrying class, in document order.
func (e *Element) FindByClass(class string) []switcher.Element {
	buttons := e.Buttons(class)
	out := make([]switcher.Element, len(buttons))
	for i, b := range buttons {
		out[i] = b
	}
	return out
}

// Buttons is FindByClass with concrete element types.
func (e *Element) Buttons(class string) []*Element {
	var out []*Element
	e.walk(func(n *html.Node) {
		if classMatcher(class).Match(n) {
			out = append(out, &Element{doc: e.doc, node: n})
		}
	})
	return out
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(e.node)
	return strings.TrimSpace(b.String())
}

func (e *Element) walk(fn func(*html.Node)) {
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			fn(c)
			visit(c)
		}
	}
	visit(e.node)
}
