package dom

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/semiresponsive/pkg/protocol"
)

// HIDAttr is the attribute hydration IDs are stored in.
const HIDAttr = "data-hid"

// ErrNoMatch is returned when a selector matches nothing.
var ErrNoMatch = errors.New("dom: selector matched no element")

// Observer receives a patch for every mutation of an observed document.
type Observer func(protocol.Patch)

// Document is a parsed HTML page.
type Document struct {
	root     *html.Node
	head     *html.Node
	body     *html.Node
	observer Observer
}

var (
	headSelector = cascadia.MustCompile("head")
	bodySelector = cascadia.MustCompile("body")
)

// Parse reads an HTML document. Missing <html>, <head> and <body> elements
// are synthesized by the parser.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}
	d := &Document{
		root: root,
		head: cascadia.Query(root, headSelector),
		body: cascadia.Query(root, bodySelector),
	}
	if d.head == nil || d.body == nil {
		return nil, errors.New("dom: document has no head or body")
	}
	return d, nil
}

// ParseString parses an HTML document from a string.
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// ParseBytes parses an HTML document from a byte slice.
func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// Observe attaches fn as the mutation observer, replacing any previous one.
// Pass nil to detach.
func (d *Document) Observe(fn Observer) {
	d.observer = fn
}

func (d *Document) emit(p protocol.Patch) {
	if d.observer != nil {
		d.observer(p)
	}
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Head returns the document head.
func (d *Document) Head() *Head {
	return &Head{doc: d}
}

// Query returns every element matching the CSS selector, in document
// order.
func (d *Document) Query(selector string) ([]*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}
	nodes := cascadia.QueryAll(d.root, sel)
	out := make([]*Element, len(nodes))
	for i, n := range nodes {
		out[i] = &Element{doc: d, node: n}
	}
	return out, nil
}

// Container returns the first element matching selector as the root of a
// style switcher.
func (d *Document) Container(selector string) (*Element, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("dom: selector %q: %w", selector, err)
	}
	n := cascadia.Query(d.root, sel)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return &Element{doc: d, node: n}, nil
}

// AssignHIDs gives every element carrying class an ID h1, h2, ... in
// document order and returns how many were numbered. Existing data-hid
// values are overwritten.
func (d *Document) AssignHIDs(class string) int {
	nodes := cascadia.QueryAll(d.root, classMatcher(class))
	for i, n := range nodes {
		setAttr(n, HIDAttr, "h"+strconv.Itoa(i+1))
	}
	return len(nodes)
}

// ElementByHID finds the element with the given hydration ID.
func (d *Document) ElementByHID(hid string) *Element {
	if hid == "" {
		return nil
	}
	n := cascadia.Query(d.root, attrMatcher{name: HIDAttr, value: hid})
	if n == nil {
		return nil
	}
	return &Element{doc: d, node: n}
}

// AppendScript appends <script src=src defer> to the end of the body.
func (d *Document) AppendScript(src string) {
	d.body.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr: []html.Attribute{
			{Key: "src", Val: src},
			{Key: "defer"},
		},
	})
}

// SetBodyAttr sets an attribute on <body>. Used to hand configuration to
// the client.
func (d *Document) SetBodyAttr(name, value string) {
	setAttr(d.body, name, value)
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

// String renders the document, returning "" on error.
func (d *Document) String() string {
	var b strings.Builder
	if err := d.Render(&b); err != nil {
		return ""
	}
	return b.String()
}

// classMatcher matches elements whose class list contains the class.
type classMatcher string

func (m classMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	v, ok := getAttr(n, "class")
	return ok && containsClass(v, string(m))
}

// attrMatcher matches elements whose attribute equals a value exactly.
type attrMatcher struct {
	name  string
	value string
}

func (m attrMatcher) Match(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	v, ok := getAttr(n, m.name)
	return ok && v == m.value
}

func getAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

func setAttr(n *html.Node, name, value string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

func removeAttr(n *html.Node, name string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func containsClass(list, class string) bool {
	for _, c := range strings.Fields(list) {
		if c == class {
			return true
		}
	}
	return false
}
