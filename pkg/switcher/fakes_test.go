package switcher

import "slices"

type fakeButton struct {
	name    string
	attrs   map[string]string
	classes []string
}

// button builds a selector button from attribute name/value pairs.
func button(name string, attrs ...string) *fakeButton {
	b := &fakeButton{name: name, attrs: map[string]string{}, classes: []string{DefaultButtonClass}}
	for i := 0; i+1 < len(attrs); i += 2 {
		b.attrs[attrs[i]] = attrs[i+1]
	}
	return b
}

func (b *fakeButton) Attr(name string) (string, bool) {
	v, ok := b.attrs[name]
	return v, ok
}

func (b *fakeButton) HasClass(class string) bool {
	return slices.Contains(b.classes, class)
}

func (b *fakeButton) AddClass(class string) {
	if !b.HasClass(class) {
		b.classes = append(b.classes, class)
	}
}

func (b *fakeButton) RemoveClass(class string) {
	b.classes = slices.DeleteFunc(b.classes, func(c string) bool { return c == class })
}

type fakeContainer struct {
	buttons []*fakeButton
	finds   int
}

func (c *fakeContainer) FindByClass(class string) []Element {
	c.finds++
	var out []Element
	for _, b := range c.buttons {
		if b.HasClass(class) {
			out = append(out, b)
		}
	}
	return out
}

type fakeHead struct {
	links   []string
	appends int
}

func (h *fakeHead) RemoveStylesheet(href string) {
	h.links = slices.DeleteFunc(h.links, func(l string) bool { return l == href })
}

func (h *fakeHead) AppendStylesheet(href string) {
	h.links = append(h.links, href)
	h.appends++
}

type fakeLocation string

func (l fakeLocation) Href() string { return string(l) }

type fakeHistory struct {
	pushed []string
}

func (h *fakeHistory) PushState(url string) {
	h.pushed = append(h.pushed, url)
}

// fixture is the two-stylesheet page used throughout: a wide layout from
// 900px, a narrow one from 0px and an auto button.
type fixture struct {
	wide, narrow, auto *fakeButton
	container          *fakeContainer
	head               *fakeHead
	history            *fakeHistory
	width              *Width
}

func newFixture(width int, withAuto bool) *fixture {
	f := &fixture{
		wide:    button("wide", DefaultLinkHrefAttr, "/css/wide.css", DefaultMinWidthAttr, "900", DefaultParamValueAttr, "wide"),
		narrow:  button("narrow", DefaultLinkHrefAttr, "/css/narrow.css", DefaultMinWidthAttr, "0", DefaultParamValueAttr, "narrow"),
		auto:    button("auto"),
		head:    &fakeHead{},
		history: &fakeHistory{},
		width:   NewWidth(width),
	}
	f.container = &fakeContainer{buttons: []*fakeButton{f.narrow, f.wide}}
	if withAuto {
		f.container.buttons = append(f.container.buttons, f.auto)
	}
	return f
}

func (f *fixture) env(href string) Env {
	return Env{
		Head:     f.head,
		Location: fakeLocation(href),
		History:  f.history,
		Viewport: f.width,
	}
}

func (f *fixture) selected() []string {
	var names []string
	for _, b := range f.container.buttons {
		if b.HasClass(DefaultSelectedClass) {
			names = append(names, b.name)
		}
	}
	return names
}
