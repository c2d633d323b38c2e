package switcher

import (
	"slices"
	"testing"
)

const page = "https://example.com/article"

func TestNewWithoutButtons(t *testing.T) {
	head := &fakeHead{}
	s := New(&fakeContainer{}, Env{Head: head, Location: fakeLocation(page + "?view=wide"), Viewport: NewWidth(1024)})

	if s.Enabled() {
		t.Error("switcher without buttons should be disabled")
	}
	if len(head.links) != 0 {
		t.Errorf("links: got %v, want none", head.links)
	}

	// Every operation is a no-op.
	s.SelectByURLParam()
	s.Resize()
	if s.ApplyStylesheet("wide") {
		t.Error("ApplyStylesheet on disabled switcher should report false")
	}
	if s.Click(button("x")) {
		t.Error("Click on disabled switcher should report false")
	}
	if len(head.links) != 0 {
		t.Errorf("links after no-ops: got %v, want none", head.links)
	}
}

func TestNewNilContainer(t *testing.T) {
	s := New(nil, Env{})
	if s.Enabled() {
		t.Error("nil container should leave the switcher disabled")
	}
	if s.SelectByWidth() != nil {
		t.Error("SelectByWidth on disabled switcher should return nil")
	}
}

func TestSelectByWidthWide(t *testing.T) {
	f := newFixture(1024, false)
	s := New(f.container, f.env(page))

	if got := f.head.links; !slices.Equal(got, []string{"/css/wide.css"}) {
		t.Errorf("links: got %v, want [/css/wide.css]", got)
	}
	// No auto button on the page, so the width choice carries the mark.
	if got := f.selected(); !slices.Equal(got, []string{"wide"}) {
		t.Errorf("selected: got %v, want [wide]", got)
	}
	if s.Mode() != ModeAuto {
		t.Errorf("Mode: got %v, want auto", s.Mode())
	}
}

func TestSelectByWidthMarksAutoGroup(t *testing.T) {
	f := newFixture(1024, true)
	New(f.container, f.env(page))

	if got := f.head.links; !slices.Equal(got, []string{"/css/wide.css"}) {
		t.Errorf("links: got %v, want [/css/wide.css]", got)
	}
	if got := f.selected(); !slices.Equal(got, []string{"auto"}) {
		t.Errorf("selected: got %v, want [auto]", got)
	}
}

func TestSelectByWidthNoMatch(t *testing.T) {
	f := newFixture(1024, true)
	f.narrow.attrs[DefaultMinWidthAttr] = "600"
	f.width.Set(320)
	s := New(f.container, f.env(page))

	if len(f.head.links) != 0 {
		t.Errorf("links: got %v, want none", f.head.links)
	}
	if s.SelectByWidth() != nil {
		t.Error("SelectByWidth should return nil when no breakpoint fits")
	}
}

func TestSelectByWidthIgnoresButtonsWithoutBreakpoint(t *testing.T) {
	f := newFixture(100, true)
	delete(f.narrow.attrs, DefaultMinWidthAttr)
	f.auto.attrs[DefaultLinkHrefAttr] = "/css/auto.css"
	New(f.container, f.env(page))

	if len(f.head.links) != 0 {
		t.Errorf("links: got %v, want none", f.head.links)
	}
}

func TestBreakpointOrder(t *testing.T) {
	f := newFixture(1024, true)
	f.container.buttons = append(f.container.buttons,
		button("medium", DefaultLinkHrefAttr, "/css/medium.css", DefaultMinWidthAttr, "600px", DefaultParamValueAttr, "medium"),
		button("huge", DefaultLinkHrefAttr, "/css/huge.css", DefaultMinWidthAttr, "1600", DefaultParamValueAttr, "huge"),
		button("broken", DefaultLinkHrefAttr, "/css/broken.css", DefaultMinWidthAttr, "wide", DefaultParamValueAttr, "broken"),
		button("negative", DefaultLinkHrefAttr, "/css/negative.css", DefaultMinWidthAttr, "-5", DefaultParamValueAttr, "negative"),
	)
	s := New(f.container, f.env(page))

	order := s.Breakpoints()
	want := []int{1600, 900, 600, 0}
	if len(order) != len(want) {
		t.Fatalf("Breakpoints: got %v, want widths %v", order, want)
	}
	for i := range order {
		if order[i].Width != want[i] {
			t.Errorf("order[%d].Width: got %d, want %d", i, order[i].Width, want[i])
		}
		if i > 0 && order[i-1].Width <= order[i].Width {
			t.Errorf("order not strictly descending at %d: %v", i, order)
		}
	}
	if order[0].Index != 4 {
		t.Errorf("widest index: got %d, want 4", order[0].Index)
	}
}

func TestBreakpointOrderRecomputed(t *testing.T) {
	f := newFixture(1024, true)
	s := New(f.container, f.env(page))

	f.container.buttons = append(f.container.buttons,
		button("huge", DefaultLinkHrefAttr, "/css/huge.css", DefaultMinWidthAttr, "1000", DefaultParamValueAttr, "huge"))
	s.SelectByWidth()

	if got := s.Breakpoints()[0].Width; got != 1000 {
		t.Errorf("widest after DOM change: got %d, want 1000", got)
	}
	if got := f.head.links; !slices.Equal(got, []string{"/css/huge.css"}) {
		t.Errorf("links: got %v, want [/css/huge.css]", got)
	}
}

func TestSelectByURLParam(t *testing.T) {
	tests := []struct {
		name     string
		href     string
		width    int
		links    []string
		selected []string
		mode     Mode
	}{
		{"Narrow", page + "?view=narrow", 1024, []string{"/css/narrow.css"}, []string{"narrow"}, ModeExplicit},
		{"WideOnSmallScreen", page + "?view=wide", 320, []string{"/css/wide.css"}, []string{"wide"}, ModeExplicit},
		{"OtherParams", page + "?lang=en&view=narrow#top", 1024, []string{"/css/narrow.css"}, []string{"narrow"}, ModeExplicit},
		{"Absent", page + "?lang=en", 1024, []string{"/css/wide.css"}, []string{"auto"}, ModeAuto},
		{"Unknown", page + "?view=print", 1024, []string{"/css/wide.css"}, []string{"auto"}, ModeAuto},
		{"Empty", page + "?view=", 320, []string{"/css/narrow.css"}, []string{"auto"}, ModeAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.width, true)
			s := New(f.container, f.env(tt.href))

			if !slices.Equal(f.head.links, tt.links) {
				t.Errorf("links: got %v, want %v", f.head.links, tt.links)
			}
			if got := f.selected(); !slices.Equal(got, tt.selected) {
				t.Errorf("selected: got %v, want %v", got, tt.selected)
			}
			if s.Mode() != tt.mode {
				t.Errorf("Mode: got %v, want %v", s.Mode(), tt.mode)
			}
		})
	}
}

func TestApplyStylesheetIdempotent(t *testing.T) {
	f := newFixture(1024, true)
	s := New(f.container, f.env(page))

	for i := 0; i < 3; i++ {
		if !s.ApplyStylesheet("narrow") {
			t.Fatalf("ApplyStylesheet(narrow) #%d reported false", i)
		}
	}
	if got := f.head.links; !slices.Equal(got, []string{"/css/narrow.css"}) {
		t.Errorf("links: got %v, want exactly one narrow link", got)
	}
}

func TestApplyStylesheetKeepsForeignLinks(t *testing.T) {
	f := newFixture(1024, true)
	f.head.links = []string{"/css/base.css"}
	s := New(f.container, f.env(page))
	s.ApplyStylesheet("narrow")

	if got := f.head.links; !slices.Equal(got, []string{"/css/base.css", "/css/narrow.css"}) {
		t.Errorf("links: got %v", got)
	}
}

func TestApplyStylesheetUnknownValue(t *testing.T) {
	f := newFixture(1024, true)
	s := New(f.container, f.env(page))

	if s.ApplyStylesheet("print") {
		t.Error("ApplyStylesheet(print) should report false")
	}
	if len(f.head.links) != 0 {
		t.Errorf("links: got %v, want candidates removed", f.head.links)
	}
}

func TestApplyStylesheetButtonWithoutHref(t *testing.T) {
	f := newFixture(1024, true)
	delete(f.narrow.attrs, DefaultLinkHrefAttr)
	s := New(f.container, f.env(page))

	if s.ApplyStylesheet("narrow") {
		t.Error("button without href should not inject a link")
	}
	if len(f.head.links) != 0 {
		t.Errorf("links: got %v, want none", f.head.links)
	}
}

func TestMarkSelected(t *testing.T) {
	f := newFixture(1024, true)
	second := button("auto2")
	f.container.buttons = append(f.container.buttons, second)
	s := New(f.container, f.env(page))

	s.MarkSelected("narrow")
	if got := f.selected(); !slices.Equal(got, []string{"narrow"}) {
		t.Errorf("selected: got %v, want [narrow]", got)
	}

	s.MarkSelected("")
	if got := f.selected(); !slices.Equal(got, []string{"auto", "auto2"}) {
		t.Errorf("selected: got %v, want [auto auto2]", got)
	}

	s.MarkSelected("missing")
	if got := f.selected(); len(got) != 0 {
		t.Errorf("selected: got %v, want none", got)
	}
}

func TestClickSelectsValue(t *testing.T) {
	f := newFixture(1024, true)
	s := New(f.container, f.env(page+"?lang=en"))

	if !s.Click(f.narrow) {
		t.Fatal("Click(narrow) reported false")
	}
	want := page + "?lang=en&view=narrow"
	if !slices.Equal(f.history.pushed, []string{want}) {
		t.Errorf("pushed: got %v, want [%s]", f.history.pushed, want)
	}
	if s.Href() != want {
		t.Errorf("Href: got %q, want %q", s.Href(), want)
	}
	if got := f.head.links; !slices.Equal(got, []string{"/css/narrow.css"}) {
		t.Errorf("links: got %v", got)
	}
	if got := f.selected(); !slices.Equal(got, []string{"narrow"}) {
		t.Errorf("selected: got %v", got)
	}
	if s.Mode() != ModeExplicit {
		t.Errorf("Mode: got %v, want explicit", s.Mode())
	}
}

func TestClickAutoRevertsToWidth(t *testing.T) {
	f := newFixture(1024, true)
	s := New(f.container, f.env(page+"?view=narrow"))

	if !s.Click(f.auto) {
		t.Fatal("Click(auto) reported false")
	}
	if !slices.Equal(f.history.pushed, []string{page}) {
		t.Errorf("pushed: got %v, want [%s]", f.history.pushed, page)
	}
	if got := f.head.links; !slices.Equal(got, []string{"/css/wide.css"}) {
		t.Errorf("links: got %v, want width-based wide", got)
	}
	if got := f.selected(); !slices.Equal(got, []string{"auto"}) {
		t.Errorf("selected: got %v, want [auto]", got)
	}
	if s.Mode() != ModeAuto {
		t.Errorf("Mode: got %v, want auto", s.Mode())
	}
}

func TestClickSelectedIsNoop(t *testing.T) {
	f := newFixture(1024, true)
	s := New(f.container, f.env(page+"?view=narrow"))
	appends := f.head.appends

	if s.Click(f.narrow) {
		t.Error("Click on selected button should report false")
	}
	if len(f.history.pushed) != 0 {
		t.Errorf("pushed: got %v, want none", f.history.pushed)
	}
	if f.head.appends != appends {
		t.Error("Click on selected button should not touch the head")
	}
}

func TestClickPinsWidthChosenButton(t *testing.T) {
	f := newFixture(1024, false)
	s := New(f.container, f.env(page))
	if got := f.selected(); !slices.Equal(got, []string{"wide"}) {
		t.Fatalf("selected: got %v, want [wide]", got)
	}

	if !s.Click(f.wide) {
		t.Fatal("Click(wide) reported false, want the layout pinned")
	}
	if want := page + "?view=wide"; !slices.Equal(f.history.pushed, []string{want}) {
		t.Errorf("pushed: got %v, want [%s]", f.history.pushed, want)
	}
	if s.Mode() != ModeExplicit {
		t.Errorf("Mode: got %v, want explicit", s.Mode())
	}

	f.width.Set(500)
	s.Resize()
	if got := f.head.links; !slices.Equal(got, []string{"/css/wide.css"}) {
		t.Errorf("links after resize: got %v, want pinned wide", got)
	}
	if s.Click(f.wide) {
		t.Error("second Click(wide) should be a no-op once pinned")
	}
}

func TestClickWithoutHistory(t *testing.T) {
	f := newFixture(1024, true)
	env := f.env(page)
	env.History = nil
	s := New(f.container, env)

	if !s.Click(f.narrow) {
		t.Fatal("Click(narrow) reported false")
	}
	if got := f.head.links; !slices.Equal(got, []string{"/css/narrow.css"}) {
		t.Errorf("links: got %v, stylesheet should switch without history", got)
	}
	if s.Href() != page+"?view=narrow" {
		t.Errorf("Href: got %q", s.Href())
	}
}

func TestClickDoesNotEncode(t *testing.T) {
	f := newFixture(1024, true)
	f.narrow.attrs[DefaultParamValueAttr] = "a b&c"
	s := New(f.container, f.env(page))

	s.Click(f.narrow)
	if got := f.history.pushed[0]; got != page+"?view=a b&c" {
		t.Errorf("pushed: got %q, want raw value", got)
	}
}

func TestResize(t *testing.T) {
	t.Run("AutoMode", func(t *testing.T) {
		f := newFixture(1024, true)
		s := New(f.container, f.env(page))

		f.width.Set(500)
		s.Resize()
		if got := f.head.links; !slices.Equal(got, []string{"/css/narrow.css"}) {
			t.Errorf("links: got %v, want narrow", got)
		}
		if got := f.selected(); !slices.Equal(got, []string{"auto"}) {
			t.Errorf("selected: got %v, want [auto]", got)
		}
	})

	t.Run("ExplicitMode", func(t *testing.T) {
		f := newFixture(1024, true)
		s := New(f.container, f.env(page+"?view=wide"))
		appends := f.head.appends

		f.width.Set(500)
		s.Resize()
		if f.head.appends != appends {
			t.Error("Resize in explicit mode changed the stylesheet")
		}
		if got := f.head.links; !slices.Equal(got, []string{"/css/wide.css"}) {
			t.Errorf("links: got %v, want wide", got)
		}
	})

	t.Run("MovesMarkWithoutAutoGroup", func(t *testing.T) {
		f := newFixture(1024, false)
		s := New(f.container, f.env(page))

		f.width.Set(500)
		s.Resize()
		if got := f.selected(); !slices.Equal(got, []string{"narrow"}) {
			t.Errorf("selected: got %v, want [narrow]", got)
		}
	})
}

func TestWithConfig(t *testing.T) {
	b := &fakeButton{
		name:    "dark",
		attrs:   map[string]string{"data-href": "/css/dark.css", "data-theme": "dark"},
		classes: []string{"theme-btn"},
	}
	head := &fakeHead{}
	s := New(&fakeContainer{buttons: []*fakeButton{b}}, Env{
		Head:     head,
		Location: fakeLocation(page + "?theme=dark"),
		Viewport: NewWidth(800),
	}, WithConfig(Config{
		ButtonClass:    "theme-btn",
		SelectedClass:  "is-active",
		LinkHrefAttr:   "data-href",
		ParamValueAttr: "data-theme",
		ParamKey:       "theme",
	}))

	if got := s.Config().MinWidthAttr; got != DefaultMinWidthAttr {
		t.Errorf("MinWidthAttr: got %q, want default", got)
	}
	if !slices.Equal(head.links, []string{"/css/dark.css"}) {
		t.Errorf("links: got %v", head.links)
	}
	if !b.HasClass("is-active") {
		t.Error("custom selected class not applied")
	}
}

func TestOnApply(t *testing.T) {
	f := newFixture(1024, true)
	var got []Selection
	s := New(f.container, f.env(page), OnApply(func(sel Selection) { got = append(got, sel) }))
	s.Click(f.narrow)

	want := []Selection{
		{Href: "/css/wide.css", Value: "wide", Mode: ModeAuto},
		{Href: "/css/narrow.css", Value: "narrow", Mode: ModeExplicit},
	}
	if !slices.Equal(got, want) {
		t.Errorf("selections: got %+v, want %+v", got, want)
	}
}
