package switcher

import (
	"io"
	"log/slog"

	"github.com/vango-dev/semiresponsive/pkg/urlstate"
)

// Element is one node of the host document.
type Element interface {
	// Attr returns the attribute value and whether it is present.
	Attr(name string) (string, bool)
	HasClass(class string) bool
	AddClass(class string)
	RemoveClass(class string)
}

// Container is the element the widget is bound to.
type Container interface {
	// FindByClass returns the descendants carrying class, in document order.
	FindByClass(class string) []Element
}

// Head is the document head, where stylesheet links live.
type Head interface {
	// RemoveStylesheet removes every link whose href equals href.
	RemoveStylesheet(href string)
	// AppendStylesheet appends <link rel="stylesheet" href=href>.
	AppendStylesheet(href string)
}

// Location reads the current URL.
type Location interface {
	Href() string
}

// History changes the URL without navigating.
type History interface {
	PushState(url string)
}

// Viewport answers width media queries.
type Viewport interface {
	// MinWidth reports whether the viewport is at least px wide.
	MinWidth(px int) bool
}

// Env holds the collaborators a Switcher works against. History is
// optional: when nil, clicks still switch stylesheets but the URL is left
// alone. A nil Head or Viewport disables the corresponding side effect.
type Env struct {
	Head     Head
	Location Location
	History  History
	Viewport Viewport
}

// Mode tells whether the stylesheet follows the viewport or the URL.
type Mode int

const (
	// ModeAuto follows the viewport width.
	ModeAuto Mode = iota

	// ModeExplicit follows the URL parameter.
	ModeExplicit
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeExplicit {
		return "explicit"
	}
	return "auto"
}

// Selection describes a stylesheet that was just applied.
type Selection struct {
	Href  string
	Value string // parameter value of the button, "" for auto buttons
	Mode  Mode
}

// Option configures a Switcher.
type Option func(*Switcher)

// WithConfig merges cfg over the defaults.
func WithConfig(cfg Config) Option {
	return func(s *Switcher) {
		s.cfg = s.cfg.Merge(cfg)
	}
}

// WithLogger sets the logger. Default: discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Switcher) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnApply registers fn to be called every time a stylesheet link is
// injected.
func OnApply(fn func(Selection)) Option {
	return func(s *Switcher) {
		s.onApply = fn
	}
}

// Switcher swaps the active stylesheet of a document.
type Switcher struct {
	root    Container
	env     Env
	cfg     Config
	order   []Breakpoint
	parsed  *urlstate.ParsedURL
	logger  *slog.Logger
	onApply func(Selection)
	enabled bool
}

// New binds a switcher to root, applies the initial stylesheet and returns
// it. When root holds no selector buttons the switcher stays inert and
// every method is a no-op.
func New(root Container, env Env, opts ...Option) *Switcher {
	s := &Switcher{
		root:   root,
		env:    env,
		cfg:    DefaultConfig(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}

	href := ""
	if env.Location != nil {
		href = env.Location.Href()
	}
	s.parsed = urlstate.Parse(href)

	if root == nil || len(s.buttons()) == 0 {
		s.logger.Debug("no selector buttons, switcher disabled", "class", s.cfg.ButtonClass)
		return s
	}
	s.enabled = true
	s.order = sortBreakpoints(s.buttons(), s.cfg.MinWidthAttr)
	s.SelectByURLParam()
	return s
}

// Enabled reports whether the container holds any selector buttons.
func (s *Switcher) Enabled() bool {
	return s.enabled
}

// Config returns the effective configuration.
func (s *Switcher) Config() Config {
	return s.cfg
}

// Href returns the URL as the switcher currently sees it.
func (s *Switcher) Href() string {
	return s.parsed.String()
}

// Mode reports whether a matching URL parameter pins the stylesheet.
func (s *Switcher) Mode() Mode {
	if _, ok := s.explicitValue(); ok {
		return ModeExplicit
	}
	return ModeAuto
}

// Breakpoints returns the breakpoint order computed by the last width
// selection, widest first.
func (s *Switcher) Breakpoints() []Breakpoint {
	return append([]Breakpoint(nil), s.order...)
}

// SelectByWidth applies the stylesheet of the widest breakpoint button that
// fits the viewport and returns that button. Buttons without a breakpoint
// are never chosen here. When nothing fits, nothing changes and nil is
// returned.
func (s *Switcher) SelectByWidth() Element {
	if !s.enabled {
		return nil
	}
	buttons := s.buttons()
	s.order = sortBreakpoints(buttons, s.cfg.MinWidthAttr)
	if s.env.Viewport == nil {
		return nil
	}
	for _, bp := range s.order {
		if !s.env.Viewport.MinWidth(bp.Width) {
			continue
		}
		btn := buttons[bp.Index]
		s.logger.Debug("breakpoint matched", "min_width", bp.Width, "index", bp.Index)
		s.applyButton(buttons, btn, ModeAuto)
		return btn
	}
	s.logger.Debug("no breakpoint matched")
	return nil
}

// SelectByURLParam applies the state encoded in the URL: the button named
// by the parameter when one matches, width-based auto selection otherwise.
func (s *Switcher) SelectByURLParam() {
	if !s.enabled {
		return
	}
	value, ok := s.explicitValue()
	if !ok {
		s.markAuto(s.SelectByWidth())
		return
	}
	s.ApplyStylesheet(value)
	s.MarkSelected(value)
}

// ApplyStylesheet removes every stylesheet link belonging to this widget
// from the head, then injects the stylesheet of the button whose parameter
// value equals value. It reports whether a link was injected.
func (s *Switcher) ApplyStylesheet(value string) bool {
	if !s.enabled {
		return false
	}
	buttons := s.buttons()
	btn := s.buttonByValue(buttons, value)
	if btn == nil {
		s.removeStylesheets(buttons)
		s.logger.Debug("no button for value", "value", value)
		return false
	}
	return s.applyButton(buttons, btn, ModeExplicit)
}

// MarkSelected moves the selected class. An empty value selects the auto
// group, i.e. every button without a parameter value.
func (s *Switcher) MarkSelected(value string) {
	if !s.enabled {
		return
	}
	buttons := s.buttons()
	for _, b := range buttons {
		b.RemoveClass(s.cfg.SelectedClass)
	}
	if value == "" {
		for _, b := range buttons {
			if _, ok := b.Attr(s.cfg.ParamValueAttr); !ok {
				b.AddClass(s.cfg.SelectedClass)
			}
		}
		return
	}
	if btn := s.buttonByValue(buttons, value); btn != nil {
		btn.AddClass(s.cfg.SelectedClass)
	}
}

// Click handles a click on a selector button. It returns false when the
// button was already selected and nothing happened.
func (s *Switcher) Click(btn Element) bool {
	if !s.enabled || btn == nil {
		return false
	}
	if s.isSelected(btn) {
		return false
	}

	if value, ok := btn.Attr(s.cfg.ParamValueAttr); ok {
		s.parsed.Set(s.cfg.ParamKey, value)
	} else {
		s.parsed.Delete(s.cfg.ParamKey)
	}

	url := s.parsed.String()
	if s.env.History != nil {
		s.env.History.PushState(url)
	} else {
		s.logger.Debug("history unavailable, url not updated", "url", url)
	}

	s.SelectByURLParam()
	return true
}

// Resize re-evaluates breakpoints after the viewport changed. It does
// nothing while a URL parameter pins the stylesheet.
func (s *Switcher) Resize() {
	if !s.enabled {
		return
	}
	if _, ok := s.explicitValue(); ok {
		return
	}
	if chosen := s.SelectByWidth(); chosen != nil {
		s.markAuto(chosen)
	}
}

// markAuto marks the auto group. A container without auto buttons has
// nothing to show auto mode with, so the button chosen by width is marked
// instead.
func (s *Switcher) markAuto(chosen Element) {
	s.MarkSelected("")
	if chosen == nil {
		return
	}
	for _, b := range s.buttons() {
		if _, ok := b.Attr(s.cfg.ParamValueAttr); !ok {
			return
		}
	}
	chosen.AddClass(s.cfg.SelectedClass)
}

// isSelected reports whether a click on btn would change nothing. In auto
// mode a button with a parameter value only carries the selected class as
// the markAuto fallback, and clicking it still pins its stylesheet.
func (s *Switcher) isSelected(btn Element) bool {
	if !btn.HasClass(s.cfg.SelectedClass) {
		return false
	}
	if _, ok := btn.Attr(s.cfg.ParamValueAttr); ok && s.Mode() == ModeAuto {
		return false
	}
	return true
}

func (s *Switcher) buttons() []Element {
	if s.root == nil {
		return nil
	}
	return s.root.FindByClass(s.cfg.ButtonClass)
}

func (s *Switcher) buttonByValue(buttons []Element, value string) Element {
	for _, b := range buttons {
		if v, ok := b.Attr(s.cfg.ParamValueAttr); ok && v == value {
			return b
		}
	}
	return nil
}

// explicitValue returns the URL parameter when it is set and names one of
// the buttons. An empty or unknown value leaves the widget in auto mode.
func (s *Switcher) explicitValue() (string, bool) {
	value, ok := s.parsed.Get(s.cfg.ParamKey)
	if !ok || value == "" {
		return "", false
	}
	if s.buttonByValue(s.buttons(), value) == nil {
		return "", false
	}
	return value, true
}

func (s *Switcher) removeStylesheets(buttons []Element) {
	if s.env.Head == nil {
		return
	}
	seen := make(map[string]struct{}, len(buttons))
	for _, b := range buttons {
		href, ok := b.Attr(s.cfg.LinkHrefAttr)
		if !ok {
			continue
		}
		if _, dup := seen[href]; dup {
			continue
		}
		seen[href] = struct{}{}
		s.env.Head.RemoveStylesheet(href)
	}
}

func (s *Switcher) applyButton(buttons []Element, btn Element, mode Mode) bool {
	s.removeStylesheets(buttons)
	href, ok := btn.Attr(s.cfg.LinkHrefAttr)
	if !ok || s.env.Head == nil {
		return false
	}
	s.env.Head.AppendStylesheet(href)

	value, _ := btn.Attr(s.cfg.ParamValueAttr)
	s.logger.Debug("stylesheet applied", "href", href, "value", value, "mode", mode)
	if s.onApply != nil {
		s.onApply(Selection{Href: href, Value: value, Mode: mode})
	}
	return true
}
