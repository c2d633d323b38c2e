package switcher

// Width is a viewport of known width in CSS pixels. The host updates it
// with Set before forwarding a resize.
type Width struct {
	px int
}

// NewWidth returns a viewport px pixels wide.
func NewWidth(px int) *Width {
	return &Width{px: px}
}

// Set updates the width.
func (w *Width) Set(px int) {
	w.px = px
}

// Px returns the width.
func (w *Width) Px() int {
	return w.px
}

// MinWidth reports whether "(min-width: px)" matches.
func (w *Width) MinWidth(px int) bool {
	return w.px >= px
}
