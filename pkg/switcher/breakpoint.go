package switcher

import "sort"

// Breakpoint pairs a button, by its position among the container's
// selector buttons, with its minimum viewport width.
type Breakpoint struct {
	Index int
	Width int
}

// sortBreakpoints collects the buttons that carry a parseable width and
// orders them widest first. Equal widths keep document order.
func sortBreakpoints(buttons []Element, attr string) []Breakpoint {
	order := make([]Breakpoint, 0, len(buttons))
	for i, b := range buttons {
		raw, ok := b.Attr(attr)
		if !ok {
			continue
		}
		w, ok := parseWidth(raw)
		if !ok {
			continue
		}
		order = append(order, Breakpoint{Index: i, Width: w})
	}
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Width > order[j].Width
	})
	return order
}

// parseWidth reads a leading decimal integer and ignores whatever follows,
// so "900", " 900px" and "900.5" all give 900. Negative widths are not
// valid media query values and are rejected.
func parseWidth(s string) (int, bool) {
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i < len(s) && s[i] == '-' {
		return 0, false
	}
	if i < len(s) && s[i] == '+' {
		i++
	}
	start := i
	n := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		if n > (1<<31)/10 {
			return 0, false
		}
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 0, false
	}
	return n, true
}
