// Package switcher implements a stylesheet switcher widget.
//
// A Switcher is bound to one container element holding "selector buttons".
// Each button may carry three attributes:
//
//	sr_link_href  the stylesheet to activate
//	sr_min_width  a minimum viewport width in pixels (optional)
//	sr_param_val  the value used for the button in the URL (optional)
//
// Buttons without sr_param_val form the "auto" group. While the URL has no
// (matching) view parameter the widget is in auto mode: the stylesheet
// follows the viewport width, picking the button with the largest
// breakpoint that still fits. Clicking a button with a parameter value
// pins that stylesheet by pushing ?view=<value> onto the history; clicking
// an auto button removes the parameter again.
//
// The widget never touches a browser directly. Documents, heads, locations
// and viewports are interfaces (see Element, Container, Head, Location,
// History and Viewport), implemented server-side by package dom and
// package urlstate.
//
// A Switcher is not safe for concurrent use. Hosts drive it from a single
// event loop, the same way a browser delivers click and resize events.
package switcher
