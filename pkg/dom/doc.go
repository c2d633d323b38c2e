// Package dom is an HTML document the style switcher can run against.
//
// Documents are parsed with golang.org/x/net/html and queried with
// cascadia selectors. Every mutation the switcher performs (class changes
// on buttons, stylesheet links in the head) is applied to the tree and, when
// an Observer is attached, reported as a protocol.Patch so a connected
// client can mirror it.
//
// Selector buttons are addressed on the wire by hydration IDs ("h1", "h2",
// ...) stored in the data-hid attribute. AssignHIDs numbers them in
// document order, so two documents parsed from the same markup agree on
// every ID.
package dom
