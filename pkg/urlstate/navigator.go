package urlstate

import "github.com/vango-dev/semiresponsive/pkg/protocol"

// Navigator tracks the browser location of one client and queues history
// pushes as patches. The session passes in a closure that appends to its
// pending patch buffer, so the URL change reaches the client together with
// the DOM patches of the same event.
type Navigator struct {
	href       string
	queuePatch func(protocol.Patch)
}

// NewNavigator creates a navigator positioned at href.
func NewNavigator(href string, queuePatch func(protocol.Patch)) *Navigator {
	return &Navigator{href: href, queuePatch: queuePatch}
}

// Href returns the current location.
func (n *Navigator) Href() string {
	return n.href
}

// PushState records url as the current location and queues a push patch.
func (n *Navigator) PushState(url string) {
	n.href = url
	if n.queuePatch == nil {
		return
	}
	n.queuePatch(protocol.NewURLPushPatch(url))
}

// StaticLocation is a fixed location with no history, used when rendering
// a page ahead of time.
type StaticLocation string

// Href returns the location.
func (l StaticLocation) Href() string {
	return string(l)
}
