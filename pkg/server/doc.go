// Package server serves a page with a live style switcher.
//
// Page requests are rendered server-side: the stylesheet is chosen for the
// viewport width the browser reports through client hints (or a configured
// default) and the "view" query parameter. The page then loads a small
// client script that opens a WebSocket and performs a handshake carrying
// its real URL and width.
//
// Each connection becomes a Session that owns a parsed copy of the page
// and a switcher bound to it. A session runs three goroutines:
//
//   - ReadLoop decodes frames and queues click and resize events
//   - EventLoop applies events to the switcher, one at a time
//   - WriteLoop sends heartbeat pings
//
// Every class change, head link change and history push the switcher makes
// is recorded as a patch and sent to the client in one frame per event.
//
// Basic usage:
//
//	src, _ := page.Open("site/index.html")
//	srv := server.New(&server.ServerConfig{Container: "#layouts"}, src)
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
