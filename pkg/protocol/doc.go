// Package protocol defines the wire messages exchanged between the
// semiresponsive thin client and the server.
//
// Messages are JSON text frames sent over a WebSocket connection. Every
// frame carries a type discriminator and a type-specific payload:
//
//	{"type":"handshake","payload":{"href":"https://example.com/?view=wide","width":1280,"pushState":true}}
//	{"type":"event","payload":{"seq":3,"kind":"click","hid":"h2"}}
//	{"type":"patches","payload":{"seq":7,"patches":[{"op":"addClass","hid":"h2","key":"semi_responsive_selected"}]}}
//
// # Frame Types
//
//   - FrameHandshake: client → server, connection setup
//   - FrameEvent: client → server, click and resize events
//   - FramePatches: server → client, DOM/head/URL mutations
//   - FramePing / FramePong: heartbeat in either direction
//   - FrameError: server → client, error report
//
// # Patches
//
// Patches mirror the side effects of the style switcher one for one:
// class changes on selector buttons, stylesheet link insertion and removal
// in the document head, and history pushes.
package protocol
