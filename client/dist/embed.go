package clientdist

import _ "embed"

// ClientJS is the thin client served at "/_sr/client.js".
//
//go:embed semiresponsive.js
var ClientJS []byte
