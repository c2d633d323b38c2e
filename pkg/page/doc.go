// Package page loads page markup and prepares it for the style switcher.
//
// Markup comes from a Source: a file, an S3 object or the built-in demo
// page. Prepare parses it, locates the switcher container and numbers the
// selector buttons; Render runs a switcher against the result for a given
// URL and viewport width and writes the server-side rendered HTML.
package page
