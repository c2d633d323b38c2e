// Package errors provides structured, actionable error messages for the
// semiresponsive CLI and server.
//
// Errors carry a registered code that maps to a short message, a longer
// explanation and a category:
//
//   - config: loading or validating semiresponsive.json / .yaml
//   - page: loading page markup from disk or object storage
//   - server: starting or running the HTTP/WebSocket server
//   - cli: command-line usage
//
// # Usage
//
//	err := errors.New("E102").
//	    WithDetail("paramKey must not contain '=' or '&'").
//	    WithSuggestion("Use a plain word such as \"view\"")
//
//	errors.PrintError(err)
//
// Error satisfies errors.Is/As through Unwrap, so wrapped causes stay
// inspectable with the standard library.
package errors
