// Package errors provides structured, actionable error messages for
// Trinity.
//
// Each error has a stable code (e.g., "E001") that maps to a short
// message, a detailed explanation, and a documentation URL. Codes give
// operators something to search for and let the host report failures
// over the wire without leaking internals.
//
// # Error Categories
//
// Errors are organized into categories:
//   - runtime: scope and node lifecycle errors (duplicate kind, missing
//     parent, double attach)
//   - protocol: wire errors on the session transport (bad frames,
//     unknown events)
//   - config: configuration file and value errors
//   - cli: command-line usage errors
//
// # Usage
//
//	err := errors.New("E002").
//	    WithDetailf("bridge on %q needs parent kind %q", "editor", "settings").
//	    WithSuggestion("Register the settings node before the editor node")
//
//	fmt.Println(err.Format())
package errors
