// Package errors provides structured, coded errors for the observation
// module.
//
// Every error carries a short code (e.g. "E001") that maps to a registered
// template with a category, a one-line message, a longer explanation and a
// documentation link. Callers refine an error fluently:
//
//	err := errors.New("E120").
//	    WithDetail("observe.json: unexpected end of JSON input").
//	    WithSuggestion("Check that observe.json is valid JSON")
//
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR E120: Invalid configuration file
//	//
//	//   observe.json: unexpected end of JSON input
//	//
//	//   Hint: Check that observe.json is valid JSON
//
// # Error Categories
//
//   - runtime: misuse of the observation core (invalid property identifiers)
//   - config: observe.json loading and validation
//   - cli: command line arguments
//   - server: HTTP and WebSocket request handling
package errors
