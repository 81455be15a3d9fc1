// Package errors provides coded, actionable errors for the storectx CLI and
// configuration loader.
//
// Library packages return plain errors; this package is for the outer
// surfaces, where a user needs to know what to fix.
//
// # Error Codes
//
// Each error has a code that maps to a short message, an optional longer
// explanation and an optional hint:
//   - SC1xx: configuration (file, environment, backend selection, logging)
//   - SC2xx: storage backends (open, read, write, listing)
//   - SC3xx: CLI commands
//
// # Usage
//
//	err := errors.New(errors.CodeMissingSetting).
//	    WithSubject("local.sqlite_path")
//
//	fmt.Print(err.Format())
//	// ERROR SC104: Missing backend setting
//	//
//	//   local.sqlite_path
//	//
//	//   The selected backend needs a setting that is empty: ...
package errors
