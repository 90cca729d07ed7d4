// Package dataset reads raw user records from JSON files and writes the
// cleaned dataset back out.
//
// All file access goes through a go-billy filesystem so that the CLI can use
// the native filesystem while tests run against an in-memory one.
package dataset
