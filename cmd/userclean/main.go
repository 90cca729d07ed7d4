// Package main provides the entry point for the userclean CLI.
//
// userclean validates, normalizes and aggregates a JSON array of user
// records. It writes the cleaned dataset and reports the most common email
// domains and cities.
//
// Usage:
//
//	userclean run [input.json]
//	userclean check [input.json]
//
// See --help for all available options.
package main

// main is the entry point for userclean.
func main() {
	Execute()
}
