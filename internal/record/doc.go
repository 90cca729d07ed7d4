// Package record validates and normalizes individual raw user records.
//
// Processing a record happens in two stages:
//   - Validate classifies a RawRecord and returns its normalized Fields, or
//     the first RejectReason that applies.
//   - Transform assembles a CleanRecord from Fields that passed validation.
//
// Process combines both and returns a tagged model.Outcome. ProcessMinimal
// is the reduced variant used by minimal mode, which only looks at the email.
//
// Every function in this package is pure: no I/O, no shared state, and the
// same input always yields the same output. This is what allows chunks to be
// processed on separate goroutines.
package record
