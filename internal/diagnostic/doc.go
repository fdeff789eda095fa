// Package diagnostic provides structured errors, warnings and notes
// collected while planning round-trip functions.
//
// Key capabilities:
//   - Composition failures keyed by code (arity_mismatch, tag_mismatch, ...)
//   - Field paths locating the failure inside the declared type
//   - Name suggestions for mismatched members and variants
package diagnostic
