// Package gen renders planned derivations as Go source.
//
// Generation uses text/template for the file skeleton and go/format for the
// final layout; the unformatted source is dumped next to the output when
// formatting fails.
//
// Every derivation becomes one function taking the source value and one
// transformation per type parameter:
//
//	func RoundTripMsg[S0, T0 any](in Msg[S0], t0 func(S0) T0) Msg[T0]
//
// Codegen patterns:
//   - Direct assignment and primitive conversion
//   - Cloning of byte slices and self-encoding slices and maps
//   - Pointer wrap, unwrap and re-boxing with nil checks
//   - Sequence and mapping loops, keys visited in encoded order when they may collide
//   - omitempty guards on record members
//   - Calls to the functions of referenced types and to alias functions
package gen
