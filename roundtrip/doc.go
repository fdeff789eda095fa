// Package roundtrip computes, for a pair of compatible types S and T, the
// value decoding would produce from an encoded S without encoding it.
//
// Compatibility is structural. Pointers are optional values, arrays and
// slices are sequences, maps are mappings, structs are records matched
// member by member in declaration order, and structs implementing Union are
// tagged unions. Leaves must agree on their primitive kind, and types that
// encode themselves (time.Time, netip.Addr, ...) only match themselves.
//
//	type Msg[T any] struct{ Text T }
//
//	toOwned := roundtrip.MustDerive[Msg[*string], Msg[string]]()
//	msg := toOwned(Msg[*string]{Text: &hello})
//
// Every derivation error is reported when deriving, never when applying.
// Code generated by cmd/roundtrip-gen performs the same transformations
// without reflection.
package roundtrip
