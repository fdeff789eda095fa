// Package codec provides the encodings a round-trip transformation is
// checked against. Every codec encodes a value to bytes and decodes bytes
// into a value of any compatible shape.
package codec

type Codec interface {
	Name() string
	Encode(val any) ([]byte, error)
	Decode(data []byte, val any) error
}

// All returns every supported codec.
//
// Round-trip transformations resolve mapping keys that collide after a key
// alias in ascending text order, and decode null mapping values as the zero
// value. Only the codecs of TextOrdered agree on both.
func All() []Codec {
	return []Codec{NewJSON(), NewSonic(), NewCBOR(), NewYAML()}
}

// Strict returns the codecs that distinguish nil containers from empty ones.
func Strict() []Codec {
	return []Codec{NewJSON(), NewSonic(), NewCBOR()}
}

// TextOrdered returns the strict codecs that emit mapping keys in ascending
// text order and decode a null mapping value as the zero value. CBOR sorts
// keys by encoded length first and keeps the previous entry's value for a
// null one.
func TextOrdered() []Codec {
	return []Codec{NewJSON(), NewSonic()}
}
