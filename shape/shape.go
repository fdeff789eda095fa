package shape

import (
	"go/types"
	"reflect"
	"strings"

	"roundtrip-generator/primitive"
)

// Kind is the closed set of shape variants.
type Kind int

const (
	KindInvalid   Kind = iota
	KindPrimitive      // bool, integers, floats, strings
	KindBytes          // []byte-like slices
	KindOpaque         // types that encode themselves (MarshalJSON, MarshalText, ...)
	KindOptional       // *T
	KindSequence       // [N]T or []T
	KindMapping        // map[K]V
	KindRecord         // struct with ordered members
	KindUnion          // struct implementing Union, one pointer member per variant
	KindParam          // type parameter placeholder
	KindRef            // reference to a user-defined shape by origin
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindBytes:
		return "bytes"
	case KindOpaque:
		return "opaque"
	case KindOptional:
		return "optional"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindRecord:
		return "record"
	case KindUnion:
		return "union"
	case KindParam:
		return "param"
	case KindRef:
		return "ref"
	default:
		return "invalid"
	}
}

// Union is implemented by structs modelling a tagged union. Every exported
// field of such a struct is a pointer naming one variant; the field's wire
// name is the variant tag and the pointee is the variant payload.
type Union interface {
	TaggedUnion()
}

// Shape describes the structure of a value's type.
//
// Shapes are immutable once built. Recursive types produce cyclic graphs.
type Shape struct {
	Kind Kind
	// Name is the display form of the type, e.g. "[]string" or "deriving.Msg[S0]".
	Name string
	// Prim is the primitive kind for KindPrimitive and the element kind for KindBytes.
	Prim primitive.KindEnum
	// Len is the length of a fixed sequence, -1 for growable ones.
	Len int
	// Elem is the pointee, sequence element or mapping value.
	Elem *Shape
	// Key is the mapping key.
	Key *Shape
	// Members holds record members or union variants in declaration order.
	Members []Member
	// Param is the type parameter index for KindParam.
	Param int
	// Origin identifies the generic origin of a named record or union,
	// e.g. "roundtrip-generator/examples/deriving.Msg".
	Origin string
	// Args are the type arguments the named type was instantiated with.
	Args []*Shape
	// Named reports whether the Go type carries a name of its own.
	Named bool
	// Copy tells how values of an opaque shape are copied.
	Copy CopyMode

	// Type is the runtime type; nil for shapes built from go/types.
	Type reflect.Type
	// GoType is the go/types type; nil for shapes built at runtime.
	GoType types.Type
}

// Fixed reports whether the shape is a fixed-length sequence.
func (s *Shape) Fixed() bool {
	return s.Kind == KindSequence && s.Len >= 0
}

// Nullable reports whether the zero value of the shape encodes as null.
func (s *Shape) Nullable() bool {
	switch s.Kind {
	case KindOptional, KindMapping, KindBytes:
		return true
	case KindSequence:
		return s.Len < 0
	default:
		return false
	}
}

// Composite reports whether the shape is a record or a union.
func (s *Shape) Composite() bool {
	return s.Kind == KindRecord || s.Kind == KindUnion
}

func (s *Shape) String() string {
	if s == nil {
		return "<nil>"
	}

	if s.Name != "" {
		return s.Name
	}

	return s.Kind.String()
}

// Tags holds the codec-relevant struct tags of a member.
type Tags struct {
	JSON string
	YAML string
	CBOR string
}

// Member is a record member or a union variant.
type Member struct {
	// Name is the Go field name.
	Name string
	// Index is the field index within the struct.
	Index int
	Tags  Tags
	// OmitEmpty is set when the json or cbor tag carries omitempty.
	OmitEmpty bool
	Shape     *Shape
}

// WireName returns the key the member is written under by name-keyed codecs.
func (m Member) WireName() string {
	for _, tag := range []string{m.Tags.CBOR, m.Tags.JSON} {
		if name := tagName(tag); name != "" {
			return name
		}
	}

	return m.Name
}

// TagsOf extracts the codec-relevant tags from a raw struct tag.
func TagsOf(tag reflect.StructTag) (Tags, bool) {
	tags := Tags{
		JSON: tag.Get("json"),
		YAML: tag.Get("yaml"),
		CBOR: tag.Get("cbor"),
	}

	omit := hasOption(tags.JSON, "omitempty")
	if tags.CBOR != "" {
		omit = hasOption(tags.CBOR, "omitempty")
	}

	return tags, omit
}

// Skipped reports whether the tags exclude the member from encoding.
func (t Tags) Skipped() bool {
	return t.JSON == "-" || t.CBOR == "-"
}

func tagName(tag string) string {
	if idx := strings.IndexByte(tag, ','); idx >= 0 {
		tag = tag[:idx]
	}

	return tag
}

func hasOption(tag, option string) bool {
	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		if part == option {
			return true
		}
	}

	return false
}
