package shape

import (
	"encoding"
	"encoding/json"
	"reflect"
)

// CopyMode tells how a value of an opaque shape is copied so the copy
// shares no mutable memory with the original.
type CopyMode int

const (
	CopyNone   CopyMode = iota // holds references and has no method pair to copy through
	CopyAssign                 // plain assignment
	CopyClone                  // slice or map clone
	CopyBinary                 // MarshalBinary, then UnmarshalBinary into a new value
	CopyText                   // MarshalText, then UnmarshalText into a new value
	CopyJSON                   // MarshalJSON, then UnmarshalJSON into a new value
)

func (m CopyMode) String() string {
	switch m {
	case CopyAssign:
		return "assign"
	case CopyClone:
		return "clone"
	case CopyBinary:
		return "binary"
	case CopyText:
		return "text"
	case CopyJSON:
		return "json"
	default:
		return "none"
	}
}

// CopyPair names the methods values are copied through for one mode.
type CopyPair struct {
	Mode      CopyMode
	Marshal   string
	Unmarshal string

	marshaler, unmarshaler reflect.Type
}

// CopyPairs lists the encoding method pairs in order of preference.
var CopyPairs = []CopyPair{
	{CopyBinary, "MarshalBinary", "UnmarshalBinary",
		reflect.TypeFor[encoding.BinaryMarshaler](), reflect.TypeFor[encoding.BinaryUnmarshaler]()},
	{CopyText, "MarshalText", "UnmarshalText",
		reflect.TypeFor[encoding.TextMarshaler](), reflect.TypeFor[encoding.TextUnmarshaler]()},
	{CopyJSON, "MarshalJSON", "UnmarshalJSON",
		reflect.TypeFor[json.Marshaler](), reflect.TypeFor[json.Unmarshaler]()},
}

// CopyModeOf returns how values of the opaque type rtype are copied.
// Types free of references are assigned, slices and maps of such types are
// cloned and everything else goes through its own encoding.
func CopyModeOf(rtype reflect.Type) CopyMode {
	switch {
	case !SharesMemory(rtype):
		return CopyAssign
	case rtype.Kind() == reflect.Slice && !SharesMemory(rtype.Elem()):
		return CopyClone
	case rtype.Kind() == reflect.Map && !SharesMemory(rtype.Key()) && !SharesMemory(rtype.Elem()):
		return CopyClone
	}

	ptr := reflect.PointerTo(rtype)
	for _, pair := range CopyPairs {
		if ptr.Implements(pair.marshaler) && ptr.Implements(pair.unmarshaler) {
			return pair.Mode
		}
	}

	return CopyNone
}

// SharesMemory reports whether assigning a value of rtype leaves the copy
// sharing memory with the original.
func SharesMemory(rtype reflect.Type) bool {
	switch rtype.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func,
		reflect.Interface, reflect.UnsafePointer:
		return true
	case reflect.Array:
		return rtype.Len() > 0 && SharesMemory(rtype.Elem())
	case reflect.Struct:
		for i := range rtype.NumField() {
			if SharesMemory(rtype.Field(i).Type) {
				return true
			}
		}

		return false
	default:
		return false
	}
}
