package compose

import "roundtrip-generator/shape"

type DispatcherEnum int

const (
	DispatcherUnknown DispatcherEnum = iota
	DispatcherPrimitive
	DispatcherOpaque
	DispatcherBytes
	DispatcherOptional
	DispatcherUnwrap
	DispatcherWrap
	DispatcherSequence
	DispatcherMapping
	DispatcherRecord
	DispatcherUnion
	DispatcherParam
	DispatcherRef
)

// Dispatch selects the composition rule for a shape pair. Optionals are
// resolved first, so *S against T unwraps before any other rule applies.
func Dispatch(src, dst *shape.Shape) DispatcherEnum {
	switch {
	case src.Kind == shape.KindOptional && dst.Kind == shape.KindOptional:
		return DispatcherOptional
	case src.Kind == shape.KindOptional:
		return DispatcherUnwrap
	case dst.Kind == shape.KindOptional:
		return DispatcherWrap
	case src.Kind == shape.KindParam || dst.Kind == shape.KindParam:
		return DispatcherParam
	}

	if src.Kind != dst.Kind {
		return DispatcherUnknown
	}

	switch dst.Kind {
	case shape.KindPrimitive:
		return DispatcherPrimitive
	case shape.KindOpaque:
		return DispatcherOpaque
	case shape.KindBytes:
		return DispatcherBytes
	case shape.KindSequence:
		return DispatcherSequence
	case shape.KindMapping:
		return DispatcherMapping
	case shape.KindRecord:
		return DispatcherRecord
	case shape.KindUnion:
		return DispatcherUnion
	case shape.KindRef:
		return DispatcherRef
	default:
		return DispatcherUnknown
	}
}
