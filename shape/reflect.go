package shape

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"roundtrip-generator/primitive"
)

var (
	ErrUnsupported   = errors.New("shape is not supported by every encoding")
	ErrDoublePointer = errors.New("double pointers are not supported")
	ErrUnionVariant  = errors.New("union variants must be exported pointer fields")
	ErrMapKey        = errors.New("mapping keys must be strings, integers or text-marshaled types")

	// ErrEmbedded is returned for embedded struct fields, whose members
	// encodings promote into the embedding struct.
	ErrEmbedded = fmt.Errorf("embedded fields: %w", ErrUnsupported)
)

var (
	unionType = reflect.TypeFor[Union]()

	// yaml.v3 encodes durations as strings, so they only pair with themselves.
	durationType = reflect.TypeFor[time.Duration]()

	textMarshalerType = reflect.TypeFor[encoding.TextMarshaler]()

	encoderTypes = []reflect.Type{
		reflect.TypeFor[json.Marshaler](),
		textMarshalerType,
		reflect.TypeFor[yaml.Marshaler](),
		reflect.TypeFor[cbor.Marshaler](),
	}

	decoderTypes = []reflect.Type{
		reflect.TypeFor[json.Unmarshaler](),
		reflect.TypeFor[encoding.TextUnmarshaler](),
		reflect.TypeFor[yaml.Unmarshaler](),
		reflect.TypeFor[cbor.Unmarshaler](),
	}
)

// Of returns the shape of rtype. It fails for types some supported encoding
// cannot represent (interfaces, channels, functions, complex numbers).
func Of(rtype reflect.Type) (*Shape, error) {
	r := reflector{cache: make(map[reflect.Type]*Shape)}
	return r.shapeOf(rtype, rtype.String())
}

// IsOpaque reports whether values of rtype are encoded by their own methods.
// Pointers are never opaque themselves; their pointee may be.
func IsOpaque(rtype reflect.Type) bool {
	if rtype.Kind() == reflect.Interface || rtype.Kind() == reflect.Pointer {
		return false
	}

	if rtype == durationType {
		return true
	}

	ptr := reflect.PointerTo(rtype)
	for _, iface := range encoderTypes {
		if rtype.Implements(iface) || ptr.Implements(iface) {
			return true
		}
	}

	for _, iface := range decoderTypes {
		if ptr.Implements(iface) {
			return true
		}
	}

	return false
}

type reflector struct {
	cache map[reflect.Type]*Shape
}

func (r *reflector) shapeOf(t reflect.Type, path string) (*Shape, error) {
	if cached, ok := r.cache[t]; ok {
		return cached, nil
	}

	s := &Shape{Type: t, Name: t.String(), Len: -1, Named: t.Name() != ""}
	// Pre-cache to handle recursive types
	r.cache[t] = s

	if err := r.fill(s, t, path); err != nil {
		delete(r.cache, t)
		return nil, err
	}

	return s, nil
}

func (r *reflector) fill(s *Shape, t reflect.Type, path string) error {
	if IsOpaque(t) {
		s.Kind = KindOpaque
		s.Copy = CopyModeOf(t)
		return nil
	}

	if prim := primitive.FromReflectType(t); prim != 0 {
		s.Kind = KindPrimitive
		s.Prim = prim
		return nil
	}

	switch t.Kind() {
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Pointer {
			return fmt.Errorf("%s (%s): %w", path, t, ErrDoublePointer)
		}

		elem, err := r.shapeOf(t.Elem(), path+".*")
		if err != nil {
			return err
		}

		s.Kind = KindOptional
		s.Elem = elem
		return nil

	case reflect.Slice:
		if prim := primitive.FromReflectType(t.Elem()); prim == primitive.KindUint8 && !IsOpaque(t.Elem()) {
			s.Kind = KindBytes
			s.Prim = prim
			return nil
		}

		return r.fillSequence(s, t, path)

	case reflect.Array:
		s.Len = t.Len()
		return r.fillSequence(s, t, path)

	case reflect.Map:
		key, err := r.shapeOf(t.Key(), path+"[key]")
		if err != nil {
			return err
		}

		if !keyable(key) {
			return fmt.Errorf("%s (%s): %w", path, t.Key(), ErrMapKey)
		}

		elem, err := r.shapeOf(t.Elem(), path+"[]")
		if err != nil {
			return err
		}

		s.Kind = KindMapping
		s.Key = key
		s.Elem = elem
		return nil

	case reflect.Struct:
		return r.fillStruct(s, t, path)

	default:
		return fmt.Errorf("%s (%s): %w", path, t, ErrUnsupported)
	}
}

func (r *reflector) fillSequence(s *Shape, t reflect.Type, path string) error {
	elem, err := r.shapeOf(t.Elem(), path+"[]")
	if err != nil {
		return err
	}

	s.Kind = KindSequence
	s.Elem = elem
	return nil
}

func (r *reflector) fillStruct(s *Shape, t reflect.Type, path string) error {
	s.Kind = KindRecord
	if t.Implements(unionType) || reflect.PointerTo(t).Implements(unionType) {
		s.Kind = KindUnion
	}

	if t.Name() != "" {
		s.Origin = t.PkgPath() + "." + genericBase(t.Name())
	}

	for i := range t.NumField() {
		f := t.Field(i)
		tags, omit := TagsOf(f.Tag)

		if f.Anonymous && !tags.Skipped() {
			return fmt.Errorf("%s.%s (%s): %w", path, f.Name, f.Type, ErrEmbedded)
		}

		if !f.IsExported() || tags.Skipped() {
			continue
		}

		if s.Kind == KindUnion && f.Type.Kind() != reflect.Pointer {
			return fmt.Errorf("%s.%s (%s): %w", path, f.Name, f.Type, ErrUnionVariant)
		}

		member, err := r.shapeOf(f.Type, path+"."+f.Name)
		if err != nil {
			return err
		}

		s.Members = append(s.Members, Member{
			Name:      f.Name,
			Index:     i,
			Tags:      tags,
			OmitEmpty: omit,
			Shape:     member,
		})
	}

	return nil
}

func keyable(key *Shape) bool {
	switch key.Kind {
	case KindPrimitive:
		return key.Prim.IsKeyable()
	case KindOpaque:
		if key.Type == nil || key.Type.Implements(textMarshalerType) {
			return true
		}

		return primitive.FromReflectType(key.Type).IsKeyable()
	default:
		return false
	}
}

// genericBase strips the instantiation suffix from a generic type name.
func genericBase(name string) string {
	if idx := strings.IndexByte(name, '['); idx >= 0 {
		return name[:idx]
	}

	return name
}
