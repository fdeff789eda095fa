package roundtrip

import (
	"encoding"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"roundtrip-generator/compose"
	"roundtrip-generator/shape"
)

// ErrNotCopyable is returned for opaque types holding references that
// cannot be copied through their own encoding.
var ErrNotCopyable = errors.New("opaque value cannot be copied")

type applyFunc func(reflect.Value) reflect.Value

// Transformer applies a composed plan to runtime values.
type Transformer struct {
	Source reflect.Type
	Target reflect.Type
	Plan   *compose.Plan

	apply applyFunc
}

func newTransformer(src, dst reflect.Type, plan *compose.Plan) (*Transformer, error) {
	b := builder{fns: make(map[*compose.Plan]*applyFunc)}

	apply, err := b.build(plan)
	if err != nil {
		return nil, err
	}

	return &Transformer{Source: src, Target: dst, Plan: plan, apply: apply}, nil
}

// Apply transforms v, a value of the Source type, into a new value of the
// Target type. v is neither retained nor modified.
func (t *Transformer) Apply(v reflect.Value) reflect.Value {
	return t.apply(v)
}

type builder struct {
	fns map[*compose.Plan]*applyFunc
}

func (b *builder) build(p *compose.Plan) (applyFunc, error) {
	if slot, ok := b.fns[p]; ok {
		// Recursive plans resolve the slot once it is filled.
		return func(v reflect.Value) reflect.Value { return (*slot)(v) }, nil
	}

	slot := new(applyFunc)
	b.fns[p] = slot

	fn, err := b.make(p)
	if err != nil {
		return nil, err
	}

	*slot = fn
	return fn, nil
}

func (b *builder) make(p *compose.Plan) (applyFunc, error) {
	dst := p.Target.Type
	zero := reflect.Zero(dst)

	switch p.Op {
	case compose.OpConvert:
		return func(v reflect.Value) reflect.Value {
			return v.Convert(dst)
		}, nil

	case compose.OpCopy:
		return copier(p.Source)

	case compose.OpBytes:
		return func(v reflect.Value) reflect.Value {
			if v.IsNil() {
				return zero
			}

			out := reflect.MakeSlice(dst, v.Len(), v.Len())
			if v.Type().Elem() == dst.Elem() {
				reflect.Copy(out, v)
				return out
			}

			for i := range v.Len() {
				out.Index(i).SetUint(v.Index(i).Uint())
			}

			return out
		}, nil

	case compose.OpOptional:
		elem, err := b.build(p.Elem)
		if err != nil {
			return nil, err
		}

		nullable := p.Elem.Source.Nullable()
		return func(v reflect.Value) reflect.Value {
			if v.IsNil() || nullable && v.Elem().IsNil() {
				return zero
			}

			out := reflect.New(dst.Elem())
			out.Elem().Set(elem(v.Elem()))
			return out
		}, nil

	case compose.OpUnwrap:
		elem, err := b.build(p.Elem)
		if err != nil {
			return nil, err
		}

		return func(v reflect.Value) reflect.Value {
			if v.IsNil() {
				return zero
			}

			return elem(v.Elem())
		}, nil

	case compose.OpWrap:
		elem, err := b.build(p.Elem)
		if err != nil {
			return nil, err
		}

		nullable := p.Source.Nullable()
		return func(v reflect.Value) reflect.Value {
			if nullable && v.IsNil() {
				return zero
			}

			out := reflect.New(dst.Elem())
			out.Elem().Set(elem(v))
			return out
		}, nil

	case compose.OpSequence:
		return b.sequence(p)

	case compose.OpMapping:
		return b.mapping(p)

	case compose.OpRecord:
		return b.record(p)

	case compose.OpUnion:
		return b.union(p)

	case compose.OpAlias:
		elem, err := b.build(p.Elem)
		if err != nil {
			return nil, err
		}

		fn := p.Alias.Func
		if !fn.IsValid() {
			return nil, fmt.Errorf("roundtrip: alias %s has no function", p.Alias.Name)
		}

		return func(v reflect.Value) reflect.Value {
			return fn.Call([]reflect.Value{elem(v)})[0]
		}, nil

	default:
		return nil, fmt.Errorf("roundtrip: %s plan for %s -> %s requires generated code", p.Op, p.Source, p.Target)
	}
}

func (b *builder) sequence(p *compose.Plan) (applyFunc, error) {
	elem, err := b.build(p.Elem)
	if err != nil {
		return nil, err
	}

	dst := p.Target.Type
	zero := reflect.Zero(dst)
	fixed := p.Target.Fixed()

	return func(v reflect.Value) reflect.Value {
		if v.Kind() == reflect.Slice && v.IsNil() {
			return zero
		}

		var out reflect.Value
		if fixed {
			out = reflect.New(dst).Elem()
		} else {
			out = reflect.MakeSlice(dst, v.Len(), v.Len())
		}

		for i := range v.Len() {
			out.Index(i).Set(elem(v.Index(i)))
		}

		return out
	}, nil
}

func (b *builder) mapping(p *compose.Plan) (applyFunc, error) {
	key, err := b.build(p.Key)
	if err != nil {
		return nil, err
	}

	elem, err := b.build(p.Elem)
	if err != nil {
		return nil, err
	}

	dst := p.Target.Type
	zero := reflect.Zero(dst)
	sorted := p.SortKeys

	return func(v reflect.Value) reflect.Value {
		if v.IsNil() {
			return zero
		}

		keys := v.MapKeys()
		if sorted {
			keys = sortByText(keys)
		}

		out := reflect.MakeMapWithSize(dst, len(keys))
		for _, k := range keys {
			// Later keys overwrite earlier ones mapped to the same target key.
			out.SetMapIndex(key(k), elem(v.MapIndex(k)))
		}

		return out
	}, nil
}

type memberFunc struct {
	src, dst  int
	omitEmpty bool
	apply     applyFunc
}

func (b *builder) members(p *compose.Plan) ([]memberFunc, error) {
	members := make([]memberFunc, 0, len(p.Members))

	for _, m := range p.Members {
		apply, err := b.build(m.Plan)
		if err != nil {
			return nil, err
		}

		members = append(members, memberFunc{
			src:       m.Source.Index,
			dst:       m.Target.Index,
			omitEmpty: m.Source.OmitEmpty,
			apply:     apply,
		})
	}

	return members, nil
}

func (b *builder) record(p *compose.Plan) (applyFunc, error) {
	members, err := b.members(p)
	if err != nil {
		return nil, err
	}

	dst := p.Target.Type
	return func(v reflect.Value) reflect.Value {
		out := reflect.New(dst).Elem()
		for _, m := range members {
			field := v.Field(m.src)
			if m.omitEmpty && isEmptyValue(field) {
				continue
			}

			out.Field(m.dst).Set(m.apply(field))
		}

		return out
	}, nil
}

func (b *builder) union(p *compose.Plan) (applyFunc, error) {
	members, err := b.members(p)
	if err != nil {
		return nil, err
	}

	dst := p.Target.Type
	return func(v reflect.Value) reflect.Value {
		out := reflect.New(dst).Elem()
		for _, m := range members {
			variant := v.Field(m.src)
			if variant.IsNil() {
				continue
			}

			out.Field(m.dst).Set(m.apply(variant))
		}

		return out
	}, nil
}

// copier returns the function copying values of an opaque shape.
func copier(s *shape.Shape) (applyFunc, error) {
	switch s.Copy {
	case shape.CopyAssign, shape.CopyClone:
		return cloneValue, nil
	case shape.CopyBinary, shape.CopyText, shape.CopyJSON:
		return func(v reflect.Value) reflect.Value {
			out, err := copyThrough(s.Copy, v)
			if err != nil {
				panic(fmt.Sprintf("roundtrip: copying %s: %v", s.Type, err))
			}

			return out
		}, nil
	default:
		return nil, fmt.Errorf("%s: %w", s, ErrNotCopyable)
	}
}

// copyThrough encodes v with its own methods and decodes the result into a
// new value.
func copyThrough(mode shape.CopyMode, v reflect.Value) (reflect.Value, error) {
	src := reflect.New(v.Type())
	src.Elem().Set(v)
	dst := reflect.New(v.Type())

	var (
		data []byte
		err  error
	)

	switch mode {
	case shape.CopyBinary:
		if data, err = src.Interface().(encoding.BinaryMarshaler).MarshalBinary(); err == nil {
			err = dst.Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(data)
		}
	case shape.CopyText:
		if data, err = src.Interface().(encoding.TextMarshaler).MarshalText(); err == nil {
			err = dst.Interface().(encoding.TextUnmarshaler).UnmarshalText(data)
		}
	case shape.CopyJSON:
		if data, err = src.Interface().(json.Marshaler).MarshalJSON(); err == nil {
			err = dst.Interface().(json.Unmarshaler).UnmarshalJSON(data)
		}
	default:
		err = ErrNotCopyable
	}

	return dst.Elem(), err
}

// cloneValue copies v so the result shares no mutable memory with it.
func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		return reflect.AppendSlice(reflect.MakeSlice(v.Type(), 0, v.Len()), v)

	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}

		return out

	default:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)
		return out
	}
}
