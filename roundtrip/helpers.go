package roundtrip

import (
	"cmp"
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/samber/lo"
)

// The helpers below are called by generated transformations.

// Identity returns v. It is the transformation of a type parameter
// instantiated with the same type on both sides.
func Identity[T any](v T) T {
	return v
}

// IsNull reports whether v encodes as null: a nil pointer, slice, map or
// interface.
func IsNull[T any](v T) bool {
	rv := reflect.ValueOf(&v).Elem()
	switch rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

// IsEmpty reports whether a member holding v is omitted by omitempty.
func IsEmpty[T any](v T) bool {
	return isEmptyValue(reflect.ValueOf(&v).Elem())
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	default:
		return false
	}
}

// SortedKeys returns the keys of m ordered by their encoded text, the order
// in which encoders emit them and decoders insert them.
func SortedKeys[M ~map[K]V, K comparable, V any](m M) []K {
	keys := lo.Keys(m)
	texts := lo.SliceToMap(keys, func(k K) (K, string) {
		return k, KeyText(k)
	})

	slices.SortStableFunc(keys, func(a, b K) int {
		return cmp.Compare(texts[a], texts[b])
	})

	return keys
}

// KeyText returns the text a mapping key is encoded as.
func KeyText(key any) string {
	return keyText(reflect.ValueOf(key))
}

func keyText(v reflect.Value) string {
	if v.Kind() == reflect.String {
		return v.String()
	}

	if v.CanInterface() {
		if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
			if text, err := tm.MarshalText(); err == nil {
				return string(text)
			}
		}
	}

	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(v.Uint(), 10)
	default:
		return ""
	}
}

type textKey struct {
	key  reflect.Value
	text string
}

func sortByText(keys []reflect.Value) []reflect.Value {
	texts := lo.Map(keys, func(k reflect.Value, _ int) textKey {
		return textKey{key: k, text: keyText(k)}
	})

	slices.SortStableFunc(texts, func(a, b textKey) int {
		return cmp.Compare(a.text, b.text)
	})

	return lo.Map(texts, func(t textKey, _ int) reflect.Value { return t.key })
}

// CopyBinary returns a copy of v made by its own binary encoding.
func CopyBinary[T any, P interface {
	*T
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}](v T) T {
	var out T

	data, err := P(&v).MarshalBinary()
	if err == nil {
		err = P(&out).UnmarshalBinary(data)
	}

	return copied(out, err)
}

// CopyText returns a copy of v made by its own text encoding.
func CopyText[T any, P interface {
	*T
	encoding.TextMarshaler
	encoding.TextUnmarshaler
}](v T) T {
	var out T

	data, err := P(&v).MarshalText()
	if err == nil {
		err = P(&out).UnmarshalText(data)
	}

	return copied(out, err)
}

// CopyJSON returns a copy of v made by its own JSON encoding.
func CopyJSON[T any, P interface {
	*T
	json.Marshaler
	json.Unmarshaler
}](v T) T {
	var out T

	data, err := P(&v).MarshalJSON()
	if err == nil {
		err = P(&out).UnmarshalJSON(data)
	}

	return copied(out, err)
}

// copied returns out, panicking when its copy failed.
func copied[T any](out T, err error) T {
	if err != nil {
		panic(fmt.Sprintf("roundtrip: copying %T: %v", out, err))
	}

	return out
}
