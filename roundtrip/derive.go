package roundtrip

import (
	"fmt"
	"reflect"
)

// Func is the round-trip operation from S to T: for every supported
// encoding, f(v) equals decoding the encoding of v as a T.
//
// A Func is pure and safe for concurrent use. It never retains or modifies
// its argument.
type Func[S, T any] func(S) T

type deriveConfig struct {
	registry *Registry
}

type DeriveOption func(*deriveConfig)

// Using derives with r instead of the default registry.
func Using(r *Registry) DeriveOption {
	return func(c *deriveConfig) {
		if r != nil {
			c.registry = r
		}
	}
}

// Derive returns the round-trip operation from S to T. It fails when S and T
// are not compatible; the returned Func itself never fails.
func Derive[S, T any](opts ...DeriveOption) (Func[S, T], error) {
	cfg := deriveConfig{registry: Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	tr, err := cfg.registry.Transformer(reflect.TypeFor[S](), reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}

	return func(src S) T {
		return tr.Apply(reflect.ValueOf(&src).Elem()).Interface().(T)
	}, nil
}

// MustDerive is like Derive but panics when S and T are not compatible.
func MustDerive[S, T any](opts ...DeriveOption) Func[S, T] {
	f, err := Derive[S, T](opts...)
	if err != nil {
		panic(fmt.Errorf("roundtrip: %w", err))
	}

	return f
}

// To round-trips src into a T using the default registry.
func To[T any](src any) (T, error) {
	var dst T
	if err := Default().Into(src, &dst); err != nil {
		return dst, err
	}

	return dst, nil
}
