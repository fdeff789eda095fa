package roundtrip

import (
	"errors"
	"path"
	"reflect"
	"runtime"
	"strings"

	"roundtrip-generator/shape"
	"roundtrip-generator/utils"
)

var (
	ErrAliasIsNotAFunction = errors.New("provided alias is not a function")
	ErrIsNotAnAlias        = errors.New("provided function is not a recognizable alias, want func(From) To")
	ErrDoublePointer       = shape.ErrDoublePointer
)

// AliasFunc describes a function registered with Registry.Alias.
type AliasFunc struct {
	From, To     reflect.Type
	PackageAlias string
	Name         string
	Func         reflect.Value
}

// ParseAlias inspects the provided function and returns an AliasFunc if it
// has the form func(From) To.
func ParseAlias(fn any) (AliasFunc, error) {
	if fn == nil {
		return AliasFunc{}, ErrAliasIsNotAFunction
	}

	fnVal := reflect.ValueOf(fn)
	fnType := fnVal.Type()
	if fnType.Kind() != reflect.Func {
		return AliasFunc{}, ErrAliasIsNotAFunction
	}

	if fnType.NumIn() != 1 || fnType.NumOut() != 1 || fnType.IsVariadic() {
		return AliasFunc{}, ErrIsNotAnAlias
	}

	from, to := fnType.In(0), fnType.Out(0)
	for _, t := range []reflect.Type{from, to} {
		if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Pointer {
			return AliasFunc{}, ErrDoublePointer
		}
	}

	if from == to {
		return AliasFunc{}, ErrIsNotAnAlias
	}

	full := runtime.FuncForPC(fnVal.Pointer()).Name()
	alias, name := utils.Unpack2(strings.SplitN(utils.Second(path.Split(full)), ".", 2))

	return AliasFunc{
		From:         from,
		To:           to,
		PackageAlias: alias,
		Name:         name,
		Func:         fnVal,
	}, nil
}

// String returns the qualified function name, e.g. "names.Fold".
func (a AliasFunc) String() string {
	if a.PackageAlias == "" {
		return a.Name
	}

	return a.PackageAlias + "." + a.Name
}
