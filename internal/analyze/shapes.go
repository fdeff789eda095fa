package analyze

import (
	"errors"
	"fmt"
	"go/token"
	"go/types"
	"reflect"
	"strconv"

	"golang.org/x/tools/go/types/typeutil"

	"roundtrip-generator/primitive"
	"roundtrip-generator/shape"
)

var (
	ErrConstraint = errors.New("type parameter constraints must not reference other type parameters")
	ErrNotAnAlias = errors.New("alias functions must be non-generic, take one argument and return one result")
)

var (
	encoderMethods = []string{"MarshalJSON", "MarshalText", "MarshalYAML", "MarshalCBOR"}
	decoderMethods = []string{"UnmarshalJSON", "UnmarshalText", "UnmarshalYAML", "UnmarshalCBOR"}
)

// Instance is a declared type instantiated with fresh type parameters.
type Instance struct {
	Type   types.Type
	Params []*types.TypeParam
	Shape  *shape.Shape
}

// Pair holds the source and target instantiations of a declared type.
// Source parameters are named S0, S1, ... and target parameters T0, T1, ...
type Pair struct {
	Info   *TypeInfo
	Source *Instance
	Target *Instance
}

// Shapes instantiates the declared type over source and target type
// parameters and builds the shape of both instances. Named structs nested in
// the type are described by reference.
func (a *Analyzer) Shapes(id TypeID) (*Pair, error) {
	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrTypeNotFound)
	}

	src, err := a.Instantiate(info, "S")
	if err != nil {
		return nil, err
	}

	dst, err := a.Instantiate(info, "T")
	if err != nil {
		return nil, err
	}

	return &Pair{Info: info, Source: src, Target: dst}, nil
}

// Instantiate instantiates the declared type with fresh type parameters named
// prefix0, prefix1, ... carrying the original constraints.
func (a *Analyzer) Instantiate(info *TypeInfo, prefix string) (*Instance, error) {
	inst := &Instance{Type: info.Named}

	if info.Generic() {
		for i, p := range info.Params {
			if referencesParams(p.Constraint) {
				return nil, fmt.Errorf("%s[%s]: %w", info.ID, p.Name, ErrConstraint)
			}

			name := types.NewTypeName(token.NoPos, info.Named.Obj().Pkg(), prefix+strconv.Itoa(i), nil)
			inst.Params = append(inst.Params, types.NewTypeParam(name, p.Constraint))
		}

		args := make([]types.Type, len(inst.Params))
		for i, tp := range inst.Params {
			args[i] = tp
		}

		t, err := types.Instantiate(a.ctxt, info.Named, args, false)
		if err != nil {
			return nil, fmt.Errorf("instantiating %s: %w", info.ID, err)
		}

		inst.Type = t
	}

	s := newShaper(inst.Params)
	root, err := s.root(inst.Type, info.ID.Name)
	if err != nil {
		return nil, err
	}

	inst.Shape = root
	return inst, nil
}

// FuncInfo describes a package-level function usable as an alias.
type FuncInfo struct {
	ID   TypeID
	Func *types.Func
	From *shape.Shape
	To   *shape.Shape
}

// Func looks up the function name in the package and describes its argument
// and result shapes.
func (a *Analyzer) Func(pkgPath, name string) (*FuncInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: name}

	pkg := a.graph.Packages[pkgPath]
	if pkg == nil || pkg.Pkg == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrTypeNotFound)
	}

	fn, ok := pkg.Pkg.Scope().Lookup(name).(*types.Func)
	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrTypeNotFound)
	}

	sig := fn.Type().(*types.Signature)
	if sig.TypeParams().Len() > 0 || sig.Params().Len() != 1 || sig.Results().Len() != 1 || sig.Variadic() {
		return nil, fmt.Errorf("%s: %w", id, ErrNotAnAlias)
	}

	s := newShaper(nil)

	from, err := s.shapeOf(sig.Params().At(0).Type(), name)
	if err != nil {
		return nil, err
	}

	to, err := s.shapeOf(sig.Results().At(0).Type(), name)
	if err != nil {
		return nil, err
	}

	if types.Identical(from.GoType, to.GoType) {
		return nil, fmt.Errorf("%s: %w", id, ErrNotAnAlias)
	}

	return &FuncInfo{ID: id, Func: fn, From: from, To: to}, nil
}

type shaper struct {
	params map[*types.TypeParam]int
	cache  typeutil.Map
}

func newShaper(params []*types.TypeParam) *shaper {
	s := &shaper{params: make(map[*types.TypeParam]int, len(params))}
	for i, tp := range params {
		s.params[tp] = i
	}

	return s
}

func (s *shaper) qualifier(pkg *types.Package) string {
	return pkg.Name()
}

// root expands the declared type itself; a struct becomes a record or a
// union with its members described.
func (s *shaper) root(t types.Type, path string) (*shape.Shape, error) {
	named, ok := t.(*types.Named)
	if !ok {
		return s.shapeOf(t, path)
	}

	st, ok := named.Underlying().(*types.Struct)
	if !ok || isOpaque(named) {
		return s.shapeOf(t, path)
	}

	sh := &shape.Shape{
		Kind:   shape.KindRecord,
		Name:   types.TypeString(named, s.qualifier),
		Len:    -1,
		Named:  true,
		Origin: origin(named),
		GoType: named,
	}
	if isUnion(named) {
		sh.Kind = shape.KindUnion
	}

	// The root is not cached: self references stay references.
	args := named.TypeArgs()
	for i := range args.Len() {
		arg, err := s.shapeOf(args.At(i), path)
		if err != nil {
			return nil, err
		}

		sh.Args = append(sh.Args, arg)
	}

	if err := s.fillStruct(sh, st, path); err != nil {
		return nil, err
	}

	return sh, nil
}

func (s *shaper) shapeOf(t types.Type, path string) (*shape.Shape, error) {
	t = types.Unalias(t)
	if cached, ok := s.cache.At(t).(*shape.Shape); ok {
		return cached, nil
	}

	sh := &shape.Shape{GoType: t, Name: types.TypeString(t, s.qualifier), Len: -1}
	_, sh.Named = t.(*types.Named)
	// Pre-cache to handle recursive types
	s.cache.Set(t, sh)

	if err := s.fill(sh, t, path); err != nil {
		s.cache.Delete(t)
		return nil, err
	}

	return sh, nil
}

func (s *shaper) fill(sh *shape.Shape, t types.Type, path string) error {
	if tp, ok := t.(*types.TypeParam); ok {
		idx, ok := s.params[tp]
		if !ok {
			return fmt.Errorf("%s (%s): %w", path, t, shape.ErrUnsupported)
		}

		sh.Kind = shape.KindParam
		sh.Param = idx
		return nil
	}

	if isOpaque(t) {
		sh.Kind = shape.KindOpaque
		sh.Copy = copyMode(t)
		return nil
	}

	if prim := primitive.FromGoType(t); prim != 0 {
		sh.Kind = shape.KindPrimitive
		sh.Prim = prim
		return nil
	}

	if named, ok := t.(*types.Named); ok {
		if _, ok := named.Underlying().(*types.Struct); ok {
			return s.fillRef(sh, named, path)
		}
	}

	switch u := t.Underlying().(type) {
	case *types.Pointer:
		if _, ok := u.Elem().Underlying().(*types.Pointer); ok {
			return fmt.Errorf("%s (%s): %w", path, t, shape.ErrDoublePointer)
		}

		elem, err := s.shapeOf(u.Elem(), path+".*")
		if err != nil {
			return err
		}

		sh.Kind = shape.KindOptional
		sh.Elem = elem
		return nil

	case *types.Slice:
		if primitive.FromGoType(u.Elem()) == primitive.KindUint8 && !isOpaque(u.Elem()) {
			sh.Kind = shape.KindBytes
			sh.Prim = primitive.KindUint8
			return nil
		}

		return s.fillSequence(sh, u.Elem(), path)

	case *types.Array:
		sh.Len = int(u.Len())
		return s.fillSequence(sh, u.Elem(), path)

	case *types.Map:
		key, err := s.shapeOf(u.Key(), path+"[key]")
		if err != nil {
			return err
		}

		if !keyable(key) {
			return fmt.Errorf("%s (%s): %w", path, u.Key(), shape.ErrMapKey)
		}

		elem, err := s.shapeOf(u.Elem(), path+"[]")
		if err != nil {
			return err
		}

		sh.Kind = shape.KindMapping
		sh.Key = key
		sh.Elem = elem
		return nil

	case *types.Struct:
		sh.Kind = shape.KindRecord
		return s.fillStruct(sh, u, path)

	default:
		return fmt.Errorf("%s (%s): %w", path, t, shape.ErrUnsupported)
	}
}

func (s *shaper) fillSequence(sh *shape.Shape, elem types.Type, path string) error {
	es, err := s.shapeOf(elem, path+"[]")
	if err != nil {
		return err
	}

	sh.Kind = shape.KindSequence
	sh.Elem = es
	return nil
}

// fillRef describes a named struct by its origin and type arguments.
func (s *shaper) fillRef(sh *shape.Shape, named *types.Named, path string) error {
	sh.Kind = shape.KindRef
	sh.Origin = origin(named)

	args := named.TypeArgs()
	for i := range args.Len() {
		arg, err := s.shapeOf(args.At(i), path)
		if err != nil {
			return err
		}

		sh.Args = append(sh.Args, arg)
	}

	return nil
}

func (s *shaper) fillStruct(sh *shape.Shape, st *types.Struct, path string) error {
	for i := range st.NumFields() {
		field := st.Field(i)
		fieldPath := path + "." + field.Name()
		tags, omit := shape.TagsOf(reflect.StructTag(st.Tag(i)))

		if field.Embedded() && !tags.Skipped() {
			return fmt.Errorf("%s (%s): %w", fieldPath, field.Type(), shape.ErrEmbedded)
		}

		if !field.Exported() || tags.Skipped() {
			continue
		}
		if sh.Kind == shape.KindUnion {
			if _, ok := field.Type().Underlying().(*types.Pointer); !ok {
				return fmt.Errorf("%s (%s): %w", fieldPath, field.Type(), shape.ErrUnionVariant)
			}
		}

		member, err := s.shapeOf(field.Type(), fieldPath)
		if err != nil {
			return err
		}

		sh.Members = append(sh.Members, shape.Member{
			Name:      field.Name(),
			Index:     i,
			Tags:      tags,
			OmitEmpty: omit,
			Shape:     member,
		})
	}

	return nil
}

func origin(named *types.Named) string {
	obj := named.Obj()
	if obj.Pkg() == nil {
		return obj.Name()
	}

	return obj.Pkg().Path() + "." + obj.Name()
}

func isUnion(t types.Type) bool {
	return hasMethod(types.NewPointer(t), "TaggedUnion")
}

// isOpaque mirrors shape.IsOpaque for go/types descriptions.
func isOpaque(t types.Type) bool {
	switch t.Underlying().(type) {
	case *types.Pointer, *types.Interface:
		return false
	}

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj.Pkg() != nil && obj.Pkg().Path() == "time" && obj.Name() == "Duration" {
			return true
		}
	}

	ptr := types.NewPointer(t)
	for _, name := range encoderMethods {
		if hasMethod(t, name) || hasMethod(ptr, name) {
			return true
		}
	}

	for _, name := range decoderMethods {
		if hasMethod(ptr, name) {
			return true
		}
	}

	return false
}

// copyMode mirrors shape.CopyModeOf for go/types descriptions.
func copyMode(t types.Type) shape.CopyMode {
	switch u := t.Underlying().(type) {
	case *types.Slice:
		if !sharesMemory(u.Elem()) {
			return shape.CopyClone
		}
	case *types.Map:
		if !sharesMemory(u.Key()) && !sharesMemory(u.Elem()) {
			return shape.CopyClone
		}
	default:
		if !sharesMemory(t) {
			return shape.CopyAssign
		}
	}

	ptr := types.NewPointer(t)
	for _, pair := range shape.CopyPairs {
		if hasMethod(ptr, pair.Marshal) && hasMethod(ptr, pair.Unmarshal) {
			return pair.Mode
		}
	}

	return shape.CopyNone
}

func sharesMemory(t types.Type) bool {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		return u.Kind() == types.UnsafePointer
	case *types.Array:
		return u.Len() > 0 && sharesMemory(u.Elem())
	case *types.Struct:
		for i := range u.NumFields() {
			if sharesMemory(u.Field(i).Type()) {
				return true
			}
		}

		return false
	default:
		return true
	}
}

func hasMethod(t types.Type, name string) bool {
	sel := types.NewMethodSet(t).Lookup(nil, name)
	return sel != nil
}

func keyable(key *shape.Shape) bool {
	switch key.Kind {
	case shape.KindPrimitive:
		return key.Prim.IsKeyable()
	case shape.KindOpaque:
		return hasMethod(key.GoType, "MarshalText") || primitive.FromGoType(key.GoType).IsKeyable()
	case shape.KindParam:
		return true
	default:
		return false
	}
}

// referencesParams reports whether t mentions a type parameter.
func referencesParams(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.TypeParam:
		return true
	case *types.Pointer:
		return referencesParams(t.Elem())
	case *types.Slice:
		return referencesParams(t.Elem())
	case *types.Array:
		return referencesParams(t.Elem())
	case *types.Chan:
		return referencesParams(t.Elem())
	case *types.Map:
		return referencesParams(t.Key()) || referencesParams(t.Elem())
	case *types.Named:
		args := t.TypeArgs()
		for i := range args.Len() {
			if referencesParams(args.At(i)) {
				return true
			}
		}

		return false
	case *types.Union:
		for i := range t.Len() {
			if referencesParams(t.Term(i).Type()) {
				return true
			}
		}

		return false
	case *types.Interface:
		for i := range t.NumEmbeddeds() {
			if referencesParams(t.EmbeddedType(i)) {
				return true
			}
		}

		return false
	default:
		return false
	}
}
