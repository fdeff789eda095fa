package gen

import (
	"fmt"
	"go/types"
	"strings"

	"roundtrip-generator/compose"
	"roundtrip-generator/primitive"
	"roundtrip-generator/shape"
)

// emitter writes the statements of one generated function.
type emitter struct {
	imports *importSet
	funcs   func(source, target string) (string, bool)

	idx, key, val *Stem

	sb    *strings.Builder
	depth int
	err   error
}

func newEmitter(imports *importSet, funcs func(source, target string) (string, bool)) *emitter {
	namespace := map[string]struct{}{"in": {}, "out": {}}

	return &emitter{
		imports: imports,
		funcs:   funcs,
		idx:     NewStem("i", namespace),
		key:     NewStem("k", namespace),
		val:     NewStem("v", namespace),
		sb:      &strings.Builder{},
		depth:   1,
	}
}

// sub returns an emitter sharing names with e and writing to its own buffer.
func (e *emitter) sub() *emitter {
	s := *e
	s.sb = &strings.Builder{}
	s.depth = 1

	return &s
}

func (e *emitter) String() string {
	return e.sb.String()
}

func (e *emitter) line(format string, args ...any) {
	e.sb.WriteString(strings.Repeat("\t", e.depth))
	fmt.Fprintf(e.sb, format, args...)
	e.sb.WriteByte('\n')
}

func (e *emitter) open(format string, args ...any) {
	e.line(format+" {", args...)
	e.depth++
}

func (e *emitter) close() {
	e.depth--
	e.line("}")
}

func (e *emitter) fail(err error) {
	if e.err == nil && err != nil {
		e.err = err
	}
}

func (e *emitter) typeOf(s *shape.Shape) string {
	return types.TypeString(s.GoType, e.imports.qualifier)
}

func (e *emitter) runtime(ident string) string {
	return e.imports.ref(RuntimePath, ident)
}

// members assigns record members or union variants of src to dst.
func (e *emitter) members(p *compose.Plan, src, dst string) {
	for _, m := range p.Members {
		from, to := sel(src, m.Source.Name), sel(dst, m.Target.Name)

		guard := ""
		if p.Op == compose.OpRecord && m.Source.OmitEmpty {
			guard = e.nonEmpty(m.Source.Shape, from)
		}

		if guard == "" {
			e.assign(m.Plan, from, to)
			continue
		}

		e.open("if %s", guard)
		e.assign(m.Plan, from, to)
		e.close()
	}
}

// assign writes the statements storing the transformation of src into dst.
// dst holds the zero value of its type.
func (e *emitter) assign(p *compose.Plan, src, dst string) {
	if p.Op == compose.OpConvert && p.Source.Prim != 0 {
		same := types.Identical(p.Source.GoType, p.Target.GoType)
		for _, l := range primitive.Generate(p.Source.Prim, p.Target.Prim, src, dst, e.typeOf(p.Target), same) {
			e.line("%s", l)
		}

		return
	}

	if x, ok := e.expr(p, src); ok {
		e.line("%s = %s", dst, x)
		return
	}

	switch p.Op {
	case compose.OpOptional:
		cond := src + " != nil"

		switch elem := p.Elem.Source; {
		case elem.Kind == shape.KindParam:
			cond += " && !" + e.runtime("IsNull") + "(*" + src + ")"
		case elem.Nullable():
			cond += " && *" + src + " != nil"
		}

		e.open("if %s", cond)
		e.boxed(p.Elem, "*"+src, dst)
		e.close()

	case compose.OpUnwrap:
		e.open("if %s != nil", src)
		e.assign(p.Elem, "*"+src, dst)
		e.close()

	case compose.OpWrap:
		guard := e.nonNull(p.Source, src)
		if guard == "" {
			e.boxed(p.Elem, src, dst)
			return
		}

		e.open("if %s", guard)
		e.boxed(p.Elem, src, dst)
		e.close()

	case compose.OpBytes:
		elem := p.Target.GoType.Underlying().(*types.Slice).Elem()

		e.open("if %s != nil", src)
		e.line("%s = make(%s, len(%s))", dst, e.typeOf(p.Target), src)

		i, v := e.idx.Next(), e.val.Next()
		e.open("for %s, %s := range %s", i, v, src)
		e.line("%s[%s] = %s(%s)", dst, i, types.TypeString(elem, e.imports.qualifier), v)
		e.close()
		e.close()

	case compose.OpSequence:
		e.sequence(p, src, dst)

	case compose.OpMapping:
		e.mapping(p, src, dst)

	case compose.OpRecord, compose.OpUnion:
		e.members(p, src, dst)

	case compose.OpAlias:
		v := e.val.Next()
		e.line("var %s %s", v, e.typeOf(p.Elem.Target))
		e.assign(p.Elem, src, v)
		e.line("%s = %s(%s)", dst, p.Alias.Name, v)

	default:
		e.fail(fmt.Errorf("%s plan for %s -> %s cannot be generated", p.Op, p.Source, p.Target))
	}
}

// boxed stores a pointer to the transformation of src into dst.
func (e *emitter) boxed(p *compose.Plan, src, dst string) {
	v := e.val.Next()
	if x, ok := e.expr(p, src); ok {
		e.line("%s := %s", v, x)
	} else {
		e.line("var %s %s", v, e.typeOf(p.Target))
		e.assign(p, src, v)
	}

	e.line("%s = &%s", dst, v)
}

func (e *emitter) sequence(p *compose.Plan, src, dst string) {
	growable := !p.Source.Fixed()
	if growable {
		e.open("if %s != nil", src)
	}

	if !p.Target.Fixed() {
		e.line("%s = make(%s, len(%s))", dst, e.typeOf(p.Target), src)
	}

	if !empty(p.Elem) {
		i, v := e.idx.Next(), e.val.Next()
		e.open("for %s, %s := range %s", i, v, src)
		e.assign(p.Elem, v, index(dst, i))
		e.close()
	}

	if growable {
		e.close()
	}
}

func (e *emitter) mapping(p *compose.Plan, src, dst string) {
	e.open("if %s != nil", src)
	e.line("%s = make(%s, len(%s))", dst, e.typeOf(p.Target), src)

	k, v := e.key.Next(), ""
	switch {
	case p.SortKeys:
		// Later keys overwrite earlier ones mapped to the same target key.
		e.open("for _, %s := range %s(%s)", k, e.runtime("SortedKeys"), src)
		if !empty(p.Elem) {
			v = e.val.Next()
			e.line("%s := %s", v, index(src, k))
		}
	case empty(p.Elem):
		e.open("for %s := range %s", k, src)
	default:
		v = e.val.Next()
		e.open("for %s, %s := range %s", k, v, src)
	}

	key, ok := e.expr(p.Key, k)
	if !ok {
		key = e.key.Next()
		e.line("var %s %s", key, e.typeOf(p.Key.Target))
		e.assign(p.Key, k, key)
	}

	if v == "" {
		e.line("%s = %s{}", index(dst, key), e.typeOf(p.Elem.Target))
	} else if x, ok := e.expr(p.Elem, v); ok {
		e.line("%s = %s", index(dst, key), x)
	} else {
		tmp := e.val.Next()
		e.line("var %s %s", tmp, e.typeOf(p.Elem.Target))
		e.assign(p.Elem, v, tmp)
		e.line("%s = %s", index(dst, key), tmp)
	}

	e.close()
	e.close()
}

// expr returns the expression transforming src when the plan has one.
func (e *emitter) expr(p *compose.Plan, src string) (string, bool) {
	switch p.Op {
	case compose.OpConvert:
		if types.Identical(p.Source.GoType, p.Target.GoType) {
			return src, true
		}

		return e.typeOf(p.Target) + "(" + src + ")", true

	case compose.OpCopy:
		switch p.Source.Copy {
		case shape.CopyAssign:
			return src, true
		case shape.CopyClone:
			if _, ok := p.Source.GoType.Underlying().(*types.Map); ok {
				return e.imports.ref("maps", "Clone") + "(" + src + ")", true
			}

			return e.imports.ref("slices", "Clone") + "(" + src + ")", true
		case shape.CopyBinary:
			return e.runtime("CopyBinary") + "(" + src + ")", true
		case shape.CopyText:
			return e.runtime("CopyText") + "(" + src + ")", true
		case shape.CopyJSON:
			return e.runtime("CopyJSON") + "(" + src + ")", true
		default:
			return "", false
		}

	case compose.OpBytes:
		from := p.Source.GoType.Underlying().(*types.Slice)
		to := p.Target.GoType.Underlying().(*types.Slice)
		if !types.Identical(from.Elem(), to.Elem()) {
			return "", false
		}

		clone := e.imports.ref("slices", "Clone") + "(" + src + ")"
		if types.Identical(p.Source.GoType, p.Target.GoType) {
			return clone, true
		}

		return e.typeOf(p.Target) + "(" + clone + ")", true

	case compose.OpParam:
		return fmt.Sprintf("t%d(%s)", p.Param, src), true

	case compose.OpCall:
		return e.call(p, src), true

	case compose.OpAlias:
		inner, ok := e.expr(p.Elem, src)
		if !ok {
			return "", false
		}

		return p.Alias.Name + "(" + inner + ")", true

	default:
		return "", false
	}
}

// call invokes the generated function of a referenced pair, passing the
// transformations of its type arguments.
func (e *emitter) call(p *compose.Plan, src string) string {
	name, ok := e.funcs(p.Source.Origin, p.Target.Origin)
	if !ok {
		e.fail(fmt.Errorf("no function generated for %s -> %s", p.Source.Origin, p.Target.Origin))
		return src
	}

	args := []string{src}
	for _, arg := range p.Args {
		args = append(args, e.funcValue(arg))
	}

	return name + "(" + strings.Join(args, ", ") + ")"
}

// funcValue returns a function value applying the plan.
func (e *emitter) funcValue(p *compose.Plan) string {
	switch {
	case p.Op == compose.OpParam:
		return fmt.Sprintf("t%d", p.Param)
	case identity(p):
		return e.runtime("Identity") + "[" + e.typeOf(p.Target) + "]"
	}

	from, to := e.typeOf(p.Source), e.typeOf(p.Target)

	v := e.val.Next()
	body := e.sub()

	if x, ok := body.expr(p, v); ok {
		e.fail(body.err)
		return fmt.Sprintf("func(%s %s) %s { return %s }", v, from, to, x)
	}

	out := e.val.Next()
	body.line("var %s %s", out, to)
	body.assign(p, v, out)
	body.line("return %s", out)
	e.fail(body.err)

	return fmt.Sprintf("func(%s %s) %s {\n%s}", v, from, to, body)
}

// nonNull returns the condition under which src does not encode as null.
func (e *emitter) nonNull(s *shape.Shape, src string) string {
	switch {
	case s.Kind == shape.KindParam:
		return "!" + e.runtime("IsNull") + "(" + src + ")"
	case s.Nullable():
		return src + " != nil"
	default:
		return ""
	}
}

// nonEmpty returns the condition under which omitempty keeps a member.
// Members whose emptiness cannot be observed get no condition.
func (e *emitter) nonEmpty(s *shape.Shape, src string) string {
	switch s.Kind {
	case shape.KindPrimitive:
		switch {
		case s.Prim == primitive.KindBool:
			return src
		case s.Prim == primitive.KindString:
			return src + ` != ""`
		case s.Prim.IsNumber():
			return src + " != 0"
		default:
			return ""
		}
	case shape.KindOpaque:
		return zeroCheck(s.GoType, src)
	case shape.KindBytes, shape.KindMapping:
		return "len(" + src + ") != 0"
	case shape.KindSequence:
		if s.Fixed() {
			return ""
		}

		return "len(" + src + ") != 0"
	case shape.KindParam:
		return "!" + e.runtime("IsEmpty") + "(" + src + ")"
	default:
		return ""
	}
}

func zeroCheck(t types.Type, src string) string {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		info := u.Info()
		switch {
		case info&types.IsBoolean != 0:
			return src
		case info&types.IsString != 0:
			return src + ` != ""`
		case info&types.IsNumeric != 0:
			return src + " != 0"
		}
	case *types.Slice, *types.Map:
		return "len(" + src + ") != 0"
	}

	return ""
}

// identity reports whether the plan returns its input unchanged.
func identity(p *compose.Plan) bool {
	switch p.Op {
	case compose.OpConvert:
		return types.Identical(p.Source.GoType, p.Target.GoType)
	case compose.OpCopy:
		return p.Source.Copy == shape.CopyAssign
	default:
		return false
	}
}

// empty reports whether the plan transforms a record or union without
// members, whose value carries nothing to transform.
func empty(p *compose.Plan) bool {
	return (p.Op == compose.OpRecord || p.Op == compose.OpUnion) && len(p.Members) == 0
}

// operand parenthesizes dereferences used as selector or index operands.
func operand(x string) string {
	if strings.HasPrefix(x, "*") {
		return "(" + x + ")"
	}

	return x
}

func sel(x, name string) string {
	return operand(x) + "." + name
}

func index(x, i string) string {
	return operand(x) + "[" + i + "]"
}
