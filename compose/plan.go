package compose

import (
	"reflect"
	"strconv"
	"strings"

	"roundtrip-generator/shape"
)

// Op is a transformation step.
type Op int

const (
	OpInvalid  Op = iota
	OpConvert     // primitive to primitive of the same kind
	OpCopy        // opaque value of the identical type
	OpBytes       // byte slice to byte slice
	OpOptional    // *S to *T
	OpUnwrap      // *S to T, nil becomes the zero value
	OpWrap        // S to *T, null-encoding values become nil
	OpSequence    // [N]S or []S to []T, [N]S to [N]T
	OpMapping     // map[K1]V1 to map[K2]V2
	OpRecord      // member-wise by position
	OpUnion       // variant-wise by tag
	OpAlias       // Elem plan followed by an alias function
	OpParam       // type parameter transformation supplied by the caller
	OpCall        // generated transformation of a referenced user shape
)

// String returns a human-readable name for the op.
func (o Op) String() string {
	switch o {
	case OpConvert:
		return "convert"
	case OpCopy:
		return "copy"
	case OpBytes:
		return "bytes"
	case OpOptional:
		return "optional"
	case OpUnwrap:
		return "unwrap"
	case OpWrap:
		return "wrap"
	case OpSequence:
		return "sequence"
	case OpMapping:
		return "mapping"
	case OpRecord:
		return "record"
	case OpUnion:
		return "union"
	case OpAlias:
		return "alias"
	case OpParam:
		return "param"
	case OpCall:
		return "call"
	default:
		return "invalid"
	}
}

// Plan is the transformation attached to a compatibility relation between
// Source and Target. Plans of recursive shapes may be cyclic.
type Plan struct {
	Op     Op
	Source *shape.Shape
	Target *shape.Shape

	// Elem is the inner plan of optional, unwrap, wrap, sequence, mapping
	// values and aliases.
	Elem *Plan
	// Key is the mapping key plan.
	Key *Plan
	// SortKeys requests visiting mapping keys in encoded order because the
	// key plan may map distinct keys onto one.
	SortKeys bool
	// Members holds record members and union variants in target order.
	Members []MemberPlan
	// Alias is the function applied by OpAlias.
	Alias *Alias
	// Param is the type parameter index of OpParam.
	Param int
	// Args are the type argument plans of OpCall.
	Args []*Plan
}

// MemberPlan pairs the i-th source member with the i-th target member.
type MemberPlan struct {
	Source shape.Member
	Target shape.Member
	Plan   *Plan
}

// Alias declares that decoding at To is the same as decoding at From and
// then applying Func.
type Alias struct {
	Name string
	From *shape.Shape
	To   *shape.Shape
	// Func is a func(From) To; invalid for build-time aliases.
	Func reflect.Value
}

// Injective reports whether distinct source values always map to distinct
// target values.
func (p *Plan) Injective() bool {
	switch p.Op {
	case OpConvert, OpCopy:
		return true
	default:
		return false
	}
}

func (p *Plan) String() string {
	var sb strings.Builder
	p.write(&sb, make(map[*Plan]bool))
	return sb.String()
}

func (p *Plan) write(sb *strings.Builder, seen map[*Plan]bool) {
	if seen[p] {
		sb.WriteString("...")
		return
	}

	seen[p] = true
	defer delete(seen, p)

	sb.WriteString(p.Op.String())

	switch p.Op {
	case OpOptional, OpUnwrap, OpWrap, OpSequence:
		sb.WriteString("(")
		p.Elem.write(sb, seen)
		sb.WriteString(")")

	case OpMapping:
		sb.WriteString("(")
		p.Key.write(sb, seen)
		sb.WriteString(": ")
		p.Elem.write(sb, seen)
		sb.WriteString(")")

	case OpAlias:
		sb.WriteString("[" + p.Alias.Name + "](")
		p.Elem.write(sb, seen)
		sb.WriteString(")")

	case OpRecord, OpUnion:
		sb.WriteString("{")
		for i, m := range p.Members {
			if i > 0 {
				sb.WriteString(", ")
			}

			sb.WriteString(m.Target.Name + ": ")
			m.Plan.write(sb, seen)
		}
		sb.WriteString("}")

	case OpParam:
		sb.WriteString(strconv.Itoa(p.Param))

	case OpCall:
		sb.WriteString("[" + p.Target.Origin + "](")
		for i, arg := range p.Args {
			if i > 0 {
				sb.WriteString(", ")
			}

			arg.write(sb, seen)
		}
		sb.WriteString(")")
	}
}
