package compose

import (
	"go/types"
	"slices"

	"github.com/samber/lo"

	"roundtrip-generator/primitive"
	"roundtrip-generator/shape"
)

// Options tune composition.
type Options struct {
	// Alias returns the alias registered for a target shape, if any.
	Alias func(dst *shape.Shape) (*Alias, bool)
	// Relate reports whether references to distinct user shapes are related.
	// The caller composes the referenced pair itself.
	Relate func(src, dst *shape.Shape) bool
}

// Compose derives the compatibility relation between src and dst and returns
// the transformation attached to it. It fails with an *Error when no
// relation exists.
func Compose(src, dst *shape.Shape, opts Options) (*Plan, error) {
	c := &composer{
		opts:     opts,
		memo:     make(map[pair]*Plan),
		aliasing: make(map[*Alias]bool),
		root:     [2]string{src.String(), dst.String()},
	}

	plan, err := c.compose(src, dst, "")
	if err != nil {
		return nil, err
	}

	return plan, nil
}

type pair struct{ src, dst *shape.Shape }

type composer struct {
	opts     Options
	memo     map[pair]*Plan
	aliasing map[*Alias]bool
	root     [2]string
}

func (c *composer) compose(src, dst *shape.Shape, path string) (*Plan, error) {
	key := pair{src, dst}
	if plan, ok := c.memo[key]; ok {
		return plan, nil
	}

	plan := &Plan{Source: src, Target: dst}
	// Pre-memo to handle recursive shapes
	c.memo[key] = plan

	if err := c.fill(plan, path); err != nil {
		delete(c.memo, key)
		return nil, err
	}

	return plan, nil
}

func (c *composer) fill(plan *Plan, path string) error {
	src, dst := plan.Source, plan.Target

	if alias, ok := c.alias(dst); ok {
		c.aliasing[alias] = true
		inner, err := c.compose(src, alias.From, path)
		delete(c.aliasing, alias)

		if err == nil {
			plan.Op = OpAlias
			plan.Alias = alias
			plan.Elem = inner
			return nil
		}
	}

	switch Dispatch(src, dst) {
	case DispatcherPrimitive:
		if !primitive.Compatible(src.Prim, dst.Prim) {
			return c.fail(ErrNoRelation, path, "%s -> %s", src.Prim, dst.Prim)
		}

		plan.Op = OpConvert
		return nil

	case DispatcherOpaque:
		if !identical(src, dst) {
			return c.fail(ErrNoRelation, path, "%s and %s encode themselves differently", src, dst)
		}

		if src.Copy == shape.CopyNone {
			return c.fail(ErrUnsupported, path, "%s holds references and has no encoding to copy through", src)
		}

		plan.Op = OpCopy
		return nil

	case DispatcherBytes:
		plan.Op = OpBytes
		return nil

	case DispatcherOptional:
		return c.inner(plan, OpOptional, src.Elem, dst.Elem, path)

	case DispatcherUnwrap:
		return c.inner(plan, OpUnwrap, src.Elem, dst, path)

	case DispatcherWrap:
		return c.inner(plan, OpWrap, src, dst.Elem, path)

	case DispatcherSequence:
		return c.sequence(plan, path)

	case DispatcherMapping:
		return c.mapping(plan, path)

	case DispatcherRecord:
		return c.record(plan, path)

	case DispatcherUnion:
		return c.union(plan, path)

	case DispatcherParam:
		if src.Kind != shape.KindParam || dst.Kind != shape.KindParam || src.Param != dst.Param {
			return c.fail(ErrParamMismatch, path, "%s -> %s", src, dst)
		}

		plan.Op = OpParam
		plan.Param = dst.Param
		return nil

	case DispatcherRef:
		return c.ref(plan, path)

	default:
		if src.Kind == shape.KindInvalid || dst.Kind == shape.KindInvalid {
			return c.fail(ErrUnsupported, path, "%s -> %s", src, dst)
		}

		return c.fail(ErrNoRelation, path, "%s %s -> %s %s", src.Kind, src, dst.Kind, dst)
	}
}

func (c *composer) alias(dst *shape.Shape) (*Alias, bool) {
	if c.opts.Alias == nil {
		return nil, false
	}

	alias, ok := c.opts.Alias(dst)
	if !ok || c.aliasing[alias] {
		return nil, false
	}

	return alias, true
}

func (c *composer) inner(plan *Plan, op Op, src, dst *shape.Shape, path string) error {
	elem, err := c.compose(src, dst, path+".*")
	if err != nil {
		return err
	}

	plan.Op = op
	plan.Elem = elem
	return nil
}

func (c *composer) sequence(plan *Plan, path string) error {
	src, dst := plan.Source, plan.Target

	if dst.Fixed() {
		if !src.Fixed() {
			return c.fail(ErrLengthMismatch, path, "growable %s cannot fill fixed %s", src, dst)
		}

		if src.Len != dst.Len {
			return c.fail(ErrLengthMismatch, path, "%d -> %d", src.Len, dst.Len)
		}
	}

	if byteArray(src) != byteArray(dst) {
		return c.fail(ErrNoRelation, path, "byte arrays encode as byte strings: %s -> %s", src, dst)
	}

	return c.inner(plan, OpSequence, src.Elem, dst.Elem, path+"[]")
}

func (c *composer) mapping(plan *Plan, path string) error {
	src, dst := plan.Source, plan.Target

	key, err := c.compose(src.Key, dst.Key, path+"[key]")
	if err != nil {
		return err
	}

	elem, err := c.compose(src.Elem, dst.Elem, path+"[]")
	if err != nil {
		return err
	}

	plan.Op = OpMapping
	plan.Key = key
	plan.Elem = elem
	plan.SortKeys = !key.Injective()
	return nil
}

func (c *composer) record(plan *Plan, path string) error {
	src, dst := plan.Source, plan.Target

	if len(src.Members) != len(dst.Members) {
		err := c.fail(ErrArityMismatch, path, "%d members -> %d members", len(src.Members), len(dst.Members))
		err.Want, err.Got = memberNames(dst), memberNames(src)
		return err
	}

	members, err := c.members(src, dst, path)
	if err != nil {
		return err
	}

	plan.Op = OpRecord
	plan.Members = members
	return nil
}

func (c *composer) union(plan *Plan, path string) error {
	src, dst := plan.Source, plan.Target

	srcTags, dstTags := wireNames(src), wireNames(dst)
	if !slices.Equal(srcTags, dstTags) {
		err := c.fail(ErrTagMismatch, path, "%v -> %v", srcTags, dstTags)
		err.Want, err.Got = dstTags, srcTags
		return err
	}

	members, err := c.members(src, dst, path)
	if err != nil {
		return err
	}

	plan.Op = OpUnion
	plan.Members = members
	return nil
}

func (c *composer) members(src, dst *shape.Shape, path string) ([]MemberPlan, error) {
	members := make([]MemberPlan, 0, len(dst.Members))

	for i, dm := range dst.Members {
		sm := src.Members[i]
		if sm.Name != dm.Name || sm.Tags != dm.Tags {
			err := c.fail(ErrMemberMismatch, path, "member %d: %s -> %s", i, describe(sm), describe(dm))
			err.Want, err.Got = []string{dm.Name}, []string{sm.Name}
			return nil, err
		}

		plan, err := c.compose(sm.Shape, dm.Shape, path+"."+dm.Name)
		if err != nil {
			return nil, err
		}

		members = append(members, MemberPlan{Source: sm, Target: dm, Plan: plan})
	}

	return members, nil
}

func (c *composer) ref(plan *Plan, path string) error {
	src, dst := plan.Source, plan.Target

	if len(src.Args) != len(dst.Args) || src.Origin != dst.Origin && !c.relates(src, dst) {
		return c.fail(ErrNoRelation, path, "%s -> %s", src, dst)
	}

	plan.Op = OpCall
	plan.Args = make([]*Plan, len(dst.Args))

	for i := range dst.Args {
		arg, err := c.compose(src.Args[i], dst.Args[i], path)
		if err != nil {
			return err
		}

		plan.Args[i] = arg
	}

	return nil
}

func (c *composer) relates(src, dst *shape.Shape) bool {
	return c.opts.Relate != nil && c.opts.Relate(src, dst)
}

func identical(a, b *shape.Shape) bool {
	switch {
	case a.Type != nil && b.Type != nil:
		return a.Type == b.Type
	case a.GoType != nil && b.GoType != nil:
		return types.Identical(a.GoType, b.GoType)
	default:
		return false
	}
}

func byteArray(s *shape.Shape) bool {
	return s.Fixed() && s.Elem.Kind == shape.KindPrimitive && s.Elem.Prim == primitive.KindUint8
}

func memberNames(s *shape.Shape) []string {
	return lo.Map(s.Members, func(m shape.Member, _ int) string { return m.Name })
}

func wireNames(s *shape.Shape) []string {
	return lo.Map(s.Members, func(m shape.Member, _ int) string { return m.WireName() })
}

func describe(m shape.Member) string {
	if m.Tags == (shape.Tags{}) {
		return m.Name
	}

	return m.Name + " " + m.WireName()
}
