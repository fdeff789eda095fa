package compose_test

import (
	"fmt"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundtrip-generator/compose"
	"roundtrip-generator/shape"
)

type Msg[T any] struct {
	Text T
}

type Node struct {
	Value int
	Next  *Node
}

type Label string

type Circle struct {
	Radius float64
}

type Figure struct {
	Circle *Circle   `json:"circle"`
	Square *[2]int   `json:"square"`
	Empty  *struct{} `json:"empty"`
}

func (Figure) TaggedUnion() {}

type OtherFigure struct {
	Circle *Circle   `json:"circle"`
	Rect   *[2]int   `json:"rect"`
	Empty  *struct{} `json:"empty"`
}

func (OtherFigure) TaggedUnion() {}

func mustShape[T any](t testing.TB) *shape.Shape {
	t.Helper()

	s, err := shape.Of(reflect.TypeFor[T]())
	require.NoError(t, err)

	return s
}

func planOf[S, T any](t testing.TB) (*compose.Plan, error) {
	t.Helper()

	return compose.Compose(mustShape[S](t), mustShape[T](t), compose.Options{})
}

func Example() {
	src, _ := shape.Of(reflect.TypeFor[Msg[*string]]())
	dst, _ := shape.Of(reflect.TypeFor[Msg[string]]())

	plan, err := compose.Compose(src, dst, compose.Options{})
	fmt.Println(plan, err)

	src, _ = shape.Of(reflect.TypeFor[Node]())
	plan, err = compose.Compose(src, src, compose.Options{})
	fmt.Println(plan, err)

	src, _ = shape.Of(reflect.TypeFor[map[string][3]Label]())
	dst, _ = shape.Of(reflect.TypeFor[map[Label][]string]())
	plan, err = compose.Compose(src, dst, compose.Options{})
	fmt.Println(plan, err)
	// Output:
	// record{Text: unwrap(convert)} <nil>
	// record{Value: convert, Next: optional(...)} <nil>
	// mapping(convert: sequence(convert)) <nil>
}

func TestCompose_Leaves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		plan func(t testing.TB) (*compose.Plan, error)
		want string
	}{
		{"identity", planOf[int64, int64], "convert"},
		{"named string", planOf[string, Label], "convert"},
		{"duration", planOf[time.Duration, time.Duration], "copy"},
		{"opaque", planOf[time.Time, time.Time], "copy"},
		{"netip", planOf[netip.Addr, netip.Addr], "copy"},
		{"bytes", planOf[[]byte, []uint8], "bytes"},
		{"optional", planOf[*int, *int], "optional(convert)"},
		{"wrap", planOf[[]string, *[]string], "wrap(sequence(convert))"},
		{"array to slice", planOf[[4]int, []int], "sequence(convert)"},
		{"byte arrays", planOf[[4]byte, [4]uint8], "sequence(convert)"},
		{"union", planOf[Figure, Figure], "union{Circle: optional(record{Radius: convert}), Square: optional(sequence(convert)), Empty: optional(record{})}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := tt.plan(t)
			require.NoError(t, err)
			assert.Equal(t, tt.want, plan.String())
		})
	}
}

func TestCompose_Rejections(t *testing.T) {
	t.Parallel()

	type one struct{ A int }
	type two struct{ A, B int }
	type renamed struct{ B int }
	type tagged struct {
		A int `json:"a"`
	}

	tests := []struct {
		name string
		plan func(t testing.TB) (*compose.Plan, error)
		want error
		code string
	}{
		{"arity", planOf[one, two], compose.ErrArityMismatch, compose.CodeArityMismatch},
		{"member name", planOf[one, renamed], compose.ErrMemberMismatch, compose.CodeMemberMismatch},
		{"member tag", planOf[one, tagged], compose.ErrMemberMismatch, compose.CodeMemberMismatch},
		{"union tags", planOf[Figure, OtherFigure], compose.ErrTagMismatch, compose.CodeTagMismatch},
		{"array length", planOf[[3]int, [4]int], compose.ErrLengthMismatch, compose.CodeLengthMismatch},
		{"slice to array", planOf[[]int, [3]int], compose.ErrLengthMismatch, compose.CodeLengthMismatch},
		{"kind widening", planOf[int32, int64], compose.ErrNoRelation, compose.CodeNoRelation},
		{"string to int", planOf[Msg[string], Msg[int]], compose.ErrNoRelation, compose.CodeNoRelation},
		{"opaque to primitive", planOf[time.Time, string], compose.ErrNoRelation, compose.CodeNoRelation},
		{"duration to int", planOf[time.Duration, int64], compose.ErrNoRelation, compose.CodeNoRelation},
		{"bytes to sequence", planOf[[]byte, []int], compose.ErrNoRelation, compose.CodeNoRelation},
		{"byte array to ints", planOf[[2]byte, [2]uint16], compose.ErrNoRelation, compose.CodeNoRelation},
		{"record to union", planOf[Circle, Figure], compose.ErrNoRelation, compose.CodeNoRelation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			plan, err := tt.plan(t)
			require.Error(t, err, spew.Sdump(plan))
			assert.Nil(t, plan)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.code, compose.CodeOf(err))
		})
	}
}

func TestCompose_ErrorLocation(t *testing.T) {
	t.Parallel()

	_, err := planOf[Msg[[]*[3]int], Msg[[]*[2]int]](t)
	require.Error(t, err)

	var cerr *compose.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, ".Text[].*", cerr.Path)
	assert.Equal(t, "compose_test.Msg[[]*[3]int]", cerr.Source)
	assert.Equal(t, "compose_test.Msg[[]*[2]int]", cerr.Target)
	assert.Equal(t, "compose compose_test.Msg[[]*[3]int] -> compose_test.Msg[[]*[2]int] at .Text[].*: fixed sequence lengths differ: 3 -> 2", err.Error())

	_, err = planOf[Figure, OtherFigure](t)
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, []string{"circle", "rect", "empty"}, cerr.Want)
	assert.Equal(t, []string{"circle", "square", "empty"}, cerr.Got)
}

func TestCompose_Alias(t *testing.T) {
	t.Parallel()

	from := mustShape[string](t)
	to := mustShape[Label](t)
	alias := &compose.Alias{Name: "fold", From: from, To: to}

	opts := compose.Options{
		Alias: func(dst *shape.Shape) (*compose.Alias, bool) {
			return alias, dst.Type == to.Type
		},
	}

	src := mustShape[map[string]int](t)
	dst := mustShape[map[Label]int](t)

	plan, err := compose.Compose(src, dst, opts)
	require.NoError(t, err)
	assert.Equal(t, "mapping(alias[fold](convert): convert)", plan.String())
	assert.True(t, plan.SortKeys)
	assert.Same(t, alias, plan.Key.Alias)

	// an alias that does not compose falls back to the structural rules
	never := &compose.Alias{Name: "never", From: mustShape[int](t), To: to}
	plan, err = compose.Compose(mustShape[Label](t), to, compose.Options{
		Alias: func(*shape.Shape) (*compose.Alias, bool) { return never, true },
	})
	require.NoError(t, err)
	assert.Equal(t, compose.OpConvert, plan.Op)
}

func TestDispatch(t *testing.T) {
	t.Parallel()

	assert.Equal(t, compose.DispatcherUnwrap, compose.Dispatch(mustShape[*int](t), mustShape[int](t)))
	assert.Equal(t, compose.DispatcherWrap, compose.Dispatch(mustShape[int](t), mustShape[*int](t)))
	assert.Equal(t, compose.DispatcherOptional, compose.Dispatch(mustShape[*int](t), mustShape[*int](t)))
	assert.Equal(t, compose.DispatcherSequence, compose.Dispatch(mustShape[[2]int](t), mustShape[[]int](t)))
	assert.Equal(t, compose.DispatcherUnknown, compose.Dispatch(mustShape[int](t), mustShape[[]int](t)))
	assert.Equal(t, compose.DispatcherParam, compose.Dispatch(&shape.Shape{Kind: shape.KindParam}, mustShape[int](t)))
}

func TestCompose_References(t *testing.T) {
	t.Parallel()

	param := func(i int) *shape.Shape {
		return &shape.Shape{Kind: shape.KindParam, Param: i, Name: fmt.Sprint("P", i), Len: -1}
	}
	ref := func(origin string, args ...*shape.Shape) *shape.Shape {
		return &shape.Shape{Kind: shape.KindRef, Origin: origin, Args: args, Name: origin, Len: -1}
	}

	plan, err := compose.Compose(ref("p.Msg", param(0)), ref("p.Msg", param(0)), compose.Options{})
	require.NoError(t, err)
	assert.Equal(t, "call[p.Msg](param0)", plan.String())

	_, err = compose.Compose(ref("p.Msg", param(0)), ref("p.Msg", param(1)), compose.Options{})
	assert.ErrorIs(t, err, compose.ErrParamMismatch)

	_, err = compose.Compose(ref("p.Msg", param(0)), ref("p.Note", param(0)), compose.Options{})
	assert.ErrorIs(t, err, compose.ErrNoRelation)

	relate := compose.Options{Relate: func(src, dst *shape.Shape) bool {
		return src.Origin == "p.Msg" && dst.Origin == "p.Note"
	}}

	plan, err = compose.Compose(ref("p.Msg", param(0)), ref("p.Note", param(0)), relate)
	require.NoError(t, err)
	assert.Equal(t, "call[p.Note](param0)", plan.String())

	_, err = compose.Compose(ref("p.Msg"), ref("p.Note", param(0)), relate)
	assert.ErrorIs(t, err, compose.ErrNoRelation)
}
