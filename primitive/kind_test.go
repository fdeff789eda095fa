package primitive_test

import (
	"fmt"
	"go/types"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"roundtrip-generator/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindInt
	// KindString
	// KindInt64
	// KindEnum(0)
}

func TestFromGoType(t *testing.T) {
	t.Parallel()

	assert.Equal(t, primitive.KindUint16, primitive.FromGoType(types.Typ[types.Uint16]))
	assert.Equal(t, primitive.KindFloat64, primitive.FromGoType(types.Typ[types.Float64]))
	assert.Equal(t, primitive.KindEnum(0), primitive.FromGoType(types.Typ[types.Complex128]))
	assert.Equal(t, primitive.KindEnum(0), primitive.FromGoType(types.NewSlice(types.Typ[types.Int])))
}

func TestCompatible(t *testing.T) {
	t.Parallel()

	assert.True(t, primitive.Compatible(primitive.KindString, primitive.KindString))
	assert.True(t, primitive.Compatible(primitive.KindInt64, primitive.KindInt64))
	assert.False(t, primitive.Compatible(primitive.KindInt32, primitive.KindInt64))
	assert.False(t, primitive.Compatible(primitive.KindString, primitive.KindBool))
	assert.Len(t, primitive.Pairs(), primitive.KindTotal-1)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	lines := primitive.Generate(primitive.KindString, primitive.KindString, "in.Name", "out.Name", "Label", false)
	assert.Equal(t, []string{"out.Name = Label(in.Name)"}, lines)

	lines = primitive.Generate(primitive.KindInt, primitive.KindInt, "v", "r", "int", true)
	assert.Equal(t, []string{"r = v"}, lines)

	assert.Nil(t, primitive.Generate(primitive.KindInt, primitive.KindString, "v", "r", "string", false))
}

func TestKindPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, primitive.KindUint8.IsKeyable())
	assert.True(t, primitive.KindString.IsKeyable())
	assert.False(t, primitive.KindFloat32.IsKeyable())
	assert.False(t, primitive.KindBool.IsKeyable())
	assert.True(t, primitive.KindFloat32.IsNumber())
	assert.True(t, primitive.KindUint.IsInteger())
	assert.False(t, primitive.KindString.IsNumber())
}
