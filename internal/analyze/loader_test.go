package analyze_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roundtrip-generator/internal/analyze"
	"roundtrip-generator/shape"
)

const (
	derivingPkg    = "roundtrip-generator/examples/deriving"
	constrainedPkg = "roundtrip-generator/internal/analyze/testdata/constrained"
)

func load(t *testing.T, patterns ...string) *analyze.Analyzer {
	t.Helper()

	a := analyze.NewAnalyzer(filepath.Join("..", ".."))
	graph, err := a.LoadPackages(patterns...)
	require.NoError(t, err)
	require.NotNil(t, graph)

	return a
}

func TestAnalyzer_LoadPackages(t *testing.T) {
	a := load(t, "./examples/deriving")
	graph := a.Graph()

	require.Contains(t, graph.Packages, derivingPkg)
	pkg := graph.Packages[derivingPkg]
	assert.Equal(t, "deriving", pkg.Name)
	assert.NotEmpty(t, pkg.Dir)

	tests := []struct {
		name    string
		kind    analyze.TypeKind
		generic bool
	}{
		{"Msg", analyze.TypeKindRecord, true},
		{"TestUnit", analyze.TypeKindRecord, false},
		{"TestEnum", analyze.TypeKindUnion, true},
		{"Document", analyze.TypeKindRecord, true},
		{"Label", analyze.TypeKindOther, false},
		{"Draft", analyze.TypeKindRecord, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := a.GetType(derivingPkg, tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, info.Kind)
			assert.Equal(t, tt.generic, info.Generic())
			assert.Contains(t, pkg.Types, info.ID)
		})
	}

	_, err := a.GetType(derivingPkg, "Missing")
	require.ErrorIs(t, err, analyze.ErrTypeNotFound)
}

func TestAnalyzer_LoadPackages_Errors(t *testing.T) {
	a := analyze.NewAnalyzer(filepath.Join("..", ".."))
	_, err := a.LoadPackages("./does/not/exist")
	require.Error(t, err)
}

func TestAnalyzer_Shapes(t *testing.T) {
	a := load(t, "./examples/deriving")

	pair, err := a.Shapes(analyze.TypeID{PkgPath: derivingPkg, Name: "Msg"})
	require.NoError(t, err)

	assert.Equal(t, "record deriving.Msg[S0]\n  text: param S0 #0\n", pair.Source.Shape.Outline())
	assert.Equal(t, "record deriving.Msg[T0]\n  text: param T0 #0\n", pair.Target.Shape.Outline())
	require.Len(t, pair.Source.Params, 1)
	assert.Equal(t, "S0", pair.Source.Params[0].Obj().Name())
}

func TestAnalyzer_Shapes_Document(t *testing.T) {
	a := load(t, "./examples/deriving")

	pair, err := a.Shapes(analyze.TypeID{PkgPath: derivingPkg, Name: "Document"})
	require.NoError(t, err)

	outline := pair.Source.Shape.Outline()
	for _, want := range []string{
		"record deriving.Document[S0]\n",
		"  pair: sequence [2]S0 len=2\n",
		"  labels: mapping map[string]S0\n",
		"    key: primitive string\n",
		"  summary: optional *deriving.Msg[S0]\n",
		"    ref deriving.Msg[S0] -> " + derivingPkg + ".Msg\n",
		"  body: bytes []byte\n",
		"  created: opaque time.Time\n",
		"  origin: opaque netip.Addr\n",
		"    ref deriving.Document[S0] -> " + derivingPkg + ".Document\n",
		"  revision: primitive int\n",
	} {
		assert.Contains(t, outline, want)
	}

	next := pair.Source.Shape.Members[7]
	assert.Equal(t, "Next", next.Name)
	assert.True(t, next.OmitEmpty)
	assert.Equal(t, shape.KindRef, next.Shape.Elem.Kind)
	require.Len(t, next.Shape.Elem.Args, 1)
	assert.Equal(t, shape.KindParam, next.Shape.Elem.Args[0].Kind)
}

func TestAnalyzer_Shapes_Union(t *testing.T) {
	a := load(t, "./examples/deriving")

	pair, err := a.Shapes(analyze.TypeID{PkgPath: derivingPkg, Name: "TestEnum"})
	require.NoError(t, err)

	s := pair.Source.Shape
	assert.Equal(t, shape.KindUnion, s.Kind)
	require.Len(t, s.Members, 3)
	assert.Equal(t, "tuple_case", s.Members[0].WireName())
	assert.Equal(t, shape.KindOptional, s.Members[1].Shape.Kind)
	assert.Equal(t, shape.KindRef, s.Members[2].Shape.Elem.Kind)
}

func TestAnalyzer_Shapes_Errors(t *testing.T) {
	a := load(t, "./internal/analyze/testdata/constrained")

	tests := []struct {
		name string
		err  error
	}{
		{"Set", analyze.ErrConstraint},
		{"Stream", shape.ErrUnsupported},
		{"Nested", shape.ErrDoublePointer},
		{"Keyed", shape.ErrMapKey},
		{"Embedding", shape.ErrEmbedded},
		{"Missing", analyze.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Shapes(analyze.TypeID{PkgPath: constrainedPkg, Name: tt.name})
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestAnalyzer_Shapes_Skipped(t *testing.T) {
	a := load(t, "./internal/analyze/testdata/constrained")

	pair, err := a.Shapes(analyze.TypeID{PkgPath: constrainedPkg, Name: "Skipped"})
	require.NoError(t, err)

	require.Len(t, pair.Source.Shape.Members, 1)
	assert.Equal(t, "kept", pair.Source.Shape.Members[0].WireName())
}

func TestAnalyzer_Func(t *testing.T) {
	a := load(t, "./examples/deriving", "./internal/analyze/testdata/constrained")

	fn, err := a.Func(derivingPkg, "FoldLabel")
	require.NoError(t, err)
	assert.Equal(t, shape.KindPrimitive, fn.From.Kind)
	assert.Equal(t, shape.KindOpaque, fn.To.Kind)
	assert.Equal(t, "deriving.Label", fn.To.Name)

	tests := []struct {
		pkg  string
		name string
		err  error
	}{
		{constrainedPkg, "Twice", analyze.ErrNotAnAlias},
		{constrainedPkg, "Pick", analyze.ErrNotAnAlias},
		{derivingPkg, "Missing", analyze.ErrTypeNotFound},
		{derivingPkg, "Label", analyze.ErrTypeNotFound},
		{"example.com/unloaded", "FoldLabel", analyze.ErrTypeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Func(tt.pkg, tt.name)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestTypeKind_String(t *testing.T) {
	assert.Equal(t, "record", analyze.TypeKindRecord.String())
	assert.Equal(t, "union", analyze.TypeKindUnion.String())
	assert.Equal(t, "unknown", analyze.TypeKind(42).String())
	assert.True(t, analyze.TypeKindUnion.Derivable())
	assert.False(t, analyze.TypeKindOther.Derivable())
}
