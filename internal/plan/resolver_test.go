package plan_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"roundtrip-generator/internal/analyze"
	"roundtrip-generator/internal/diagnostic"
	"roundtrip-generator/internal/plan"
)

const (
	derivingPkg = "roundtrip-generator/examples/deriving"
	mismatchPkg = "roundtrip-generator/internal/plan/testdata/mismatch"
)

func newResolver(t *testing.T, patterns ...string) *plan.Resolver {
	t.Helper()

	a := analyze.NewAnalyzer(filepath.Join("..", ".."))
	_, err := a.LoadPackages(patterns...)
	require.NoError(t, err)

	return plan.NewResolver(a, plan.WithLogger(zaptest.NewLogger(t)))
}

func funcNames(res *plan.Result) []string {
	names := make([]string, 0, len(res.Derivations))
	for _, d := range res.Derivations {
		names = append(names, d.FuncName)
	}

	return names
}

func TestResolver_Deriving(t *testing.T) {
	r := newResolver(t, "./examples/deriving")

	res := r.Resolve(plan.Request{
		Package: derivingPkg,
		Prefix:  "RoundTrip",
		Types: []plan.Requested{
			{Source: "TestEnum"},
			{Source: "Draft", Target: "Note"},
		},
		Aliases: []string{"FoldLabel"},
	})
	require.NoError(t, res.Diagnostics.Error())

	// Msg and TestUnit are reached through members.
	assert.Equal(t, []string{
		"RoundTripMsg",
		"RoundTripDraftToNote",
		"RoundTripTestUnit",
		"RoundTripTestEnum",
	}, funcNames(res))

	for _, d := range res.Derivations {
		switch d.FuncName {
		case "RoundTripTestEnum":
			assert.True(t, d.Requested)
			assert.Len(t, d.Deps, 2)
			assert.Equal(t, "union{TupleCase: optional(call[roundtrip-generator/examples/deriving.Msg](param0)), "+
				"StructCase: optional(convert), UnitCase: optional(call[roundtrip-generator/examples/deriving.TestUnit]())}",
				d.Plan.String())
		case "RoundTripMsg":
			assert.False(t, d.Requested)
			assert.Empty(t, d.Deps)
		case "RoundTripDraftToNote":
			assert.Equal(t, "Draft -> Note", d.Pair.String())
			assert.Contains(t, d.Plan.String(), "Tags: mapping(alias[FoldLabel](convert): convert)")
		}
	}

	require.Len(t, res.Aliases, 1)
	assert.Equal(t, "FoldLabel", res.Aliases[0].Name)

	name, ok := res.FuncName(derivingPkg+".Draft", derivingPkg+".Note")
	require.True(t, ok)
	assert.Equal(t, "RoundTripDraftToNote", name)

	assert.Len(t, res.Diagnostics.Infos, 4)
	assert.Equal(t, diagnostic.CodeDerived, res.Diagnostics.Infos[0].Code)
}

func TestResolver_FuncOverride(t *testing.T) {
	r := newResolver(t, "./examples/deriving")

	res := r.Resolve(plan.Request{
		Package: derivingPkg,
		Prefix:  "RoundTrip",
		Types: []plan.Requested{
			{Source: "Msg", Func: "EchoMsg"},
			{Source: "TestEnum"},
		},
	})
	require.NoError(t, res.Diagnostics.Error())

	assert.Equal(t, []string{"EchoMsg", "RoundTripTestUnit", "RoundTripTestEnum"}, funcNames(res))
}

func TestResolver_Recursive(t *testing.T) {
	r := newResolver(t, "./examples/deriving")

	res := r.Resolve(plan.Request{
		Package: derivingPkg,
		Prefix:  "RoundTrip",
		Types:   []plan.Requested{{Source: "Document"}},
	})
	require.NoError(t, res.Diagnostics.Error())

	assert.Equal(t, []string{"RoundTripMsg", "RoundTripDocument"}, funcNames(res))
	assert.Contains(t, res.Derivations[1].Plan.String(),
		"Next: optional(call[roundtrip-generator/examples/deriving.Document](param0))")
}

func TestResolver_Diagnostics(t *testing.T) {
	r := newResolver(t, "./internal/plan/testdata/mismatch")

	tests := []struct {
		name        string
		req         plan.Requested
		code        string
		fieldPath   string
		suggestions []string
	}{
		{"arity", plan.Requested{Source: "Short", Target: "Long"}, diagnostic.CodeArityMismatch, "", nil},
		{"tags", plan.Requested{Source: "Left", Target: "Right"}, diagnostic.CodeTagMismatch, "", nil},
		{"length", plan.Requested{Source: "Trio", Target: "Quad"}, diagnostic.CodeLengthMismatch, ".Values", nil},
		{"member", plan.Requested{Source: "Before", Target: "After"}, diagnostic.CodeMemberMismatch, "", []string{"Emails"}},
		{"external", plan.Requested{Source: "Link"}, diagnostic.CodeExternalType, "", nil},
		{"unsupported", plan.Requested{Source: "Pipe"}, diagnostic.CodeUnsupported, "", nil},
		{"not copyable", plan.Requested{Source: "Reel"}, diagnostic.CodeUnsupported, ".Tape", nil},
		{"params", plan.Requested{Source: "Generic", Target: "Plain"}, diagnostic.CodeParamMismatch, "", nil},
		{"not found", plan.Requested{Source: "Order"}, diagnostic.CodeTypeNotFound, "", []string{"Orders"}},
		{"not derivable", plan.Requested{Source: "Code"}, diagnostic.CodeNotDerivable, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := r.Resolve(plan.Request{
				Package: mismatchPkg,
				Prefix:  "RoundTrip",
				Types:   []plan.Requested{tt.req},
			})

			require.True(t, res.Diagnostics.HasErrors())
			assert.Empty(t, res.Derivations)

			diag := res.Diagnostics.Errors[0]
			assert.Equal(t, tt.code, diag.Code, diag.String())
			assert.Equal(t, tt.fieldPath, diag.FieldPath)
			assert.Equal(t, tt.suggestions, diag.Suggestions)
		})
	}
}

func TestResolver_Aliases(t *testing.T) {
	r := newResolver(t, "./internal/plan/testdata/mismatch")

	res := r.Resolve(plan.Request{
		Package: mismatchPkg,
		Prefix:  "RoundTrip",
		Types:   []plan.Requested{{Source: "Short"}},
		Aliases: []string{"FoldCode", "Double", "FoldCod"},
	})

	require.Len(t, res.Diagnostics.Errors, 2)
	assert.Equal(t, "Double", res.Diagnostics.Errors[0].Type)
	assert.Equal(t, diagnostic.CodeUnsupported, res.Diagnostics.Errors[0].Code)
	assert.Equal(t, diagnostic.CodeTypeNotFound, res.Diagnostics.Errors[1].Code)
	assert.Equal(t, []string{"FoldCode"}, res.Diagnostics.Errors[1].Suggestions)

	require.Len(t, res.Aliases, 1)
	assert.Len(t, res.Derivations, 1)
}

func TestResolver_PackageNotLoaded(t *testing.T) {
	r := newResolver(t, "./internal/plan/testdata/mismatch")

	res := r.Resolve(plan.Request{Package: "example.com/missing"})
	require.True(t, res.Diagnostics.HasErrors())
	assert.Equal(t, diagnostic.CodeLoadFailed, res.Diagnostics.Errors[0].Code)
}
