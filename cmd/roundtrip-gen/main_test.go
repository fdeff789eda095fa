package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer

	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func TestAnalyze(t *testing.T) {
	out, err := run(t, "analyze", "--pkg", "../../examples/deriving", "--types", "Msg,Label")
	require.NoError(t, err)

	assert.Contains(t, out, "record deriving.Msg[S0]\n  text: param S0 #0\n")
	assert.Contains(t, out, "Label: other\n")
	assert.NotContains(t, out, "Document")
}

func TestAnalyze_Leaves(t *testing.T) {
	out, err := run(t, "analyze", "--leaves")
	require.NoError(t, err)

	assert.Contains(t, out, "KindInt -> KindInt\n")
	assert.Contains(t, out, "KindString -> KindString\n")
	assert.NotContains(t, out, "KindInt32 -> KindInt64")
}

func TestCheck(t *testing.T) {
	out, err := run(t, "check", "--pkg", "../../examples/deriving", "--types", "TestEnum,Draft:Note", "--aliases", "FoldLabel")
	require.NoError(t, err)

	assert.Contains(t, out, "info: [TestEnum]: [derived] TestEnum derived as RoundTripTestEnum")
	assert.Contains(t, out, "[Draft -> Note]: [derived] Draft -> Note derived as RoundTripDraftToNote")
}

func TestCheck_Errors(t *testing.T) {
	out, err := run(t, "check", "--pkg", "../../examples/deriving", "--types", "Mesg")
	require.ErrorIs(t, err, errDiagnostics)

	assert.Contains(t, out, "[type_not_found]")
	assert.Contains(t, out, "did you mean Msg?")
}

func TestGen(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "roundtrip_gen.go")

	out, err := run(t, "gen", "--config", "../../examples/deriving/roundtrip.yaml", "--out", dest)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote "+dest+" (7 functions)")

	generated, err := os.ReadFile(dest)
	require.NoError(t, err)

	checkedIn, err := os.ReadFile(filepath.Join("..", "..", "examples", "deriving", "roundtrip_gen.go"))
	require.NoError(t, err)
	assert.Equal(t, string(checkedIn), string(generated))
}

func TestGen_RequiresPackage(t *testing.T) {
	_, err := run(t, "gen", "--types", "Msg")
	require.Error(t, err)
}
