package gen

import (
	"bytes"
	"errors"
	"fmt"
	"go/format"
	"go/types"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"roundtrip-generator/internal/analyze"
	"roundtrip-generator/internal/config"
	"roundtrip-generator/internal/plan"
)

// ErrNothingToGenerate is returned for results without derivations.
var ErrNothingToGenerate = errors.New("nothing to generate")

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// Filename is the name of the generated file.
	Filename string
	// OutputDir is where the unformatted source is dumped when formatting
	// fails. Empty disables the dump.
	OutputDir string
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		Filename: config.DefaultOutput,
	}
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used to trace generation.
func WithLogger(logger *zap.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// Generator generates Go code from a planning result.
type Generator struct {
	config GeneratorConfig
	logger *zap.Logger
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig, opts ...Option) *Generator {
	g := &Generator{config: config, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Filename is the name of the file (e.g., "roundtrip_gen.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// templateData holds all data needed for the file template.
type templateData struct {
	PackageName string
	StdImports  []importSpec
	Imports     []importSpec
	Funcs       []funcData
}

// funcData describes one generated function.
type funcData struct {
	Name       string
	TypeParams string
	Params     string
	Source     string
	Target     string
	Body       string
}

// Generate renders one function per derivation of the result into a single
// file of the analyzed package. A result carrying errors is rejected.
func (g *Generator) Generate(res *plan.Result) (*GeneratedFile, error) {
	if err := res.Diagnostics.Error(); err != nil {
		return nil, err
	}

	if res.Package == nil || len(res.Derivations) == 0 {
		return nil, ErrNothingToGenerate
	}

	imports := newImportSet(res.Package.Path)
	data := &templateData{PackageName: res.Package.Name}

	for _, d := range res.Derivations {
		fn, err := g.generateFunc(d, imports, res.FuncName)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", d.Pair, err)
		}

		data.Funcs = append(data.Funcs, *fn)
		g.logger.Debug("generated function",
			zap.String("func", fn.Name),
			zap.Stringer("pair", d.Pair))
	}

	data.StdImports, data.Imports = imports.groups()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("executing template: %w", err)
	}

	formatted, err := format.Source(buf.Bytes())
	if err != nil {
		if g.config.OutputDir != "" {
			if werr := writeDebugUnformatted(g.config.OutputDir, g.config.Filename, buf.Bytes()); werr != nil {
				g.logger.Warn("writing unformatted source", zap.Error(werr))
			}
		}

		return &GeneratedFile{
			Filename: g.config.Filename,
			Content:  buf.Bytes(),
		}, fmt.Errorf("formatting code: %w", err)
	}

	return &GeneratedFile{
		Filename: g.config.Filename,
		Content:  formatted,
	}, nil
}

func (g *Generator) generateFunc(
	d *plan.Derivation,
	imports *importSet,
	funcs func(source, target string) (string, bool),
) (*funcData, error) {
	e := newEmitter(imports, funcs)

	fn := &funcData{
		Name:   d.FuncName,
		Source: types.TypeString(d.Source.Type, imports.qualifier),
		Target: types.TypeString(d.Target.Type, imports.qualifier),
	}

	fn.TypeParams = typeParams(d.Source, d.Target, imports)
	fn.Params = "in " + fn.Source
	for i := range d.Source.Params {
		fn.Params += fmt.Sprintf(", t%d func(%s) %s",
			i, d.Source.Params[i].Obj().Name(), d.Target.Params[i].Obj().Name())
	}

	e.members(d.Plan, "in", "out")
	if e.err != nil {
		return nil, e.err
	}

	fn.Body = e.String()

	return fn, nil
}

// typeParams renders the type parameter list of a derivation: source
// parameters first, then target parameters.
func typeParams(src, dst *analyze.Instance, imports *importSet) string {
	params := append(src.Params[:len(src.Params):len(src.Params)], dst.Params...)
	if len(params) == 0 {
		return ""
	}

	names := make([]string, len(params))
	constraints := make([]string, len(params))
	uniform := true

	for i, tp := range params {
		names[i] = tp.Obj().Name()
		constraints[i] = constraintString(tp.Constraint(), imports)
		uniform = uniform && constraints[i] == constraints[0]
	}

	if uniform {
		return "[" + strings.Join(names, ", ") + " " + constraints[0] + "]"
	}

	parts := make([]string, len(params))
	for i := range params {
		parts[i] = names[i] + " " + constraints[i]
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

func constraintString(t types.Type, imports *importSet) string {
	if iface, ok := types.Unalias(t).(*types.Interface); ok && iface.Empty() {
		return "any"
	}

	return types.TypeString(t, imports.qualifier)
}

var fileTemplate = template.Must(template.New("roundtrip").Funcs(template.FuncMap{
	"quote": strconv.Quote,
}).Parse(`// Code generated by roundtrip-gen. DO NOT EDIT.

package {{.PackageName}}
{{if or .StdImports .Imports}}
import (
{{range .StdImports}}	{{if .Alias}}{{.Alias}} {{end}}{{quote .Path}}
{{end}}{{if and .StdImports .Imports}}
{{end}}{{range .Imports}}	{{if .Alias}}{{.Alias}} {{end}}{{quote .Path}}
{{end}})
{{end}}{{range .Funcs}}
// {{.Name}} returns the {{.Target}} obtained by decoding an encoded {{.Source}}.
func {{.Name}}{{.TypeParams}}({{.Params}}) {{.Target}} {
	var out {{.Target}}
{{.Body}}
	return out
}
{{end}}`))
