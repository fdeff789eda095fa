package plan

import (
	"errors"
	"fmt"
	"go/types"
	"slices"
	"strings"

	"go.uber.org/zap"

	"roundtrip-generator/compose"
	"roundtrip-generator/internal/analyze"
	"roundtrip-generator/internal/diagnostic"
	"roundtrip-generator/internal/match"
	"roundtrip-generator/shape"
)

// MaxSuggestions is the maximum number of names suggested per diagnostic.
const MaxSuggestions = 3

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used to trace planning.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// Resolver performs the planning pipeline.
type Resolver struct {
	analyzer *analyze.Analyzer
	logger   *zap.Logger
}

// NewResolver creates a new Resolver over packages loaded by analyzer.
func NewResolver(analyzer *analyze.Analyzer, opts ...Option) *Resolver {
	r := &Resolver{analyzer: analyzer, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// resolution holds the state of one Resolve call.
type resolution struct {
	*Resolver

	req     Request
	res     *Result
	dealer  dealer
	aliases []*compose.Alias
}

// Resolve plans the requested pairs and every same-package pair they reach.
// Failures are reported through Result.Diagnostics.
func (r *Resolver) Resolve(req Request) *Result {
	s := &resolution{
		Resolver: r,
		req:      req,
		res:      &Result{funcs: make(map[Pair]string)},
	}

	graph := r.analyzer.Graph()

	s.res.Package = graph.Packages[req.Package]
	if s.res.Package == nil {
		s.res.Diagnostics.AddError(diagnostic.CodeLoadFailed,
			fmt.Sprintf("package %q is not loaded", req.Package), "", "")

		return s.res
	}

	s.resolveAliases()

	requested := make(map[Pair]bool, len(req.Types))
	for _, t := range req.Types {
		target := t.Target
		if target == "" {
			target = t.Source
		}

		pair := Pair{
			Source: analyze.TypeID{PkgPath: req.Package, Name: t.Source},
			Target: analyze.TypeID{PkgPath: req.Package, Name: target},
		}

		requested[pair] = true
		if t.Func != "" {
			s.res.funcs[pair] = t.Func
		}

		s.dealer.Needs(pair)
	}

	var derivations []*Derivation
	for pair, ok := s.dealer.NextNeeds(); ok; pair, ok = s.dealer.NextNeeds() {
		d := s.derive(pair)
		if d == nil {
			continue
		}

		d.Requested = requested[pair]
		derivations = append(derivations, d)
	}

	s.order(derivations)

	return s.res
}

// funcName returns the function name of pair, assigning the default name on
// first use.
func (s *resolution) funcName(pair Pair) string {
	if name, ok := s.res.funcs[pair]; ok {
		return name
	}

	name := s.req.Prefix + pair.Source.Name
	if !pair.Same() {
		name += "To" + pair.Target.Name
	}

	s.res.funcs[pair] = name
	return name
}

func (s *resolution) resolveAliases() {
	for _, name := range s.req.Aliases {
		fn, err := s.analyzer.Func(s.req.Package, name)
		if err != nil {
			s.res.Diagnostics.Add(diagnostic.Diagnostic{
				Severity:    diagnostic.DiagnosticError,
				Code:        codeOf(err),
				Message:     err.Error(),
				Type:        name,
				Suggestions: match.Suggest(name, s.funcNames(), MaxSuggestions),
			})

			continue
		}

		s.aliases = append(s.aliases, &compose.Alias{Name: name, From: fn.From, To: fn.To})
		s.logger.Debug("resolved alias",
			zap.String("alias", name),
			zap.Stringer("from", fn.From),
			zap.Stringer("to", fn.To))
	}

	s.res.Aliases = s.aliases
}

// derive plans one pair. Nil is returned when the pair fails.
func (s *resolution) derive(pair Pair) *Derivation {
	diags := &s.res.Diagnostics
	typeName := pair.String()

	src := s.lookup(pair.Source, typeName)
	dst := s.lookup(pair.Target, typeName)
	if src == nil || dst == nil {
		return nil
	}

	if len(src.Params) != len(dst.Params) {
		diags.AddError(diagnostic.CodeParamMismatch,
			fmt.Sprintf("%s has %d type parameters, %s has %d",
				src.ID.Name, len(src.Params), dst.ID.Name, len(dst.Params)),
			typeName, "")

		return nil
	}

	srcInst, err := s.analyzer.Instantiate(src, "S")
	if err != nil {
		diags.AddError(codeOf(err), err.Error(), typeName, "")
		return nil
	}

	dstInst, err := s.analyzer.Instantiate(dst, "T")
	if err != nil {
		diags.AddError(codeOf(err), err.Error(), typeName, "")
		return nil
	}

	p, err := compose.Compose(srcInst.Shape, dstInst.Shape, compose.Options{
		Alias:  s.alias,
		Relate: func(_, _ *shape.Shape) bool { return true },
	})
	if err != nil {
		diags.Add(s.composeDiagnostic(typeName, err))
		return nil
	}

	d := &Derivation{
		Pair:     pair,
		FuncName: s.funcName(pair),
		Source:   srcInst,
		Target:   dstInst,
		Params:   src.Params,
		Plan:     p,
	}

	if !s.collectCalls(d) {
		return nil
	}

	s.logger.Debug("planned derivation",
		zap.Stringer("pair", pair),
		zap.String("func", d.FuncName),
		zap.Stringer("plan", p))

	diags.AddInfo(diagnostic.CodeDerived, fmt.Sprintf("%s derived as %s", typeName, d.FuncName), typeName, "")

	return d
}

func (s *resolution) lookup(id analyze.TypeID, typeName string) *analyze.TypeInfo {
	diags := &s.res.Diagnostics

	info := s.analyzer.Graph().GetType(id)
	if info == nil {
		diags.Add(diagnostic.Diagnostic{
			Severity:    diagnostic.DiagnosticError,
			Code:        diagnostic.CodeTypeNotFound,
			Message:     fmt.Sprintf("type %s is not declared in %s", id.Name, id.PkgPath),
			Type:        typeName,
			Suggestions: match.Suggest(id.Name, s.typeNames(), MaxSuggestions),
		})

		return nil
	}

	if !info.Kind.Derivable() {
		diags.AddError(diagnostic.CodeNotDerivable,
			fmt.Sprintf("%s is a %s type, only records and unions are derived", id.Name, info.Kind),
			typeName, "")

		return nil
	}

	return info
}

// alias returns the alias function producing dst.
func (s *resolution) alias(dst *shape.Shape) (*compose.Alias, bool) {
	if dst.GoType == nil {
		return nil, false
	}

	for _, a := range s.aliases {
		if types.Identical(a.To.GoType, dst.GoType) {
			return a, true
		}
	}

	return nil, false
}

// collectCalls queues the pairs called by the derivation's plan. Calls to
// types declared outside the package are reported as errors.
func (s *resolution) collectCalls(d *Derivation) bool {
	ok := true
	seen := make(map[Pair]bool)

	walk(d.Plan, func(p *compose.Plan) {
		if p.Op != compose.OpCall {
			return
		}

		src, srcLocal := s.local(p.Source.Origin)
		dst, dstLocal := s.local(p.Target.Origin)
		if !srcLocal || !dstLocal {
			s.res.Diagnostics.AddError(diagnostic.CodeExternalType,
				fmt.Sprintf("%s -> %s is declared outside %s", p.Source, p.Target, s.req.Package),
				d.Pair.String(), "")

			ok = false
			return
		}

		pair := Pair{Source: src, Target: dst}
		if seen[pair] {
			return
		}

		seen[pair] = true
		s.funcName(pair)
		s.dealer.Needs(pair)

		if pair != d.Pair {
			d.Deps = append(d.Deps, pair)
		}
	})

	slices.SortFunc(d.Deps, comparePairs)

	return ok
}

// local returns the TypeID of origin when it is declared in the package.
func (s *resolution) local(origin string) (analyze.TypeID, bool) {
	for _, id := range s.res.Package.Types {
		if id.String() == origin {
			return id, true
		}
	}

	return analyze.TypeID{}, false
}

func (s *resolution) order(derivations []*Derivation) {
	slices.SortFunc(derivations, func(a, b *Derivation) int {
		return strings.Compare(a.FuncName, b.FuncName)
	})

	index := make(map[Pair]int, len(derivations))
	for i, d := range derivations {
		index[d.Pair] = i
	}

	order, err := topoSort(len(derivations), func(i int) []int {
		var deps []int
		for _, dep := range derivations[i].Deps {
			// Failed dependencies were reported on their own.
			if j, ok := index[dep]; ok {
				deps = append(deps, j)
			}
		}

		return deps
	})
	if err != nil {
		s.res.Diagnostics.AddError(diagnostic.CodeUnsupported, err.Error(), "", "")
		return
	}

	for _, i := range order {
		s.res.Derivations = append(s.res.Derivations, derivations[i])
	}
}

func (s *resolution) composeDiagnostic(typeName string, err error) diagnostic.Diagnostic {
	diag := diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticError,
		Code:     codeOf(err),
		Message:  err.Error(),
		Type:     typeName,
	}

	var cerr *compose.Error
	if !errors.As(err, &cerr) {
		return diag
	}

	diag.FieldPath = cerr.Path
	diag.Message = fmt.Sprintf("%s: %s", cerr.Unwrap(), cerr.Reason)

	for _, got := range cerr.Got {
		if !slices.Contains(cerr.Want, got) {
			diag.Suggestions = append(diag.Suggestions, match.Suggest(got, cerr.Want, 1)...)
		}
	}

	return diag
}

func (s *resolution) typeNames() []string {
	names := make([]string, 0, len(s.res.Package.Types))
	for _, id := range s.res.Package.Types {
		names = append(names, id.Name)
	}

	return names
}

func (s *resolution) funcNames() []string {
	scope := s.res.Package.Pkg.Scope()

	var names []string
	for _, name := range scope.Names() {
		if _, ok := scope.Lookup(name).(*types.Func); ok {
			names = append(names, name)
		}
	}

	return names
}

// codeOf maps composition and introspection errors to diagnostic codes.
func codeOf(err error) string {
	if code := compose.CodeOf(err); code != "" {
		return code
	}

	if errors.Is(err, analyze.ErrTypeNotFound) {
		return diagnostic.CodeTypeNotFound
	}

	return diagnostic.CodeUnsupported
}

// walk visits every plan reachable from p once.
func walk(p *compose.Plan, visit func(*compose.Plan)) {
	seen := make(map[*compose.Plan]bool)

	var rec func(*compose.Plan)
	rec = func(p *compose.Plan) {
		if p == nil || seen[p] {
			return
		}

		seen[p] = true
		visit(p)

		rec(p.Elem)
		rec(p.Key)

		for _, m := range p.Members {
			rec(m.Plan)
		}

		for _, arg := range p.Args {
			rec(arg)
		}
	}

	rec(p)
}
