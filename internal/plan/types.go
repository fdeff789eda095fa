package plan

import (
	"roundtrip-generator/compose"
	"roundtrip-generator/internal/analyze"
	"roundtrip-generator/internal/diagnostic"
)

// Pair names a source and a target declared type.
type Pair struct {
	Source analyze.TypeID
	Target analyze.TypeID
}

// Same reports whether the pair maps a type onto its own instances.
func (p Pair) Same() bool {
	return p.Source == p.Target
}

// String returns "Name" for same-type pairs and "Source -> Target" otherwise.
func (p Pair) String() string {
	if p.Same() {
		return p.Source.Name
	}

	return p.Source.Name + " -> " + p.Target.Name
}

// Requested is a pair asked for explicitly.
type Requested struct {
	Source string
	Target string
	// Func overrides the generated function name.
	Func string
}

// Request describes what to plan.
type Request struct {
	// Package is the import path of the package holding the types.
	Package string
	// Types lists the requested pairs by type name.
	Types []Requested
	// Aliases names package functions applied when decoding their result type.
	Aliases []string
	// Prefix is prepended to type names to form function names.
	Prefix string
}

// Derivation is a round-trip function to generate.
type Derivation struct {
	Pair     Pair
	FuncName string
	// Source and Target are the declared types instantiated over S0.. and T0..
	Source *analyze.Instance
	Target *analyze.Instance
	// Params are the type parameters of the source type.
	Params []analyze.TypeParam
	Plan   *compose.Plan
	// Deps are the pairs whose functions the plan calls, itself excluded.
	Deps []Pair
	// Requested is false for pairs reached only through members.
	Requested bool
}

// Result is the final output of the planning pipeline.
type Result struct {
	// Package is the analyzed package the functions are generated into.
	Package *analyze.PackageInfo
	// Derivations in dependency order.
	Derivations []*Derivation
	// Aliases are the resolved alias functions.
	Aliases []*compose.Alias
	// Diagnostics contains all warnings and errors from planning.
	Diagnostics diagnostic.Diagnostics

	funcs map[Pair]string
}

// FuncName returns the name of the function generated for the pair of
// declared types identified by their origins.
func (r *Result) FuncName(source, target string) (string, bool) {
	for pair, name := range r.funcs {
		if pair.Source.String() == source && pair.Target.String() == target {
			return name, true
		}
	}

	return "", false
}
