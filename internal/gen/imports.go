package gen

import (
	"go/types"
	"slices"
	"strconv"
	"strings"

	"roundtrip-generator/internal/common"
)

// RuntimePath is the import path of the helpers called by generated code.
const RuntimePath = "roundtrip-generator/roundtrip"

// importSpec represents an import statement.
type importSpec struct {
	Alias string
	Path  string
}

// importSet tracks the packages referenced by a generated file.
type importSet struct {
	local string
	specs map[string]importSpec
	names map[string]string // name -> path
}

func newImportSet(local string) *importSet {
	return &importSet{
		local: local,
		specs: make(map[string]importSpec),
		names: make(map[string]string),
	}
}

// use registers the package and returns the name it is referenced by.
// The local package is referenced unqualified.
func (s *importSet) use(pkgPath, pkgName string) string {
	if pkgPath == s.local {
		return ""
	}

	if spec, ok := s.specs[pkgPath]; ok {
		return s.nameOf(spec)
	}

	if pkgName == "" {
		pkgName = common.PkgAlias(pkgPath)
	}

	name := pkgName
	for i := 2; ; i++ {
		if taken, ok := s.names[name]; !ok || taken == pkgPath {
			break
		}

		name = pkgName + strconv.Itoa(i)
	}

	spec := importSpec{Path: pkgPath}
	if name != common.PkgAlias(pkgPath) {
		spec.Alias = name
	}

	s.specs[pkgPath] = spec
	s.names[name] = pkgPath

	return name
}

func (s *importSet) nameOf(spec importSpec) string {
	if spec.Alias != "" {
		return spec.Alias
	}

	return common.PkgAlias(spec.Path)
}

// qualifier is a types.Qualifier registering every package it is asked about.
func (s *importSet) qualifier(pkg *types.Package) string {
	return s.use(pkg.Path(), pkg.Name())
}

// ref returns ident qualified by the name of pkgPath.
func (s *importSet) ref(pkgPath, ident string) string {
	name := s.use(pkgPath, "")
	if name == "" {
		return ident
	}

	return name + "." + ident
}

// groups returns the standard library imports and the remaining ones, each
// sorted by path.
func (s *importSet) groups() (std, other []importSpec) {
	for _, spec := range s.specs {
		if s.isStd(spec.Path) {
			std = append(std, spec)
		} else {
			other = append(other, spec)
		}
	}

	byPath := func(a, b importSpec) int { return strings.Compare(a.Path, b.Path) }
	slices.SortFunc(std, byPath)
	slices.SortFunc(other, byPath)

	return std, other
}

// isStd reports whether pkgPath belongs to the standard library. Paths
// sharing the first element of the local package are module-local.
func (s *importSet) isStd(pkgPath string) bool {
	first, _, _ := strings.Cut(pkgPath, "/")
	local, _, _ := strings.Cut(s.local, "/")

	return !strings.Contains(first, ".") && first != local
}
