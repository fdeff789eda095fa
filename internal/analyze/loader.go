package analyze

import (
	"errors"
	"fmt"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/packages"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports

var ErrTypeNotFound = errors.New("type not found")

// Analyzer loads Go packages and indexes their declared types.
type Analyzer struct {
	graph *TypeGraph
	ctxt  *types.Context
	dir   string
}

// NewAnalyzer creates a new Analyzer. Package patterns are resolved relative
// to dir; an empty dir means the current directory.
func NewAnalyzer(dir string) *Analyzer {
	return &Analyzer{
		graph: NewTypeGraph(),
		ctxt:  types.NewContext(),
		dir:   dir,
	}
}

// LoadPackages loads the specified packages and builds the type graph.
// Patterns are standard Go package patterns (e.g., "./examples/deriving").
func (a *Analyzer) LoadPackages(patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Mode: LoadMode,
		Dir:  a.dir,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	// Check for package errors
	var errs []error
	packages.Visit(pkgs, nil, func(pkg *packages.Package) {
		for _, e := range pkg.Errors {
			errs = append(errs, e)
		}
	})
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	// Process each package
	for _, pkg := range pkgs {
		a.processPackage(pkg)
	}

	return a.graph, nil
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// processPackage extracts declared types from a loaded package.
func (a *Analyzer) processPackage(pkg *packages.Package) {
	pkgInfo := &PackageInfo{
		Path: pkg.PkgPath,
		Name: pkg.Name,
		Pkg:  pkg.Types,
	}

	if len(pkg.GoFiles) > 0 {
		pkgInfo.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	scope := pkg.Types.Scope()
	for _, name := range scope.Names() {
		// Only process exported, non-alias type names
		typeName, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || !typeName.Exported() || typeName.IsAlias() {
			continue
		}

		named, ok := typeName.Type().(*types.Named)
		if !ok {
			continue
		}

		info := &TypeInfo{
			ID:    TypeID{PkgPath: pkg.PkgPath, Name: name},
			Kind:  kindOf(named),
			Named: named,
			Pos:   pkg.Fset.Position(typeName.Pos()),
		}

		tparams := named.TypeParams()
		for i := range tparams.Len() {
			tp := tparams.At(i)
			info.Params = append(info.Params, TypeParam{
				Name:       tp.Obj().Name(),
				Constraint: tp.Constraint(),
			})
		}

		a.graph.Types[info.ID] = info
		pkgInfo.Types = append(pkgInfo.Types, info.ID)
	}

	a.graph.Packages[pkg.PkgPath] = pkgInfo
}

func kindOf(named *types.Named) TypeKind {
	if _, ok := named.Underlying().(*types.Struct); !ok {
		return TypeKindOther
	}

	if isUnion(named) {
		return TypeKindUnion
	}

	return TypeKindRecord
}

// GetType returns the TypeInfo for a declared type.
func (a *Analyzer) GetType(pkgPath, typeName string) (*TypeInfo, error) {
	id := TypeID{PkgPath: pkgPath, Name: typeName}
	info := a.graph.GetType(id)
	if info == nil {
		return nil, fmt.Errorf("%s: %w", id, ErrTypeNotFound)
	}

	return info, nil
}
