package analyze

import (
	"go/token"
	"go/types"

	"roundtrip-generator/internal/common"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "roundtrip-generator/examples/deriving"
	Name    string // e.g., "Msg"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// TypeKind represents the kind of a declared type.
type TypeKind int

const (
	TypeKindUnknown TypeKind = iota
	TypeKindRecord           // struct type
	TypeKindUnion            // struct type with a TaggedUnion method
	TypeKindOther            // any other named type (primitive, container, opaque)
)

// String returns a human-readable representation of the TypeKind.
func (k TypeKind) String() string {
	switch k {
	case TypeKindRecord:
		return "record"
	case TypeKindUnion:
		return "union"
	case TypeKindOther:
		return "other"
	default:
		return common.UnknownStr
	}
}

// Derivable reports whether a round-trip function can be generated for the kind.
func (k TypeKind) Derivable() bool {
	return k == TypeKindRecord || k == TypeKindUnion
}

// TypeParam is a type parameter of a declared type.
type TypeParam struct {
	Name       string
	Constraint types.Type
}

// TypeInfo describes a type declared in a loaded package.
type TypeInfo struct {
	ID     TypeID         // Unique identifier
	Kind   TypeKind       // Kind of type
	Named  *types.Named   // Generic origin of the declared type
	Params []TypeParam    // Type parameters in declaration order
	Pos    token.Position // Declaration position
}

// Generic returns true if the type declares type parameters.
func (t *TypeInfo) Generic() bool {
	return len(t.Params) > 0
}

// TypeGraph holds all analyzed types from loaded packages.
type TypeGraph struct {
	// Types maps TypeID to TypeInfo for all named types.
	Types map[TypeID]*TypeInfo
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Types:    make(map[TypeID]*TypeInfo),
		Packages: make(map[string]*PackageInfo),
	}
}

// GetType returns the TypeInfo for a given TypeID, or nil if not found.
func (g *TypeGraph) GetType(id TypeID) *TypeInfo {
	return g.Types[id]
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string   // Import path
	Name  string   // Package name
	Dir   string   // Directory holding the package sources
	Types []TypeID // Exported named types in scope order
	Pkg   *types.Package
}
