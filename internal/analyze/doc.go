// Package analyze provides package loading, type graph extraction and shape
// building for declared types.
//
// It uses golang.org/x/tools/go/packages with go/types to index the exported
// named types of the loaded packages, then instantiates generic declarations
// over fresh type parameters to describe both sides of a derivation.
//
// Key types:
//   - TypeID: package import path + type name
//   - TypeInfo: declared kind (record/union/other) and type parameters
//   - Instance: a declared type instantiated over S0.. or T0.., with its shape
//   - FuncInfo: a package function usable as an alias
package analyze
