// Package plan provides the planning pipeline that produces the ordered
// derivations consumed by code generation.
//
// Planning pipeline:
//  1. Analyze packages → type graph
//  2. Resolve alias functions named by the request
//  3. For each requested type pair, and every pair reached from it:
//     - Instantiate source and target over fresh type parameters
//     - Compose their shapes, referencing nested user types
//     - Queue the referenced pairs of the same package
//  4. Emit diagnostics (mismatches, unsupported shapes, external types)
//  5. Order derivations by dependency
package plan
