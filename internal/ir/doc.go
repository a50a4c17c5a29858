// Package ir provides the typed intermediate representation produced by the
// IR builder and threaded through the transform pipeline.
//
// Selections live in an index-addressed arena owned by a Program. Nodes
// refer to their children by SelectionID and fragment spreads refer to
// fragments by name, so shared subtrees are never duplicated or cyclic.
//
// Key design constraints:
//   - A Program is immutable once built; transforms derive a ProgramBuilder
//     and build a new Program
//   - Build compacts the arena in pre-order, so structurally equal programs
//     have equal arenas
//   - Traversals use explicit work lists, never unbounded recursion
//   - Every node carries the schema types it resolves against
package ir
