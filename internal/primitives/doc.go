// Package primitives provides the foundational data structures for release
// plans: declarative descriptions of guarded resources, the ordering
// constraints between them, and the validated plan the engine executes.
//
// A plan is pure data. It knows which resources exist, which must be
// acquired after which, and how long their release actions may take before
// the watchdog reports them. It does not know how to acquire anything;
// providers live in internal/core.
//
// Core invariants:
//   - A validated plan is acyclic; AcquireOrder is a deterministic
//     topological order and ReleaseOrder is its exact reverse (LIFO)
//   - Resource map keys always agree with resource IDs
//   - Configs round-trip through YAML and JSON unchanged
package primitives
