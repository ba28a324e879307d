// Package core provides the foundational domain types shared by the cotmesh
// packages:
//
//   - Records (the structured reply contract of the Decomposer and Solver)
//   - Histories (ordered, per-backend exchange logs)
//   - Turns (labeled transcript entries emitted by the orchestrator)
//   - TurnCounter (the bounded iteration counter)
//
// The package keeps implementation concerns (model providers, prompting,
// orchestration) out of scope so the types can be used from every layer
// without import cycles.
package core
