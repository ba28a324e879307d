// Package agent contains the two agent backends of a chain-of-thought run.
//
//   - Decomposer (Agent A) breaks the problem into sub-prompts, judges the
//     Solver's answers and decides when the problem is solved.
//   - Solver (Agent B) answers one sub-prompt at a time.
//
// Each backend is bound to an immutable rule text (Instruction) and a
// model.Model at construction. Ask composes the provider payload from the
// rule text, the caller's exchange history and the current prompt, sends
// it, and normalizes the reply into a core.Record. The history is only
// read; the orchestrator owns and appends to it.
//
// A reply that cannot be parsed is not an error: the record carries the raw
// text instead. Only a failure to obtain any reply yields a *TransportError,
// and the record then carries "Error: <cause>".
package agent
