// Package logging provides a minimal logging interface and adapters for cotmesh.
//
// The Logger interface defines the standard logging methods (Debug, Info, Warn,
// Error) that backends and the orchestrator use for observability. This
// package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping an existing *slog.Logger
//   - ContextLogger with run/component scoping and LLM call helpers
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "json", false)
//	orch := orchestrator.New(decomposer, solver, orchestrator.WithLogger(logger))
package logging
