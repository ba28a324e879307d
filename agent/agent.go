package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/logging"
	"github.com/hupe1980/cotmesh/model"
)

// Ask is one request to an agent backend.
type Ask struct {
	// Prompt is the current input text.
	Prompt string
	// History is the role's exchange history. It is read, never modified.
	History *core.History
	// Iteration is the 1-based step number. Zero derives it from History.
	Iteration int
	// OriginalProblem is the run's initial problem. Empty derives it from
	// the first user entry of History, or Prompt when History is empty.
	OriginalProblem string
	// Final marks the step that must deliver the complete solution.
	Final bool
}

func (a Ask) iteration() int {
	if a.Iteration > 0 {
		return a.Iteration
	}
	return a.History.Exchanges() + 1
}

func (a Ask) originalProblem() string {
	if a.OriginalProblem != "" {
		return a.OriginalProblem
	}
	if text, ok := a.History.FirstUserText(); ok {
		return text
	}
	return a.Prompt
}

// Backend is implemented by Decomposer and Solver.
type Backend interface {
	Ask(ctx context.Context, ask Ask) (core.Record, error)
}

var (
	_ Backend = (*Decomposer)(nil)
	_ Backend = (*Solver)(nil)
)

// TransportError reports that a backend could not obtain any reply text.
type TransportError struct {
	Role string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s transport failure: %v", e.Role, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is or wraps a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// call sends one blocking request and logs it.
func call(ctx context.Context, m model.Model, logger logging.Logger, role string, req model.Request) (string, error) {
	start := time.Now()
	text, err := model.Collect(ctx, m, req)
	logging.LLMCall(logger, m.Info().Name, role, time.Since(start), err)
	if err != nil {
		return "", &TransportError{Role: role, Err: err}
	}
	return text, nil
}

func errorContent(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		err = te.Err
	}
	return "Error: " + err.Error()
}
