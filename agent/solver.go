package agent

import (
	"context"
	"fmt"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/internal/util"
	"github.com/hupe1980/cotmesh/logging"
	"github.com/hupe1980/cotmesh/model"
	"github.com/hupe1980/cotmesh/normalize"
)

// SolverOptions configures a Solver.
type SolverOptions struct {
	Instruction Instruction
	Generation  model.Options
	Logger      logging.Logger
}

// Solver is Agent B: it answers one sub-prompt at a time.
type Solver struct {
	llm  model.Model
	opts SolverOptions
}

// NewSolver creates a Solver bound to the default rule text.
func NewSolver(llm model.Model, optFns ...func(o *SolverOptions)) *Solver {
	opts := SolverOptions{
		Instruction: NewInstructionFromText(SolverRules),
		Generation:  model.Options{JSON: true},
		Logger:      logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	return &Solver{llm: llm, opts: opts}
}

// Ask answers one sub-prompt. The returned record never carries a solution
// flag; err is a *TransportError when no reply was obtained.
func (s *Solver) Ask(ctx context.Context, ask Ask) (core.Record, error) {
	info := TurnInfo{
		Iteration:       ask.iteration(),
		OriginalProblem: ask.originalProblem(),
		Final:           ask.Final,
	}

	instructions, err := resolveInstruction(s.opts.Instruction, info)
	if err != nil {
		err = fmt.Errorf("resolve solver instruction: %w", err)
		return core.NewSolverRecord(errorContent(err)), err
	}
	prompt, err := util.Execute(solverPrompt, promptData{Prompt: ask.Prompt})
	if err != nil {
		err = fmt.Errorf("render solver prompt: %w", err)
		return core.NewSolverRecord(errorContent(err)), err
	}

	text, err := call(ctx, s.llm, s.opts.Logger, normalize.Solver.String(), model.Request{
		Instructions: instructions,
		History:      ask.History.Messages(),
		Prompt:       prompt,
		Options:      s.opts.Generation,
	})
	if err != nil {
		return core.NewSolverRecord(errorContent(err)), err
	}

	res := normalize.Normalize(text, normalize.Solver)
	if fb, ok := res.(normalize.Fallback); ok {
		s.opts.Logger.Debug("Malformed Solver reply", "error", fb.Err, "iteration", info.Iteration)
	}
	return res.Record(), nil
}

// Info returns the backing model's metadata.
func (s *Solver) Info() model.Info { return s.llm.Info() }
