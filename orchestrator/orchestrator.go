package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/cotmesh/agent"
	"github.com/hupe1980/cotmesh/config"
	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/intent"
	"github.com/hupe1980/cotmesh/logging"
)

// NoSolution is the final answer of a run that produced no Decomposer record.
const NoSolution = "No solution found"

const (
	confirmPrompt = "Based on Agent B's response: '%s', please confirm if this is the correct solution to the original problem. If it is, set 'isSolution' to true in your response."

	synthesizePrompt = "You've reached the maximum number of iterations. Based on all the steps so far, please synthesize a final solution to the original problem. Include 'isSolution': true in your response."
)

// TurnHandler receives every transcript entry as soon as it is produced.
type TurnHandler func(core.Turn)

// Options configures an Orchestrator.
type Options struct {
	MaxIterations     int
	MaxConcurrentRuns int // 0 means unbounded
	OnTurn            TurnHandler
	Logger            logging.Logger
}

// Option mutates Options.
type Option func(o *Options)

// WithTurnHandler registers a callback invoked for each emitted turn.
func WithTurnHandler(h TurnHandler) Option {
	return func(o *Options) { o.OnTurn = h }
}

// WithMaxIterations sets the iteration ceiling.
func WithMaxIterations(n int) Option {
	return func(o *Options) { o.MaxIterations = n }
}

// WithMaxConcurrentRuns bounds the number of runs executing at once.
func WithMaxConcurrentRuns(n int) Option {
	return func(o *Options) { o.MaxConcurrentRuns = n }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Result is the outcome of one run.
type Result struct {
	RunID       string
	State       State
	Turns       []core.Turn
	FinalAnswer string
	Iterations  int
}

// Transcript renders every turn as "<Label>: <Text>", one per line.
func (r Result) Transcript() string {
	lines := make([]string, len(r.Turns))
	for i, t := range r.Turns {
		lines[i] = t.String()
	}
	return strings.Join(lines, "\n")
}

// Orchestrator runs the Decomposer/Solver loop. It holds no per-run state.
type Orchestrator struct {
	decomposer agent.Backend
	solver     agent.Backend
	opts       Options
	sem        chan struct{}
}

// New creates an Orchestrator.
func New(decomposer, solver agent.Backend, opts ...Option) *Orchestrator {
	o := Options{
		MaxIterations: config.DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = config.DefaultMaxIterations
	}
	if o.Logger == nil {
		o.Logger = logging.NoOpLogger{}
	}

	orch := &Orchestrator{decomposer: decomposer, solver: solver, opts: o}
	if o.MaxConcurrentRuns > 0 {
		orch.sem = make(chan struct{}, o.MaxConcurrentRuns)
	}
	return orch
}

// Run drives one orchestration for problem. Transport failures end the run
// in FAILED and are reported through the transcript, not the error; the
// error is non-nil only when ctx ends the run.
//
// opts override the turn handler, logger or ceiling for this run only.
func (o *Orchestrator) Run(ctx context.Context, problem string, opts ...Option) (Result, error) {
	if o.sem != nil {
		select {
		case o.sem <- struct{}{}:
			defer func() { <-o.sem }()
		case <-ctx.Done():
			return Result{State: Failed, FinalAnswer: NoSolution}, ctx.Err()
		}
	}

	runOpts := o.opts
	for _, fn := range opts {
		fn(&runOpts)
	}
	r := newRun(o.decomposer, o.solver, runOpts, problem)
	start := time.Now()
	err := r.loop(ctx)
	logging.Run(r.logger, r.state.String(), r.counter.Count(), time.Since(start), err)
	return r.result(), err
}

// run holds the state of one orchestration.
type run struct {
	id       string
	decomp   agent.Backend
	solver   agent.Backend
	onTurn   TurnHandler
	logger   logging.Logger
	original string

	state     State
	problem   string
	subPrompt string
	historyA  *core.History
	historyB  *core.History
	counter   *core.TurnCounter
	turns     []core.Turn
	final     string
	hasFinal  bool
}

func newRun(decomposer, solver agent.Backend, opts Options, problem string) *run {
	id := core.NewID()
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	if cl, ok := logger.(*logging.ContextLogger); ok {
		logger = cl.WithComponent("orchestrator").WithRun(id)
	}
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = config.DefaultMaxIterations
	}
	return &run{
		id:       id,
		decomp:   decomposer,
		solver:   solver,
		onTurn:   opts.OnTurn,
		logger:   logger,
		original: problem,
		state:    AwaitDecomposer,
		problem:  problem,
		historyA: core.NewHistory(),
		historyB: core.NewHistory(),
		counter:  core.NewTurnCounter(maxIterations),
	}
}

func (r *run) loop(ctx context.Context) error {
	for !r.state.Terminal() {
		if err := ctx.Err(); err != nil {
			r.state = Failed
			return err
		}
		var err error
		switch r.state {
		case AwaitDecomposer:
			err = r.awaitDecomposer(ctx)
		case AwaitSolver:
			err = r.awaitSolver(ctx)
		default:
			return fmt.Errorf("orchestrator: unexpected state %s", r.state)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *run) awaitDecomposer(ctx context.Context) error {
	iteration := r.counter.Increment()

	rec, err := r.decomp.Ask(ctx, agent.Ask{
		Prompt:          r.problem,
		History:         r.historyA,
		Iteration:       iteration,
		OriginalProblem: r.original,
		Final:           r.finalStep(iteration),
	})
	if err != nil {
		return r.fail(ctx, core.TurnDecomposerError, iteration, rec, err)
	}

	r.historyA.AppendExchange(r.problem, rec.JSON())
	r.setFinal(rec)
	r.emit(core.TurnQuestion, iteration, rec.Content)

	if intent.Classify(&rec) {
		r.emit(core.TurnSolution, iteration, rec.Content)
		r.state = Solved
		return nil
	}

	r.subPrompt = rec.Content
	r.state = AwaitSolver
	return nil
}

func (r *run) awaitSolver(ctx context.Context) error {
	iteration := r.counter.Count()

	rec, err := r.solver.Ask(ctx, agent.Ask{
		Prompt:          r.subPrompt,
		History:         r.historyB,
		Iteration:       iteration,
		OriginalProblem: r.original,
	})
	if err != nil {
		return r.fail(ctx, core.TurnSolverError, iteration, rec, err)
	}

	r.historyB.AppendExchange(r.subPrompt, rec.JSON())
	r.emit(core.TurnAnswer, iteration, rec.Content)
	r.problem = rec.Content

	if intent.HasAssignment(r.problem) {
		solved, err := r.confirm(ctx, iteration)
		if err != nil {
			return err
		}
		if solved {
			r.state = Solved
			return nil
		}
	}

	if r.counter.Reached() {
		return r.synthesize(ctx, iteration)
	}

	r.state = AwaitDecomposer
	return nil
}

// confirm asks the Decomposer whether the Solver's answer solves the
// problem. A failed confirmation falls through to normal continuation.
func (r *run) confirm(ctx context.Context, iteration int) (bool, error) {
	if err := ctx.Err(); err != nil {
		r.state = Failed
		return false, err
	}

	rec, err := r.decomp.Ask(ctx, agent.Ask{
		Prompt:          fmt.Sprintf(confirmPrompt, r.problem),
		History:         r.historyA,
		Iteration:       iteration,
		OriginalProblem: r.original,
		Final:           r.finalStep(iteration),
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.state = Failed
			return false, ctxErr
		}
		r.logger.Warn("Confirmation call failed", "iteration", iteration, "error", err.Error())
		return false, nil
	}

	r.setFinal(rec)
	if !rec.Solution() {
		r.logger.Debug("Answer not confirmed as solution", "iteration", iteration)
		return false, nil
	}
	r.emit(core.TurnSolution, iteration, rec.Content)
	return true, nil
}

// finalStep reports whether iteration is the last one the run's ceiling
// allows.
func (r *run) finalStep(iteration int) bool {
	ceiling := r.counter.Max()
	return ceiling > 0 && iteration >= ceiling
}

// synthesize issues the forced final-solution request after the ceiling.
func (r *run) synthesize(ctx context.Context, iteration int) error {
	if err := ctx.Err(); err != nil {
		r.state = Failed
		return err
	}

	rec, err := r.decomp.Ask(ctx, agent.Ask{
		Prompt:          synthesizePrompt,
		History:         r.historyA,
		Iteration:       iteration,
		OriginalProblem: r.original,
		Final:           true,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			r.state = Failed
			return ctxErr
		}
		r.setFinal(rec)
		r.emit(core.TurnDecomposerError, iteration, rec.Content)
		r.state = MaxIterReached
		return nil
	}

	r.setFinal(rec)
	r.emit(core.TurnFinalSolution, iteration, rec.Content)
	r.state = MaxIterReached
	return nil
}

// fail records a failed backend call. Cancellation is returned to the
// caller; any other failure is reported inline.
func (r *run) fail(ctx context.Context, kind core.TurnKind, iteration int, rec core.Record, err error) error {
	r.state = Failed
	if kind == core.TurnDecomposerError {
		r.setFinal(rec)
	}
	r.emit(kind, iteration, rec.Content)
	r.logger.Error("Backend call failed", "kind", string(kind), "iteration", iteration, "error", err.Error())
	return ctx.Err()
}

func (r *run) setFinal(rec core.Record) {
	r.final = rec.Content
	r.hasFinal = true
}

// emit appends a turn and hands it to the turn handler.
func (r *run) emit(kind core.TurnKind, iteration int, text string) {
	t := core.NewTurn(kind, iteration, text)
	r.turns = append(r.turns, t)
	logging.Turn(r.logger, string(kind), iteration, len(text))
	if r.onTurn != nil {
		r.onTurn(t)
	}
}

func (r *run) result() Result {
	final := NoSolution
	if r.hasFinal {
		final = r.final
	}
	return Result{
		RunID:       r.id,
		State:       r.state,
		Turns:       r.turns,
		FinalAnswer: final,
		Iterations:  r.counter.Count(),
	}
}
