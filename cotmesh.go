// Package cotmesh provides a high-level façade over the orchestrator: it
// turns configuration into provider endpoints, binds them to a Decomposer
// and a Solver and runs chain-of-thought orchestrations. Most applications
// interact with this package by:
//  1. Loading a config.Config (config.Load) or supplying endpoints directly
//  2. Creating a Mesh via NewFromConfig or New
//  3. Calling RunOrchestration with a problem and an optional turn callback
package cotmesh

import (
	"context"
	"fmt"
	"time"

	"github.com/hupe1980/cotmesh/agent"
	"github.com/hupe1980/cotmesh/config"
	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/logging"
	"github.com/hupe1980/cotmesh/model"
	"github.com/hupe1980/cotmesh/orchestrator"
	"github.com/hupe1980/cotmesh/provider"
)

// Options configures a Mesh.
type Options struct {
	MaxIterations     int
	MaxConcurrentRuns int
	// RunTimeout bounds a single run; zero means no limit beyond ctx.
	RunTimeout           time.Duration
	DecomposerGeneration model.Options
	SolverGeneration     model.Options
	// Logger defaults to NoOp logger if nil.
	Logger logging.Logger
}

// Mesh is a ready-to-run Decomposer/Solver pair.
type Mesh struct {
	opts         Options
	orchestrator *orchestrator.Orchestrator
}

// New creates a Mesh over two endpoints.
func New(decomposer, solver model.Model, optFns ...func(o *Options)) *Mesh {
	opts := Options{
		MaxIterations:        config.DefaultMaxIterations,
		DecomposerGeneration: model.Options{JSON: true},
		SolverGeneration:     model.Options{JSON: true},
		Logger:               logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	d := agent.NewDecomposer(decomposer, func(o *agent.DecomposerOptions) {
		o.Generation = opts.DecomposerGeneration
		o.MaxIterations = opts.MaxIterations
		o.Logger = component(opts.Logger, "decomposer")
	})
	s := agent.NewSolver(solver, func(o *agent.SolverOptions) {
		o.Generation = opts.SolverGeneration
		o.Logger = component(opts.Logger, "solver")
	})

	return &Mesh{
		opts: opts,
		orchestrator: orchestrator.New(d, s,
			orchestrator.WithMaxIterations(opts.MaxIterations),
			orchestrator.WithMaxConcurrentRuns(opts.MaxConcurrentRuns),
			orchestrator.WithLogger(opts.Logger),
		),
	}
}

// NewFromConfig builds both endpoints through the provider registry.
func NewFromConfig(ctx context.Context, cfg *config.Config, optFns ...func(o *Options)) (*Mesh, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	decomposer, err := provider.New(ctx, cfg.Decomposer)
	if err != nil {
		return nil, fmt.Errorf("decomposer: %w", err)
	}
	solver, err := provider.New(ctx, cfg.Solver)
	if err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	fns := append([]func(o *Options){func(o *Options) {
		o.MaxIterations = cfg.MaxIterations
		o.MaxConcurrentRuns = cfg.MaxConcurrentRuns
		o.RunTimeout = cfg.RunTimeout
		o.DecomposerGeneration = provider.Options(cfg.Decomposer.Generation)
		o.SolverGeneration = provider.Options(cfg.Solver.Generation)
		o.Logger = NewLogger(cfg.Log)
	}}, optFns...)

	return New(decomposer, solver, fns...), nil
}

// NewLogger builds the structured logger described by cfg.
func NewLogger(cfg config.LogConfig) *logging.ContextLogger {
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     logging.ParseLevel(cfg.Level),
		Format:    cfg.Format,
		Component: "cotmesh",
	})
}

// Run executes one orchestration and returns the full result.
func (m *Mesh) Run(ctx context.Context, problem string, opts ...orchestrator.Option) (orchestrator.Result, error) {
	if m.opts.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.RunTimeout)
		defer cancel()
	}
	return m.orchestrator.Run(ctx, problem, opts...)
}

// RunOrchestration runs problem and returns the rendered transcript and the
// final answer. onTurn, when non-nil, receives each turn's label and text as
// the run progresses. The final answer is never empty.
func (m *Mesh) RunOrchestration(ctx context.Context, problem string, onTurn func(label, text string)) (string, string, error) {
	var opts []orchestrator.Option
	if onTurn != nil {
		opts = append(opts, orchestrator.WithTurnHandler(func(t core.Turn) { onTurn(t.Label, t.Text) }))
	}
	res, err := m.Run(ctx, problem, opts...)
	return res.Transcript(), res.FinalAnswer, err
}

func component(l logging.Logger, name string) logging.Logger {
	if cl, ok := l.(*logging.ContextLogger); ok {
		return cl.WithComponent(name)
	}
	return l
}
