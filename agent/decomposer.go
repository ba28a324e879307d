package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/cotmesh/config"
	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/intent"
	"github.com/hupe1980/cotmesh/internal/util"
	"github.com/hupe1980/cotmesh/logging"
	"github.com/hupe1980/cotmesh/model"
	"github.com/hupe1980/cotmesh/normalize"
)

// DecomposerOptions configures a Decomposer.
type DecomposerOptions struct {
	Instruction Instruction
	Generation  model.Options
	// MaxIterations is the ceiling at and after which every step is final. It
	// only applies when Ask.Iteration is zero; callers that track iterations
	// themselves decide the final step through Ask.Final.
	MaxIterations int
	// Coercer repairs evasive solutions. Nil uses a coercer on the same model.
	Coercer *intent.Coercer
	// DisableCoercion turns the evasive-solution repair off.
	DisableCoercion bool
	Logger          logging.Logger
}

// Decomposer is Agent A: it breaks a problem into sub-prompts and decides
// when the problem is solved.
type Decomposer struct {
	llm     model.Model
	opts    DecomposerOptions
	coercer *intent.Coercer
}

// NewDecomposer creates a Decomposer bound to the default rule text.
func NewDecomposer(llm model.Model, optFns ...func(o *DecomposerOptions)) *Decomposer {
	opts := DecomposerOptions{
		Instruction:   NewInstructionFromText(DecomposerRules),
		Generation:    model.Options{JSON: true},
		MaxIterations: config.DefaultMaxIterations,
		Logger:        logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	d := &Decomposer{llm: llm, opts: opts}
	if !opts.DisableCoercion {
		d.coercer = opts.Coercer
		if d.coercer == nil {
			coerceOpts := opts.Generation
			coerceOpts.JSON = false
			d.coercer = &intent.Coercer{Model: llm, Options: coerceOpts, Logger: opts.Logger}
		}
	}
	return d
}

// Ask sends one Decomposer step. The returned record always has content and
// a solution flag; err is a *TransportError when no reply was obtained.
func (d *Decomposer) Ask(ctx context.Context, ask Ask) (core.Record, error) {
	info := TurnInfo{
		Iteration:       ask.iteration(),
		OriginalProblem: ask.originalProblem(),
	}
	info.Final = d.isFinal(ask, info.Iteration)

	req, err := d.buildRequest(ask, info)
	if err != nil {
		return core.NewDecomposerRecord(errorContent(err), false), err
	}

	text, err := call(ctx, d.llm, d.opts.Logger, normalize.Decomposer.String(), req)
	if err != nil {
		return core.NewDecomposerRecord(errorContent(err), false), err
	}

	res := normalize.NormalizeWithDefault(text, normalize.Decomposer, info.Final)
	if fb, ok := res.(normalize.Fallback); ok {
		d.opts.Logger.Debug("Malformed Decomposer reply", "error", fb.Err, "iteration", info.Iteration)
	}

	rec := res.Record()
	if intent.Classify(&rec) && d.coercer != nil {
		rec = d.coercer.Coerce(ctx, rec, info.OriginalProblem)
	}
	return rec, nil
}

func (d *Decomposer) isFinal(ask Ask, iteration int) bool {
	if ask.Final {
		return true
	}
	if ask.Iteration == 0 && d.opts.MaxIterations > 0 && iteration >= d.opts.MaxIterations {
		return true
	}
	return strings.Contains(strings.ToLower(ask.Prompt), "final solution")
}

func (d *Decomposer) buildRequest(ask Ask, info TurnInfo) (model.Request, error) {
	instructions, err := resolveInstruction(d.opts.Instruction, info)
	if err != nil {
		return model.Request{}, fmt.Errorf("resolve decomposer instruction: %w", err)
	}
	prompt, err := util.Execute(decomposerPrompt, promptData{
		Iteration:       info.Iteration,
		OriginalProblem: info.OriginalProblem,
		Prompt:          ask.Prompt,
		Final:           info.Final,
	})
	if err != nil {
		return model.Request{}, fmt.Errorf("render decomposer prompt: %w", err)
	}
	return model.Request{
		Instructions: instructions,
		History:      ask.History.Messages(),
		Prompt:       prompt,
		Options:      d.opts.Generation,
	}, nil
}

// Info returns the backing model's metadata.
func (d *Decomposer) Info() model.Info { return d.llm.Info() }
