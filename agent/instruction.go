package agent

import "github.com/hupe1980/cotmesh/internal/util"

// TurnInfo describes the step an instruction is resolved for.
type TurnInfo struct {
	Iteration       int
	OriginalProblem string
	Final           bool
}

// Provider supplies dynamic instruction text at runtime.
type Provider interface {
	Instruction(TurnInfo) (string, error)
}

// Func is a functional adapter to allow ordinary functions to be used as Providers.
type Func func(TurnInfo) (string, error)

// Instruction implements Provider.
func (f Func) Instruction(info TurnInfo) (string, error) { return f(info) }

// Instruction represents either a static rule text or a dynamic provider.
// A backend binds one Instruction at construction and never changes it.
type Instruction struct {
	text     string
	provider Provider
}

// NewInstructionFromText creates an Instruction from a static string.
func NewInstructionFromText(text string) Instruction { return Instruction{text: text} }

// NewInstructionFromProvider creates an Instruction from a dynamic provider.
func NewInstructionFromProvider(p Provider) Instruction { return Instruction{provider: p} }

// NewInstructionFromFunc creates an Instruction from a function.
func NewInstructionFromFunc(f func(TurnInfo) (string, error)) Instruction {
	return Instruction{provider: Func(f)}
}

// IsStatic returns true if the instruction is backed by a static string.
func (i Instruction) IsStatic() bool { return i.provider == nil }

// Resolve returns the instruction text, invoking the provider if needed.
func (i Instruction) Resolve(info TurnInfo) (string, error) {
	if i.provider != nil {
		return i.provider.Instruction(info)
	}
	return i.text, nil
}

// resolveInstruction resolves i. Static text has its template fields
// ({{.Iteration}}, {{.OriginalProblem}}, {{.Final}}) expanded; provider text
// is returned verbatim.
func resolveInstruction(i Instruction, info TurnInfo) (string, error) {
	text, err := i.Resolve(info)
	if err != nil || !i.IsStatic() {
		return text, err
	}
	return util.RenderTemplate(text, map[string]any{
		"Iteration":       info.Iteration,
		"OriginalProblem": info.OriginalProblem,
		"Final":           info.Final,
	})
}
