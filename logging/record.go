package logging

import "time"

// Recorder is implemented by loggers offering the domain helpers of
// ContextLogger.
type Recorder interface {
	LogLLMCall(model, role string, dur time.Duration, success bool, err error)
	LogTurn(kind string, iteration int, size int)
	LogRun(state string, iterations int, dur time.Duration, err error)
}

var _ Recorder = (*ContextLogger)(nil)

// LLMCall logs a model call on l, using the Recorder helper when available.
func LLMCall(l Logger, model, role string, dur time.Duration, err error) {
	if r, ok := l.(Recorder); ok {
		r.LogLLMCall(model, role, dur, err == nil, err)
		return
	}
	if err != nil {
		l.Error("LLM call failed", "model", model, "role", role, "duration", dur, "error", err.Error())
		return
	}
	l.Info("LLM call completed", "model", model, "role", role, "duration", dur)
}

// Turn logs an emitted transcript entry on l.
func Turn(l Logger, kind string, iteration int, size int) {
	if r, ok := l.(Recorder); ok {
		r.LogTurn(kind, iteration, size)
		return
	}
	l.Debug("Turn emitted", "kind", kind, "iteration", iteration, "text_len", size)
}

// Run logs the outcome of an orchestration run on l.
func Run(l Logger, state string, iterations int, dur time.Duration, err error) {
	if r, ok := l.(Recorder); ok {
		r.LogRun(state, iterations, dur, err)
		return
	}
	if err != nil {
		l.Error("Orchestration failed", "state", state, "iterations", iterations, "duration", dur, "error", err.Error())
		return
	}
	l.Info("Orchestration completed", "state", state, "iterations", iterations, "duration", dur)
}
