package orchestrator

// State is a position of the orchestration state machine.
type State int

const (
	AwaitDecomposer State = iota
	AwaitSolver
	Solved
	Failed
	MaxIterReached
)

func (s State) String() string {
	switch s {
	case AwaitDecomposer:
		return "AWAIT_A"
	case AwaitSolver:
		return "AWAIT_B"
	case Solved:
		return "SOLVED"
	case Failed:
		return "FAILED"
	case MaxIterReached:
		return "MAX_ITER_REACHED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether no further transition leaves s.
func (s State) Terminal() bool {
	return s == Solved || s == Failed || s == MaxIterReached
}
