package core

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TurnKind classifies a transcript entry.
type TurnKind string

const (
	TurnQuestion        TurnKind = "question"
	TurnAnswer          TurnKind = "answer"
	TurnSolution        TurnKind = "solution"
	TurnFinalSolution   TurnKind = "final_solution"
	TurnDecomposerError TurnKind = "decomposer_error"
	TurnSolverError     TurnKind = "solver_error"
)

// Label returns the human readable caption for the kind at a given iteration.
func (k TurnKind) Label(iteration int) string {
	switch k {
	case TurnQuestion:
		return fmt.Sprintf("Question %d", iteration)
	case TurnAnswer:
		return fmt.Sprintf("Answer %d", iteration)
	case TurnSolution:
		return "Solution"
	case TurnFinalSolution:
		return "Final Solution"
	case TurnDecomposerError:
		return "Agent A Error"
	case TurnSolverError:
		return "Agent B Error"
	default:
		return string(k)
	}
}

// IsError reports whether the kind marks a failed backend call.
func (k TurnKind) IsError() bool {
	return k == TurnDecomposerError || k == TurnSolverError
}

// Turn is one labeled transcript entry. After emission it should be treated as immutable.
type Turn struct {
	ID        string    `json:"id"`
	Kind      TurnKind  `json:"kind"`
	Iteration int       `json:"iteration"`
	Label     string    `json:"label"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTurn creates a turn with a fresh ID and UTC timestamp.
func NewTurn(kind TurnKind, iteration int, text string) Turn {
	return Turn{
		ID:        NewID(),
		Kind:      kind,
		Iteration: iteration,
		Label:     kind.Label(iteration),
		Text:      text,
		Timestamp: time.Now().UTC(),
	}
}

// String renders the turn as "<Label>: <Text>".
func (t Turn) String() string { return t.Label + ": " + t.Text }

// NewID returns a new UUID string used for runs and turns.
func NewID() string { return uuid.NewString() }
