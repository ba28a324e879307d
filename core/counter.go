package core

import "sync"

// TurnCounter counts Decomposer/Solver round trips against a ceiling.
// It only ever increases.
type TurnCounter struct {
	max   int
	count int
	mu    sync.Mutex
}

// NewTurnCounter creates a counter with the given ceiling.
// If max <= 0 the counter never reports the ceiling as reached.
func NewTurnCounter(max int) *TurnCounter {
	return &TurnCounter{max: max}
}

// Increment advances the counter and returns the new value.
func (tc *TurnCounter) Increment() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tc.count++
	return tc.count
}

// Count returns the current value.
func (tc *TurnCounter) Count() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	return tc.count
}

// Max returns the configured ceiling.
func (tc *TurnCounter) Max() int { return tc.max }

// Reached reports whether the counter hit the ceiling.
func (tc *TurnCounter) Reached() bool {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	return tc.max > 0 && tc.count >= tc.max
}

// Remaining returns how many increments are left before the ceiling.
// It returns -1 when unbounded.
func (tc *TurnCounter) Remaining() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	if tc.max <= 0 {
		return -1
	}
	if tc.count >= tc.max {
		return 0
	}
	return tc.max - tc.count
}
