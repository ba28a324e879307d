package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_JSON(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
	}{
		{"decomposer", NewDecomposerRecord("next step", false), `{"response":"next step","isSolution":false}`},
		{"decomposer solved", NewDecomposerRecord("x = 4", true), `{"response":"x = 4","isSolution":true}`},
		{"solver", NewSolverRecord("four"), `{"response":"four"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.JSONEq(t, tt.want, tt.record.JSON())
		})
	}
}

func TestRecord_SolutionFlag(t *testing.T) {
	r := NewSolverRecord("text")
	assert.False(t, r.Solution())
	r.SetSolution(true)
	assert.True(t, r.Solution())
}
