package intent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		rec     core.Record
		want    bool
		flagged bool
	}{
		{"explicit solution", core.NewDecomposerRecord("anything", true), true, true},
		{"assignment promotes", core.NewDecomposerRecord("The answer is x = 4", false), true, true},
		{"negative assignment", core.NewDecomposerRecord("so x=-12 holds", false), true, true},
		{"solver record promotes", core.NewSolverRecord("x = 7"), true, true},
		{"no assignment", core.NewDecomposerRecord("What is 2 + 2?", false), false, false},
		{"embedded x", core.NewDecomposerRecord("max = 4", false), true, true},
		{"spaced digits", core.NewDecomposerRecord("x   =   10", false), true, true},
		{"non numeric", core.NewDecomposerRecord("x = y + 1", false), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			assert.Equal(t, tt.want, Classify(&rec))
			assert.Equal(t, tt.flagged, rec.Solution())
		})
	}

	assert.False(t, Classify(nil))
}

func TestClassify_DoesNotDemote(t *testing.T) {
	rec := core.NewDecomposerRecord("no numbers here", true)
	require.True(t, Classify(&rec))
	assert.True(t, rec.Solution())
	assert.Equal(t, "no numbers here", rec.Content)
}

func TestIsEvasive(t *testing.T) {
	evasive := []string{
		"Please provide the Python code for two_sum.",
		"Write a function that adds numbers",
		"write the python code now",
		"Implement the algorithm described above",
		"What is the code for this?",
		"How would you approach this?",
	}
	for _, s := range evasive {
		assert.True(t, IsEvasive(s), s)
	}

	direct := []string{
		"x = 4",
		"def two_sum(nums, target): ...",
		"The implementation is complete.",
	}
	for _, s := range direct {
		assert.False(t, IsEvasive(s), s)
	}
}

func TestHasAssignment(t *testing.T) {
	assert.True(t, HasAssignment("x = 4"))
	assert.True(t, HasAssignment("so x=4"))
	assert.True(t, HasAssignment("max = 3"), "literal substring check")
	assert.False(t, HasAssignment("x equals 4"))
	assert.False(t, HasAssignment(""))
}

const twoSumProblem = "Write a function two_sum(nums, target) returning indices that add up to the target."

func TestCoerce_ReplacesEvasiveSolution(t *testing.T) {
	m := model.NewMockModel("coerce").EnqueueText("```python\ndef two_sum(nums, target):\n    return []\n```")
	c := &Coercer{Model: m}

	rec := c.Coerce(context.Background(), core.NewDecomposerRecord("Please provide the Python code.", true), twoSumProblem)

	assert.True(t, rec.Solution())
	assert.Equal(t, "def two_sum(nums, target):\n    return []", rec.Content)

	require.Equal(t, 1, m.Calls())
	prompt := m.Requests()[0].Prompt
	assert.Contains(t, prompt, twoSumProblem)
	assert.Contains(t, prompt, "Please provide the Python code.")
	assert.Contains(t, prompt, "Provide ONLY the complete solution")
}

func TestCoerce_LeavesOtherRecords(t *testing.T) {
	m := model.NewMockModel("coerce")
	c := &Coercer{Model: m}

	notSolution := core.NewDecomposerRecord("How would you split the list?", false)
	assert.Equal(t, notSolution, c.Coerce(context.Background(), notSolution, twoSumProblem))

	direct := core.NewDecomposerRecord("x = 4", true)
	assert.Equal(t, direct, c.Coerce(context.Background(), direct, "What is 2+2?"))

	assert.Equal(t, 0, m.Calls())
}

func TestCoerce_FailureFallsBack(t *testing.T) {
	tests := []struct {
		name    string
		problem string
		want    string
	}{
		{"two_sum canned answer", twoSumProblem, twoSumSolution},
		{"target phrasing", "Find two numbers that add up to the target", twoSumSolution},
		{"other problem unchanged", "Sort a list", "Implement the sort please"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.NewMockModel("coerce").Enqueue(model.Reply{Err: errors.New("unavailable")})
			c := &Coercer{Model: m}

			rec := c.Coerce(context.Background(), core.NewDecomposerRecord("Implement the sort please", true), tt.problem)
			assert.Equal(t, tt.want, rec.Content)
			assert.True(t, rec.Solution())
		})
	}
}

func TestCoerce_EmptyReplyFallsBack(t *testing.T) {
	m := model.NewMockModel("coerce").EnqueueText("```\n```")
	c := &Coercer{Model: m}

	rec := c.Coerce(context.Background(), core.NewDecomposerRecord("Write a function for it", true), "Sort a list")
	assert.Equal(t, "Write a function for it", rec.Content)
}

func TestCoerce_NoModel(t *testing.T) {
	c := &Coercer{}
	rec := c.Coerce(context.Background(), core.NewDecomposerRecord("provide the code", true), twoSumProblem)
	assert.Equal(t, twoSumSolution, rec.Content)
}
