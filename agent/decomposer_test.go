package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/model"
)

func TestDecomposer_ParsesStructuredReply(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText("```json\n{\"response\": \"What is 2 + 2?\", \"isSolution\": false}\n```")
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "Add two and two"})
	require.NoError(t, err)
	assert.Equal(t, "What is 2 + 2?", rec.Content)
	require.NotNil(t, rec.IsSolution)
	assert.False(t, rec.Solution())
}

func TestDecomposer_ComposesRequest(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "next", "isSolution": false}`)
	d := NewDecomposer(m, func(o *DecomposerOptions) {
		o.Generation = model.Options{Temperature: model.Float(0.2), JSON: true}
	})

	history := core.NewHistory()
	history.AppendExchange("Solve the puzzle", `{"response":"step one","isSolution":false}`)

	_, err := d.Ask(context.Background(), Ask{Prompt: "Answer to step one", History: history})
	require.NoError(t, err)

	reqs := m.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0]
	assert.Equal(t, DecomposerRules, req.Instructions)
	assert.Len(t, req.History, 2)
	assert.Contains(t, req.Prompt, "Current iteration: 2")
	assert.Contains(t, req.Prompt, "Original problem: Solve the puzzle")
	assert.Contains(t, req.Prompt, "Current prompt: Answer to step one")
	assert.Contains(t, req.Prompt, `"isSolution": false`)
	assert.NotContains(t, req.Prompt, "THIS IS THE FINAL STEP")
	assert.True(t, req.Options.JSON)
	require.NotNil(t, req.Options.Temperature)
	assert.InDelta(t, 0.2, *req.Options.Temperature, 1e-9)

	assert.Equal(t, 2, history.Len(), "history is not mutated")
}

func TestDecomposer_ExplicitTurnInfo(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "q", "isSolution": false}`)
	d := NewDecomposer(m)

	_, err := d.Ask(context.Background(), Ask{Prompt: "p", Iteration: 3, OriginalProblem: "the problem"})
	require.NoError(t, err)
	prompt := m.Requests()[0].Prompt
	assert.Contains(t, prompt, "Current iteration: 3")
	assert.Contains(t, prompt, "Original problem: the problem")
}

func TestDecomposer_FinalStep(t *testing.T) {
	tests := []struct {
		name string
		ask  Ask
	}{
		{"explicit", Ask{Prompt: "p", Final: true}},
		{"ceiling reached", Ask{Prompt: "p", History: exchanges(4)}},
		{"prompt asks", Ask{Prompt: "Please give the Final Solution"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := model.NewMockModel("a").EnqueueText(`{"response": "done"}`)
			d := NewDecomposer(m)

			rec, err := d.Ask(context.Background(), tt.ask)
			require.NoError(t, err)
			assert.True(t, rec.Solution(), "missing flag defaults to true on the final step")

			prompt := m.Requests()[0].Prompt
			assert.Contains(t, prompt, "THIS IS THE FINAL STEP")
			assert.Contains(t, prompt, `"isSolution": true`)
		})
	}
}

func TestDecomposer_HeuristicPromotion(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "x = 4", "isSolution": false}`)
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "What is 2+2?"})
	require.NoError(t, err)
	assert.True(t, rec.Solution())
	assert.Equal(t, "x = 4", rec.Content)
}

func TestDecomposer_MalformedReply(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText("I think we should start by reading the input.")
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "p"})
	require.NoError(t, err, "malformed replies are not transport failures")
	assert.Equal(t, "I think we should start by reading the input.", rec.Content)
	require.NotNil(t, rec.IsSolution)
	assert.False(t, rec.Solution())
}

func TestDecomposer_TransportError(t *testing.T) {
	cause := errors.New("connection refused")
	m := model.NewMockModel("a").Enqueue(model.Reply{Err: cause})
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, IsTransportError(err))

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "Agent A", te.Role)

	assert.Equal(t, "Error: connection refused", rec.Content)
	require.NotNil(t, rec.IsSolution)
	assert.False(t, rec.Solution())
}

func TestDecomposer_EmptyReplyIsTransportError(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText("   ")
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "p"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrEmptyResponse))
	assert.Contains(t, rec.Content, "Error: ")
}

func TestDecomposer_CoercesEvasiveSolution(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(
		`{"response": "Please provide the Python code for two_sum.", "isSolution": true}`,
		"```python\ndef two_sum(nums, target):\n    return []\n```",
	)
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "Implement two_sum", Final: true})
	require.NoError(t, err)
	assert.True(t, rec.Solution())
	assert.Equal(t, "def two_sum(nums, target):\n    return []", rec.Content)

	reqs := m.Requests()
	require.Len(t, reqs, 2)
	assert.False(t, reqs[1].Options.JSON, "coercion asks for raw text")
}

func TestDecomposer_DisableCoercion(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "Write a function that sums", "isSolution": true}`)
	d := NewDecomposer(m, func(o *DecomposerOptions) { o.DisableCoercion = true })

	rec, err := d.Ask(context.Background(), Ask{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "Write a function that sums", rec.Content)
	assert.Equal(t, 1, m.Calls())
}

func TestDecomposer_DynamicInstruction(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "q", "isSolution": false}`)
	d := NewDecomposer(m, func(o *DecomposerOptions) {
		o.Instruction = NewInstructionFromFunc(func(info TurnInfo) (string, error) {
			return "rules for " + info.OriginalProblem, nil
		})
	})

	_, err := d.Ask(context.Background(), Ask{Prompt: "sort numbers"})
	require.NoError(t, err)
	assert.Equal(t, "rules for sort numbers", m.Requests()[0].Instructions)

	failing := NewDecomposer(m, func(o *DecomposerOptions) {
		o.Instruction = NewInstructionFromProvider(mockProvider{err: errors.New("no rules")})
	})
	rec, err := failing.Ask(context.Background(), Ask{Prompt: "p"})
	require.Error(t, err)
	assert.False(t, IsTransportError(err))
	assert.Contains(t, rec.Content, "no rules")
}

func exchanges(n int) *core.History {
	h := core.NewHistory()
	for i := 0; i < n; i++ {
		h.AppendExchange("question", `{"response":"answer"}`)
	}
	return h
}

func TestDecomposer_CallerOwnsCeiling(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "keep going"}`)
	d := NewDecomposer(m)

	rec, err := d.Ask(context.Background(), Ask{Prompt: "p", Iteration: 5, History: exchanges(4)})
	require.NoError(t, err)
	assert.False(t, rec.Solution(), "an explicit iteration without Final is not the last step")
	assert.NotContains(t, m.Requests()[0].Prompt, "THIS IS THE FINAL STEP")
}

func TestDecomposer_InstructionWithBraces(t *testing.T) {
	m := model.NewMockModel("a").EnqueueText(`{"response": "q", "isSolution": false}`)
	d := NewDecomposer(m, func(o *DecomposerOptions) {
		o.Instruction = NewInstructionFromFunc(func(info TurnInfo) (string, error) {
			return "rules for " + info.OriginalProblem, nil
		})
	})

	rec, err := d.Ask(context.Background(), Ask{Prompt: "explain {{ in templates"})
	require.NoError(t, err)
	assert.Equal(t, "q", rec.Content)
	assert.Equal(t, "rules for explain {{ in templates", m.Requests()[0].Instructions)
}
