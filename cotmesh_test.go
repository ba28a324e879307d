package cotmesh

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/cotmesh/config"
	"github.com/hupe1980/cotmesh/model"
	"github.com/hupe1980/cotmesh/orchestrator"
)

func TestRunOrchestration(t *testing.T) {
	a := model.NewMockModel("a").EnqueueText(
		`{"response": "What is 2 + 2?", "isSolution": false}`,
		`{"response": "x = 4", "isSolution": true}`,
	)
	b := model.NewMockModel("b").EnqueueText(`{"response": "2 + 2 equals 4"}`)

	var labels []string
	transcript, answer, err := New(a, b).RunOrchestration(context.Background(), "What is 2+2?", func(label, _ string) {
		labels = append(labels, label)
	})
	require.NoError(t, err)

	assert.Equal(t, "x = 4", answer)
	assert.Equal(t, []string{"Question 1", "Answer 1", "Question 2", "Solution"}, labels)
	assert.Equal(t, "Question 1: What is 2 + 2?\nAnswer 1: 2 + 2 equals 4\nQuestion 2: x = 4\nSolution: x = 4", transcript)
}

func TestRunOrchestration_NilCallback(t *testing.T) {
	a := model.NewMockModel("a").Enqueue(model.Reply{Err: errors.New("offline")})

	transcript, answer, err := New(a, model.NewMockModel("b")).RunOrchestration(context.Background(), "p", nil)
	require.NoError(t, err)
	assert.Equal(t, "Agent A Error: Error: offline", transcript)
	assert.Equal(t, "Error: offline", answer)
}

func TestMesh_RunAppliesOptions(t *testing.T) {
	a := model.NewMockModel("a").SetDefault(model.Reply{Text: `{"response": "next", "isSolution": false}`})
	b := model.NewMockModel("b").SetDefault(model.Reply{Text: `{"response": "detail"}`})

	m := New(a, b, func(o *Options) {
		o.MaxIterations = 2
		o.DecomposerGeneration = model.Options{Temperature: model.Float(0.1)}
	})
	res, err := m.Run(context.Background(), "p")
	require.NoError(t, err)

	assert.Equal(t, orchestrator.MaxIterReached, res.State)
	assert.Equal(t, 2, res.Iterations)

	reqs := a.Requests()
	require.NotEmpty(t, reqs)
	require.NotNil(t, reqs[0].Options.Temperature)
	assert.InDelta(t, 0.1, *reqs[0].Options.Temperature, 1e-9)
	assert.False(t, reqs[0].Options.JSON)
	assert.Contains(t, reqs[1].Prompt, "THIS IS THE FINAL STEP", "decomposer shares the ceiling")
}

func TestNewFromConfig(t *testing.T) {
	cfg := &config.Config{
		Decomposer:    config.RoleConfig{Provider: config.ProviderConfig{Type: config.ProviderOllama, BaseURL: "http://localhost:11434"}},
		Solver:        config.RoleConfig{Provider: config.ProviderConfig{Type: config.ProviderOllama, BaseURL: "http://localhost:11434"}},
		MaxIterations: 3,
		Log:           config.LogConfig{Level: "error", Format: "json"},
	}
	m, err := NewFromConfig(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, m.opts.MaxIterations)

	cfg.Solver.Provider = config.ProviderConfig{Type: config.ProviderOpenAI}
	_, err = NewFromConfig(context.Background(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrMissingAPIKey))
}
