package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jsoniter "github.com/json-iterator/go"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, jsoniter.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLevel(" DEBUG "))
	assert.Equal(t, LogLevelWarn, ParseLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLevel("verbose"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}

func TestContextLogger_ScopingAndLevels(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&LoggerConfig{Level: LogLevelInfo, Format: "json", Output: &buf})
	l := base.WithComponent("solver").WithRun("run-1").With("provider", "mock")

	l.Debug("hidden")
	l.Info("visible", "iteration", 2)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "visible", lines[0]["msg"])
	assert.Equal(t, "solver", lines[0]["component"])
	assert.Equal(t, "run-1", lines[0]["run_id"])
	assert.Equal(t, "mock", lines[0]["provider"])
	assert.EqualValues(t, 2, lines[0]["iteration"])

	buf.Reset()
	base.Info("unscoped")
	lines = decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.NotContains(t, lines[0], "component", "With* returns copies")
}

func TestLLMCall(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(&LoggerConfig{Level: LogLevelDebug, Format: "json", Output: &buf})

	LLMCall(l, "gemini-2.0-flash", "Agent A", time.Second, nil)
	LLMCall(l, "gemini-2.0-flash", "Agent A", time.Second, errors.New("boom"))
	Turn(l, "question", 1, 42)
	Run(l, "SOLVED", 1, time.Second, nil)

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 4)
	assert.Equal(t, "LLM call completed", lines[0]["msg"])
	assert.Equal(t, true, lines[0]["success"])
	assert.Equal(t, "LLM call failed", lines[1]["msg"])
	assert.Equal(t, "ERROR", lines[1]["level"])
	assert.Equal(t, "boom", lines[1]["error"])
	assert.Equal(t, "Turn emitted", lines[2]["msg"])
	assert.Equal(t, "Orchestration completed", lines[3]["msg"])
}

type capture struct {
	NoOpLogger
	msgs []string
}

func (c *capture) Info(msg string, _ ...any)  { c.msgs = append(c.msgs, msg) }
func (c *capture) Error(msg string, _ ...any) { c.msgs = append(c.msgs, msg) }

func TestHelpers_PlainLogger(t *testing.T) {
	c := &capture{}
	LLMCall(c, "m", "Agent B", time.Millisecond, nil)
	Run(c, "FAILED", 1, time.Millisecond, errors.New("cancelled"))
	Turn(c, "answer", 1, 3)

	assert.Equal(t, []string{"LLM call completed", "Orchestration failed"}, c.msgs)
}
