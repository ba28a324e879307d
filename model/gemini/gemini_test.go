package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/model"
)

func TestBuildContents(t *testing.T) {
	contents := buildContents(model.Request{
		History: []core.Message{core.UserMessage("problem"), core.AgentMessage(`{"response":"step"}`), core.UserMessage("")},
		Prompt:  "next",
	})
	require.Len(t, contents, 3)
	assert.Equal(t, string(genai.RoleUser), contents[0].Role)
	assert.Equal(t, string(genai.RoleModel), contents[1].Role)
	assert.Equal(t, "next", contents[2].Parts[0].Text)
}

func TestBuildContents_AlternatingRoles(t *testing.T) {
	contents := buildContents(model.Request{
		History: []core.Message{
			core.UserMessage("q1"), core.AgentMessage("a1"),
			core.UserMessage("q2"), core.AgentMessage("a2"),
		},
		Prompt: "q3",
	})

	want := []genai.Role{genai.RoleUser, genai.RoleModel, genai.RoleUser, genai.RoleModel, genai.RoleUser}
	require.Len(t, contents, len(want))
	for i, role := range want {
		assert.Equal(t, string(role), contents[i].Role, "content %d", i)
	}
	assert.Equal(t, "a2", contents[3].Parts[0].Text)
}

func TestBuildConfig(t *testing.T) {
	m := NewModelFromClient(nil)
	cfg := m.buildConfig(model.Request{
		Instructions: "rule",
		Options:      model.Options{Temperature: model.Float(0.5), MaxTokens: 256, JSON: true},
	})
	require.NotNil(t, cfg.Temperature)
	assert.InDelta(t, 0.5, *cfg.Temperature, 1e-6)
	require.NotNil(t, cfg.TopK)
	assert.InDelta(t, 40, *cfg.TopK, 1e-6)
	assert.Equal(t, int32(256), cfg.MaxOutputTokens)
	assert.Equal(t, "application/json", cfg.ResponseMIMEType)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "rule", cfg.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "gemini", m.Info().Provider)
}
