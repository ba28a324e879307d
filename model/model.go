package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/cotmesh/core"
)

// ErrEmptyResponse is returned by Collect when a model produced no text.
var ErrEmptyResponse = errors.New("model returned an empty response")

// Options carries generation parameters. Zero values mean "provider default".
type Options struct {
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   int64    `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
	TopK        *int64   `json:"top_k,omitempty"`
	// JSON asks the provider to constrain the reply to a JSON object when supported.
	JSON bool `json:"json,omitempty"`
}

// Float returns a pointer to v, for use in Options literals.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v, for use in Options literals.
func Int(v int64) *int64 { return &v }

// Request captures the normalized model input produced by agent backends.
type Request struct {
	Instructions string         `json:"instructions"` // System instruction (role rule text)
	History      []core.Message `json:"history,omitempty"`
	Prompt       string         `json:"prompt"` // Current user text, sent after History
	Options      Options        `json:"options"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is a (partial or final) chunk emitted by a model.
type Response struct {
	Partial      bool        `json:"partial"`
	Text         string      `json:"text"`
	FinishReason string      `json:"finish_reason"` // "stop", "length", ...
	Usage        *TokenUsage `json:"usage,omitempty"`
}

// Info contains metadata about a model implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "gemini", "ollama", "mock"
}

// Model is the completion endpoint capability consumed by agent backends.
//
// Generate emits zero or more partial responses followed by one final
// response, then closes both channels. A transport failure is delivered on
// the error channel.
type Model interface {
	Generate(ctx context.Context, req Request) (<-chan Response, <-chan error)

	// Info returns information about the model implementation.
	Info() Info
}

// Collect drains a Generate call and returns the final reply text. Partial
// chunks are concatenated when no final chunk carries text. It blocks until
// the model finishes, fails or ctx is done.
func Collect(ctx context.Context, m Model, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	respCh, errCh := m.Generate(ctx, req)

	var (
		partial  strings.Builder
		final    string
		gotFinal bool
	)
	for respCh != nil || errCh != nil {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case r, ok := <-respCh:
			if !ok {
				respCh = nil
				continue
			}
			if r.Partial {
				partial.WriteString(r.Text)
				continue
			}
			final, gotFinal = r.Text, true
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				continue
			}
			if err != nil {
				return "", err
			}
		}
	}

	text := final
	if !gotFinal || text == "" {
		text = partial.String()
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// Reply is a scripted MockModel outcome.
type Reply struct {
	Text string
	Err  error
}

// MockModel is a lightweight in‑memory Model useful for tests & examples.
// It answers from per-prompt canned replies first, then from a FIFO script,
// then with a generic echo. It is safe for concurrent use.
type MockModel struct {
	info Info

	mu       sync.Mutex
	byPrompt map[string]Reply
	script   []Reply
	fallback *Reply
	requests []Request
}

// NewMockModel constructs a MockModel.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info:     Info{Name: name, Provider: "mock"},
		byPrompt: make(map[string]Reply),
	}
}

// AddResponse registers a deterministic canned completion for an exact prompt.
func (m *MockModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byPrompt[prompt] = Reply{Text: response}
}

// Enqueue appends replies consumed in order by requests without a canned prompt match.
func (m *MockModel) Enqueue(replies ...Reply) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, replies...)
	return m
}

// EnqueueText appends text replies.
func (m *MockModel) EnqueueText(texts ...string) *MockModel {
	for _, t := range texts {
		m.Enqueue(Reply{Text: t})
	}
	return m
}

// SetDefault sets the reply used once the script is exhausted.
func (m *MockModel) SetDefault(r Reply) *MockModel {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fallback = &r
	return m
}

// Requests returns a copy of every request received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Calls returns the number of requests received so far.
func (m *MockModel) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *MockModel) next(req Request) Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, req)
	if r, ok := m.byPrompt[req.Prompt]; ok {
		return r
	}
	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		return r
	}
	if m.fallback != nil {
		return *m.fallback
	}
	return Reply{Text: fmt.Sprintf("Mock response to: %s", req.Prompt)}
}

// Generate implements Model.
func (m *MockModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(respCh)
		defer close(errCh)
		reply := m.next(req)
		if reply.Err != nil {
			errCh <- reply.Err
			return
		}
		select {
		case <-ctx.Done():
			errCh <- ctx.Err()
		case respCh <- Response{Text: reply.Text, FinishReason: "stop"}:
		}
	}()
	return respCh, errCh
}

// Info implements Model interface.
func (m *MockModel) Info() Info { return m.info }
