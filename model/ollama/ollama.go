// Package ollama provides a model.Model backed by a local or remote Ollama
// server through its official Go API client.
package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/model"
)

// jsonFormat asks Ollama to constrain the reply to JSON.
var jsonFormat = json.RawMessage(`"json"`)

// ChatClient is the subset of *api.Client used by the adapter.
type ChatClient interface {
	Chat(ctx context.Context, req *api.ChatRequest, fn api.ChatResponseFunc) error
}

// Options configures the Ollama adapter.
type Options struct {
	Model   string
	BaseURL string // empty means OLLAMA_HOST or the default local server
	// Extra holds additional model options (num_ctx, seed, ...) sent verbatim.
	Extra map[string]any
}

// Model wraps the Ollama chat endpoint.
type Model struct {
	client ChatClient
	opts   Options
}

func defaultOptions() Options {
	return Options{Model: "llama3.1"}
}

// NewModel creates an Ollama model from BaseURL or the environment.
func NewModel(optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var (
		client *api.Client
		err    error
	)
	if opts.BaseURL != "" {
		u, parseErr := url.Parse(opts.BaseURL)
		if parseErr != nil {
			return nil, fmt.Errorf("invalid ollama base URL: %w", parseErr)
		}
		client = api.NewClient(u, http.DefaultClient)
	} else {
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, fmt.Errorf("create ollama client: %w", err)
		}
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates an Ollama model from an existing client.
func NewModelFromClient(client ChatClient, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model with a non-streaming chat call.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		var (
			text  strings.Builder
			final api.ChatResponse
		)
		err := m.client.Chat(ctx, m.buildRequest(req), func(resp api.ChatResponse) error {
			text.WriteString(resp.Message.Content)
			if resp.Done {
				final = resp
			}
			return nil
		})
		if err != nil {
			errCh <- fmt.Errorf("ollama api error: %w", err)
			return
		}

		finishReason := final.DoneReason
		if finishReason == "" {
			finishReason = "stop"
		}
		out <- model.Response{
			Text:         text.String(),
			FinishReason: finishReason,
			Usage: &model.TokenUsage{
				PromptTokens:     final.PromptEvalCount,
				CompletionTokens: final.EvalCount,
				TotalTokens:      final.PromptEvalCount + final.EvalCount,
			},
		}
	}()

	return out, errCh
}

func (m *Model) buildRequest(req model.Request) *api.ChatRequest {
	messages := make([]api.Message, 0, len(req.History)+2)
	if req.Instructions != "" {
		messages = append(messages, api.Message{Role: "system", Content: req.Instructions})
	}
	for _, msg := range req.History {
		role := "user"
		if msg.Role == core.RoleAgent {
			role = "assistant"
		}
		messages = append(messages, api.Message{Role: role, Content: msg.Text})
	}
	messages = append(messages, api.Message{Role: "user", Content: req.Prompt})

	options := make(map[string]any, len(m.opts.Extra)+4)
	for k, v := range m.opts.Extra {
		options[k] = v
	}
	if req.Options.Temperature != nil {
		options["temperature"] = *req.Options.Temperature
	}
	if req.Options.TopP != nil {
		options["top_p"] = *req.Options.TopP
	}
	if req.Options.TopK != nil {
		options["top_k"] = *req.Options.TopK
	}
	if req.Options.MaxTokens > 0 {
		options["num_predict"] = req.Options.MaxTokens
	}

	stream := false
	chatReq := &api.ChatRequest{
		Model:    m.opts.Model,
		Messages: messages,
		Stream:   &stream,
		Options:  options,
	}
	if req.Options.JSON {
		chatReq.Format = jsonFormat
	}
	return chatReq
}

// Info returns metadata describing this Ollama model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "ollama"}
}
