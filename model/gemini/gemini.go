// Package gemini provides a model.Model backed by the Google Gen AI SDK
// (Gemini API backend).
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/hupe1980/cotmesh/core"
	"github.com/hupe1980/cotmesh/model"
)

const jsonMIMEType = "application/json"

// Options configures the Gemini adapter. Generation fields apply when a
// request leaves them unset.
type Options struct {
	Model       string
	APIKey      string
	Temperature float64
	TopP        float64
	TopK        int64
}

// Model wraps the Gemini GenerateContent API.
type Model struct {
	client *genai.Client
	opts   Options
}

func defaultOptions() Options {
	return Options{
		Model:       "gemini-2.0-flash",
		Temperature: 0.2,
		TopP:        0.95,
		TopK:        40,
	}
}

// NewModel creates a Gemini model. Without an explicit APIKey the SDK reads
// GEMINI_API_KEY / GOOGLE_API_KEY from the environment.
func NewModel(ctx context.Context, optFns ...func(o *Options)) (*Model, error) {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &Model{client: client, opts: opts}, nil
}

// NewModelFromClient creates a Gemini model from an existing client.
func NewModelFromClient(client *genai.Client, optFns ...func(o *Options)) *Model {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{client: client, opts: opts}
}

// Generate implements model.Model with a single GenerateContent call.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		resp, err := m.client.Models.GenerateContent(ctx, m.opts.Model, buildContents(req), m.buildConfig(req))
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}

		r := model.Response{Text: resp.Text(), FinishReason: "stop"}
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
			r.FinishReason = string(resp.Candidates[0].FinishReason)
		}
		if u := resp.UsageMetadata; u != nil {
			r.Usage = &model.TokenUsage{
				PromptTokens:     int(u.PromptTokenCount),
				CompletionTokens: int(u.CandidatesTokenCount),
				TotalTokens:      int(u.TotalTokenCount),
			}
		}
		out <- r
	}()

	return out, errCh
}

// buildContents maps history and prompt to GenAI contents. Agent entries use
// the "model" role.
func buildContents(req model.Request) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, msg := range req.History {
		if msg.Text == "" {
			continue
		}
		var role genai.Role = genai.RoleUser
		if msg.Role == core.RoleAgent {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(msg.Text, role))
	}
	return append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))
}

func (m *Model) buildConfig(req model.Request) *genai.GenerateContentConfig {
	temperature := m.opts.Temperature
	if req.Options.Temperature != nil {
		temperature = *req.Options.Temperature
	}
	topP := m.opts.TopP
	if req.Options.TopP != nil {
		topP = *req.Options.TopP
	}
	topK := m.opts.TopK
	if req.Options.TopK != nil {
		topK = *req.Options.TopK
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}
	if topP > 0 {
		cfg.TopP = genai.Ptr(float32(topP))
	}
	if topK > 0 {
		cfg.TopK = genai.Ptr(float32(topK))
	}
	if req.Options.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.Options.MaxTokens)
	}
	if req.Options.JSON {
		cfg.ResponseMIMEType = jsonMIMEType
	}
	if req.Instructions != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.Instructions}}}
	}
	return cfg
}

// Info returns metadata describing this Gemini model implementation.
func (m *Model) Info() model.Info {
	return model.Info{Name: m.opts.Model, Provider: "gemini"}
}
