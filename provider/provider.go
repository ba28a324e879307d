// Package provider builds model.Model endpoints from configuration.
//
// Built-in factories cover openai, anthropic, gemini and ollama. Additional
// providers can be added with Register before the first call to New.
package provider

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	anthropicsdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/cotmesh/config"
	"github.com/hupe1980/cotmesh/model"
	"github.com/hupe1980/cotmesh/model/anthropic"
	"github.com/hupe1980/cotmesh/model/gemini"
	"github.com/hupe1980/cotmesh/model/ollama"
	"github.com/hupe1980/cotmesh/model/openai"
)

// ErrUnknownProvider is returned when no factory is registered for a type.
var ErrUnknownProvider = errors.New("unknown provider")

// Factory creates a completion endpoint for one provider configuration.
type Factory func(ctx context.Context, cfg config.ProviderConfig, gen config.GenerationConfig) (model.Model, error)

var (
	mu       sync.RWMutex
	registry = map[string]Factory{
		config.ProviderOpenAI:    newOpenAI,
		config.ProviderAnthropic: newAnthropic,
		config.ProviderGemini:    newGemini,
		config.ProviderOllama:    newOllama,
	}
)

// Register adds or replaces the factory for name.
func Register(name string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(name)] = f
}

// Lookup returns the factory registered for name.
func Lookup(name string) (Factory, bool) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	return f, ok
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New builds the endpoint for one role.
func New(ctx context.Context, rc config.RoleConfig) (model.Model, error) {
	f, ok := Lookup(rc.Provider.Type)
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownProvider, rc.Provider.Type, strings.Join(Names(), ", "))
	}
	m, err := f(ctx, rc.Provider, rc.Generation)
	if err != nil {
		return nil, fmt.Errorf("create %s model: %w", rc.Provider.Type, err)
	}
	return m, nil
}

// Options maps generation configuration to per-request model options.
func Options(gen config.GenerationConfig) model.Options {
	opts := model.Options{
		Temperature: model.Float(gen.Temperature),
		MaxTokens:   gen.MaxTokens,
		JSON:        gen.JSON,
	}
	if gen.TopP > 0 {
		opts.TopP = model.Float(gen.TopP)
	}
	if gen.TopK > 0 {
		opts.TopK = model.Int(gen.TopK)
	}
	return opts
}

func newOpenAI(_ context.Context, cfg config.ProviderConfig, gen config.GenerationConfig) (model.Model, error) {
	return openai.NewModel(func(o *openai.Options) {
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.BaseURL
		o.Temperature = gen.Temperature
		if cfg.Model != "" {
			o.Model = cfg.Model
		}
		if gen.MaxTokens > 0 {
			o.MaxCompletionTokens = gen.MaxTokens
		}
	}), nil
}

func newAnthropic(_ context.Context, cfg config.ProviderConfig, gen config.GenerationConfig) (model.Model, error) {
	return anthropic.NewModel(func(o *anthropic.Options) {
		o.APIKey = cfg.APIKey
		o.BaseURL = cfg.BaseURL
		o.Temperature = gen.Temperature
		if cfg.Model != "" {
			o.Model = anthropicsdk.Model(cfg.Model)
		}
		if gen.MaxTokens > 0 {
			o.MaxTokens = gen.MaxTokens
		}
	}), nil
}

func newGemini(ctx context.Context, cfg config.ProviderConfig, gen config.GenerationConfig) (model.Model, error) {
	m, err := gemini.NewModel(ctx, func(o *gemini.Options) {
		o.APIKey = cfg.APIKey
		o.Temperature = gen.Temperature
		o.TopP = gen.TopP
		o.TopK = gen.TopK
		if cfg.Model != "" {
			o.Model = cfg.Model
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func newOllama(_ context.Context, cfg config.ProviderConfig, _ config.GenerationConfig) (model.Model, error) {
	m, err := ollama.NewModel(func(o *ollama.Options) {
		o.BaseURL = cfg.BaseURL
		if cfg.Model != "" {
			o.Model = cfg.Model
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
