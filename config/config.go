// Package config provides the explicit configuration consumed by the
// provider factory and the orchestrator. Values come from environment
// variables; secrets are never defaulted.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider type names understood by the provider package.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderOllama    = "ollama"
)

// DefaultMaxIterations is the iteration ceiling used when none is configured.
const DefaultMaxIterations = 5

// ErrMissingAPIKey is wrapped by Error when a hosted provider has no key.
var ErrMissingAPIKey = errors.New("missing API key")

// Error reports an invalid or missing configuration value.
type Error struct {
	Field  string
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

// ProviderConfig selects and authenticates one completion endpoint.
type ProviderConfig struct {
	Type    string
	Model   string // empty means the adapter default
	APIKey  string
	BaseURL string
}

// GenerationConfig holds generation parameters sent with every request.
type GenerationConfig struct {
	Temperature float64
	MaxTokens   int64
	TopP        float64
	TopK        int64
	JSON        bool
}

// RoleConfig configures the backend of one agent role.
type RoleConfig struct {
	Provider   ProviderConfig
	Generation GenerationConfig
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string
	Format string // json or text
}

// Config holds all orchestration configuration.
type Config struct {
	Decomposer        RoleConfig
	Solver            RoleConfig
	MaxIterations     int
	RunTimeout        time.Duration
	MaxConcurrentRuns int
	Log               LogConfig
}

// LookupFunc resolves an environment variable.
type LookupFunc func(key string) (string, bool)

// Load reads configuration from the process environment.
func Load() (*Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads configuration through lookup. Role specific variables
// (COTMESH_DECOMPOSER_*, COTMESH_SOLVER_*) override the shared ones.
func LoadFrom(lookup LookupFunc) (*Config, error) {
	env := source(lookup)

	gen := GenerationConfig{
		Temperature: env.getFloat("COTMESH_TEMPERATURE", 0.2),
		MaxTokens:   int64(env.getInt("COTMESH_MAX_TOKENS", 1000)),
		TopP:        env.getFloat("COTMESH_TOP_P", 0.95),
		TopK:        int64(env.getInt("COTMESH_TOP_K", 40)),
		JSON:        env.getBool("COTMESH_JSON_MODE", true),
	}
	defaultProvider := env.getStr("COTMESH_PROVIDER", ProviderGemini)

	cfg := &Config{
		Decomposer:        env.role("DECOMPOSER", defaultProvider, gen),
		Solver:            env.role("SOLVER", defaultProvider, gen),
		MaxIterations:     env.getInt("COTMESH_MAX_ITERATIONS", DefaultMaxIterations),
		RunTimeout:        env.getDuration("COTMESH_RUN_TIMEOUT", 5*time.Minute),
		MaxConcurrentRuns: env.getInt("COTMESH_MAX_CONCURRENT_RUNS", 0),
		Log: LogConfig{
			Level:  env.getStr("COTMESH_LOG_LEVEL", "info"),
			Format: env.getStr("COTMESH_LOG_FORMAT", "text"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is complete.
func (c *Config) Validate() error {
	if c.MaxIterations <= 0 {
		return &Error{Field: "COTMESH_MAX_ITERATIONS", Reason: "must be > 0"}
	}
	if c.MaxConcurrentRuns < 0 {
		return &Error{Field: "COTMESH_MAX_CONCURRENT_RUNS", Reason: "must be >= 0"}
	}
	if c.RunTimeout < 0 {
		return &Error{Field: "COTMESH_RUN_TIMEOUT", Reason: "must be >= 0"}
	}
	if err := c.Decomposer.Provider.Validate("DECOMPOSER"); err != nil {
		return err
	}
	return c.Solver.Provider.Validate("SOLVER")
}

// Validate checks that the provider type is known and hosted providers carry a key.
func (p ProviderConfig) Validate(role string) error {
	switch p.Type {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini:
		if p.APIKey == "" {
			return &Error{Field: apiKeyEnv(p.Type), Reason: fmt.Sprintf("required by %s provider %q", strings.ToLower(role), p.Type), Err: ErrMissingAPIKey}
		}
	case ProviderOllama:
	default:
		return &Error{Field: "COTMESH_" + role + "_PROVIDER", Reason: fmt.Sprintf("unknown provider %q", p.Type)}
	}
	return nil
}

func apiKeyEnv(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case ProviderGemini:
		return "GEMINI_API_KEY"
	default:
		return ""
	}
}

type source LookupFunc

func (s source) role(name, defaultProvider string, gen GenerationConfig) RoleConfig {
	prefix := "COTMESH_" + name + "_"
	typ := strings.ToLower(s.getStr(prefix+"PROVIDER", defaultProvider))

	p := ProviderConfig{
		Type:  typ,
		Model: s.getStr(prefix+"MODEL", ""),
	}
	switch typ {
	case ProviderOllama:
		p.BaseURL = s.getStr("OLLAMA_HOST", "")
	case ProviderOpenAI:
		p.BaseURL = s.getStr("OPENAI_BASE_URL", "")
	}
	if key := apiKeyEnv(typ); key != "" {
		p.APIKey = s.getStr(key, "")
	}

	gen.Temperature = s.getFloat(prefix+"TEMPERATURE", gen.Temperature)
	gen.MaxTokens = int64(s.getInt(prefix+"MAX_TOKENS", int(gen.MaxTokens)))
	return RoleConfig{Provider: p, Generation: gen}
}

func (s source) getStr(key, fallback string) string {
	if value, ok := s(key); ok && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func (s source) getBool(key string, fallback bool) bool {
	value, ok := s(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func (s source) getInt(key string, fallback int) int {
	value, ok := s(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func (s source) getFloat(key string, fallback float64) float64 {
	value, ok := s(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func (s source) getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := s(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}
