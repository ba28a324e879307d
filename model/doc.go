// Package model defines the provider‑agnostic completion endpoint used by the
// cotmesh agent backends.
//
// Core goals:
//   - One capability: a system instruction, an exchange history and the
//     current prompt in, raw reply text out
//   - Keep generation parameters (temperature, max tokens, JSON hint) in a
//     single Options value every adapter maps onto its SDK
//   - Facilitate lightweight scripting for tests (MockModel)
//
// Providers (OpenAI, Anthropic, Gemini, Ollama) implement the Model interface
// from this package so the agent backends remain decoupled from vendor SDKs.
package model
