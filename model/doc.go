// Package model defines the provider-agnostic inference gateway used by the
// council: every agent call and the synthesis call go through a Model.
//
// Core goals:
//   - Unify streaming + non-streaming generation behind a single interface
//   - Keep request/response shapes minimal and transport independent
//   - Map deadline and backend failures onto core.TimeoutError / core.BackendError (Complete)
//   - Route requests to the provider named by each agent (Router)
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (openai for OpenAI-compatible endpoints including Ollama, and
// anthropic) implement the Model interface so higher layers stay decoupled
// from vendor SDKs.
package model
