// Package gemini provides an implementation of the generation.TextModel
// interface backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it owns the genai client,
// retries transient API failures with exponential backoff and jitter, and
// translates blocked or empty responses into the generation package's
// sentinel errors. Prompt construction and response parsing live in
// internal/generation.
package gemini
