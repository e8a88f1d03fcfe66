// Package model provides LLM-model helpers for the sqlverify CLI.
//
// It centralises default model names per provider and validation that a
// requested model is compatible with the chosen provider (anthropic or
// openai).
package model

// Provider identifiers used throughout the CLI.
const (
	Anthropic = "anthropic"
	OpenAI    = "openai"
)

// DefaultModel returns the default completion model for the provider.
func DefaultModel(provider string) string {
	if provider == Anthropic {
		return "claude-sonnet-4-5"
	}
	return "gpt-4o-mini"
}

// DefaultEmbeddingModel returns the default embedding model for the
// provider. Only openai serves embeddings; other providers return "".
func DefaultEmbeddingModel(provider string) string {
	if provider == OpenAI {
		return "text-embedding-3-small"
	}
	return ""
}

// ValidProvider reports whether provider is supported.
func ValidProvider(provider string) bool {
	return provider == Anthropic || provider == OpenAI
}
