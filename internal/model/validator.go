package model

import (
	"fmt"
	"regexp"
	"strings"
)

// openAIModelRe matches OpenAI-family model prefixes: o1, o3, gpt-*, etc.
var openAIModelRe = regexp.MustCompile(`^(o[0-9]|gpt|chatgpt|text|ft)`)

// claudeModelHints are lower-cased prefixes that strongly indicate a
// Claude-compatible model.
var claudeModelHints = []string{"opus", "sonnet", "haiku", "claude-"}

// ValidateModelProvider checks whether model is compatible with the chosen
// provider. label is a human-readable name for the setting being validated
// (e.g. "model", "judge-model") used in error messages.
//
// Rules:
//   - Empty model is always allowed (the caller will apply defaults).
//   - Claude-style hints (opus, sonnet, haiku, claude-*) are invalid
//     with openai.
//   - OpenAI-style hints (o[0-9]*, gpt*, chatgpt*, text*, ft*) are
//     invalid with anthropic.
//   - Anything else is accepted without opinion.
func ValidateModelProvider(provider, model, label string) error {
	if model == "" {
		return nil
	}
	if provider == OpenAI && IsClaudeModelHint(model) {
		return fmt.Errorf("%s %q looks like a claude model but provider=%s", label, model, provider)
	}
	if provider == Anthropic && IsOpenAIModelHint(model) {
		return fmt.Errorf("%s %q looks like an openai model but provider=%s", label, model, provider)
	}
	return nil
}

// IsClaudeModelHint returns true when model appears to target a Claude
// backend (opus, sonnet, haiku, or claude-* prefix).
func IsClaudeModelHint(model string) bool {
	lower := strings.ToLower(model)
	for _, hint := range claudeModelHints {
		if strings.HasPrefix(lower, hint) {
			return true
		}
	}
	return false
}

// IsOpenAIModelHint returns true when model appears to target an OpenAI
// backend (o1, o3, gpt-*, chatgpt-*, etc.).
func IsOpenAIModelHint(model string) bool {
	return openAIModelRe.MatchString(strings.ToLower(model))
}
