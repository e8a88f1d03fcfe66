package parser

import (
	"fmt"
	"strings"
)

// ParseQuestion accepts a bare question, a {"question": ...} object, a
// fenced block or an answer-tagged block. Line breaks inside the question
// are preserved.
func ParseQuestion(text string) (string, error) {
	txt := strings.TrimSpace(text)

	if strings.HasPrefix(txt, "{") && strings.HasSuffix(txt, "}") {
		if v, err := decodeJSON(normalize(txt, true)); err == nil {
			if m, ok := v.(map[string]any); ok {
				if q, ok := m["question"]; ok && q != nil {
					return strings.TrimSpace(fmt.Sprint(q)), nil
				}
			}
		}
	}

	if inner, ok := ExtractAnyFence(txt); ok {
		txt = inner
	}
	if inner, ok := ExtractTagged(txt, AnswerOpen, AnswerClose); ok {
		txt = inner
	}
	txt = strings.TrimSpace(txt)
	if txt == "" {
		return "", newError(ShapeQuestion, ErrMissingField, "empty question", nil)
	}
	return txt, nil
}

// Enrichment is a rewritten, more explicit form of the user question.
type Enrichment struct {
	Question  string `json:"question"`
	Reasoning string `json:"chain_of_thought_reasoning,omitempty"`
}

// ParseEnrichment prefers a JSON object with an enriched_question field,
// then an answer-tagged block, then the first fenced block, then the whole
// text.
func ParseEnrichment(text string) (*Enrichment, error) {
	candidate := text
	if body, _, ok := ExtractFence(text, "json"); ok {
		candidate = body
	}
	candidate = strings.TrimSpace(normalize(candidate, true))
	if m, err := ExtractJSON(candidate, "enriched_question"); err == nil && m != nil {
		if q, ok := m["enriched_question"].(string); ok && strings.TrimSpace(q) != "" {
			e := &Enrichment{Question: strings.TrimSpace(q)}
			if r, ok := m["chain_of_thought_reasoning"].(string); ok {
				e.Reasoning = r
			}
			return e, nil
		}
	}

	txt := strings.TrimSpace(text)
	switch {
	case strings.Contains(txt, AnswerOpen) && strings.Contains(txt, AnswerClose):
		txt, _ = ExtractTagged(txt, AnswerOpen, AnswerClose)
	case strings.Contains(txt, fence):
		txt, _ = ExtractAnyFence(txt)
	}
	txt = strings.TrimSpace(txt)
	if txt == "" {
		return nil, newError(ShapeEnrichment, ErrMissingField, "empty enrichment", nil)
	}
	return &Enrichment{Question: txt}, nil
}
