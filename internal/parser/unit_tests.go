package parser

import (
	"fmt"
	"strings"
)

// ParseUnitTests extracts the list of test statements between the answer
// markers. Both markers are required. The interior, optionally fenced, must
// literal-parse to a sequence of strings.
func ParseUnitTests(text string) ([]string, error) {
	body, err := extractRequiredTagged(ShapeUnitTests, text, AnswerOpen, AnswerClose)
	if err != nil {
		return nil, err
	}
	if inner, _, ok := ExtractFence(body, "python", "json"); ok {
		body = inner
	}
	body = strings.TrimSpace(body)

	v, err := ParseLiteral(body)
	if err != nil {
		return nil, newError(ShapeUnitTests, ErrMalformedLiteral, "", err)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, newError(ShapeUnitTests, ErrMalformedLiteral, fmt.Sprintf("expected a list, got %T", v), nil)
	}
	tests := make([]string, 0, len(items))
	for i, it := range items {
		s, ok := it.(string)
		if !ok {
			return nil, newError(ShapeUnitTests, ErrMalformedLiteral, fmt.Sprintf("item %d is %T, not a string", i, it), nil)
		}
		tests = append(tests, s)
	}
	return tests, nil
}

// ParseList literal-parses the whole response, after fence and tag
// extraction, into a sequence.
func ParseList(text string) ([]any, error) {
	body, _ := structuredBody(text)
	v, err := ParseLiteral(strings.TrimSpace(body))
	if err != nil {
		return nil, newError(ShapeList, ErrMalformedLiteral, "", err)
	}
	items, ok := v.([]any)
	if !ok {
		return nil, newError(ShapeList, ErrMalformedLiteral, fmt.Sprintf("expected a list, got %T", v), nil)
	}
	return items, nil
}
