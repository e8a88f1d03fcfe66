// Package parser turns free-form language-model output into structured
// records.
//
// Every shape applies the same precedence: a language-tagged fence first,
// then answer tag markers, then whitespace normalization, then decoding as
// JSON, a literal sequence, or key:value lines. Failures are reported as
// *ParseError values carrying one of four kinds.
package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON searches text for a JSON object that contains key.
//
// Strategy:
//  1. A ```json fenced block containing key is decoded as a whole.
//  2. Otherwise the object enclosing key, or the first object after it,
//     is isolated by brace matching and decoded.
//
// If key does not appear in text the function returns (nil, nil).
// Numbers are decoded as int64 or float64.
func ExtractJSON(text string, key string) (map[string]any, error) {
	if text == "" || !strings.Contains(text, key) {
		return nil, nil
	}

	if body, _, ok := ExtractFence(text, "json"); ok && strings.Contains(body, key) {
		v, err := decodeJSON(strings.TrimSpace(body))
		if err != nil {
			return nil, fmt.Errorf("json in code block: %w", err)
		}
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("json in code block is %T, not an object", v)
		}
		return m, nil
	}

	keyIdx := strings.Index(text, key)

	// The object enclosing the key.
	if open := strings.LastIndex(text[:keyIdx], "{"); open >= 0 {
		raw := text[open:]
		if end, ok := matchBraces(raw); ok && end > keyIdx-open {
			if v, err := decodeJSON(raw[:end+1]); err == nil {
				if m, ok := v.(map[string]any); ok {
					return m, nil
				}
			}
		}
	}

	// The first object after the key.
	open := strings.Index(text[keyIdx:], "{")
	if open < 0 {
		return nil, nil
	}
	raw := text[keyIdx+open:]
	end, ok := matchBraces(raw)
	if !ok {
		return nil, fmt.Errorf("unmatched braces after key %q", key)
	}
	v, err := decodeJSON(raw[:end+1])
	if err != nil {
		return nil, fmt.Errorf("bracket-matched json: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("bracket-matched json is %T, not an object", v)
	}
	return m, nil
}

// decodeJSON decodes a single JSON value, converting numbers to int64 when
// they are integral and float64 otherwise. Trailing data is an error.
func decodeJSON(s string) (any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after top-level value")
	}
	return convertNumbers(v), nil
}

func convertNumbers(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		for i := range x {
			x[i] = convertNumbers(x[i])
		}
		return x
	case map[string]any:
		for k := range x {
			x[k] = convertNumbers(x[k])
		}
		return x
	default:
		return v
	}
}

// matchBraces returns the index of the closing '}' that matches the '{' at
// position 0. String literals, escapes and nested arrays are respected.
func matchBraces(s string) (int, bool) {
	if len(s) == 0 || s[0] != '{' {
		return 0, false
	}

	braces, brackets := 0, 0
	inString := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			braces++
		case '}':
			braces--
			if braces == 0 && brackets == 0 {
				return i, true
			}
		case '[':
			brackets++
		case ']':
			brackets--
		}
	}
	return 0, false
}
