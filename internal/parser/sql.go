package parser

import "strings"

const finalAnswerMarker = "My final answer is:"

// ParseSQL extracts a query from a generator completion: a ```sql fence,
// <FINAL_ANSWER> tags, or the text after "My final answer is:". Line
// breaks inside the query are preserved.
func ParseSQL(text string) (string, error) {
	var query string
	if body, _, ok := ExtractFence(text, "sql"); ok {
		query = body
	} else if body, ok := ExtractTagged(text, FinalAnswerOpen, FinalAnswerClose); ok {
		query = strings.ReplaceAll(body, fence, "")
	} else if _, after, ok := strings.Cut(text, finalAnswerMarker); ok {
		query = strings.ReplaceAll(after, fence, "")
	} else {
		query = text
	}

	query = strings.TrimSpace(normalize(query, false))
	query = strings.TrimSpace(strings.TrimSuffix(query, ";"))
	if query == "" {
		return "", newError(ShapeSQL, ErrMissingField, "empty query", nil)
	}
	return query, nil
}
