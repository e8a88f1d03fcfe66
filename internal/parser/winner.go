package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// WinnerResult is a judge's verdict over an aligned candidate list.
type WinnerResult struct {
	// Index is 0-based and clamped to the candidate range.
	Index int `json:"winner_index"`

	// Scores holds one score per candidate when the judge supplied a
	// parseable list; nil otherwise.
	Scores []float64 `json:"scores,omitempty"`
}

var (
	winnerPattern = regexp.MustCompile(`(?i)winner_index\s*:\s*(\d+)`)
	scoresPattern = regexp.MustCompile(`(?i)scores\s*:\s*(\[[^\]]*\])`)
	spaceRun      = regexp.MustCompile(`\s+`)
)

// ParseWinner extracts the winner_index label (1-based in the text) and an
// optional scores list. When n > 0 the index is clamped to [0, n-1].
// A missing label is ErrMissingField; an unparseable scores list is
// dropped silently.
func ParseWinner(text string, n int) (*WinnerResult, error) {
	body := text
	if inner, ok := ExtractTagged(text, AnswerOpen, AnswerClose); ok {
		body = inner
	}
	body = strings.TrimSpace(spaceRun.ReplaceAllString(body, " "))

	m := winnerPattern.FindStringSubmatch(body)
	if m == nil {
		return nil, newError(ShapeWinner, ErrMissingField, "winner_index not found", nil)
	}
	oneBased, err := strconv.Atoi(m[1])
	if err != nil {
		return nil, newError(ShapeWinner, ErrMalformedLiteral, "winner_index out of range", err)
	}

	idx := oneBased - 1
	if idx < 0 {
		idx = 0
	}
	if n > 0 && idx > n-1 {
		idx = n - 1
	}

	res := &WinnerResult{Index: idx}
	if sm := scoresPattern.FindStringSubmatch(body); sm != nil {
		res.Scores = numberList(sm[1])
	}
	return res, nil
}

// numberList literal-parses a bracketed list of numbers, returning nil when
// the list is malformed or contains anything but numbers.
func numberList(s string) []float64 {
	v, err := ParseLiteral(s)
	if err != nil {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(items))
	for _, it := range items {
		switch x := it.(type) {
		case int64:
			out = append(out, float64(x))
		case float64:
			out = append(out, x)
		case bool:
			if x {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		default:
			return nil
		}
	}
	return out
}
