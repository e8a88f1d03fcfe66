package parser

import "strings"

// TallyResult holds one pass/fail score per evaluated line.
type TallyResult struct {
	Scores []int `json:"scores"`
}

// ParseTally reads "label: value" lines between the answer markers. A line
// scores 1 when its value mentions "passed" in any case and 0 otherwise.
// Lines without a colon are skipped.
func ParseTally(text string) (*TallyResult, error) {
	body, err := extractRequiredTagged(ShapeTally, text, AnswerOpen, AnswerClose)
	if err != nil {
		return nil, err
	}

	res := &TallyResult{Scores: []int{}}
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		_, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), "passed") {
			res.Scores = append(res.Scores, 1)
		} else {
			res.Scores = append(res.Scores, 0)
		}
	}
	return res, nil
}
