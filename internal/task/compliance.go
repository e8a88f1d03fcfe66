package task

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// forbiddenPatterns maps each forbidden statement form to a human-readable
// description used in violation messages. Candidates are expected to be
// read-only queries.
var forbiddenPatterns = []struct {
	re          *regexp.Regexp
	description string
}{
	{regexp.MustCompile(`(?i)^\s*(insert|update|delete|replace|merge)\b`), "modifies data"},
	{regexp.MustCompile(`(?i)^\s*(create|drop|alter|truncate)\b`), "changes the schema"},
	{regexp.MustCompile(`(?i)^\s*(attach|detach|pragma|vacuum)\b`), "is a database command"},
	{regexp.MustCompile(`;\s*\S`), "contains more than one statement"},
}

// CheckCompliance returns one violation description per offending candidate.
// An empty slice means every candidate is a single read-only query.
func CheckCompliance(candidates []*state.Candidate) []string {
	var violations []string
	for i, c := range candidates {
		sql := strings.TrimSpace(c.SQL)
		for _, fp := range forbiddenPatterns {
			if fp.re.MatchString(sql) {
				violations = append(violations,
					fmt.Sprintf("candidate %d: %s", i+1, fp.description))
			}
		}
	}
	return violations
}
