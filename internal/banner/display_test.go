package banner

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestPrintStartupBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintStartupBanner(&buf, StartupInfo{
		RunID:      "run-1",
		Provider:   "openai",
		Model:      "gpt-4o",
		JudgeModel: "gpt-4o-mini",
		TaskFile:   "task.json",
		Verifiers:  []string{"mock_db", "reverse"},
		Candidates: 4,
	})
	out := buf.String()
	for _, want := range []string{"sqlverify", "run-1", "openai", "gpt-4o-mini", "task.json (4 candidates)", "mock_db -> reverse"} {
		assert.Contains(t, out, want)
	}
}

func TestPrintWinnerBanner_IndentsSQL(t *testing.T) {
	var buf bytes.Buffer
	PrintWinnerBanner(&buf, "similarity_test_1", "SELECT a\nFROM t", 90)
	out := buf.String()
	assert.Contains(t, out, "Candidate selected")
	assert.Contains(t, out, "similarity_test_1")
	assert.Contains(t, out, "1m 30s (90s)")
	assert.Contains(t, out, "    SELECT a\n    FROM t\n")
}

func TestPrintNoWinnerBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintNoWinnerBanner(&buf, "no candidate matched the expected answer")
	assert.Contains(t, buf.String(), "NO CANDIDATE SELECTED")
	assert.Contains(t, buf.String(), "no candidate matched")

	buf.Reset()
	PrintNoWinnerBanner(&buf, "")
	assert.NotContains(t, buf.String(), "Reason:")
}

func TestPrintInterruptedBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintInterruptedBanner(&buf, "reverse")
	assert.Contains(t, buf.String(), "Run interrupted")
	assert.Contains(t, buf.String(), "reverse")
}

func TestPrintErrorSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintErrorSummary(&buf, []string{"b", "a", "c"}, map[string]string{
		"a": "first",
		"b": "second",
	})
	out := buf.String()
	assert.Less(t, strings.Index(out, "b:"), strings.Index(out, "a:"))
	assert.Contains(t, out, "  b: second")
	assert.NotContains(t, out, "c:")

	buf.Reset()
	PrintErrorSummary(&buf, []string{"a"}, nil)
	assert.Empty(t, buf.String())
}
