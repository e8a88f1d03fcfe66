package phases

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/similarity"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// DefaultUnitTestCount caps the generated question tests.
const DefaultUnitTestCount = 5

// UnitTestKey is the SystemState.UnitTests entry holding the tests used.
const UnitTestKey = "question_test_generation"

// DefaultQuestionTests are used when test generation fails.
var DefaultQuestionTests = []string{
	"The question should match the original intent and constraints.",
	"The question should mention the key entities referenced by the original question.",
}

// QuestionTestConfig configures question-test selection.
type QuestionTestConfig struct {
	Invoker       Invoker
	Model         string
	JudgeModel    string
	UnitTestCount int
	Logger        *slog.Logger
}

// RunQuestionTest generates discriminative tests for the generated
// questions, judges every question against each test, sums the per-test
// scores and appends the best candidate. When no per-test verdict parses a
// single combined judgement is tried; when that fails too the first
// candidate is selected.
func RunQuestionTest(ctx context.Context, st *state.SystemState, cfg QuestionTestConfig) SelectionResult {
	log := orDiscard(cfg.Logger).With("component", ComponentQuestionTest)
	candidates, questions, err := alignedInputs(st)
	if err != nil {
		st.RecordError(ComponentQuestionTest, "%v", err)
		return fallbackFirst(st, ComponentQuestionTest, candidates, FallbackMisaligned)
	}
	n := len(candidates)
	anchor := st.AnchorQuestion()
	listed := numberedQuestions(questions)

	tests := generateQuestionTests(ctx, st, cfg, anchor, listed)
	if st.UnitTests == nil {
		st.UnitTests = make(map[string][]string)
	}
	st.UnitTests[UnitTestKey] = tests
	log.Debug("question tests", "count", len(tests))

	params := make([]map[string]string, len(tests))
	for i, t := range tests {
		params[i] = evaluationParams(anchor, listed, []string{t})
	}
	out := cfg.Invoker.Call(ctx, ai.Request{Template: prompt.EvaluateQuestionTests, Model: cfg.JudgeModel, Params: params, Samples: 1})

	var matrix [][]float64
	for i, entry := range out {
		row, ok := scoreRow(firstSample(entry), n)
		if !ok {
			log.Debug("test verdict unusable", "test", i)
			continue
		}
		matrix = append(matrix, row)
	}

	if len(matrix) == 0 {
		raw := callOne(ctx, cfg.Invoker, prompt.EvaluateQuestionTests, cfg.JudgeModel, evaluationParams(anchor, listed, tests))
		if row, ok := scoreRow(raw, n); ok {
			matrix = append(matrix, row)
		}
	}
	if len(matrix) == 0 {
		st.RecordError(ComponentQuestionTest, "no test verdict could be parsed")
		return fallbackFirst(st, ComponentQuestionTest, candidates, FallbackNoScores)
	}
	return selectByScores(ctx, st, ComponentQuestionTest, candidates, similarity.Sum(matrix, n))
}

func generateQuestionTests(ctx context.Context, st *state.SystemState, cfg QuestionTestConfig, anchor, listed string) []string {
	limit := cfg.UnitTestCount
	if limit <= 0 {
		limit = DefaultUnitTestCount
	}
	raw := callOne(ctx, cfg.Invoker, prompt.QuestionTests, cfg.Model, map[string]string{
		"HINT":                st.Task.Evidence,
		"INITIAL_QUESTION":    anchor,
		"GENERATED_QUESTIONS": listed,
		"UNIT_TEST_CAP":       strconv.Itoa(limit),
	})
	tests, err := parser.ParseUnitTests(raw)
	if err != nil || len(tests) == 0 {
		if err != nil {
			st.RecordError(ComponentQuestionTest, "parse question tests: %v", err)
		}
		return append([]string(nil), DefaultQuestionTests...)
	}
	if len(tests) > limit {
		tests = tests[:limit]
	}
	return tests
}

func evaluationParams(anchor, listed string, tests []string) map[string]string {
	lines := make([]string, len(tests))
	for i, t := range tests {
		lines[i] = "- " + t
	}
	return map[string]string{
		"INITIAL_QUESTION":    anchor,
		"GENERATED_QUESTIONS": listed,
		"QUESTION_TESTS":      strings.Join(lines, "\n"),
	}
}

// scoreRow reads one verdict as a score per candidate. A pass/fail tally
// must cover every candidate; a winner verdict without a full score list
// scores only the winner.
func scoreRow(raw string, n int) ([]float64, bool) {
	if raw == "" {
		return nil, false
	}
	if tally, err := parser.ParseTally(raw); err == nil && len(tally.Scores) == n {
		row := make([]float64, n)
		for i, s := range tally.Scores {
			row[i] = float64(s)
		}
		return row, true
	}
	w, err := parser.ParseWinner(raw, n)
	if err != nil {
		return nil, false
	}
	if len(w.Scores) == n {
		return w.Scores, true
	}
	row := make([]float64, n)
	row[w.Index] = 1
	return row, true
}
