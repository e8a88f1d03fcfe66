package phases

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// MockAnswerConfig configures expected answer derivation.
type MockAnswerConfig struct {
	Invoker Invoker
	Model   string
	Logger  *slog.Logger
}

// MockAnswerResult holds the expected answer, nil on failure.
type MockAnswerResult struct {
	Answer *parser.AnswerTable
}

// RunMockAnswer asks the model for the answer table the question should
// produce over the mock rows, stores it as ground truth and materializes it
// as the answer table of db.
func RunMockAnswer(ctx context.Context, st *state.SystemState, db *mockdb.DB, cfg MockAnswerConfig) MockAnswerResult {
	log := orDiscard(cfg.Logger).With("component", ComponentMockAnswer)
	if db == nil {
		st.RecordError(ComponentMockAnswer, "no mock database")
		return MockAnswerResult{}
	}

	rows, err := mockdb.Dump(ctx, db)
	if err != nil {
		st.RecordError(ComponentMockAnswer, "read mock rows: %v", err)
		return MockAnswerResult{}
	}
	if hint := formatRowCounts(st.Mock.SatisfyingRowCounts); hint != "" {
		rows += "\n\nRows satisfying the question per table: " + hint
	}

	raw := callOne(ctx, cfg.Invoker, prompt.MockAnswer, cfg.Model, map[string]string{
		"QUESTION":        st.Task.Question,
		"SATISFYING_ROWS": rows,
	})
	if raw == "" {
		st.RecordError(ComponentMockAnswer, "no response from language model")
		return MockAnswerResult{}
	}

	answer, err := parser.ParseAnswer(raw)
	if err != nil {
		log.Debug("answer response rejected", "kind", parser.KindName(err), "error", err)
		st.RecordError(ComponentMockAnswer, "parse expected answer: %v", err)
		return MockAnswerResult{}
	}
	st.Mock.ExpectedAnswer = answer
	if len(answer.Attributes) == 0 {
		st.RecordError(ComponentMockAnswer, "expected answer has no attributes")
		return MockAnswerResult{Answer: answer}
	}

	if err := mockdb.MaterializeAnswer(ctx, db, answer.Attributes, answer.Values); err != nil {
		st.RecordError(ComponentMockAnswer, "materialize answer: %v", err)
	}
	st.RecordUpdate(ComponentMockAnswer, map[string]any{
		"attributes": answer.Attributes,
		"rows":       len(answer.Values),
	})
	log.Info("expected answer derived", "attributes", len(answer.Attributes), "rows", len(answer.Values))
	return MockAnswerResult{Answer: answer}
}

func formatRowCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = fmt.Sprintf("%s=%d", n, counts[n])
	}
	return strings.Join(parts, ", ")
}
