// Package phases implements the verification stages that read and append
// candidate and question buckets, and the orchestrator that chains them.
//
// Stage entry points never return errors. Failures degrade to a documented
// fallback and are recorded in SystemState.Errors under the stage's
// component name.
package phases

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// Component names. They key diagnostics and prefix the buckets each stage
// appends.
const (
	ComponentMockDatabase    = "mock_database_generator"
	ComponentMockAnswer      = "mock_answer_generator"
	ComponentMockDecision    = "mock_sql_decision"
	ComponentReverseQuestion = "generate_reverse_question"
	ComponentEnrichQuestion  = "enrich_initial_question"
	ComponentSimilarity      = "similarity_test"
	ComponentQuestionTest    = "generate_question_test"
	ComponentDeduplicate     = "deduplicate_candidates"
)

// ErrAlignmentMismatch is recorded when candidate and question counts differ.
var ErrAlignmentMismatch = errors.New("candidate and question counts differ")

// Invoker sends prompt batches to the language model. The result is
// aligned with the request parameters; failed entries are nil.
type Invoker interface {
	Call(ctx context.Context, req ai.Request) [][]string
}

// firstSample returns the first completion of entry, or "" when the entry
// is missing.
func firstSample(entry []string) string {
	if len(entry) == 0 {
		return ""
	}
	return entry[0]
}

// callOne sends a single prompt and returns its first completion.
func callOne(ctx context.Context, inv Invoker, template, model string, params map[string]string) string {
	out := inv.Call(ctx, ai.Request{Template: template, Model: model, Params: []map[string]string{params}, Samples: 1})
	if len(out) == 0 {
		return ""
	}
	return firstSample(out[0])
}

// appendCandidates writes values under the next free key for component
// and returns the key.
func appendCandidates(st *state.SystemState, component string, values []*state.Candidate) string {
	key := st.Candidates.NextKey(component)
	// NextKey never yields an existing key.
	_ = st.Candidates.Append(key, values)
	return key
}

func orDiscard(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
