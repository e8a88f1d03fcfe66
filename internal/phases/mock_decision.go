package phases

import (
	"context"
	"log/slog"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
	"github.com/CodexForgeBR/sqlverify/internal/sqlvalue"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// MockDecisionConfig configures the oracle decision.
type MockDecisionConfig struct {
	Logger *slog.Logger
}

// DecisionResult reports the oracle's choice. WinnerIndex is -1 and Winner
// nil when no candidate matched.
type DecisionResult struct {
	Key         string
	Winner      *state.Candidate
	WinnerIndex int
	Evaluated   int
	Failed      int
}

// RunMockDecision executes every candidate of the latest bucket against db
// and appends the first one whose result set equals the expected answer.
// Candidate rows are truncated to the expected attribute count and compared
// as sets of stringified values; expected rows are used as given. When nothing matches an empty bucket is appended.
func RunMockDecision(ctx context.Context, st *state.SystemState, db *mockdb.DB, cfg MockDecisionConfig) DecisionResult {
	log := orDiscard(cfg.Logger).With("component", ComponentMockDecision)
	res := DecisionResult{WinnerIndex: -1}
	finish := func() DecisionResult {
		var winners []*state.Candidate
		if res.Winner != nil {
			winners = []*state.Candidate{res.Winner}
		}
		res.Key = appendCandidates(st, ComponentMockDecision, winners)
		st.RecordUpdate(ComponentMockDecision, map[string]any{
			"bucket":       res.Key,
			"winner_index": res.WinnerIndex,
			"evaluated":    res.Evaluated,
			"failed":       res.Failed,
		})
		return res
	}

	_, candidates, _ := st.Candidates.Latest()
	expected := st.Mock.ExpectedAnswer
	switch {
	case db == nil:
		st.RecordError(ComponentMockDecision, "no mock database")
		return finish()
	case len(candidates) == 0:
		st.RecordError(ComponentMockDecision, "no candidates to verify")
		return finish()
	case expected == nil || len(expected.Attributes) == 0:
		st.RecordError(ComponentMockDecision, "expected answer has no attributes")
		return finish()
	}

	width := len(expected.Attributes)
	want := make(map[string]struct{}, len(expected.Values))
	for _, row := range expected.Values {
		want[rowKey(row)] = struct{}{}
	}

	for i, c := range candidates {
		if err := ctx.Err(); err != nil {
			st.RecordError(ComponentMockDecision, "interrupted: %v", err)
			return finish()
		}
		result, err := db.Query(ctx, c.SQL)
		res.Evaluated++
		if err != nil {
			res.Failed++
			log.Debug("candidate dropped", "index", i, "error", err)
			continue
		}
		got := make(map[string]struct{}, len(result.Rows))
		for _, row := range result.Rows {
			got[rowKey(sqlvalue.Row(row, width))] = struct{}{}
		}
		if sameSet(got, want) {
			res.Winner = c
			res.WinnerIndex = i
			log.Info("candidate matches expected answer", "index", i)
			return finish()
		}
	}

	st.RecordError(ComponentMockDecision, "no candidate matched the expected answer (%d evaluated, %d failed)", res.Evaluated, res.Failed)
	return finish()
}

// rowKey joins cells with the ASCII unit separator.
func rowKey(row []string) string {
	return strings.Join(row, "\x1f")
}

func sameSet(a, b map[string]struct{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if _, ok := b[k]; !ok {
			return false
		}
	}
	return true
}
