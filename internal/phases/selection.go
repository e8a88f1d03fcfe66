package phases

import (
	"context"
	"fmt"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/cluster"
	"github.com/CodexForgeBR/sqlverify/internal/similarity"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// Fallback reasons reported by selection stages.
const (
	FallbackNone         = ""
	FallbackNoCandidates = "no_candidates"
	FallbackMisaligned   = "alignment_mismatch"
	FallbackNoScores     = "no_scores"
)

// SelectionResult reports the candidate a selection stage appended.
// WinnerIndex is -1 and Winner nil only when there were no candidates.
type SelectionResult struct {
	Key         string
	Winner      *state.Candidate
	WinnerIndex int
	Scores      []float64
	// Fallback names the degraded path taken, FallbackNone when the
	// winner was scored.
	Fallback string
}

// alignedInputs returns the latest candidates and questions. It returns
// ErrAlignmentMismatch when the counts differ or either list is empty.
func alignedInputs(st *state.SystemState) ([]*state.Candidate, []string, error) {
	_, candidates, _ := st.Candidates.Latest()
	_, questions, _ := st.Questions.Latest()
	if len(candidates) == 0 || len(questions) == 0 || len(candidates) != len(questions) {
		return candidates, questions, fmt.Errorf("%w: %d candidates, %d questions",
			ErrAlignmentMismatch, len(candidates), len(questions))
	}
	return candidates, questions, nil
}

// fallbackFirst appends the first candidate, or an empty bucket when there
// is none.
func fallbackFirst(st *state.SystemState, component string, candidates []*state.Candidate, reason string) SelectionResult {
	res := SelectionResult{WinnerIndex: -1, Fallback: reason}
	var winners []*state.Candidate
	if len(candidates) > 0 {
		res.Winner, res.WinnerIndex = candidates[0], 0
		winners = []*state.Candidate{candidates[0]}
	} else {
		res.Fallback = FallbackNoCandidates
	}
	res.Key = appendCandidates(st, component, winners)
	st.RecordUpdate(component, map[string]any{
		"bucket":       res.Key,
		"winner_index": res.WinnerIndex,
		"fallback":     res.Fallback,
	})
	return res
}

// selectByScores appends the best-scoring candidate. Ties are broken by
// execution clusters, computed only when a tie exists.
func selectByScores(ctx context.Context, st *state.SystemState, component string, candidates []*state.Candidate, scores []float64) SelectionResult {
	var clusters *cluster.Clusters
	if len(similarity.Tied(scores)) > 1 {
		clusters = cluster.Build(ctx, candidates, st.Executor)
	}
	idx := similarity.PickBest(scores, clusters)
	res := SelectionResult{
		Winner:      candidates[idx],
		WinnerIndex: idx,
		Scores:      scores,
	}
	res.Key = appendCandidates(st, component, []*state.Candidate{res.Winner})
	st.RecordUpdate(component, map[string]any{
		"bucket":        res.Key,
		"winner_index":  idx,
		"scores":        scores,
		"cluster_sizes": clusters.Sizes(),
	})
	return res
}

// numberedQuestions renders "Question #i: q" lines, 1-based.
func numberedQuestions(questions []string) string {
	lines := make([]string, len(questions))
	for i, q := range questions {
		lines[i] = fmt.Sprintf("Question #%d: %s", i+1, q)
	}
	return strings.Join(lines, "\n")
}
