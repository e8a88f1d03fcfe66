package phases

import (
	"context"
	"errors"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/similarity"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// Similarity scoring modes.
const (
	ModeEmbedding    = "embedding"
	ModeJudge        = "judge"
	ModeQuestionTest = "question_test"
)

// SimilarityConfig configures similarity selection.
type SimilarityConfig struct {
	Invoker Invoker
	// Embedder is required for ModeEmbedding; without it the judge is used.
	Embedder   ai.Embedder
	Mode       string
	JudgeModel string
	Logger     *slog.Logger
}

// RunSimilarity scores each generated question of the latest question
// bucket against the anchor question and appends the best candidate of the
// latest candidate bucket. Embedding failures fall back to the judge; a
// judge failure or misaligned buckets select the first candidate. A judge
// verdict selects its winner index even when it also lists scores.
func RunSimilarity(ctx context.Context, st *state.SystemState, cfg SimilarityConfig) SelectionResult {
	log := orDiscard(cfg.Logger).With("component", ComponentSimilarity)
	candidates, questions, err := alignedInputs(st)
	if err != nil {
		st.RecordError(ComponentSimilarity, "%v", err)
		return fallbackFirst(st, ComponentSimilarity, candidates, FallbackMisaligned)
	}
	anchor := st.AnchorQuestion()

	if cfg.Mode != ModeJudge && cfg.Embedder != nil {
		scores, err := embeddingScores(ctx, cfg.Embedder, anchor, questions)
		if err == nil {
			log.Debug("embedding scores", "scores", scores)
			return selectByScores(ctx, st, ComponentSimilarity, candidates, scores)
		}
		log.Warn("embedding failed, falling back to judge", "error", err)
		st.RecordError(ComponentSimilarity, "embedding failed: %v", err)
	}

	raw := callOne(ctx, cfg.Invoker, prompt.SimilarityJudge, cfg.JudgeModel, map[string]string{
		"INITIAL_QUESTION":    anchor,
		"GENERATED_QUESTIONS": numberedQuestions(questions),
	})
	verdict, err := parser.ParseWinner(raw, len(candidates))
	if err != nil {
		st.RecordError(ComponentSimilarity, "parse judge verdict: %v", err)
		return fallbackFirst(st, ComponentSimilarity, candidates, FallbackNoScores)
	}
	// The judge's winner stands; its scores are kept for diagnostics.
	res := SelectionResult{Winner: candidates[verdict.Index], WinnerIndex: verdict.Index, Scores: verdict.Scores}
	res.Key = appendCandidates(st, ComponentSimilarity, []*state.Candidate{res.Winner})
	st.RecordUpdate(ComponentSimilarity, map[string]any{
		"bucket":       res.Key,
		"winner_index": res.WinnerIndex,
		"scores":       res.Scores,
	})
	return res
}

func embeddingScores(ctx context.Context, e ai.Embedder, anchor string, questions []string) ([]float64, error) {
	texts := append([]string{anchor}, questions...)
	vecs, err := e.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(texts) {
		return nil, errors.New("embedding count does not match input count")
	}
	return similarity.Pairwise(vecs[0], vecs[1:]), nil
}
