package phases

import (
	"context"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// ReverseConfig configures the full reverse-question verifier.
type ReverseConfig struct {
	Invoker       Invoker
	Embedder      ai.Embedder
	Model         string
	JudgeModel    string
	Samples       int
	Deduplicate   bool
	Generator     string
	Enrich        bool
	Mode          string
	UnitTestCount int
	Logger        *slog.Logger
}

// ReverseResult combines the outcome of the reverse verifier stages.
type ReverseResult struct {
	Questions ReverseQuestionResult
	Enriched  EnrichResult
	Selection SelectionResult
}

// RunReverseVerifier generates questions for the latest candidates,
// optionally enriches the anchor question, then selects a winner by
// similarity or by question tests depending on Mode.
func RunReverseVerifier(ctx context.Context, st *state.SystemState, cfg ReverseConfig) ReverseResult {
	var out ReverseResult
	out.Questions = RunReverseQuestions(ctx, st, ReverseQuestionConfig{
		Invoker:     cfg.Invoker,
		Model:       cfg.Model,
		Samples:     cfg.Samples,
		Deduplicate: cfg.Deduplicate,
		Generator:   cfg.Generator,
		Logger:      cfg.Logger,
	})

	if cfg.Enrich && st.EnrichedQuestion == "" {
		out.Enriched = RunEnrichQuestion(ctx, st, EnrichConfig{
			Invoker: cfg.Invoker,
			Model:   cfg.Model,
			Logger:  cfg.Logger,
		})
	}

	if cfg.Mode == ModeQuestionTest {
		out.Selection = RunQuestionTest(ctx, st, QuestionTestConfig{
			Invoker:       cfg.Invoker,
			Model:         cfg.Model,
			JudgeModel:    cfg.JudgeModel,
			UnitTestCount: cfg.UnitTestCount,
			Logger:        cfg.Logger,
		})
		return out
	}
	out.Selection = RunSimilarity(ctx, st, SimilarityConfig{
		Invoker:    cfg.Invoker,
		Embedder:   cfg.Embedder,
		Mode:       cfg.Mode,
		JudgeModel: cfg.JudgeModel,
		Logger:     cfg.Logger,
	})
	return out
}
