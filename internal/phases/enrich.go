package phases

import (
	"context"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// EnrichConfig configures question enrichment.
type EnrichConfig struct {
	Invoker Invoker
	Model   string
	Logger  *slog.Logger
}

// EnrichResult holds the enriched question. Enriched is false when the raw
// question remains the anchor.
type EnrichResult struct {
	Question  string
	Reasoning string
	Enriched  bool
}

// RunEnrichQuestion rewrites the task question into a more explicit anchor
// and stores it in st. On any failure the anchor stays the raw question.
func RunEnrichQuestion(ctx context.Context, st *state.SystemState, cfg EnrichConfig) EnrichResult {
	log := orDiscard(cfg.Logger).With("component", ComponentEnrichQuestion)
	raw := callOne(ctx, cfg.Invoker, prompt.EnrichQuestion, cfg.Model, map[string]string{
		"SCHEMA":          st.SchemaString(state.SchemaComplete),
		"DB_DESCRIPTIONS": st.SchemaString(state.SchemaWithDescriptions),
		"QUESTION":        st.Task.Question,
		"EVIDENCE":        st.Task.Evidence,
	})
	if raw == "" {
		st.RecordError(ComponentEnrichQuestion, "no response from language model")
		return EnrichResult{Question: st.Task.Question}
	}

	e, err := parser.ParseEnrichment(raw)
	if err != nil {
		st.RecordError(ComponentEnrichQuestion, "parse enrichment: %v", err)
		return EnrichResult{Question: st.Task.Question}
	}
	st.EnrichedQuestion = e.Question
	st.RecordUpdate(ComponentEnrichQuestion, map[string]any{"enriched_question": e.Question})
	log.Debug("question enriched", "question", e.Question)
	return EnrichResult{Question: e.Question, Reasoning: e.Reasoning, Enriched: true}
}
