package phases

import (
	"context"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// Reverse question generators.
const (
	GeneratorReverse       = "reverse"
	GeneratorEnrichFromSQL = "enrich_from_sql"
)

// ReverseQuestionConfig configures question generation.
type ReverseQuestionConfig struct {
	Invoker Invoker
	Model   string
	// Samples requested per candidate; only the first is kept.
	Samples     int
	Deduplicate bool
	// Generator is GeneratorReverse (default) or GeneratorEnrichFromSQL.
	Generator string
	Logger    *slog.Logger
}

// ReverseQuestionResult describes the appended question bucket.
type ReverseQuestionResult struct {
	Key          string
	CandidateKey string
	Questions    []string
	Dropped      int
}

// RunReverseQuestions asks for one question per candidate of the latest
// bucket and appends them as a new question bucket. With Deduplicate the
// candidates are first reduced to distinct SQL, in first-seen order, and
// the reduced list is appended as a candidate bucket so questions stay
// index-aligned with it. Failed or unparseable completions are dropped,
// which leaves the buckets misaligned; selection stages check for that.
func RunReverseQuestions(ctx context.Context, st *state.SystemState, cfg ReverseQuestionConfig) ReverseQuestionResult {
	log := orDiscard(cfg.Logger).With("component", ComponentReverseQuestion)
	candKey, candidates, _ := st.Candidates.Latest()
	res := ReverseQuestionResult{CandidateKey: candKey, Questions: []string{}}
	finish := func() ReverseQuestionResult {
		res.Key = st.Questions.NextKey(ComponentReverseQuestion)
		_ = st.Questions.Append(res.Key, res.Questions)
		st.RecordUpdate(ComponentReverseQuestion, map[string]any{
			"bucket":     res.Key,
			"candidates": res.CandidateKey,
			"questions":  len(res.Questions),
			"dropped":    res.Dropped,
		})
		return res
	}

	if len(candidates) == 0 {
		st.RecordError(ComponentReverseQuestion, "no candidates")
		return finish()
	}

	if cfg.Deduplicate {
		unique := dedupe(candidates)
		if len(unique) < len(candidates) {
			res.CandidateKey = appendCandidates(st, ComponentDeduplicate, unique)
			log.Debug("candidates deduplicated", "before", len(candidates), "after", len(unique))
			candidates = unique
		}
	}

	template := prompt.ReverseQuestion
	if cfg.Generator == GeneratorEnrichFromSQL {
		template = prompt.EnrichQuestionFromSQL
	}
	params := make([]map[string]string, len(candidates))
	for i, c := range candidates {
		if template == prompt.EnrichQuestionFromSQL {
			params[i] = map[string]string{
				"SCHEMA":          st.SchemaString(state.SchemaComplete),
				"DB_DESCRIPTIONS": st.SchemaString(state.SchemaWithDescriptions),
				"SQL":             c.SQL,
			}
		} else {
			params[i] = map[string]string{
				"DATABASE_SCHEMA": st.SchemaString(state.SchemaComplete),
				"SQL":             c.SQL,
			}
		}
	}

	out := cfg.Invoker.Call(ctx, ai.Request{Template: template, Model: cfg.Model, Params: params, Samples: cfg.Samples})
	for i, c := range candidates {
		var entry []string
		if i < len(out) {
			entry = out[i]
		}
		q, err := questionFrom(template, firstSample(entry))
		if err != nil {
			res.Dropped++
			log.Debug("question dropped", "index", i, "error", err)
			continue
		}
		c.SetGeneratedQuestion(q)
		res.Questions = append(res.Questions, q)
	}
	if res.Dropped > 0 {
		st.RecordError(ComponentReverseQuestion, "%d of %d questions could not be generated", res.Dropped, len(candidates))
	}
	log.Info("reverse questions generated", "questions", len(res.Questions), "dropped", res.Dropped)
	return finish()
}

func questionFrom(template, raw string) (string, error) {
	if template == prompt.EnrichQuestionFromSQL {
		e, err := parser.ParseEnrichment(raw)
		if err != nil {
			return "", err
		}
		return e.Question, nil
	}
	return parser.ParseQuestion(raw)
}

func dedupe(candidates []*state.Candidate) []*state.Candidate {
	seen := make(map[string]bool, len(candidates))
	out := make([]*state.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.SQL] {
			continue
		}
		seen[c.SQL] = true
		out = append(out, c)
	}
	return out
}
