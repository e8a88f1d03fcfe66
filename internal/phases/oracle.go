package phases

import (
	"context"
	"log/slog"

	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// OracleConfig configures the mock database oracle.
type OracleConfig struct {
	Invoker Invoker
	Model   string
	Driver  string
	MaxRows int
	Logger  *slog.Logger
}

// OracleResult combines the outcome of the three oracle stages.
type OracleResult struct {
	Report   *mockdb.BuildReport
	Answer   *parser.AnswerTable
	Decision DecisionResult
}

// RunOracle generates the mock database, derives the expected answer and
// decides among the latest candidates. The ephemeral database is removed
// before returning on every path.
func RunOracle(ctx context.Context, st *state.SystemState, cfg OracleConfig) OracleResult {
	st.Mock = state.MockArtifacts{}
	gen := RunMockDatabaseGeneration(ctx, st, MockDatabaseConfig{
		Invoker: cfg.Invoker,
		Model:   cfg.Model,
		Driver:  cfg.Driver,
		MaxRows: cfg.MaxRows,
		Logger:  cfg.Logger,
	})
	defer func() {
		if err := gen.DB.Close(); err != nil {
			orDiscard(cfg.Logger).Warn("failed to remove mock database", "error", err)
		}
	}()

	var out OracleResult
	out.Report = gen.Report
	if gen.DB != nil {
		out.Answer = RunMockAnswer(ctx, st, gen.DB, MockAnswerConfig{
			Invoker: cfg.Invoker,
			Model:   cfg.Model,
			Logger:  cfg.Logger,
		}).Answer
	}
	out.Decision = RunMockDecision(ctx, st, gen.DB, MockDecisionConfig{Logger: cfg.Logger})
	return out
}
