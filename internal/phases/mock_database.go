package phases

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// DefaultMaxMockRows caps the rows requested per mock table.
const DefaultMaxMockRows = 30

// MockDatabaseConfig configures mock database generation.
type MockDatabaseConfig struct {
	Invoker Invoker
	Model   string
	Driver  string
	MaxRows int
	Logger  *slog.Logger
}

// MockDatabaseResult holds the built database. DB is nil when generation
// failed; the caller owns and must close it otherwise.
type MockDatabaseResult struct {
	DB     *mockdb.DB
	Report *mockdb.BuildReport
}

// RunMockDatabaseGeneration asks the model for DDL and inserts matching the
// schema and question, then applies them to a fresh ephemeral database.
func RunMockDatabaseGeneration(ctx context.Context, st *state.SystemState, cfg MockDatabaseConfig) MockDatabaseResult {
	log := orDiscard(cfg.Logger).With("component", ComponentMockDatabase)
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxMockRows
	}

	raw := callOne(ctx, cfg.Invoker, prompt.MockDatabase, cfg.Model, map[string]string{
		"DATABASE_SCHEMA": st.SchemaString(state.SchemaComplete),
		"QUESTION":        st.Task.Question,
		"HINT":            st.Task.Evidence,
		"MAX_ROWS":        strconv.Itoa(maxRows),
	})
	if raw == "" {
		st.RecordError(ComponentMockDatabase, "no response from language model")
		return MockDatabaseResult{}
	}

	spec, err := parser.ParseMockDatabase(raw)
	if err != nil {
		log.Debug("mock database response rejected", "kind", parser.KindName(err), "error", err)
		st.RecordError(ComponentMockDatabase, "parse mock database: %v", err)
		return MockDatabaseResult{}
	}

	db, err := mockdb.Create(ctx, cfg.Driver, log)
	if err != nil {
		st.RecordError(ComponentMockDatabase, "create mock database: %v", err)
		return MockDatabaseResult{}
	}

	report, err := mockdb.Build(ctx, db, spec.Statements)
	if err != nil {
		_ = db.Close()
		st.RecordError(ComponentMockDatabase, "build mock database: %v", err)
		return MockDatabaseResult{}
	}
	if report.DDL+report.Inserts == 0 {
		st.RecordError(ComponentMockDatabase, "no generated statement could be applied")
	}

	st.Mock.DBPath = db.Path()
	st.Mock.Driver = db.Driver()
	st.Mock.Statements = spec.Statements
	st.Mock.SatisfyingRowCounts = spec.SatisfyingRowCounts
	st.Mock.GeneratedTables = spec.GeneratedTables
	st.RecordUpdate(ComponentMockDatabase, map[string]any{
		"ddl":            report.DDL,
		"inserts":        report.Inserts,
		"ignored":        report.Ignored,
		"failed":         len(report.Failed),
		"created_tables": report.CreatedTables,
	})
	log.Info("mock database ready", "ddl", report.DDL, "inserts", report.Inserts, "failed", len(report.Failed))
	return MockDatabaseResult{DB: db, Report: report}
}
