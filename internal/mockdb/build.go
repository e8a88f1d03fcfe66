package mockdb

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/CodexForgeBR/sqlverify/internal/sqlvalue"
)

// AnswerTable is the name of the materialized expected answer.
const AnswerTable = "answer"

// BuildReport summarizes how a statement set was applied.
type BuildReport struct {
	DDL           int
	Inserts       int
	Ignored       int
	CreatedTables []string
	Failed        []StatementError
}

// Build classifies stmts and applies them: DDL first, then inserts.
// Anything that is not CREATE TABLE, DROP TABLE or INSERT is ignored.
// Inserts into unknown tables get a minimal table created first.
func Build(ctx context.Context, db *DB, stmts []string) (*BuildReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ddl, inserts, ignored := NewClassifier().Partition(stmts)
	report := &BuildReport{Ignored: ignored}

	applied, failed := db.ExecBatch(ctx, sqlOf(ddl))
	report.DDL = applied
	report.Failed = append(report.Failed, failed...)

	for _, st := range inserts {
		created, err := EnsureTableForInsert(ctx, db, st)
		if err != nil {
			db.log.Debug("could not ensure insert target", "table", st.Table, "error", err)
			continue
		}
		if created {
			report.CreatedTables = append(report.CreatedTables, st.Table)
		}
	}

	applied, failed = db.ExecBatch(ctx, sqlOf(inserts))
	report.Inserts = applied
	report.Failed = append(report.Failed, failed...)

	db.log.Debug("mock database built",
		"ddl", report.DDL, "inserts", report.Inserts,
		"ignored", report.Ignored, "failed", len(report.Failed))
	return report, nil
}

func sqlOf(stmts []Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.SQL
	}
	return out
}

// MaterializeAnswer replaces the answer table with attributes as TEXT
// columns and values bound as literals. Rows are padded or truncated to
// the attribute count.
func MaterializeAnswer(ctx context.Context, db *DB, attributes []string, values [][]string) error {
	if len(attributes) == 0 {
		return errors.New("expected answer has no attributes")
	}
	if err := db.Exec(ctx, "DROP TABLE IF EXISTS "+QuoteIdent(AnswerTable)); err != nil {
		return err
	}

	cols := uniqueColumns(attributes)
	defs := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = QuoteIdent(c) + " TEXT"
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(AnswerTable), strings.Join(defs, ", "))
	if err := db.Exec(ctx, create); err != nil {
		return err
	}

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", QuoteIdent(AnswerTable), strings.Join(marks, ", "))
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin answer insert")
	}
	for _, row := range values {
		args := make([]any, len(cols))
		for i := range args {
			if i < len(row) {
				args[i] = row[i]
			}
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			_ = tx.Rollback()
			return errors.Wrap(err, "insert answer row")
		}
	}
	return errors.Wrap(tx.Commit(), "commit answer rows")
}

// uniqueColumns suffixes repeated or blank attribute names so the table
// can be created.
func uniqueColumns(attrs []string) []string {
	seen := make(map[string]int, len(attrs))
	out := make([]string, len(attrs))
	for i, a := range attrs {
		name := strings.TrimSpace(a)
		if name == "" {
			name = fmt.Sprintf("col%d", i+1)
		}
		key := strings.ToLower(name)
		seen[key]++
		if n := seen[key]; n > 1 {
			name = fmt.Sprintf("%s_%d", name, n)
		}
		out[i] = name
	}
	return out
}

// Dump renders every table except the answer table as "name (cols): rows"
// blocks, for use as prompt input.
func Dump(ctx context.Context, db *DB) (string, error) {
	tables, err := db.Tables(ctx)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	for _, t := range tables {
		if strings.EqualFold(t, AnswerTable) {
			continue
		}
		res, err := db.Query(ctx, "SELECT * FROM "+QuoteIdent(t))
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s (%s):\n%s\n\n", t, strings.Join(res.Columns, ", "), sqlvalue.ReprRows(res.Rows))
	}
	return strings.TrimSpace(sb.String()), nil
}
