// Package mockdb manages the throwaway database the oracle verifier builds
// for one run: creation, statement execution, candidate queries and
// removal.
package mockdb

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite3"
	DriverDuckDB = "duckdb"
)

// DB is a single-writer database handle. When created by Create it owns
// a private temp directory that Close removes.
type DB struct {
	driver string
	path   string
	dir    string
	db     *sql.DB
	log    *slog.Logger
	closed bool
}

// ValidDriver reports whether name is a supported driver.
func ValidDriver(name string) bool {
	return name == DriverSQLite || name == DriverDuckDB
}

func discardLogger(log *slog.Logger) *slog.Logger {
	if log != nil {
		return log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Create makes a fresh, empty database in a new temp directory.
func Create(ctx context.Context, driver string, log *slog.Logger) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if !ValidDriver(driver) {
		return nil, errors.Errorf("unsupported mock database driver %q", driver)
	}

	dir, err := os.MkdirTemp("", "sqlverify_mock_db_")
	if err != nil {
		return nil, errors.Wrap(err, "create mock db dir")
	}
	ext := ".sqlite"
	if driver == DriverDuckDB {
		ext = ".duckdb"
	}
	path := filepath.Join(dir, uuid.NewString()+ext)

	db, err := open(ctx, driver, path)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	m := &DB{driver: driver, path: path, dir: dir, db: db, log: discardLogger(log)}
	m.log.Debug("mock database created", "driver", driver, "path", path)
	return m, nil
}

// Open attaches to an existing database file. The file is never removed.
func Open(ctx context.Context, driver, path string, readOnly bool, log *slog.Logger) (*DB, error) {
	if driver == "" {
		driver = DriverSQLite
	}
	if !ValidDriver(driver) {
		return nil, errors.Errorf("unsupported database driver %q", driver)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, "database %s", path)
	}
	dsn := path
	if readOnly {
		switch driver {
		case DriverSQLite:
			dsn = "file:" + path + "?mode=ro"
		case DriverDuckDB:
			dsn = path + "?access_mode=read_only"
		}
	}
	db, err := open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return &DB{driver: driver, path: path, db: db, log: discardLogger(log)}, nil
}

func open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", driver)
	}
	// One connection keeps every statement on the same session.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "ping %s database", driver)
	}
	return db, nil
}

// Path returns the database file path.
func (m *DB) Path() string { return m.path }

// Driver returns the driver name.
func (m *DB) Driver() string { return m.driver }

// Exec runs a single statement.
func (m *DB) Exec(ctx context.Context, stmt string) error {
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return errors.Wrapf(err, "exec %q", abbreviate(stmt))
	}
	return nil
}

// StatementError pairs a failed statement with its error.
type StatementError struct {
	SQL string
	Err error
}

func (e StatementError) Error() string {
	return fmt.Sprintf("%s: %v", abbreviate(e.SQL), e.Err)
}

// ExecBatch runs stmts in one transaction. If any statement fails the
// transaction is rolled back and the batch is replayed one statement at a
// time, skipping failures. It returns the number of applied statements and
// the failures.
func (m *DB) ExecBatch(ctx context.Context, stmts []string) (int, []StatementError) {
	if len(stmts) == 0 {
		return 0, nil
	}
	err := m.execTx(ctx, stmts)
	if err == nil {
		return len(stmts), nil
	}
	m.log.Debug("batch failed, replaying statements individually", "error", err)

	applied := 0
	var failed []StatementError
	for _, s := range stmts {
		if err := ctx.Err(); err != nil {
			failed = append(failed, StatementError{SQL: s, Err: err})
			continue
		}
		if _, err := m.db.ExecContext(ctx, s); err != nil {
			m.log.Debug("statement skipped", "sql", abbreviate(s), "error", err)
			failed = append(failed, StatementError{SQL: s, Err: err})
			continue
		}
		applied++
	}
	return applied, failed
}

func (m *DB) execTx(ctx context.Context, stmts []string) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "exec %q", abbreviate(s))
		}
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// Query runs sql and materializes every row. It satisfies state.Executor.
func (m *DB) Query(ctx context.Context, query string) (*state.ExecutionResult, error) {
	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, "query")
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, "columns")
	}

	res := &state.ExecutionResult{Columns: cols, Rows: [][]any{}}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "scan")
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		res.Rows = append(res.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "rows")
	}
	return res, nil
}

// TableExists reports whether a table called name exists.
func (m *DB) TableExists(ctx context.Context, name string) (bool, error) {
	q := "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?"
	if m.driver == DriverDuckDB {
		q = "SELECT table_name FROM information_schema.tables WHERE table_name = ?"
	}
	var found string
	err := m.db.QueryRowContext(ctx, q, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "lookup table %s", name)
	}
	return true, nil
}

// Tables lists user tables in name order.
func (m *DB) Tables(ctx context.Context) ([]string, error) {
	q := "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name"
	if m.driver == DriverDuckDB {
		q = "SELECT table_name FROM information_schema.tables WHERE table_schema = 'main' ORDER BY table_name"
	}
	rows, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "list tables")
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, errors.Wrap(err, "scan table name")
		}
		names = append(names, n)
	}
	return names, errors.Wrap(rows.Err(), "list tables")
}

// Close closes the handle and, for databases made by Create, removes the
// temp directory. Calling Close more than once is a no-op.
func (m *DB) Close() error {
	if m == nil || m.closed {
		return nil
	}
	m.closed = true
	err := m.db.Close()
	if m.dir != "" {
		if rmErr := os.RemoveAll(m.dir); rmErr != nil && err == nil {
			err = rmErr
		}
		m.log.Debug("mock database removed", "path", m.path)
	}
	return errors.Wrap(err, "close mock db")
}

// QuoteIdent double-quotes an identifier for both drivers.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func abbreviate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 80 {
		return s[:77] + "..."
	}
	return s
}
