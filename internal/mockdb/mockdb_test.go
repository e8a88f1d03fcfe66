package mockdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Create(context.Background(), DriverSQLite, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestClassify_ParsedStatements uses the SQL parser for common statements.
func TestClassify_ParsedStatements(t *testing.T) {
	c := NewClassifier()

	st := c.Classify("CREATE TABLE users (id INT, name VARCHAR(20));")
	assert.Equal(t, KindDDL, st.Kind)
	assert.Equal(t, "users", st.Table)

	st = c.Classify("DROP TABLE IF EXISTS users")
	assert.Equal(t, KindDDL, st.Kind)
	assert.Equal(t, "users", st.Table)

	st = c.Classify("INSERT INTO users (id, name) VALUES (1, 'a'), (2, 'b')")
	assert.Equal(t, KindInsert, st.Kind)
	assert.Equal(t, "users", st.Table)
	assert.Equal(t, []string{"id", "name"}, st.Columns)
	assert.Equal(t, 2, st.ValueCount)

	assert.Equal(t, KindIgnored, c.Classify("SELECT * FROM users").Kind)
	assert.Equal(t, KindIgnored, c.Classify("DELETE FROM users").Kind)
	assert.Equal(t, KindIgnored, c.Classify("UPDATE users SET id = 2").Kind)
	assert.Equal(t, KindIgnored, c.Classify("   ").Kind)
}

// TestClassify_DialectFallback handles statements outside the parser's dialect.
func TestClassify_DialectFallback(t *testing.T) {
	c := NewClassifier()

	st := c.Classify("CREATE TABLE IF NOT EXISTS \"orders\" (id INTEGER PRIMARY KEY AUTOINCREMENT, note TEXT)")
	assert.Equal(t, KindDDL, st.Kind)
	assert.Equal(t, "orders", st.Table)

	st = c.Classify("INSERT OR IGNORE INTO `items` VALUES (1, 'a,b', (2), 'it''s')")
	assert.Equal(t, KindInsert, st.Kind)
	assert.Equal(t, "items", st.Table)
	assert.Equal(t, 4, st.ValueCount)
}

// TestBuild_DDLThenInserts applies DDL before inserts regardless of order.
func TestBuild_DDLThenInserts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	report, err := Build(ctx, db, []string{
		"INSERT INTO t (x) VALUES (1)",
		"INSERT INTO t (x) VALUES (2)",
		"CREATE TABLE t (x INTEGER)",
		"PRAGMA foreign_keys = ON",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.DDL)
	assert.Equal(t, 2, report.Inserts)
	assert.Equal(t, 1, report.Ignored)
	assert.Empty(t, report.Failed)

	res, err := db.Query(ctx, "SELECT x FROM t ORDER BY x")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(1)}, {int64(2)}}, res.Rows)
}

// TestBuild_CreatesMissingTable infers an all-text table from the insert.
func TestBuild_CreatesMissingTable(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	report, err := Build(ctx, db, []string{
		"INSERT INTO ghosts VALUES ('a', 'b', 'c')",
		"INSERT INTO named (k, v) VALUES ('x', 'y')",
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"ghosts", "named"}, report.CreatedTables)
	assert.Equal(t, 2, report.Inserts)

	res, err := db.Query(ctx, "SELECT col1, col2, col3 FROM ghosts")
	require.NoError(t, err)
	assert.Equal(t, []string{"col1", "col2", "col3"}, res.Columns)

	res, err = db.Query(ctx, "SELECT v FROM named WHERE k = 'x'")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"y"}}, res.Rows)
}

// TestBuild_SkipsFailingStatements keeps good statements when one fails.
func TestBuild_SkipsFailingStatements(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	report, err := Build(ctx, db, []string{
		"CREATE TABLE t (x INTEGER NOT NULL)",
		"INSERT INTO t VALUES (1)",
		"INSERT INTO t VALUES (NULL)",
		"INSERT INTO t VALUES (3)",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Inserts)
	require.Len(t, report.Failed, 1)

	res, err := db.Query(ctx, "SELECT COUNT(*) FROM t")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Rows[0][0])
}

// TestMaterializeAnswer creates the answer table with literal values.
func TestMaterializeAnswer(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := MaterializeAnswer(ctx, db, []string{"name", "name", "n"}, [][]string{{"a", "b", "1"}, {"c"}})
	require.NoError(t, err)

	res, err := db.Query(ctx, "SELECT * FROM answer")
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "name_2", "n"}, res.Columns)
	assert.Equal(t, [][]any{{"a", "b", "1"}, {"c", nil, nil}}, res.Rows)

	assert.Error(t, MaterializeAnswer(ctx, db, nil, nil))
}

// TestClose_RemovesDirectory deletes the private temp directory.
func TestClose_RemovesDirectory(t *testing.T) {
	db, err := Create(context.Background(), "", nil)
	require.NoError(t, err)
	dir := filepath.Dir(db.Path())
	_, err = os.Stat(dir)
	require.NoError(t, err)

	require.NoError(t, db.Close())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, db.Close())
}

// TestOpen_ReadOnly attaches to an existing file without owning it.
func TestOpen_ReadOnly(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)
	require.NoError(t, src.Exec(ctx, "CREATE TABLE t (x INTEGER)"))
	require.NoError(t, src.Exec(ctx, "INSERT INTO t VALUES (7)"))

	ro, err := Open(ctx, DriverSQLite, src.Path(), true, nil)
	require.NoError(t, err)
	res, err := ro.Query(ctx, "SELECT x FROM t")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(7)}}, res.Rows)
	assert.Error(t, ro.Exec(ctx, "INSERT INTO t VALUES (8)"))
	require.NoError(t, ro.Close())

	_, err = os.Stat(src.Path())
	assert.NoError(t, err)

	_, err = Open(ctx, DriverSQLite, filepath.Join(t.TempDir(), "missing.db"), true, nil)
	assert.Error(t, err)
}

func TestCreate_UnsupportedDriver(t *testing.T) {
	_, err := Create(context.Background(), "oracle", nil)
	assert.Error(t, err)
}

// TestTablesAndDump lists tables and renders their rows for prompts.
func TestTablesAndDump(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	_, err := Build(ctx, db, []string{
		"CREATE TABLE b (x INTEGER, y TEXT)",
		"CREATE TABLE a (z INTEGER)",
		"INSERT INTO b VALUES (1, 'p'), (2, NULL)",
	})
	require.NoError(t, err)
	require.NoError(t, MaterializeAnswer(ctx, db, []string{"x"}, [][]string{{"1"}}))

	tables, err := db.Tables(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "answer", "b"}, tables)

	dump, err := Dump(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, "a (z):\n[]\n\nb (x, y):\n[(1, 'p'), (2, None)]", dump)
}
