package phases

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
)

const mockDBResponse = "```json\n" + `{
  "ddl": ["CREATE TABLE users (id INTEGER, name TEXT, status INTEGER)"],
  "inserts": [
    "INSERT INTO users VALUES (1, 'ann', 1)",
    "INSERT INTO users VALUES (2, 'bob', 0)",
    "INSERT INTO users VALUES (3, 'cy', 1)"
  ],
  "satisfying_row_counts": {"users": 2}
}` + "\n```"

const answerResponse = "```json\n" + `{"attributes": ["name"], "values": [["ann"], ["cy"]]}` + "\n```"

func oracleInvoker(answer string) *fakeInvoker {
	return newFakeInvoker().
		on(prompt.MockDatabase, fixed(mockDBResponse)).
		on(prompt.MockAnswer, fixed(answer))
}

func TestRunOracle_SelectsMatchingCandidate(t *testing.T) {
	st := newTestState(t,
		"SELECT nme FROM users",
		"SELECT name FROM users",
		"SELECT name FROM users WHERE status = 1",
	)
	inv := oracleInvoker(answerResponse)

	res := RunOracle(context.Background(), st, OracleConfig{Invoker: inv, Model: "m"})

	d := res.Decision
	require.NotNil(t, d.Winner)
	assert.Equal(t, 2, d.WinnerIndex)
	assert.Equal(t, 3, d.Evaluated)
	assert.Equal(t, 1, d.Failed)
	assert.Equal(t, "mock_sql_decision_1", d.Key)

	key, sqls := latestSQL(t, st)
	assert.Equal(t, "mock_sql_decision_1", key)
	assert.Equal(t, []string{"SELECT name FROM users WHERE status = 1"}, sqls)

	assert.Equal(t, &parser.AnswerTable{Attributes: []string{"name"}, Values: [][]string{{"ann"}, {"cy"}}}, st.Mock.ExpectedAnswer)
	assert.Equal(t, map[string]int{"users": 2}, st.Mock.SatisfyingRowCounts)
	require.NotNil(t, res.Report)
	assert.Equal(t, 1, res.Report.DDL)
	assert.Equal(t, 3, res.Report.Inserts)

	rows := inv.lastParams(prompt.MockAnswer)["SATISFYING_ROWS"]
	assert.Contains(t, rows, "users (id, name, status):")
	assert.Contains(t, rows, "'ann'")
	assert.Contains(t, rows, "users=2")
	assert.Equal(t, "30", inv.lastParams(prompt.MockDatabase)["MAX_ROWS"])
	assert.Equal(t, testSchema, inv.lastParams(prompt.MockDatabase)["DATABASE_SCHEMA"])

	_, err := os.Stat(st.Mock.DBPath)
	assert.True(t, os.IsNotExist(err), "mock database must be removed")
}

func TestRunOracle_NoMatchAppendsEmptyBucket(t *testing.T) {
	st := newTestState(t, "SELECT name FROM users")
	inv := oracleInvoker(`{"attributes": ["name"], "values": [["zed"]]}`)

	res := RunOracle(context.Background(), st, OracleConfig{Invoker: inv})

	assert.Nil(t, res.Decision.Winner)
	assert.Equal(t, -1, res.Decision.WinnerIndex)
	key, sqls := latestSQL(t, st)
	assert.Equal(t, "mock_sql_decision_1", key)
	assert.Empty(t, sqls)
	assert.Contains(t, st.Errors[ComponentMockDecision], "no candidate matched")
	_, ok := st.FinalSQL()
	assert.False(t, ok)
}

func TestRunOracle_GenerationFailure(t *testing.T) {
	st := newTestState(t, "SELECT 1")
	inv := newFakeInvoker()

	res := RunOracle(context.Background(), st, OracleConfig{Invoker: inv})

	assert.Nil(t, res.Decision.Winner)
	assert.Nil(t, res.Answer)
	assert.Equal(t, 0, inv.calls(prompt.MockAnswer))
	assert.Contains(t, st.Errors[ComponentMockDatabase], "no response")
	assert.Equal(t, "no mock database", st.Errors[ComponentMockDecision])
	key, sqls := latestSQL(t, st)
	assert.Equal(t, "mock_sql_decision_1", key)
	assert.Empty(t, sqls)
}

func TestRunOracle_AnswerWithoutAttributes(t *testing.T) {
	st := newTestState(t, "SELECT name FROM users")
	inv := oracleInvoker(`{"attributes": [], "values": []}`)

	res := RunOracle(context.Background(), st, OracleConfig{Invoker: inv})

	assert.Nil(t, res.Decision.Winner)
	assert.Contains(t, st.Errors[ComponentMockAnswer], "no attributes")
	assert.Contains(t, st.Errors[ComponentMockDecision], "no attributes")
}

func TestRunMockDecision_TruncatesToExpectedWidth(t *testing.T) {
	ctx := context.Background()
	db, err := mockdb.Create(ctx, mockdb.DriverSQLite, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	report, err := mockdb.Build(ctx, db, []string{
		testSchema,
		"INSERT INTO users VALUES (1, 'ann', 1)",
		"INSERT INTO users VALUES (2, 'bob', 0)",
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.Inserts)

	st := newTestState(t, "SELECT name, id FROM users WHERE status = 1")
	st.Mock.ExpectedAnswer = &parser.AnswerTable{Attributes: []string{"name"}, Values: [][]string{{"ann"}}}

	res := RunMockDecision(ctx, st, db, MockDecisionConfig{})
	require.NotNil(t, res.Winner)
	assert.Equal(t, 0, res.WinnerIndex)
}

func TestRunMockDecision_ComparesAsSets(t *testing.T) {
	ctx := context.Background()
	db, err := mockdb.Create(ctx, mockdb.DriverSQLite, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = mockdb.Build(ctx, db, []string{
		testSchema,
		"INSERT INTO users VALUES (1, 'ann', 1)",
		"INSERT INTO users VALUES (2, 'ann', 1)",
		"INSERT INTO users VALUES (3, 'cy', 1)",
	})
	require.NoError(t, err)

	st := newTestState(t, "SELECT name FROM users ORDER BY id DESC")
	st.Mock.ExpectedAnswer = &parser.AnswerTable{Attributes: []string{"name"}, Values: [][]string{{"ann"}, {"cy"}}}

	res := RunMockDecision(ctx, st, db, MockDecisionConfig{})
	require.NotNil(t, res.Winner, "order and duplicates do not matter")
}

func buildUsersDB(t *testing.T) *mockdb.DB {
	t.Helper()
	ctx := context.Background()
	db, err := mockdb.Create(ctx, mockdb.DriverSQLite, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = mockdb.Build(ctx, db, []string{
		testSchema,
		"INSERT INTO users VALUES (1, 'ann', 1)",
		"INSERT INTO users VALUES (2, 'bob', 0)",
	})
	require.NoError(t, err)
	return db
}

func TestRunMockDecision_FirstMatchWins(t *testing.T) {
	db := buildUsersDB(t)
	st := newTestState(t,
		"SELECT 3",
		"SELECT id FROM users ORDER BY id DESC",
		"SELECT id FROM users",
	)
	st.Mock.ExpectedAnswer = &parser.AnswerTable{Attributes: []string{"id"}, Values: [][]string{{"1"}, {"2"}}}

	res := RunMockDecision(context.Background(), st, db, MockDecisionConfig{})

	require.NotNil(t, res.Winner)
	assert.Equal(t, 1, res.WinnerIndex)
	assert.Equal(t, 2, res.Evaluated, "evaluation stops at the first match")
	_, sqls := latestSQL(t, st)
	assert.Equal(t, []string{"SELECT id FROM users ORDER BY id DESC"}, sqls)
}

func TestRunMockDecision_NoCandidates(t *testing.T) {
	db := buildUsersDB(t)
	st := newTestState(t)
	st.Mock.ExpectedAnswer = &parser.AnswerTable{Attributes: []string{"id"}, Values: [][]string{{"1"}}}

	res := RunMockDecision(context.Background(), st, db, MockDecisionConfig{})

	assert.Nil(t, res.Winner)
	assert.Equal(t, -1, res.WinnerIndex)
	assert.Equal(t, "mock_sql_decision_1", res.Key)
	bucket, ok := st.Candidates.Get("mock_sql_decision_1")
	require.True(t, ok)
	assert.Empty(t, bucket)
	assert.Equal(t, "no candidates to verify", st.Errors[ComponentMockDecision])
}

func TestRunMockDecision_WideExpectedRowNeverMatches(t *testing.T) {
	db := buildUsersDB(t)
	st := newTestState(t, "SELECT name FROM users WHERE status = 1")
	st.Mock.ExpectedAnswer = &parser.AnswerTable{Attributes: []string{"name"}, Values: [][]string{{"ann", "1"}}}

	res := RunMockDecision(context.Background(), st, db, MockDecisionConfig{})

	assert.Nil(t, res.Winner)
	assert.Contains(t, st.Errors[ComponentMockDecision], "no candidate matched")
}
