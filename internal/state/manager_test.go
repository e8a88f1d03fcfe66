package state

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingExecutor struct {
	calls int
	err   error
}

func (e *countingExecutor) Query(_ context.Context, sql string) (*ExecutionResult, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return &ExecutionResult{Columns: []string{"v"}, Rows: [][]any{{sql}}}, nil
}

// TestCandidate_ResultMemoized runs the query once per candidate.
func TestCandidate_ResultMemoized(t *testing.T) {
	exec := &countingExecutor{}
	c := NewCandidate("SELECT 1")

	r1, err := c.ExecutionResult(context.Background(), exec)
	require.NoError(t, err)
	r2, err := c.ExecutionResult(context.Background(), exec)
	require.NoError(t, err)
	assert.Same(t, r1, r2)
	assert.Equal(t, 1, exec.calls)

	cached, ok := c.CachedResult()
	assert.True(t, ok)
	assert.Same(t, r1, cached)
}

// TestCandidate_ErrorMemoized caches failures as well.
func TestCandidate_ErrorMemoized(t *testing.T) {
	exec := &countingExecutor{err: errors.New("no such table")}
	c := NewCandidate("SELECT * FROM missing")

	_, err := c.ExecutionResult(context.Background(), exec)
	assert.Error(t, err)
	_, err = c.ExecutionResult(context.Background(), exec)
	assert.Error(t, err)
	assert.Equal(t, 1, exec.calls)

	_, ok := c.CachedResult()
	assert.False(t, ok)
}

// TestCandidate_NoExecutor reports ErrNoExecutor without caching it.
func TestCandidate_NoExecutor(t *testing.T) {
	c := NewCandidate("SELECT 1")
	_, err := c.ExecutionResult(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoExecutor)

	c.SetExecutionResult(&ExecutionResult{Rows: [][]any{{int64(1)}}})
	r, err := c.ExecutionResult(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "[(1,)]", r.Signature())
}

// TestSystemState_Anchor prefers the enriched question.
func TestSystemState_Anchor(t *testing.T) {
	s := New("r1", Task{Question: "raw?"}, StaticSchema{Complete: "CREATE TABLE t (x INT)"})
	assert.Equal(t, "raw?", s.AnchorQuestion())
	s.EnrichedQuestion = "enriched?"
	assert.Equal(t, "enriched?", s.AnchorQuestion())
	assert.Equal(t, "CREATE TABLE t (x INT)", s.SchemaString(SchemaWithDescriptions))
}

// TestSystemState_FinalSQL reads the first candidate of the latest bucket.
func TestSystemState_FinalSQL(t *testing.T) {
	s := New("r1", Task{Question: "q"}, nil)
	_, ok := s.FinalSQL()
	assert.False(t, ok)

	require.NoError(t, s.Candidates.Append(InitialBucket, NewCandidates("SELECT 1", "SELECT 2")))
	require.NoError(t, s.Candidates.Append("mock_sql_decision_1", nil))
	_, ok = s.FinalSQL()
	assert.False(t, ok)

	require.NoError(t, s.Candidates.Append("similarity_test_1", NewCandidates("SELECT 2")))
	sql, ok := s.FinalSQL()
	assert.True(t, ok)
	assert.Equal(t, "SELECT 2", sql)
}

// TestSaveLoadRoundTrip persists and restores buckets, artifacts and errors.
func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	s := New("abc", Task{Question: "How many?", DBID: "shop"}, nil)
	cand := NewCandidate("SELECT COUNT(*) FROM t")
	cand.SetGeneratedQuestion("Count rows of t")
	cand.SetExecutionResult(&ExecutionResult{Columns: []string{"n"}, Rows: [][]any{{int64(3)}}})
	require.NoError(t, s.Candidates.Append(InitialBucket, []*Candidate{cand}))
	require.NoError(t, s.Questions.Append("generate_reverse_question_1", []string{"Count rows of t"}))
	s.Mock.ExpectedAnswer = &parser.AnswerTable{Attributes: []string{"n"}, Values: [][]string{{"3"}}}
	s.RecordError("mock_sql_decision", "no candidate matched %d rows", 1)
	s.RecordUpdate("mock_sql_decision", map[string]any{"selected_sql": ""})

	path, err := SaveState(s, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "run-abc.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	loaded, err := LoadState(path)
	require.NoError(t, err)
	assert.Equal(t, "How many?", loaded.Task.Question)
	assert.Equal(t, []string{InitialBucket}, loaded.Candidates.Keys())

	cands, _ := loaded.Candidates.Get(InitialBucket)
	require.Len(t, cands, 1)
	assert.Equal(t, "Count rows of t", cands[0].GeneratedQuestion())
	res, ok := cands[0].CachedResult()
	require.True(t, ok)
	assert.Equal(t, []string{"n"}, res.Columns)

	assert.Equal(t, "no candidate matched 1 rows", loaded.Errors["mock_sql_decision"])
	assert.Equal(t, []string{"3"}, loaded.Mock.ExpectedAnswer.Values[0])
	require.Len(t, loaded.Updates, 1)
}

// TestLoadState_Errors covers missing and corrupt files.
func TestLoadState_Errors(t *testing.T) {
	_, err := LoadState(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0644))
	_, err = LoadState(bad)
	assert.Error(t, err)
}
