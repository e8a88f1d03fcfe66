package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/CodexForgeBR/sqlverify/internal/sqlvalue"
)

// ErrNoExecutor is returned when a result is requested for a candidate
// that has none cached and no executor is available.
var ErrNoExecutor = errors.New("no executor available")

// Executor runs a query and returns its full result.
type Executor interface {
	Query(ctx context.Context, sql string) (*ExecutionResult, error)
}

// ExecutionResult is a fully materialized query result.
type ExecutionResult struct {
	Columns []string `json:"columns,omitempty"`
	Rows    [][]any  `json:"rows"`
}

// Signature is a stable text form of the rows, used to group candidates
// that produce the same result.
func (r *ExecutionResult) Signature() string {
	return sqlvalue.ReprRows(r.Rows)
}

// Candidate is one proposed SQL query. The same *Candidate may appear in
// several buckets; only the cached result and the generated question are
// ever set after construction.
type Candidate struct {
	SQL string

	mu        sync.Mutex
	result    *ExecutionResult
	resultErr error
	executed  bool
	question  string
}

// NewCandidate wraps sql.
func NewCandidate(sql string) *Candidate {
	return &Candidate{SQL: sql}
}

// NewCandidates wraps each query in order.
func NewCandidates(sqls ...string) []*Candidate {
	out := make([]*Candidate, len(sqls))
	for i, s := range sqls {
		out[i] = NewCandidate(s)
	}
	return out
}

// ExecutionResult returns the memoized result, running the query through
// exec on first use. Both outcomes, success or error, are cached.
func (c *Candidate) ExecutionResult(ctx context.Context, exec Executor) (*ExecutionResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.executed {
		return c.result, c.resultErr
	}
	if exec == nil {
		return nil, ErrNoExecutor
	}
	c.result, c.resultErr = exec.Query(ctx, c.SQL)
	c.executed = true
	return c.result, c.resultErr
}

// SetExecutionResult caches a precomputed result.
func (c *Candidate) SetExecutionResult(r *ExecutionResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.result, c.resultErr, c.executed = r, nil, true
}

// CachedResult returns the cached result without executing anything.
func (c *Candidate) CachedResult() (*ExecutionResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.executed && c.resultErr == nil && c.result != nil
}

// GeneratedQuestion returns the reverse-generated question, if any.
func (c *Candidate) GeneratedQuestion() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.question
}

// SetGeneratedQuestion records the reverse-generated question.
func (c *Candidate) SetGeneratedQuestion(q string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.question = q
}

type candidateJSON struct {
	SQL               string           `json:"sql"`
	ExecutionResult   *ExecutionResult `json:"execution_result,omitempty"`
	ExecutionError    string           `json:"execution_error,omitempty"`
	GeneratedQuestion string           `json:"generated_question,omitempty"`
}

func (c *Candidate) MarshalJSON() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := candidateJSON{SQL: c.SQL, ExecutionResult: c.result, GeneratedQuestion: c.question}
	if c.resultErr != nil {
		out.ExecutionError = c.resultErr.Error()
	}
	return json.Marshal(out)
}

func (c *Candidate) UnmarshalJSON(data []byte) error {
	var in candidateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SQL = in.SQL
	c.question = in.GeneratedQuestion
	c.result = in.ExecutionResult
	c.executed = in.ExecutionResult != nil
	if in.ExecutionError != "" {
		c.resultErr = errors.New(in.ExecutionError)
		c.executed = true
	}
	return nil
}
