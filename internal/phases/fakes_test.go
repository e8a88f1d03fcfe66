package phases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

const testSchema = "CREATE TABLE users (id INTEGER, name TEXT, status INTEGER)"

// fakeInvoker answers each prompt with the responder registered for its
// template. A responder returning "" yields a failed (nil) entry.
type fakeInvoker struct {
	mu        sync.Mutex
	responses map[string]func(params map[string]string) string
	requests  []ai.Request
}

func newFakeInvoker() *fakeInvoker {
	return &fakeInvoker{responses: make(map[string]func(map[string]string) string)}
}

func (f *fakeInvoker) on(template string, fn func(map[string]string) string) *fakeInvoker {
	f.responses[template] = fn
	return f
}

func (f *fakeInvoker) Call(ctx context.Context, req ai.Request) [][]string {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	fn := f.responses[req.Template]
	f.mu.Unlock()

	out := make([][]string, len(req.Params))
	if fn == nil || ctx.Err() != nil {
		return out
	}
	for i, p := range req.Params {
		if s := fn(p); s != "" {
			out[i] = []string{s}
		}
	}
	return out
}

// calls counts requests sent for template.
func (f *fakeInvoker) calls(template string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Template == template {
			n++
		}
	}
	return n
}

// lastParams returns the first parameter map of the last request for template.
func (f *fakeInvoker) lastParams(template string) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.requests) - 1; i >= 0; i-- {
		if f.requests[i].Template == template && len(f.requests[i].Params) > 0 {
			return f.requests[i].Params[0]
		}
	}
	return nil
}

func fixed(s string) func(map[string]string) string {
	return func(map[string]string) string { return s }
}

// fakeEmbedder maps texts to fixed vectors.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := f.vectors[t]
		if !ok {
			return nil, errors.New("no vector for " + t)
		}
		out[i] = v
	}
	return out, nil
}

// newTestState builds a run state with sqls as the initial bucket.
func newTestState(t *testing.T, sqls ...string) *state.SystemState {
	t.Helper()
	st := state.New("test", state.Task{
		Question: "Which users are active?",
		Evidence: "active means status = 1",
	}, state.StaticSchema{Complete: testSchema})
	require.NoError(t, st.Candidates.Append(state.InitialBucket, state.NewCandidates(sqls...)))
	return st
}

// withQuestions appends an aligned question bucket.
func withQuestions(t *testing.T, st *state.SystemState, questions ...string) {
	t.Helper()
	require.NoError(t, st.Questions.Append(st.Questions.NextKey(ComponentReverseQuestion), questions))
}

func latestSQL(t *testing.T, st *state.SystemState) (string, []string) {
	t.Helper()
	key, cands, ok := st.Candidates.Latest()
	require.True(t, ok)
	sqls := make([]string, len(cands))
	for i, c := range cands {
		sqls[i] = c.SQL
	}
	return key, sqls
}
