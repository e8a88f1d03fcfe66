// Package task loads a verification task: the question record, the
// generator's candidate queries and the schema text used in prompts.
//
// A task file is JSON:
//
//	{
//	  "question_id": "42",
//	  "question": "How many schools are in Alameda?",
//	  "evidence": "Alameda refers to county = 'Alameda'",
//	  "db_id": "california_schools",
//	  "sql": "SELECT ...",
//	  "schema": "CREATE TABLE schools (...)",
//	  "schema_with_descriptions": "...",
//	  "candidates": [
//	    "SELECT COUNT(*) FROM schools WHERE county = 'Alameda'",
//	    {"sql": "SELECT ...", "execution_result": {"columns": ["n"], "rows": [[12]]}},
//	    "Reasoning...\n```sql\nSELECT ...\n```"
//	  ]
//	}
//
// A string candidate may be a raw generator completion; the query is taken
// from it the same way generator output is parsed.
package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/parser"
	"github.com/CodexForgeBR/sqlverify/internal/state"
)

// File is a loaded task.
type File struct {
	Path       string
	Hash       string
	Task       state.Task
	Schema     state.StaticSchema
	Candidates []*state.Candidate
}

type fileJSON struct {
	state.Task
	Schema                 string            `json:"schema"`
	SchemaWithDescriptions string            `json:"schema_with_descriptions"`
	Candidates             []json.RawMessage `json:"candidates"`
}

type candidateJSON struct {
	SQL             string `json:"sql"`
	ExecutionResult *struct {
		Columns []string `json:"columns"`
		Rows    [][]any  `json:"rows"`
	} `json:"execution_result"`
}

// Load reads and parses the task file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("task file %s: %w", path, err)
	}
	f.Path = path
	f.Hash = hashBytes(data)
	return f, nil
}

// Parse decodes a task document. The question is required; candidates that
// carry no query are skipped, and a task without any usable candidate is an
// error.
func Parse(data []byte) (*File, error) {
	var in fileJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	if strings.TrimSpace(in.Question) == "" {
		return nil, fmt.Errorf("task has no question")
	}

	f := &File{
		Task: in.Task,
		Schema: state.StaticSchema{
			Complete:         in.Schema,
			WithDescriptions: in.SchemaWithDescriptions,
		},
	}
	for i, raw := range in.Candidates {
		c, err := decodeCandidate(raw)
		if err != nil {
			return nil, fmt.Errorf("candidate %d: %w", i+1, err)
		}
		if c != nil {
			f.Candidates = append(f.Candidates, c)
		}
	}
	if len(f.Candidates) == 0 {
		return nil, fmt.Errorf("task has no candidates")
	}
	return f, nil
}

func decodeCandidate(raw json.RawMessage) (*state.Candidate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		sql, err := parser.ParseSQL(text)
		if err != nil {
			return nil, nil
		}
		return state.NewCandidate(sql), nil
	}

	var in candidateJSON
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&in); err != nil {
		return nil, err
	}
	sql, err := parser.ParseSQL(in.SQL)
	if err != nil {
		return nil, nil
	}
	c := state.NewCandidate(sql)
	if in.ExecutionResult != nil {
		c.SetExecutionResult(&state.ExecutionResult{
			Columns: in.ExecutionResult.Columns,
			Rows:    normalizeRows(in.ExecutionResult.Rows),
		})
	}
	return c, nil
}

// normalizeRows turns JSON numbers into int64 when integral, else float64,
// so precomputed results compare equal to results read from a database.
func normalizeRows(rows [][]any) [][]any {
	for _, row := range rows {
		for i, v := range row {
			n, ok := v.(json.Number)
			if !ok {
				continue
			}
			if iv, err := n.Int64(); err == nil {
				row[i] = iv
			} else if fv, err := n.Float64(); err == nil {
				row[i] = fv
			} else {
				row[i] = n.String()
			}
		}
	}
	if rows == nil {
		return [][]any{}
	}
	return rows
}

// NewState creates the run state for f with the candidates stored under
// state.InitialBucket.
func (f *File) NewState(runID string) (*state.SystemState, error) {
	st := state.New(runID, f.Task, f.Schema)
	if err := st.Candidates.Append(state.InitialBucket, f.Candidates); err != nil {
		return nil, err
	}
	return st, nil
}
