// Package state holds the shared, versioned state threaded through the
// verification stages of one run.
package state

import (
	"fmt"
	"time"

	"github.com/CodexForgeBR/sqlverify/internal/parser"
)

// SchemaVersion is written into every snapshot.
const SchemaVersion = 1

// InitialBucket is the key under which the generator's candidates are
// stored when a run starts.
const InitialBucket = "generate_candidate_1"

// Task is the immutable per-run question record.
type Task struct {
	QuestionID     string `json:"question_id,omitempty"`
	Question       string `json:"question"`
	Evidence       string `json:"evidence,omitempty"`
	DBID           string `json:"db_id,omitempty"`
	GroundTruthSQL string `json:"sql,omitempty"`
}

// SchemaMode selects how much detail the schema text carries.
type SchemaMode string

const (
	SchemaComplete         SchemaMode = "complete"
	SchemaWithDescriptions SchemaMode = "with_descriptions"
)

// SchemaProvider renders schema text for prompts. The text is passed to
// the language model verbatim.
type SchemaProvider interface {
	SchemaString(mode SchemaMode) string
}

// StaticSchema serves fixed schema strings.
type StaticSchema struct {
	Complete         string
	WithDescriptions string
}

// SchemaString returns the text for mode, falling back to the complete
// schema when no described variant exists.
func (s StaticSchema) SchemaString(mode SchemaMode) string {
	if mode == SchemaWithDescriptions && s.WithDescriptions != "" {
		return s.WithDescriptions
	}
	return s.Complete
}

// MockArtifacts are produced by the mock database generator and consumed
// by the decision stage. The database itself never outlives the oracle.
type MockArtifacts struct {
	DBPath              string              `json:"mock_db_path"`
	Driver              string              `json:"mock_db_driver,omitempty"`
	Statements          []string            `json:"mock_db_statements,omitempty"`
	ExpectedAnswer      *parser.AnswerTable `json:"mock_expected_answer,omitempty"`
	SatisfyingRowCounts map[string]int      `json:"satisfying_row_counts,omitempty"`
	GeneratedTables     map[string]any      `json:"generated_tables,omitempty"`
}

// StageUpdate is a diagnostic record emitted after each stage.
type StageUpdate struct {
	Component string         `json:"component"`
	At        string         `json:"at"`
	Fields    map[string]any `json:"fields"`
}

// SystemState is the mutable state of one run.
type SystemState struct {
	SchemaVersion int    `json:"schema_version"`
	RunID         string `json:"run_id"`
	StartedAt     string `json:"started_at"`
	Task          Task   `json:"task"`

	Candidates *Store[*Candidate] `json:"candidates"`
	Questions  *Store[string]     `json:"reverse_questions"`

	EnrichedQuestion string              `json:"enriched_question,omitempty"`
	Mock             MockArtifacts       `json:"mock"`
	UnitTests        map[string][]string `json:"unit_tests,omitempty"`
	Errors           map[string]string   `json:"errors"`
	Updates          []StageUpdate       `json:"updates,omitempty"`

	// Schema renders schema text for prompts.
	Schema SchemaProvider `json:"-"`

	// Executor computes candidate execution results on demand. May be nil
	// when results were supplied with the task.
	Executor Executor `json:"-"`
}

// New creates the state for a run over task.
func New(runID string, task Task, schema SchemaProvider) *SystemState {
	return &SystemState{
		SchemaVersion: SchemaVersion,
		RunID:         runID,
		StartedAt:     time.Now().UTC().Format(time.RFC3339),
		Task:          task,
		Candidates:    NewStore[*Candidate](),
		Questions:     NewStore[string](),
		UnitTests:     make(map[string][]string),
		Errors:        make(map[string]string),
		Schema:        schema,
	}
}

// SchemaString renders schema text, or "" when no provider is set.
func (s *SystemState) SchemaString(mode SchemaMode) string {
	if s.Schema == nil {
		return ""
	}
	return s.Schema.SchemaString(mode)
}

// RecordError stores the last diagnostic message for component.
func (s *SystemState) RecordError(component string, format string, args ...any) {
	if s.Errors == nil {
		s.Errors = make(map[string]string)
	}
	s.Errors[component] = fmt.Sprintf(format, args...)
}

// RecordUpdate appends a diagnostic record for component.
func (s *SystemState) RecordUpdate(component string, fields map[string]any) {
	s.Updates = append(s.Updates, StageUpdate{
		Component: component,
		At:        time.Now().UTC().Format(time.RFC3339),
		Fields:    fields,
	})
}

// AnchorQuestion is the text reverse-generated questions are compared
// against: the enriched question when present, else the raw question.
func (s *SystemState) AnchorQuestion() string {
	if s.EnrichedQuestion != "" {
		return s.EnrichedQuestion
	}
	return s.Task.Question
}

// FinalSQL returns the first candidate of the latest bucket.
func (s *SystemState) FinalSQL() (string, bool) {
	_, cands, ok := s.Candidates.Latest()
	if !ok || len(cands) == 0 {
		return "", false
	}
	return cands[0].SQL, true
}
