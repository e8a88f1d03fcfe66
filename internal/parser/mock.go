package parser

import (
	"fmt"
	"strings"

	"github.com/CodexForgeBR/sqlverify/internal/sqlvalue"
)

// MockDatabase is the statement set for an ephemeral database.
type MockDatabase struct {
	// Statements lists every generated statement in response order.
	Statements []string `json:"statements"`

	// SatisfyingRowCounts maps table name to the number of rows meant to
	// satisfy the question. Advisory only.
	SatisfyingRowCounts map[string]int `json:"satisfying_row_counts,omitempty"`

	// GeneratedTables echoes an optional table -> rows preview.
	GeneratedTables map[string]any `json:"generated_tables,omitempty"`
}

// AnswerTable is the expected result for the mock database.
type AnswerTable struct {
	Attributes []string   `json:"attributes"`
	Values     [][]string `json:"values"`
}

// decodeStructured decodes a JSON or literal body. A python fence tries the
// literal form first; everything else tries JSON first.
func decodeStructured(shape Shape, body, lang string) (any, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, newError(shape, ErrMissingField, "empty body", nil)
	}
	if lang == "python" {
		v, err := ParseLiteral(body)
		if err == nil {
			return v, nil
		}
		if v, jerr := decodeJSON(body); jerr == nil {
			return v, nil
		}
		return nil, newError(shape, ErrMalformedLiteral, "", err)
	}
	v, err := decodeJSON(body)
	if err == nil {
		return v, nil
	}
	if v, lerr := ParseLiteral(body); lerr == nil {
		return v, nil
	}
	return nil, newError(shape, ErrMalformedJSON, "", err)
}

// ParseMockDatabase accepts {"ddl": [...], "inserts": [...],
// "satisfying_row_counts": {...}}, the older {"sql_statements": [...],
// "satisfying_rows": {...}} layout, or a bare list of statements.
func ParseMockDatabase(text string) (*MockDatabase, error) {
	body, lang := structuredBody(text)
	v, err := decodeStructured(ShapeMockDB, body, lang)
	if err != nil {
		return nil, err
	}

	db := &MockDatabase{}
	switch x := v.(type) {
	case []any:
		db.Statements = stringItems(x)
	case map[string]any:
		ddl, _ := x["ddl"].([]any)
		inserts, _ := x["inserts"].([]any)
		db.Statements = append(stringItems(ddl), stringItems(inserts)...)
		if len(db.Statements) == 0 {
			stmts, _ := x["sql_statements"].([]any)
			db.Statements = stringItems(stmts)
		}
		counts, ok := x["satisfying_row_counts"].(map[string]any)
		if !ok {
			counts, _ = x["satisfying_rows"].(map[string]any)
		}
		db.SatisfyingRowCounts = intValues(counts)
		if tables, ok := x["generated_tables"].(map[string]any); ok {
			db.GeneratedTables = tables
		}
	default:
		return nil, newError(ShapeMockDB, ErrMalformedJSON, fmt.Sprintf("expected object or list, got %T", v), nil)
	}

	if len(db.Statements) == 0 {
		return nil, newError(ShapeMockDB, ErrMissingField, "no statements", nil)
	}
	return db, nil
}

// ParseAnswer reads {"attributes": [...], "values": [[...], ...]}. Values
// are stringified element-wise. A missing attributes key is ErrMissingField;
// an empty list is returned as-is.
func ParseAnswer(text string) (*AnswerTable, error) {
	body, lang := structuredBody(text)
	v, err := decodeStructured(ShapeAnswer, body, lang)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, newError(ShapeAnswer, ErrMalformedJSON, fmt.Sprintf("expected object, got %T", v), nil)
	}
	rawAttrs, ok := m["attributes"].([]any)
	if !ok {
		return nil, newError(ShapeAnswer, ErrMissingField, "attributes", nil)
	}

	ans := &AnswerTable{Attributes: make([]string, 0, len(rawAttrs)), Values: [][]string{}}
	for _, a := range rawAttrs {
		ans.Attributes = append(ans.Attributes, sqlvalue.String(a))
	}
	rows, _ := m["values"].([]any)
	for _, r := range rows {
		switch row := r.(type) {
		case []any:
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i] = sqlvalue.String(c)
			}
			ans.Values = append(ans.Values, cells)
		default:
			// A single-column answer may list scalars.
			ans.Values = append(ans.Values, []string{sqlvalue.String(row)})
		}
	}
	return ans, nil
}

func stringItems(items []any) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func intValues(m map[string]any) map[string]int {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case int64:
			out[k] = int(x)
		case float64:
			out[k] = int(x)
		}
	}
	return out
}
