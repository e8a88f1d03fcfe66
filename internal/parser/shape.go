package parser

import (
	"fmt"
	"sort"
)

// Shape names a closed set of response layouts.
type Shape string

const (
	ShapeWinner     Shape = "similarity_judge"
	ShapeUnitTests  Shape = "generate_unit_tests"
	ShapeTally      Shape = "evaluate"
	ShapeQuestion   Shape = "reverse_question"
	ShapeEnrichment Shape = "question_enrichment"
	ShapeMockDB     Shape = "mock_database"
	ShapeAnswer     Shape = "mock_answer"
	ShapeSQL        Shape = "sql"
	ShapeList       Shape = "list"
)

var shapes = map[Shape]func(string) (any, error){
	ShapeWinner:     func(s string) (any, error) { return ParseWinner(s, 0) },
	ShapeUnitTests:  func(s string) (any, error) { return ParseUnitTests(s) },
	ShapeTally:      func(s string) (any, error) { return ParseTally(s) },
	ShapeQuestion:   func(s string) (any, error) { return ParseQuestion(s) },
	ShapeEnrichment: func(s string) (any, error) { return ParseEnrichment(s) },
	ShapeMockDB:     func(s string) (any, error) { return ParseMockDatabase(s) },
	ShapeAnswer:     func(s string) (any, error) { return ParseAnswer(s) },
	ShapeSQL:        func(s string) (any, error) { return ParseSQL(s) },
	ShapeList:       func(s string) (any, error) { return ParseList(s) },
}

// Parse converts raw into the record for shape. The winner shape is parsed
// without an upper clamp; call ParseWinner directly when the candidate
// count is known.
func Parse(raw string, shape Shape) (any, error) {
	fn, ok := shapes[shape]
	if !ok {
		return nil, fmt.Errorf("unknown shape %q", shape)
	}
	return fn(raw)
}

// ShapeNames lists every registered shape in sorted order.
func ShapeNames() []string {
	names := make([]string, 0, len(shapes))
	for s := range shapes {
		names = append(names, string(s))
	}
	sort.Strings(names)
	return names
}
