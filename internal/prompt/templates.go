// Package prompt holds the prompt templates sent to the language model and
// renders them with per-request parameters.
package prompt

import _ "embed"

// Template names understood by the catalog.
const (
	MockDatabase          = "mock_database_generator"
	MockAnswer            = "mock_answer_generator"
	ReverseQuestion       = "generate_reverse_question"
	EnrichQuestion        = "enrich_question"
	EnrichQuestionFromSQL = "enrich_question_from_sql"
	SimilarityJudge       = "similarity_test"
	QuestionTests         = "generate_question_test"
	EvaluateQuestionTests = "evaluate_question_test"
)

// Template files embedded at compile time
var (
	//go:embed templates/system.txt
	SystemTemplate string

	//go:embed templates/mock-database.txt
	MockDatabaseTemplate string

	//go:embed templates/mock-answer.txt
	MockAnswerTemplate string

	//go:embed templates/reverse-question.txt
	ReverseQuestionTemplate string

	//go:embed templates/enrich-question.txt
	EnrichQuestionTemplate string

	//go:embed templates/enrich-question-from-sql.txt
	EnrichQuestionFromSQLTemplate string

	//go:embed templates/similarity-judge.txt
	SimilarityJudgeTemplate string

	//go:embed templates/question-tests.txt
	QuestionTestsTemplate string

	//go:embed templates/evaluate-question-tests.txt
	EvaluateQuestionTestsTemplate string
)

// defaults maps every template name to its embedded user prompt.
func defaults() map[string]Template {
	user := map[string]string{
		MockDatabase:          MockDatabaseTemplate,
		MockAnswer:            MockAnswerTemplate,
		ReverseQuestion:       ReverseQuestionTemplate,
		EnrichQuestion:        EnrichQuestionTemplate,
		EnrichQuestionFromSQL: EnrichQuestionFromSQLTemplate,
		SimilarityJudge:       SimilarityJudgeTemplate,
		QuestionTests:         QuestionTestsTemplate,
		EvaluateQuestionTests: EvaluateQuestionTestsTemplate,
	}
	out := make(map[string]Template, len(user))
	for name, text := range user {
		out[name] = Template{System: SystemTemplate, User: text}
	}
	return out
}
