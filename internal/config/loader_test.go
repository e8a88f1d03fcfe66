package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodexForgeBR/sqlverify/internal/config"
)

// writeFile is a test helper that creates a temporary file with the given content.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

// ---------------------------------------------------------------------------
// LoadFile tests
// ---------------------------------------------------------------------------

func TestLoadFileBasicKeyValue(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "LLM_PROVIDER=openai\nLLM_MODEL=gpt-4o\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "openai", m["LLM_PROVIDER"])
	assert.Equal(t, "gpt-4o", m["LLM_MODEL"])
}

func TestLoadFileSkipsCommentsAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "# comment\n\nLLM_PROVIDER=anthropic\nnot a pair\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.Len(t, m, 1)
	assert.Equal(t, "anthropic", m["LLM_PROVIDER"])
}

func TestLoadFileTrimsWhitespace(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "  VERIFIERS  =  reverse  \n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "reverse", m["VERIFIERS"])
}

func TestLoadFileIgnoresUnknownKeys(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "AI_CLI=codex\nMAX_MOCK_ROWS=10\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.NotContains(t, m, "AI_CLI")
	assert.Equal(t, "10", m["MAX_MOCK_ROWS"])
}

func TestLoadFileSplitsOnFirstEquals(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config", "EXECUTION_DB=file:db.sqlite?mode=ro\n")

	m, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "file:db.sqlite?mode=ro", m["EXECUTION_DB"])
}

func TestLoadFileMissing(t *testing.T) {
	_, err := config.LoadFile(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ---------------------------------------------------------------------------
// LoadWithPrecedence tests
// ---------------------------------------------------------------------------

func TestLoadWithPrecedenceDefaultsOnly(t *testing.T) {
	cfg, err := config.LoadWithPrecedence("", "", "", nil)
	require.NoError(t, err)
	assert.Equal(t, config.NewDefaultConfig(), cfg)
}

func TestLoadWithPrecedenceOrder(t *testing.T) {
	dir := t.TempDir()
	global := writeFile(t, dir, "global", "LLM_MODEL=global\nJUDGE_MODEL=global\nMAX_MOCK_ROWS=10\nSAMPLING_COUNT=2\n")
	project := writeFile(t, dir, "project", "LLM_MODEL=project\nJUDGE_MODEL=project\nMAX_MOCK_ROWS=20\n")
	explicit := writeFile(t, dir, "explicit", "LLM_MODEL=explicit\nJUDGE_MODEL=explicit\n")

	cfg, err := config.LoadWithPrecedence(global, project, explicit, map[string]string{"LLM_MODEL": "cli"})
	require.NoError(t, err)

	assert.Equal(t, "cli", cfg.Model)
	assert.Equal(t, "explicit", cfg.JudgeModel)
	assert.Equal(t, 20, cfg.MaxMockRows)
	assert.Equal(t, 2, cfg.SamplingCount)
}

func TestLoadWithPrecedenceMissingOptionalFiles(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.LoadWithPrecedence(filepath.Join(dir, "g"), filepath.Join(dir, "p"), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", cfg.Provider)
}

func TestLoadWithPrecedenceMissingExplicitFile(t *testing.T) {
	_, err := config.LoadWithPrecedence("", "", filepath.Join(t.TempDir(), "missing"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "explicit config")
}

// ---------------------------------------------------------------------------
// ApplyMapToConfig tests
// ---------------------------------------------------------------------------

func TestApplyMapToConfigAllKeys(t *testing.T) {
	cfg := config.NewDefaultConfig()
	config.ApplyMapToConfig(cfg, map[string]string{
		"LLM_PROVIDER":           "openai",
		"LLM_MODEL":              "gpt-4o",
		"JUDGE_MODEL":            "gpt-4o-mini",
		"TEMPERATURE":            "0.7",
		"MAX_TOKENS":             "2048",
		"MAX_LLM_RETRY":          "5",
		"LLM_CONCURRENCY":        "8",
		"SAMPLING_COUNT":         "3",
		"EMBEDDING_PROVIDER":     "openai",
		"EMBEDDING_MODEL":        "text-embedding-3-large",
		"EMBEDDING_CACHE_TTL":    "0",
		"MOCK_DB_DRIVER":         "duckdb",
		"MAX_MOCK_ROWS":          "15",
		"VERIFIERS":              "reverse",
		"SIMILARITY_MODE":        "question_test",
		"ENRICH_QUESTION":        "yes",
		"DEDUPLICATE_CANDIDATES": "false",
		"UNIT_TEST_COUNT":        "7",
		"REVERSE_GENERATOR":      "enrich_from_sql",
		"TEMPLATES_FILE":         "prompts.yaml",
		"OUTPUT_DIR":             "out",
		"EXECUTION_DB":           "db.sqlite",
		"TASK_FILE":              "task.json",
		"VERBOSE":                "1",
	})

	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.Equal(t, "gpt-4o-mini", cfg.JudgeModel)
	assert.InDelta(t, 0.7, cfg.Temperature, 1e-9)
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.Equal(t, 5, cfg.MaxLLMRetry)
	assert.Equal(t, 8, cfg.LLMConcurrency)
	assert.Equal(t, 3, cfg.SamplingCount)
	assert.Equal(t, "openai", cfg.EmbeddingProvider)
	assert.Equal(t, "text-embedding-3-large", cfg.EmbeddingModel)
	assert.Equal(t, 0, cfg.EmbeddingCacheTTL)
	assert.Equal(t, "duckdb", cfg.MockDBDriver)
	assert.Equal(t, 15, cfg.MaxMockRows)
	assert.Equal(t, "reverse", cfg.Verifiers)
	assert.Equal(t, "question_test", cfg.SimilarityMode)
	assert.True(t, cfg.EnrichQuestion)
	assert.False(t, cfg.DeduplicateCandidates)
	assert.Equal(t, 7, cfg.UnitTestCount)
	assert.Equal(t, "enrich_from_sql", cfg.ReverseGenerator)
	assert.Equal(t, "prompts.yaml", cfg.TemplatesFile)
	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, "db.sqlite", cfg.ExecutionDB)
	assert.Equal(t, "task.json", cfg.TaskFile)
	assert.True(t, cfg.Verbose)
}

func TestApplyMapToConfigBadNumbersKeepPrevious(t *testing.T) {
	cfg := config.NewDefaultConfig()
	config.ApplyMapToConfig(cfg, map[string]string{
		"MAX_MOCK_ROWS": "many",
		"TEMPERATURE":   "hot",
	})
	assert.Equal(t, 30, cfg.MaxMockRows)
	assert.Zero(t, cfg.Temperature)
}

func TestApplyMapToConfigBooleans(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"0", false},
		{"", false},
		{"on", false},
	}
	for _, tc := range tests {
		t.Run(tc.value, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			config.ApplyMapToConfig(cfg, map[string]string{"ENRICH_QUESTION": tc.value})
			assert.Equal(t, tc.want, cfg.EnrichQuestion)
		})
	}
}
