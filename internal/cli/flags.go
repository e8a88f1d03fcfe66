// Package cli provides flag binding and validation for the sqlverify CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/sqlverify/internal/config"
	"github.com/CodexForgeBR/sqlverify/internal/mockdb"
	"github.com/CodexForgeBR/sqlverify/internal/model"
	"github.com/CodexForgeBR/sqlverify/internal/phases"
)

// BindFlags registers the verify flags on the given cobra command.
// The flags directly modify fields in the provided config pointer.
// Call ValidateFlags after parsing to check flag combinations.
func BindFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	// LLM Provider & Models
	flags.StringVar(&cfg.Provider, "provider", cfg.Provider, "LLM provider: anthropic or openai")
	flags.StringVar(&cfg.Model, "model", cfg.Model, "Model for generation stages")
	flags.StringVar(&cfg.JudgeModel, "judge-model", cfg.JudgeModel, "Model for judging stages (default: same as --model)")
	flags.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "Sampling temperature")
	flags.IntVar(&cfg.MaxTokens, "max-tokens", cfg.MaxTokens, "Max completion tokens per request")

	// Dispatch
	flags.IntVar(&cfg.MaxLLMRetry, "max-llm-retry", cfg.MaxLLMRetry, "Max retries per LLM request")
	flags.IntVar(&cfg.LLMConcurrency, "concurrency", cfg.LLMConcurrency, "Concurrent LLM requests")
	flags.IntVar(&cfg.SamplingCount, "samples", cfg.SamplingCount, "Samples requested per reverse question")

	// Embeddings
	flags.StringVar(&cfg.EmbeddingProvider, "embedding-provider", cfg.EmbeddingProvider, "Embedding provider (default: same as --provider when supported)")
	flags.StringVar(&cfg.EmbeddingModel, "embedding-model", cfg.EmbeddingModel, "Embedding model")
	flags.IntVar(&cfg.EmbeddingCacheTTL, "embedding-cache-ttl", cfg.EmbeddingCacheTTL, "Embedding cache TTL in seconds, 0 disables")

	// Verifiers
	flags.StringVar(&cfg.Verifiers, "verifiers", cfg.Verifiers, "Comma-separated verifier chain: mock_db, reverse")
	flags.StringVar(&cfg.MockDBDriver, "mock-db-driver", cfg.MockDBDriver, "Mock database driver: sqlite3 or duckdb")
	flags.IntVar(&cfg.MaxMockRows, "max-mock-rows", cfg.MaxMockRows, "Max rows per generated mock table")
	flags.StringVar(&cfg.SimilarityMode, "similarity-mode", cfg.SimilarityMode, "embedding, judge or question_test")
	flags.StringVar(&cfg.ReverseGenerator, "reverse-generator", cfg.ReverseGenerator, "reverse or enrich_from_sql")
	flags.IntVar(&cfg.UnitTestCount, "unit-tests", cfg.UnitTestCount, "Max generated question tests")
	flags.BoolVar(&cfg.EnrichQuestion, "enrich-question", cfg.EnrichQuestion, "Enrich the question before similarity scoring")

	// Negation flags need special handling via Changed detection
	var noDedupe bool
	flags.BoolVar(&noDedupe, "no-dedupe", false, "Keep duplicate candidates before reverse questions")

	// Files
	flags.StringVar(&cfg.TaskFile, "task", cfg.TaskFile, "Path to task.json (default: auto-detect)")
	flags.StringVar(&cfg.ExecutionDB, "execution-db", cfg.ExecutionDB, "SQLite database used to execute candidates for clustering")
	flags.StringVar(&cfg.TemplatesFile, "templates", cfg.TemplatesFile, "YAML prompt template overrides")
	flags.StringVar(&cfg.OutputDir, "output-dir", cfg.OutputDir, "Directory for run snapshots")
	flags.StringVar(&cfg.ConfigFile, "config", "", "Path to additional config file")

	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose logging")
}

// ValidateFlags checks for invalid flag combinations after parsing.
// Must be called after cmd.Execute() or cmd.ParseFlags().
func ValidateFlags(cmd *cobra.Command, cfg *config.Config) error {
	// --config must exist if provided
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			return fmt.Errorf("--config: %w", err)
		}
	}

	if cmd.Flags().Changed("no-dedupe") {
		cfg.DeduplicateCandidates = false
	}

	return Validate(cfg)
}

// Validate checks a fully merged configuration.
func Validate(cfg *config.Config) error {
	if !model.ValidProvider(cfg.Provider) {
		return fmt.Errorf("provider must be 'anthropic' or 'openai', got: %s", cfg.Provider)
	}
	if err := model.ValidateModelProvider(cfg.Provider, cfg.Model, "model"); err != nil {
		return err
	}
	if err := model.ValidateModelProvider(cfg.Provider, cfg.JudgeModel, "judge-model"); err != nil {
		return err
	}
	if cfg.EmbeddingProvider != "" && cfg.EmbeddingProvider != model.OpenAI {
		return fmt.Errorf("embedding provider must be 'openai', got: %s", cfg.EmbeddingProvider)
	}
	if !mockdb.ValidDriver(cfg.MockDBDriver) {
		return fmt.Errorf("mock-db-driver must be 'sqlite3' or 'duckdb', got: %s", cfg.MockDBDriver)
	}

	chain := cfg.VerifierChain()
	if len(chain) == 0 {
		return fmt.Errorf("verifiers: at least one verifier is required")
	}
	for _, v := range chain {
		if v != config.VerifierMockDB && v != config.VerifierReverse {
			return fmt.Errorf("verifiers: unknown verifier %q", v)
		}
	}

	switch cfg.SimilarityMode {
	case phases.ModeEmbedding, phases.ModeJudge, phases.ModeQuestionTest:
	default:
		return fmt.Errorf("similarity-mode must be embedding, judge or question_test, got: %s", cfg.SimilarityMode)
	}
	switch cfg.ReverseGenerator {
	case phases.GeneratorReverse, phases.GeneratorEnrichFromSQL:
	default:
		return fmt.Errorf("reverse-generator must be reverse or enrich_from_sql, got: %s", cfg.ReverseGenerator)
	}

	positive := []struct {
		name string
		val  int
	}{
		{"max-tokens", cfg.MaxTokens},
		{"concurrency", cfg.LLMConcurrency},
		{"samples", cfg.SamplingCount},
		{"max-mock-rows", cfg.MaxMockRows},
		{"unit-tests", cfg.UnitTestCount},
	}
	for _, p := range positive {
		if p.val <= 0 {
			return fmt.Errorf("--%s must be positive, got: %d", p.name, p.val)
		}
	}
	if cfg.MaxLLMRetry < 0 {
		return fmt.Errorf("--max-llm-retry must not be negative, got: %d", cfg.MaxLLMRetry)
	}
	if cfg.EmbeddingCacheTTL < 0 {
		return fmt.Errorf("--embedding-cache-ttl must not be negative, got: %d", cfg.EmbeddingCacheTTL)
	}
	return nil
}
