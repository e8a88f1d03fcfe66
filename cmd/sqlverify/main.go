package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/CodexForgeBR/sqlverify/internal/cli"
	"github.com/CodexForgeBR/sqlverify/internal/config"
	"github.com/CodexForgeBR/sqlverify/internal/exitcode"
	"github.com/CodexForgeBR/sqlverify/internal/logging"
	"github.com/CodexForgeBR/sqlverify/internal/phases"
	sighandler "github.com/CodexForgeBR/sqlverify/internal/signal"
)

// version vars injected via ldflags at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cfg := config.NewDefaultConfig()

	rootCmd := &cobra.Command{
		Use:     "sqlverify",
		Short:   "Select the best SQL candidate for a natural-language question",
		Long:    "sqlverify runs a chain of verifiers over generated SQL candidates and prints the one it selects.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.ValidateFlags(cmd, cfg); err != nil {
				return err
			}
			return runOrchestrator(cmd, cfg)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.BindFlags(rootCmd, cfg)
	cli.SetCustomHelp(rootCmd)
	rootCmd.AddCommand(newParseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitcode.Error)
	}
}

// buildCLIOverrides creates a map of CLI flag overrides from the config.
// Uses cmd.Flags().Changed() to only include flags explicitly set by the user,
// ensuring config file values are not accidentally overridden by default values.
func buildCLIOverrides(cmd *cobra.Command, cfg *config.Config) map[string]string {
	overrides := make(map[string]string)

	stringFlags := map[string]struct {
		key string
		val string
	}{
		"provider":           {"LLM_PROVIDER", cfg.Provider},
		"model":              {"LLM_MODEL", cfg.Model},
		"judge-model":        {"JUDGE_MODEL", cfg.JudgeModel},
		"embedding-provider": {"EMBEDDING_PROVIDER", cfg.EmbeddingProvider},
		"embedding-model":    {"EMBEDDING_MODEL", cfg.EmbeddingModel},
		"verifiers":          {"VERIFIERS", cfg.Verifiers},
		"mock-db-driver":     {"MOCK_DB_DRIVER", cfg.MockDBDriver},
		"similarity-mode":    {"SIMILARITY_MODE", cfg.SimilarityMode},
		"reverse-generator":  {"REVERSE_GENERATOR", cfg.ReverseGenerator},
		"task":               {"TASK_FILE", cfg.TaskFile},
		"execution-db":       {"EXECUTION_DB", cfg.ExecutionDB},
		"templates":          {"TEMPLATES_FILE", cfg.TemplatesFile},
		"output-dir":         {"OUTPUT_DIR", cfg.OutputDir},
	}
	for flag, mapping := range stringFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = mapping.val
		}
	}

	intFlags := map[string]struct {
		key string
		val int
	}{
		"max-tokens":          {"MAX_TOKENS", cfg.MaxTokens},
		"max-llm-retry":       {"MAX_LLM_RETRY", cfg.MaxLLMRetry},
		"concurrency":         {"LLM_CONCURRENCY", cfg.LLMConcurrency},
		"samples":             {"SAMPLING_COUNT", cfg.SamplingCount},
		"embedding-cache-ttl": {"EMBEDDING_CACHE_TTL", cfg.EmbeddingCacheTTL},
		"max-mock-rows":       {"MAX_MOCK_ROWS", cfg.MaxMockRows},
		"unit-tests":          {"UNIT_TEST_COUNT", cfg.UnitTestCount},
	}
	for flag, mapping := range intFlags {
		if cmd.Flags().Changed(flag) {
			overrides[mapping.key] = fmt.Sprintf("%d", mapping.val)
		}
	}

	if cmd.Flags().Changed("temperature") {
		overrides["TEMPERATURE"] = fmt.Sprintf("%g", cfg.Temperature)
	}

	boolFlags := map[string]struct {
		key string
		val bool
	}{
		"verbose":         {"VERBOSE", cfg.Verbose},
		"enrich-question": {"ENRICH_QUESTION", cfg.EnrichQuestion},
	}
	for flag, mapping := range boolFlags {
		if cmd.Flags().Changed(flag) {
			if mapping.val {
				overrides[mapping.key] = "true"
			} else {
				overrides[mapping.key] = "false"
			}
		}
	}

	// Handle negation flags
	if cmd.Flags().Changed("no-dedupe") {
		overrides["DEDUPLICATE_CANDIDATES"] = "false"
	}

	return overrides
}

// configPaths returns the global and project config file locations.
func configPaths() (global, project string) {
	if home, err := os.UserHomeDir(); err == nil {
		global = filepath.Join(home, ".config", "sqlverify", "config")
	}
	return global, filepath.Join(".sqlverify", "config")
}

func runOrchestrator(cmd *cobra.Command, cfg *config.Config) error {
	globalConfigPath, projectConfigPath := configPaths()
	cliOverrides := buildCLIOverrides(cmd, cfg)

	finalCfg, err := config.LoadWithPrecedence(globalConfigPath, projectConfigPath, cfg.ConfigFile, cliOverrides)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	finalCfg.ConfigFile = cfg.ConfigFile
	cfg = finalCfg

	// Config files may set values the flags never saw.
	if err := cli.Validate(cfg); err != nil {
		return err
	}

	logging.SetVerbose(cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch := phases.NewOrchestrator(cfg)
	orch.Logger = logging.NewLogger(cfg.Verbose)

	h := sighandler.SetupSignalHandler(ctx, cancel, func(s os.Signal) {
		logging.Warn(fmt.Sprintf("Received %s, saving snapshot...", s))
	})

	exitCode := orch.Run(ctx)
	logging.Debug(fmt.Sprintf("Exit %d (%s)", exitCode, exitcode.Name(exitCode)))
	h.Stop()
	cancel()
	os.Exit(exitCode)
	return nil // unreachable
}
