// Package config defines the sqlverify configuration model and default values.
//
// Configuration is assembled from multiple sources with a strict precedence
// chain: built-in defaults < global config file < project config file <
// explicit config file < CLI flag overrides.
package config

import "strings"

// WhitelistedVars lists every configuration variable name that may appear in
// config files. Variables not in this list are silently ignored during loading.
var WhitelistedVars = [24]string{
	"LLM_PROVIDER",
	"LLM_MODEL",
	"JUDGE_MODEL",
	"TEMPERATURE",
	"MAX_TOKENS",
	"MAX_LLM_RETRY",
	"LLM_CONCURRENCY",
	"SAMPLING_COUNT",
	"EMBEDDING_PROVIDER",
	"EMBEDDING_MODEL",
	"EMBEDDING_CACHE_TTL",
	"MOCK_DB_DRIVER",
	"MAX_MOCK_ROWS",
	"VERIFIERS",
	"SIMILARITY_MODE",
	"ENRICH_QUESTION",
	"DEDUPLICATE_CANDIDATES",
	"UNIT_TEST_COUNT",
	"REVERSE_GENERATOR",
	"TEMPLATES_FILE",
	"OUTPUT_DIR",
	"EXECUTION_DB",
	"TASK_FILE",
	"VERBOSE",
}

// Verifier names accepted in VERIFIERS.
const (
	VerifierMockDB  = "mock_db"
	VerifierReverse = "reverse"
)

// Config holds every configuration field for the sqlverify CLI.
type Config struct {
	// LLM provider and model selection.
	Provider    string
	Model       string
	JudgeModel  string
	Temperature float64
	MaxTokens   int

	// LLM dispatch.
	MaxLLMRetry    int
	LLMConcurrency int
	SamplingCount  int

	// Embeddings. EmbeddingCacheTTL is in seconds; 0 disables the cache.
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingCacheTTL int

	// Oracle verifier.
	MockDBDriver string
	MaxMockRows  int

	// Verifier chain and reverse verifier settings.
	Verifiers             string
	SimilarityMode        string
	EnrichQuestion        bool
	DeduplicateCandidates bool
	UnitTestCount         int
	ReverseGenerator      string

	// File paths.
	TemplatesFile string
	OutputDir     string
	ExecutionDB   string
	TaskFile      string

	// Runtime flags.
	Verbose bool

	// CLI-only flags (not loaded from config files).
	ConfigFile string
}

// NewDefaultConfig returns a Config populated with all built-in default values.
func NewDefaultConfig() *Config {
	return &Config{
		Provider:              "anthropic",
		MaxTokens:             4096,
		MaxLLMRetry:           3,
		LLMConcurrency:        4,
		SamplingCount:         1,
		EmbeddingCacheTTL:     3600,
		MockDBDriver:          "sqlite3",
		MaxMockRows:           30,
		Verifiers:             VerifierMockDB + "," + VerifierReverse,
		SimilarityMode:        "embedding",
		DeduplicateCandidates: true,
		UnitTestCount:         5,
		ReverseGenerator:      "reverse",
		OutputDir:             ".sqlverify",
	}
}

// VerifierChain splits Verifiers into trimmed, non-empty names in order.
func (c *Config) VerifierChain() []string {
	var out []string
	for _, v := range strings.Split(c.Verifiers, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
