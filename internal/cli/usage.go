package cli

import (
	"github.com/spf13/cobra"
)

const helpTemplate = `sqlverify - Select the best SQL candidate for a natural-language question

USAGE
  sqlverify [flags]
  sqlverify parse --shape <name> [file]

FLAGS
  LLM Provider & Models:
    --provider <anthropic|openai>          LLM provider (default: anthropic)
    --model <model>                        Model for generation stages (default: provider default)
    --judge-model <model>                  Model for judging stages (default: same as --model)
    --temperature <float>                  Sampling temperature (default: 0)
    --max-tokens <int>                     Max completion tokens per request (default: 4096)

  Dispatch:
    --max-llm-retry <int>                  Max retries per LLM request (default: 3)
    --concurrency <int>                    Concurrent LLM requests (default: 4)
    --samples <int>                        Samples requested per reverse question (default: 1)

  Embeddings:
    --embedding-provider <openai>          Embedding provider (default: same as --provider when supported)
    --embedding-model <model>              Embedding model (default: text-embedding-3-small)
    --embedding-cache-ttl <seconds>        Embedding cache TTL, 0 disables (default: 3600)

  Verifiers:
    --verifiers <list>                     Verifier chain in order (default: mock_db,reverse)
    --mock-db-driver <sqlite3|duckdb>      Mock database driver (default: sqlite3)
    --max-mock-rows <int>                  Max rows per generated mock table (default: 30)
    --similarity-mode <mode>               embedding, judge or question_test (default: embedding)
    --reverse-generator <name>             reverse or enrich_from_sql (default: reverse)
    --unit-tests <int>                     Max generated question tests (default: 5)
    --enrich-question                      Enrich the question before similarity scoring
    --no-dedupe                            Keep duplicate candidates before reverse questions

  Files:
    --task <path>                          Path to task.json (default: auto-detect)
    --execution-db <path>                  SQLite database used to execute candidates for clustering
    --templates <path>                     YAML prompt template overrides
    --output-dir <path>                    Directory for run snapshots (default: .sqlverify)
    --config <path>                        Path to additional config file

  Help & Version:
    -v, --verbose                          Verbose logging
    -h, --help                             Show this help text
    --version                              Show version, commit, build date

EXIT CODES
  0   Success              A winning candidate was selected
  1   Error                Invalid arguments, task file not found, misconfiguration
  2   NoWinner             The verifier chain selected no candidate
  130 Interrupted          SIGINT or SIGTERM received

EXAMPLES
  # Verify the candidates in ./task.json with both verifiers
  sqlverify

  # Only the reverse verifier, scored by an LLM judge
  sqlverify --verifiers reverse --similarity-mode judge

  # OpenAI models with a DuckDB mock database
  sqlverify --provider openai --model gpt-4o --mock-db-driver duckdb

  # Inspect how a raw completion parses
  sqlverify parse --shape similarity_judge response.txt
`

// SetCustomHelp configures the cobra command to use our custom help template.
func SetCustomHelp(cmd *cobra.Command) {
	cmd.SetHelpTemplate(helpTemplate)
}
