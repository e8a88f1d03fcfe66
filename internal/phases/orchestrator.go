package phases

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/CodexForgeBR/sqlverify/internal/ai"
	"github.com/CodexForgeBR/sqlverify/internal/banner"
	"github.com/CodexForgeBR/sqlverify/internal/config"
	"github.com/CodexForgeBR/sqlverify/internal/exitcode"
	"github.com/CodexForgeBR/sqlverify/internal/logging"
	"github.com/CodexForgeBR/sqlverify/internal/model"
	"github.com/CodexForgeBR/sqlverify/internal/prompt"
	"github.com/CodexForgeBR/sqlverify/internal/state"
	"github.com/CodexForgeBR/sqlverify/internal/task"
)

// CredentialChecker reports, per provider, whether credentials are present.
type CredentialChecker func(providers ...string) map[string]bool

// componentOrder lists stage components in pipeline order for summaries.
var componentOrder = []string{
	ComponentMockDatabase,
	ComponentMockAnswer,
	ComponentMockDecision,
	ComponentDeduplicate,
	ComponentReverseQuestion,
	ComponentEnrichQuestion,
	ComponentSimilarity,
	ComponentQuestionTest,
}

// Orchestrator loads a task, runs the configured verifier chain and reports
// the selected candidate.
type Orchestrator struct {
	Config *config.Config

	// Invoker, Embedder and Executor are built from Config when nil.
	Invoker           Invoker
	Embedder          ai.Embedder
	Executor          state.Executor
	CredentialChecker CredentialChecker
	Logger            *slog.Logger

	// Console receives banners (default stderr); Output receives the
	// selected SQL (default stdout).
	Console io.Writer
	Output  io.Writer

	// RunID defaults to a random UUID.
	RunID string

	// State and SnapshotPath are set once Run has loaded the task and
	// written the snapshot.
	State        *state.SystemState
	SnapshotPath string

	task          *task.File
	model         string
	judgeModel    string
	embedProvider string
	embedModel    string
	stage         string
	closers       []func()
	startTime     time.Time
}

// NewOrchestrator creates a new orchestrator with the given config.
func NewOrchestrator(cfg *config.Config) *Orchestrator {
	return &Orchestrator{Config: cfg}
}

// Run executes the verification workflow and returns an exit code.
func (o *Orchestrator) Run(ctx context.Context) int {
	o.startTime = time.Now()
	defer o.close()

	// Phase 1: Init
	if code := o.phaseInit(); code >= 0 {
		return code
	}

	// Phase 2: Credential checks
	if code := o.phaseCredentialChecks(); code >= 0 {
		return code
	}

	// Phase 3: Services
	if code := o.phaseServices(ctx); code >= 0 {
		return code
	}

	// Phase 4: Banner
	o.phaseBanner()

	// Phase 5: Verifier chain
	o.phaseVerifiers(ctx)

	// Phase 6: Snapshot
	o.phaseSnapshot()

	// Phase 7: Summary
	return o.phaseSummary(ctx)
}

func (o *Orchestrator) phaseInit() int {
	logging.Phase("Loading task")
	cfg := o.Config

	o.model, o.judgeModel = model.SetupModels(cfg.Provider, cfg.Model, cfg.JudgeModel)
	o.embedProvider, o.embedModel = model.SetupEmbedding(cfg.Provider, cfg.EmbeddingProvider, cfg.EmbeddingModel)

	path, err := task.DiscoverTaskFile(cfg.TaskFile)
	if err != nil {
		logging.Error(err.Error())
		return exitcode.Error
	}
	f, err := task.Load(path)
	if err != nil {
		logging.Error(err.Error())
		return exitcode.Error
	}
	o.task = f

	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	st, err := f.NewState(o.RunID)
	if err != nil {
		logging.Error(fmt.Sprintf("Failed to create run state: %v", err))
		return exitcode.Error
	}
	o.State = st
	st.RecordUpdate("task", map[string]any{
		"path":       f.Path,
		"sha256":     f.Hash,
		"candidates": len(f.Candidates),
	})

	for _, v := range task.CheckCompliance(f.Candidates) {
		logging.Warn(v)
	}
	logging.Info(fmt.Sprintf("Loaded %s with %d candidates", path, len(f.Candidates)))
	return -1
}

// usesEmbeddings reports whether the chain scores questions by embedding.
func (o *Orchestrator) usesEmbeddings() bool {
	if o.Config.SimilarityMode != ModeEmbedding {
		return false
	}
	for _, v := range o.Config.VerifierChain() {
		if v == config.VerifierReverse {
			return true
		}
	}
	return false
}

func (o *Orchestrator) phaseCredentialChecks() int {
	check := o.CredentialChecker
	if check == nil {
		check = ai.CheckCredentials
	}

	if o.Invoker == nil {
		if !check(o.Config.Provider)[o.Config.Provider] {
			logging.Error(fmt.Sprintf("No credentials for provider %s (set %s)",
				o.Config.Provider, ai.CredentialEnv[o.Config.Provider]))
			return exitcode.Error
		}
	}

	if o.Embedder == nil && o.usesEmbeddings() {
		switch {
		case o.embedProvider == "":
			logging.Warn(fmt.Sprintf("Provider %s serves no embeddings, scoring questions with the judge", o.Config.Provider))
		case !check(o.embedProvider)[o.embedProvider]:
			logging.Warn(fmt.Sprintf("No credentials for embedding provider %s, scoring questions with the judge", o.embedProvider))
			o.embedProvider = ""
		}
	}
	return -1
}

func (o *Orchestrator) phaseServices(ctx context.Context) int {
	cfg := o.Config
	log := o.logger()

	if o.Invoker == nil {
		catalog, err := prompt.LoadCatalog(cfg.TemplatesFile)
		if err != nil {
			logging.Error(fmt.Sprintf("Failed to load prompt templates: %v", err))
			return exitcode.Error
		}
		svc := ai.NewService(ai.ServiceConfig{
			Engine: ai.EngineConfig{
				Provider:    cfg.Provider,
				Model:       o.model,
				Temperature: cfg.Temperature,
				MaxTokens:   cfg.MaxTokens,
			},
			Retry: ai.RetryConfig{
				MaxRetries: cfg.MaxLLMRetry,
				OnRetry: func(attempt int, err error, delay time.Duration) {
					log.Warn("retrying LLM request", "attempt", attempt, "delay", delay, "error", err)
				},
			},
			Concurrency: cfg.LLMConcurrency,
			Catalog:     catalog,
			Logger:      log,
		})
		o.Invoker = svc
		o.closers = append(o.closers, svc.Close)
	}

	if o.Embedder == nil && o.usesEmbeddings() && o.embedProvider != "" {
		e, err := ai.NewEmbedder(o.embedProvider, "", "", o.embedModel, log)
		if err != nil {
			logging.Warn(fmt.Sprintf("Embeddings unavailable, scoring questions with the judge: %v", err))
		} else {
			if cfg.EmbeddingCacheTTL > 0 {
				e = ai.NewCachedEmbedder(e, time.Duration(cfg.EmbeddingCacheTTL)*time.Second)
			}
			o.Embedder = e
		}
	}

	if o.Executor == nil && cfg.ExecutionDB != "" {
		db, err := task.OpenExecutor(ctx, cfg.ExecutionDB, log)
		if err != nil {
			logging.Error(fmt.Sprintf("Failed to open execution database: %v", err))
			return exitcode.Error
		}
		o.Executor = db
		o.closers = append(o.closers, func() { _ = db.Close() })
	}
	if o.Executor != nil {
		o.State.Executor = o.Executor
	}
	return -1
}

func (o *Orchestrator) phaseBanner() {
	banner.PrintStartupBanner(o.console(), banner.StartupInfo{
		RunID:      o.RunID,
		Provider:   o.Config.Provider,
		Model:      o.model,
		JudgeModel: o.judgeModel,
		TaskFile:   o.task.Path,
		Verifiers:  o.Config.VerifierChain(),
		Candidates: len(o.task.Candidates),
	})
}

func (o *Orchestrator) phaseVerifiers(ctx context.Context) {
	cfg := o.Config
	for _, v := range cfg.VerifierChain() {
		if ctx.Err() != nil {
			return
		}
		o.stage = v

		switch v {
		case config.VerifierMockDB:
			logging.Phase("Mock database oracle")
			res := RunOracle(ctx, o.State, OracleConfig{
				Invoker: o.Invoker,
				Model:   o.model,
				Driver:  cfg.MockDBDriver,
				MaxRows: cfg.MaxMockRows,
				Logger:  o.logger(),
			})
			d := res.Decision
			if d.Winner == nil {
				logging.Warn(fmt.Sprintf("Oracle selected no candidate (%d evaluated, %d failed)", d.Evaluated, d.Failed))
				return
			}
			logging.Success(fmt.Sprintf("Oracle selected candidate %d (bucket %s)", d.WinnerIndex+1, d.Key))

		case config.VerifierReverse:
			logging.Phase("Reverse-question verifier")
			res := RunReverseVerifier(ctx, o.State, ReverseConfig{
				Invoker:       o.Invoker,
				Embedder:      o.Embedder,
				Model:         o.model,
				JudgeModel:    o.judgeModel,
				Samples:       cfg.SamplingCount,
				Deduplicate:   cfg.DeduplicateCandidates,
				Generator:     cfg.ReverseGenerator,
				Enrich:        cfg.EnrichQuestion,
				Mode:          cfg.SimilarityMode,
				UnitTestCount: cfg.UnitTestCount,
				Logger:        o.logger(),
			})
			sel := res.Selection
			if sel.Winner == nil {
				logging.Warn("Reverse verifier selected no candidate")
				return
			}
			msg := fmt.Sprintf("Reverse verifier selected candidate %d (bucket %s)", sel.WinnerIndex+1, sel.Key)
			if sel.Fallback != FallbackNone {
				msg += " via fallback " + sel.Fallback
			}
			logging.Success(msg)
		}
	}
}

func (o *Orchestrator) phaseSnapshot() {
	if o.Config.OutputDir == "" {
		return
	}
	path, err := state.SaveState(o.State, o.Config.OutputDir)
	if err != nil {
		logging.Warn(fmt.Sprintf("Failed to write run snapshot: %v", err))
		return
	}
	o.SnapshotPath = path
	logging.Info("Run snapshot written to " + path)
}

func (o *Orchestrator) phaseSummary(ctx context.Context) int {
	w := o.console()
	banner.PrintErrorSummary(w, componentOrder, o.State.Errors)

	if ctx.Err() != nil {
		banner.PrintInterruptedBanner(w, o.stage)
		return exitcode.Interrupted
	}

	sql, ok := o.State.FinalSQL()
	if !ok {
		banner.PrintNoWinnerBanner(w, o.noWinnerReason())
		return exitcode.NoWinner
	}

	secs := int(time.Since(o.startTime).Seconds())
	banner.PrintWinnerBanner(w, o.State.Candidates.LatestKey(), sql, secs)
	fmt.Fprintln(o.output(), sql)
	return exitcode.Success
}

// noWinnerReason names the diagnostic of the stage that appended the empty
// bucket.
func (o *Orchestrator) noWinnerReason() string {
	key := o.State.Candidates.LatestKey()
	for _, c := range componentOrder {
		if strings.HasPrefix(key, c) {
			if msg := o.State.Errors[c]; msg != "" {
				return msg
			}
		}
	}
	return "the latest candidate bucket " + key + " is empty"
}

func (o *Orchestrator) close() {
	for i := len(o.closers) - 1; i >= 0; i-- {
		o.closers[i]()
	}
	o.closers = nil
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Logger == nil {
		o.Logger = orDiscard(nil)
	}
	return o.Logger
}

func (o *Orchestrator) console() io.Writer {
	if o.Console != nil {
		return o.Console
	}
	return os.Stderr
}

func (o *Orchestrator) output() io.Writer {
	if o.Output != nil {
		return o.Output
	}
	return os.Stdout
}
