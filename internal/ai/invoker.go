package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alitto/pond/v2"

	"github.com/CodexForgeBR/sqlverify/internal/prompt"
)

// Request is a batch of prompts rendered from one template.
type Request struct {
	Template string
	// Model overrides the service's default model for this batch.
	Model string
	// Params holds one placeholder mapping per prompt.
	Params []map[string]string
	// Samples is the number of completions per prompt.
	Samples int
}

// ServiceConfig configures a Service.
type ServiceConfig struct {
	Engine      EngineConfig
	Retry       RetryConfig
	Concurrency int
	Catalog     *prompt.Catalog
	Logger      *slog.Logger
	// NewCompleter builds the backend for an engine. Defaults to
	// NewCompleter.
	NewCompleter func(EngineConfig, *slog.Logger) (Completer, error)
}

// Service dispatches prompt batches to completion backends on a bounded
// worker pool. Completers are created once per model and reused.
type Service struct {
	cfg  ServiceConfig
	log  *slog.Logger
	pool pond.ResultPool[[]string]

	mu      sync.Mutex
	engines map[string]Completer
}

// NewService creates a service. Close releases its workers.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Catalog == nil {
		cfg.Catalog = prompt.NewCatalog()
	}
	if cfg.NewCompleter == nil {
		cfg.NewCompleter = NewCompleter
	}
	return &Service{
		cfg:     cfg,
		log:     orDiscard(cfg.Logger),
		pool:    pond.NewResultPool[[]string](cfg.Concurrency),
		engines: make(map[string]Completer),
	}
}

// Close waits for running calls and stops the worker pool.
func (s *Service) Close() {
	s.pool.StopAndWait()
}

func (s *Service) completer(model string) (Completer, error) {
	engine := s.cfg.Engine.WithModel(model)
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.engines[engine.Model]; ok {
		return c, nil
	}
	inner, err := s.cfg.NewCompleter(engine, s.log)
	if err != nil {
		return nil, err
	}
	c := &RetryCompleter{Inner: inner, RetryCfg: s.cfg.Retry}
	s.engines[engine.Model] = c
	return c, nil
}

// Call renders and sends every prompt of req concurrently. The result is
// aligned with req.Params; an entry is nil when its prompt could not be
// rendered or its completion failed after retries. Call never fails as a
// whole.
func (s *Service) Call(ctx context.Context, req Request) [][]string {
	out := make([][]string, len(req.Params))
	if len(req.Params) == 0 {
		return out
	}
	completer, err := s.completer(req.Model)
	if err != nil {
		s.log.Warn("no completion backend", "template", req.Template, "error", err)
		return out
	}

	group := s.pool.NewGroupContext(ctx)
	for i, params := range req.Params {
		group.SubmitErr(func() ([]string, error) {
			texts, err := s.one(ctx, completer, req, params)
			if err != nil {
				s.log.Warn("completion failed, entry left empty", "template", req.Template, "index", i, "error", err)
				return nil, nil
			}
			return texts, nil
		})
	}
	results, err := group.Wait()
	if err != nil {
		s.log.Warn("completion batch interrupted", "template", req.Template, "error", err)
		return out
	}
	copy(out, results)
	return out
}

func (s *Service) one(ctx context.Context, c Completer, req Request, params map[string]string) ([]string, error) {
	system, user, err := s.cfg.Catalog.Render(req.Template, params)
	if err != nil {
		return nil, err
	}
	texts, err := c.Complete(ctx, CompletionRequest{System: system, User: user, Samples: req.Samples})
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty completion")
	}
	s.log.Debug("completion received", "template", req.Template, "samples", len(texts))
	return texts, nil
}
