// Package signal provides signal handling for graceful shutdown of the sqlverify CLI.
//
// An interrupted run cancels its context; in-flight LLM requests return
// early, the verifier stages record the interruption and the orchestrator
// still writes its snapshot before exiting with the Interrupted code.
package signal

import (
	"context"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// Handler tracks whether an interrupt signal was received.
type Handler struct {
	received atomic.Bool
	stop     func()
}

// Interrupted reports whether SIGINT or SIGTERM was received.
func (h *Handler) Interrupted() bool {
	return h.received.Load()
}

// Stop unregisters the handler. Safe to call more than once.
func (h *Handler) Stop() {
	h.stop()
}

// SetupSignalHandler registers SIGINT and SIGTERM handlers.
// When a signal is received, it calls onInterrupt (if non-nil) with the
// signal, then cancels the context. Only the first signal is handled.
//
// The listening goroutine terminates when a signal is received, the context
// is canceled, or Stop is called.
//
// Example usage:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	h := signal.SetupSignalHandler(ctx, cancel, func(s os.Signal) {
//	    logging.Warn("received " + s.String() + ", stopping")
//	})
//	defer h.Stop()
func SetupSignalHandler(ctx context.Context, cancel context.CancelFunc, onInterrupt func(os.Signal)) *Handler {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	var once atomic.Bool
	h := &Handler{}
	h.stop = func() {
		if once.CompareAndSwap(false, true) {
			signal.Stop(sigCh)
			close(done)
		}
	}

	go func() {
		select {
		case s := <-sigCh:
			h.received.Store(true)
			if onInterrupt != nil {
				onInterrupt(s)
			}
			cancel()
		case <-ctx.Done():
		case <-done:
		}
	}()
	return h
}
