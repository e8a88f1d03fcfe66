package ai

import "context"

// RetryCompleter wraps any Completer with RetryWithBackoff retry logic.
type RetryCompleter struct {
	Inner    Completer
	RetryCfg RetryConfig
}

// Complete delegates to the inner completer, retrying on failure.
func (r *RetryCompleter) Complete(ctx context.Context, req CompletionRequest) ([]string, error) {
	return RetryWithBackoff(ctx, r.RetryCfg, func() ([]string, error) {
		return r.Inner.Complete(ctx, req)
	})
}
