// Package ai adapts language-model and embedding providers to the narrow
// interfaces the verification stages use.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"
)

// CompletionRequest is one rendered prompt.
type CompletionRequest struct {
	System string
	User   string
	// Samples is the number of completions wanted. Values below 1 mean 1.
	Samples int
}

// Completer produces raw text completions for a prompt.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) ([]string, error)
}

// RateLimitError is returned when a provider rejects a request with HTTP 429.
type RateLimitError struct {
	// RetryAfter is the provider's suggested wait, zero when unknown.
	RetryAfter    time.Duration
	UnderlyingErr error
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limit detected (retry after %s)", e.RetryAfter)
	}
	return "rate limit detected (reset time unknown)"
}

func (e *RateLimitError) Unwrap() error {
	return e.UnderlyingErr
}

// classifyError turns provider rate-limit errors into *RateLimitError and
// returns every other error unchanged.
func classifyError(err error) error {
	if err == nil {
		return nil
	}
	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) && anthropicErr.StatusCode == http.StatusTooManyRequests {
		return &RateLimitError{RetryAfter: retryAfterHeader(anthropicErr.Response), UnderlyingErr: err}
	}
	var openaiErr *openai.APIError
	if errors.As(err, &openaiErr) && openaiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &RateLimitError{UnderlyingErr: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return &RateLimitError{UnderlyingErr: err}
	}
	return err
}

func retryAfterHeader(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

func samples(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
