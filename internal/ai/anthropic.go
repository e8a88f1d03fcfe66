package ai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicCompleter implements Completer with the Anthropic Messages API.
// The API returns one completion per call, so samples are requested
// sequentially.
type AnthropicCompleter struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
	log         *slog.Logger
}

// NewAnthropicCompleter creates a completer for cfg. An empty APIKey lets
// the SDK read ANTHROPIC_API_KEY from the environment.
func NewAnthropicCompleter(cfg EngineConfig, log *slog.Logger) *AnthropicCompleter {
	var opts []option.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	return &AnthropicCompleter{
		client:      anthropic.NewClient(opts...),
		model:       anthropic.Model(cfg.Model),
		maxTokens:   int64(cfg.MaxTokens),
		temperature: cfg.Temperature,
		log:         orDiscard(log),
	}
}

// Complete sends the prompt once per requested sample.
func (c *AnthropicCompleter) Complete(ctx context.Context, req CompletionRequest) ([]string, error) {
	n := samples(req.Samples)
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		text, err := c.once(ctx, req)
		if err != nil {
			return nil, err
		}
		out = append(out, text)
	}
	return out, nil
}

func (c *AnthropicCompleter) once(ctx context.Context, req CompletionRequest) (string, error) {
	start := time.Now()
	params := anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(c.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: req.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.log.Debug("anthropic call failed", "model", c.model, "duration", time.Since(start), "error", err)
		return "", fmt.Errorf("anthropic API error: %w", classifyError(err))
	}
	c.log.Debug("anthropic call completed", "model", c.model, "duration", time.Since(start), "stopReason", msg.StopReason)

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in response")
	}
	return sb.String(), nil
}
