package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

func newOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

// OpenAICompleter implements Completer with the chat completions API. All
// samples come from a single request.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	log         *slog.Logger
}

// NewOpenAICompleter creates a completer for cfg.
func NewOpenAICompleter(cfg EngineConfig, log *slog.Logger) *OpenAICompleter {
	return &OpenAICompleter{
		client:      newOpenAIClient(cfg.APIKey, cfg.BaseURL),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: float32(cfg.Temperature),
		log:         orDiscard(log),
	}
}

// Complete requests req.Samples choices for the prompt.
func (c *OpenAICompleter) Complete(ctx context.Context, req CompletionRequest) ([]string, error) {
	n := samples(req.Samples)
	chat := openai.ChatCompletionRequest{
		Model:               c.model,
		Temperature:         c.temperature,
		MaxCompletionTokens: c.maxTokens,
		N:                   n,
	}
	if req.System != "" {
		chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	chat.Messages = append(chat.Messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.User})

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, chat)
	if err != nil {
		c.log.Debug("openai call failed", "model", c.model, "duration", time.Since(start), "error", err)
		return nil, fmt.Errorf("OpenAI API call failed: %w", classifyError(err))
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("OpenAI returned no choices")
	}
	c.log.Debug("openai call completed", "model", c.model, "duration", time.Since(start), "choices", len(resp.Choices))

	choices := resp.Choices
	sort.SliceStable(choices, func(i, j int) bool { return choices[i].Index < choices[j].Index })
	out := make([]string, 0, len(choices))
	for _, ch := range choices {
		out = append(out, ch.Message.Content)
	}
	return out, nil
}

// OpenAIEmbedder implements Embedder with the embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	log    *slog.Logger
}

// NewOpenAIEmbedder creates an embedder for model.
func NewOpenAIEmbedder(apiKey, baseURL, model string, log *slog.Logger) *OpenAIEmbedder {
	return &OpenAIEmbedder{
		client: newOpenAIClient(apiKey, baseURL),
		model:  openai.EmbeddingModel(model),
		log:    orDiscard(log),
	}
}

// Embed returns one vector per text, in input order.
func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: e.model,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings failed: %w", classifyError(err))
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("OpenAI returned %d embeddings for %d texts", len(resp.Data), len(texts))
	}
	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	e.log.Debug("embedded texts", "model", e.model, "count", len(texts))
	return out, nil
}
