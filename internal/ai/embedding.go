package ai

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jellydator/ttlcache/v3"
)

// Embedder returns one fixed-length vector per text, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// NewEmbedder builds the embedder for provider. Only OpenAI-compatible
// endpoints serve embeddings. Missing API keys and base URLs are read from
// the environment.
func NewEmbedder(provider, apiKey, baseURL, model string, log *slog.Logger) (Embedder, error) {
	switch provider {
	case ProviderOpenAI:
		if model == "" {
			return nil, fmt.Errorf("no embedding model configured")
		}
		if apiKey == "" {
			apiKey = os.Getenv(CredentialEnv[ProviderOpenAI])
		}
		if baseURL == "" {
			baseURL = os.Getenv("OPENAI_BASE_URL")
		}
		return NewOpenAIEmbedder(apiKey, baseURL, model, log), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", provider)
	}
}

// CachedEmbedder memoizes vectors per text. Only texts missing from the
// cache are sent to the inner embedder, in one batch.
type CachedEmbedder struct {
	inner Embedder
	cache *ttlcache.Cache[string, []float32]
}

// NewCachedEmbedder wraps inner with a cache whose entries expire after ttl.
func NewCachedEmbedder(inner Embedder, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		inner: inner,
		cache: ttlcache.New[string, []float32](
			ttlcache.WithTTL[string, []float32](ttl),
			ttlcache.WithDisableTouchOnHit[string, []float32](),
		),
	}
}

// Embed serves cached vectors and fetches the rest.
func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	var missing []string
	pending := make(map[string][]int)
	for i, t := range texts {
		if item := c.cache.Get(t); item != nil {
			out[i] = item.Value()
			continue
		}
		if _, seen := pending[t]; !seen {
			missing = append(missing, t)
		}
		pending[t] = append(pending[t], i)
	}
	if len(missing) == 0 {
		return out, nil
	}

	vecs, err := c.inner.Embed(ctx, missing)
	if err != nil {
		return nil, err
	}
	if len(vecs) != len(missing) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vecs), len(missing))
	}
	for i, t := range missing {
		c.cache.Set(t, vecs[i], ttlcache.DefaultTTL)
		for _, idx := range pending[t] {
			out[idx] = vecs[i]
		}
	}
	return out, nil
}

// Len returns the number of cached vectors.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}
