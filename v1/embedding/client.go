package embedding

import (
	"context"
	"fmt"

	"github.com/dgraph-io/ristretto"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Client computes embeddings through an OpenAI-compatible API, optionally
// caching vectors by model and text.
type Client struct {
	api    openai.Client
	cfg    Config
	cache  *ristretto.Cache
	logger Logger
}

// NewClient validates cfg and builds the client. A nil logger discards
// log output.
func NewClient(cfg *Config, logger Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	resolved := cfg.resolved()
	if err := resolved.Validate(); err != nil {
		return nil, fmt.Errorf("embedding: invalid config: %w", err)
	}
	if logger == nil {
		logger = nopLogger{}
	}

	c := &Client{
		api: openai.NewClient(
			option.WithBaseURL(resolved.BaseURL),
			option.WithAPIKey(resolved.APIKey),
			option.WithRequestTimeout(resolved.Timeout),
			option.WithMaxRetries(resolved.MaxRetries),
		),
		cfg:    resolved,
		logger: logger,
	}

	if resolved.CacheMaxCost > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: cacheCounters(resolved.CacheMaxCost),
			MaxCost:     resolved.CacheMaxCost,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("embedding: failed to create cache: %w", err)
		}
		c.cache = cache
	}

	return c, nil
}

// Model returns the embedding model in use.
func (c *Client) Model() string { return c.cfg.Model }

// Embed returns the embedding of a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in input order. Cached texts are served from the
// cache and only the misses are sent, BatchSize texts per request.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	out := make([][]float32, len(texts))
	var missing []string
	var slots []int
	for i, text := range texts {
		if v, ok := c.lookup(text); ok {
			out[i] = v
			continue
		}
		missing = append(missing, text)
		slots = append(slots, i)
	}

	if len(missing) == 0 {
		c.logger.Debug("embedding: served batch from cache", nil, map[string]interface{}{
			"count": len(texts),
		})
		return out, nil
	}

	vectors, err := c.embedChunks(ctx, missing)
	if err != nil {
		return nil, err
	}
	for j, v := range vectors {
		out[slots[j]] = v
		c.store(missing[j], v)
	}
	return out, nil
}

// Close releases the cache.
func (c *Client) Close() error {
	if c.cache != nil {
		c.cache.Close()
	}
	return nil
}
