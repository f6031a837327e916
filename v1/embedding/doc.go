// Package embedding computes text embeddings through any OpenAI-compatible
// embeddings endpoint.
//
// # Overview
//
// Client implements Embedder on top of the official openai-go SDK:
//
//	cfg := embedding.DefaultConfig().WithModel("text-embedding-3-small", 0)
//	client, err := embedding.NewClient(cfg, log)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	vec, err := client.Embed(ctx, "I like hiking on weekends")
//	vecs, err := client.EmbedBatch(ctx, []string{"a", "b"})
//
// Batch results are returned in input order regardless of the order of the
// entries in the response.
//
// # Configuration
//
// The API key falls back to OPENAI_API_KEY when Config.APIKey is empty.
// NewConfig reads the whole configuration from the environment:
//
//   - OPENAI_BASE_URL                  API root, default https://api.openai.com/v1
//   - OPENAI_API_KEY                   bearer token
//   - EMBEDDING_MODEL                  default text-embedding-3-small
//   - EMBEDDING_DIMS                   optional output size
//   - EMBEDDING_HTTP_TIMEOUT_SECONDS   per-request timeout, default 30
//   - EMBEDDING_CACHE_MAX_COST         cache budget in bytes, 0 disables it
//   - EMBEDDING_BATCH_SIZE             inputs per request, default 512
//   - EMBEDDING_CONCURRENCY            parallel requests per batch, default 4
//
// # Caching
//
// With a positive CacheMaxCost, vectors are kept in a ristretto cache keyed
// by model, dimensions and text. Only cache misses of a batch are sent to
// the API. The cache is admission-based, so a Set may be dropped and a
// repeated text may be embedded again.
//
// Misses beyond BatchSize are split into several requests that run
// concurrently; the result keeps input order and the first failed request
// fails the whole batch.
//
// # FX Module
//
//	app := fx.New(
//	    fx.Supply(embedding.NewConfig()),
//	    embedding.FXModule,
//	    fx.Invoke(func(e embedding.Embedder) { /* ... */ }),
//	)
package embedding
