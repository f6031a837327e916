package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingsRequest struct {
	Input          []string `json:"input"`
	Model          string   `json:"model"`
	Dimensions     int      `json:"dimensions"`
	EncodingFormat string   `json:"encoding_format"`
}

// fakeEmbeddings answers /v1/embeddings with vectors derived from the text
// length and returns the entries in reverse order.
type fakeEmbeddings struct {
	mu       sync.Mutex
	requests []embeddingsRequest
	auth     []string
	status   int
}

func (f *fakeEmbeddings) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/embeddings" || r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req embeddingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error","code":"bad","param":null}}`))
		return
	}

	type item struct {
		Object    string    `json:"object"`
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	}
	data := make([]item, 0, len(req.Input))
	for i := len(req.Input) - 1; i >= 0; i-- {
		data = append(data, item{Object: "embedding", Index: i, Embedding: []float64{float64(len(req.Input[i])), 0.5}})
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"object": "list",
		"model":  req.Model,
		"data":   data,
		"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
	})
}

func (f *fakeEmbeddings) calls() []embeddingsRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]embeddingsRequest(nil), f.requests...)
}

func newTestClient(t *testing.T, fake *fakeEmbeddings, mutate ...func(*Config)) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig().WithBaseURL(srv.URL + "/v1").WithAPIKey("sk-test")
	for _, m := range mutate {
		m(cfg)
	}
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestEmbed(t *testing.T) {
	fake := &fakeEmbeddings{}
	c := newTestClient(t, fake)

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 0.5}, vec)

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"hello"}, calls[0].Input)
	assert.Equal(t, DefaultModel, calls[0].Model)
	assert.Equal(t, "float", calls[0].EncodingFormat)
	assert.Zero(t, calls[0].Dimensions)
	assert.Equal(t, "Bearer sk-test", fake.auth[0])
}

func TestEmbedBatchKeepsInputOrder(t *testing.T) {
	fake := &fakeEmbeddings{}
	c := newTestClient(t, fake)

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "bbb", "cc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, float32(1), vecs[0][0])
	assert.Equal(t, float32(3), vecs[1][0])
	assert.Equal(t, float32(2), vecs[2][0])
}

func TestEmbedBatchEmpty(t *testing.T) {
	fake := &fakeEmbeddings{}
	c := newTestClient(t, fake)

	vecs, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Empty(t, fake.calls())
}

func TestDimensionsAreSentAndChecked(t *testing.T) {
	fake := &fakeEmbeddings{}
	c := newTestClient(t, fake, func(cfg *Config) { cfg.WithModel("text-embedding-3-large", 3) })

	_, err := c.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 3 dimensions")

	calls := fake.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, 3, calls[0].Dimensions)
	assert.Equal(t, "text-embedding-3-large", calls[0].Model)
}

func TestCacheServesRepeatedTexts(t *testing.T) {
	fake := &fakeEmbeddings{}
	c := newTestClient(t, fake, func(cfg *Config) { cfg.WithCache(1 << 20) })
	ctx := context.Background()

	first, err := c.Embed(ctx, "hello")
	require.NoError(t, err)
	c.cache.Wait()

	vecs, err := c.EmbedBatch(ctx, []string{"hello", "world!"})
	require.NoError(t, err)
	assert.Equal(t, first, vecs[0])
	assert.Equal(t, float32(6), vecs[1][0])

	calls := fake.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"world!"}, calls[1].Input)

	// callers may mutate what they get back
	vecs[0][0] = 99
	c.cache.Wait()
	again, err := c.Embed(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, float32(5), again[0])
}

func TestAPIErrorCarriesStatus(t *testing.T) {
	fake := &fakeEmbeddings{status: http.StatusUnauthorized}
	c := newTestClient(t, fake)

	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestFailedEmbedSendsOneRequest(t *testing.T) {
	fake := &fakeEmbeddings{status: http.StatusInternalServerError}
	c := newTestClient(t, fake)
	require.Equal(t, 0, c.cfg.MaxRetries)

	_, err := c.Embed(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
	assert.Len(t, fake.calls(), 1)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient(DefaultConfig(), nil)
	require.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-env")
	c, err := NewClient(DefaultConfig(), nil)
	require.NoError(t, err)
	assert.Equal(t, "sk-env", c.cfg.APIKey)
	assert.Equal(t, DefaultModel, c.Model())
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("OPENAI_BASE_URL", "http://local:1234/v1")
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("EMBEDDING_MODEL", "nomic-embed-text")
	t.Setenv("EMBEDDING_DIMS", "768")
	t.Setenv("EMBEDDING_CACHE_MAX_COST", "4096")
	t.Setenv("EMBEDDING_BATCH_SIZE", "64")

	cfg := NewConfig()
	assert.Equal(t, "http://local:1234/v1", cfg.BaseURL)
	assert.Equal(t, "sk-env", cfg.APIKey)
	assert.Equal(t, "nomic-embed-text", cfg.Model)
	assert.Equal(t, 768, cfg.Dimensions)
	assert.Equal(t, int64(4096), cfg.CacheMaxCost)
	assert.Equal(t, 64, cfg.BatchSize)
	assert.Equal(t, DefaultConcurrency, cfg.Concurrency)
}

func TestEmbedBatchSplitsIntoChunks(t *testing.T) {
	fake := &fakeEmbeddings{}
	c := newTestClient(t, fake, func(cfg *Config) { cfg.WithBatching(2, 2) })

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	vectors, err := c.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))
	for i, text := range texts {
		assert.Equal(t, []float32{float32(len(text)), 0.5}, vectors[i])
	}

	calls := fake.calls()
	require.Len(t, calls, 3)
	var sizes []int
	for _, call := range calls {
		sizes = append(sizes, len(call.Input))
	}
	assert.ElementsMatch(t, []int{2, 2, 1}, sizes)
}

func TestEmbedBatchChunkFailure(t *testing.T) {
	fake := &fakeEmbeddings{status: http.StatusInternalServerError}
	c := newTestClient(t, fake, func(cfg *Config) { cfg.WithBatching(1, 1) })

	_, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c"})
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))
}
