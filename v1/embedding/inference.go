package embedding

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"golang.org/x/sync/errgroup"
)

// embedChunks splits texts into BatchSize requests and runs up to
// Concurrency of them at once. The first failure cancels the rest.
func (c *Client) embedChunks(ctx context.Context, texts []string) ([][]float32, error) {
	size := c.cfg.BatchSize
	if len(texts) <= size {
		return c.createEmbeddings(ctx, texts)
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)
	for start := 0; start < len(texts); start += size {
		end := min(start+size, len(texts))
		g.Go(func() error {
			vectors, err := c.createEmbeddings(gctx, texts[start:end])
			if err != nil {
				return err
			}
			copy(out[start:end], vectors)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// createEmbeddings calls POST {base}/embeddings and returns the vectors in
// input order.
func (c *Client) createEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Input:          openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
		Model:          c.cfg.Model,
		EncodingFormat: openai.EmbeddingNewParamsEncodingFormatFloat,
	}
	if c.cfg.Dimensions > 0 {
		params.Dimensions = openai.Int(int64(c.cfg.Dimensions))
	}

	resp, err := c.api.Embeddings.New(ctx, params)
	if err != nil {
		c.logger.Warn("embedding: request failed", err, map[string]interface{}{
			"model": c.cfg.Model,
			"count": len(texts),
		})
		return nil, wrapError("create embeddings", err)
	}

	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embedding: expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || int(d.Index) >= len(out) || out[d.Index] != nil {
			return nil, fmt.Errorf("embedding: unexpected index %d in response", d.Index)
		}
		if c.cfg.Dimensions > 0 && len(d.Embedding) != c.cfg.Dimensions {
			return nil, fmt.Errorf("embedding: expected %d dimensions, got %d", c.cfg.Dimensions, len(d.Embedding))
		}
		out[d.Index] = toFloat32(d.Embedding)
	}
	return out, nil
}
