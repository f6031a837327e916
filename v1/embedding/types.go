package embedding

import "context"

// Embedder turns text into vectors. Batch results are index-aligned with
// the input texts.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Logger defines the logging calls the embedding client makes.
// *logger.LoggerClient satisfies it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

var _ Embedder = (*Client)(nil)

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
