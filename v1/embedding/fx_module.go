package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule wires the embedding client into Fx.
//
// It provides:
//   - *Client  (NewClientWithDI)
//   - Embedder (the same *Client)
//
// A *Config must be supplied by the application, e.g. fx.Supply(embedding.NewConfig()).
var FXModule = fx.Module(
	"embedding",

	fx.Provide(
		NewClientWithDI,
		func(c *Client) Embedder { return c },
	),

	fx.Invoke(RegisterEmbeddingLifecycle),
)

// EmbeddingParams groups the dependencies of NewClientWithDI.
type EmbeddingParams struct {
	fx.In

	Config *Config
	Logger Logger `optional:"true"`
}

func NewClientWithDI(p EmbeddingParams) (*Client, error) {
	return NewClient(p.Config, p.Logger)
}

// RegisterEmbeddingLifecycle releases the cache on application shutdown.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
