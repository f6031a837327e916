package config

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/agentmem/v1/chroma"
	"github.com/Aleph-Alpha/agentmem/v1/chromem"
	"github.com/Aleph-Alpha/agentmem/v1/embedding"
	"github.com/Aleph-Alpha/agentmem/v1/llm"
	"github.com/Aleph-Alpha/agentmem/v1/logger"
	"github.com/Aleph-Alpha/agentmem/v1/metrics"
	"github.com/Aleph-Alpha/agentmem/v1/qdrant"
	"github.com/Aleph-Alpha/agentmem/v1/tracer"
)

// Module supplies cfg and hands each section to the package that reads it,
// so the package FX modules can be combined without further wiring.
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
		fx.Provide(
			func(c *Config) logger.Config { return c.Logger },
			func(c *Config) metrics.Config { return c.Metrics },
			func(c *Config) tracer.Config { return c.Tracer },
			func(c *Config) *chroma.Config { return &c.VectorStore.Chroma },
			func(c *Config) *qdrant.Config { return &c.VectorStore.Qdrant },
			func(c *Config) *chromem.Config { return &c.VectorStore.Chromem },
			func(c *Config) *embedding.Config { return &c.Embedder },
			func(c *Config) *llm.Config { return &c.LLM },
		),
	)
}
