package config

import (
	"github.com/Aleph-Alpha/agentmem/v1/chroma"
	"github.com/Aleph-Alpha/agentmem/v1/chromem"
	"github.com/Aleph-Alpha/agentmem/v1/embedding"
	"github.com/Aleph-Alpha/agentmem/v1/llm"
	"github.com/Aleph-Alpha/agentmem/v1/logger"
	"github.com/Aleph-Alpha/agentmem/v1/metrics"
	"github.com/Aleph-Alpha/agentmem/v1/qdrant"
	"github.com/Aleph-Alpha/agentmem/v1/tracer"
)

// Vector store providers.
const (
	ProviderChroma  = "chroma"
	ProviderQdrant  = "qdrant"
	ProviderChromem = "chromem"
)

// Config is the whole application configuration as read from YAML.
type Config struct {
	Logger      logger.Config     `yaml:"logger"`
	Metrics     metrics.Config    `yaml:"metrics"`
	Tracer      tracer.Config     `yaml:"tracer"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Embedder    embedding.Config  `yaml:"embedder"`
	LLM         llm.Config        `yaml:"llm"`
}

// VectorStoreConfig selects one backend; only the section named by
// Provider is used.
type VectorStoreConfig struct {
	Provider string         `yaml:"provider"`
	Chroma   chroma.Config  `yaml:"chroma"`
	Qdrant   qdrant.Config  `yaml:"qdrant"`
	Chromem  chromem.Config `yaml:"chromem"`
}

// Default returns the configuration used for keys the file leaves out:
// a local Chroma server, OpenAI embeddings and gpt-4o-mini.
func Default() *Config {
	return &Config{
		Logger:  logger.Config{Level: logger.Info, ServiceName: logger.DefaultServiceName},
		Metrics: metrics.DefaultConfig(),
		Tracer:  tracer.Config{ServiceName: logger.DefaultServiceName},
		VectorStore: VectorStoreConfig{
			Provider: ProviderChroma,
			Chroma:   *chroma.DefaultConfig(),
			Qdrant:   *qdrant.DefaultConfig(),
			Chromem:  *chromem.DefaultConfig(),
		},
		Embedder: *embedding.DefaultConfig(),
		LLM:      *llm.DefaultConfig(),
	}
}
