package qdrant

import (
	"time"

	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

const (
	DefaultHost           = "localhost"
	DefaultGRPCPort       = 6334
	DefaultCollectionName = "mem0"
	DefaultTimeout        = 10 * time.Second
	DefaultHealthTimeout  = 3 * time.Second
)

// Config holds connection and collection settings for the Qdrant store.
//
// Example (builder style):
//
//	cfg := qdrant.FromEndpoint("qdrant.internal").
//	    WithApiKey(os.Getenv("QDRANT_API_KEY")).
//	    WithCollection("agent_memories").
//	    WithEmbeddingDims(1536)
type Config struct {
	// Hostname of the Qdrant server, e.g. "localhost".
	Endpoint string `yaml:"endpoint" env:"QDRANT_ENDPOINT"`

	// gRPC port of the Qdrant server. Defaults to 6334.
	Port int `yaml:"port" env:"QDRANT_PORT"`

	// Optional authentication token for secured deployments.
	ApiKey string `yaml:"api_key" env:"QDRANT_API_KEY"`

	// UseTLS enables TLS on the gRPC connection.
	UseTLS bool `yaml:"use_tls" env:"QDRANT_USE_TLS"`

	// CollectionName is the active collection.
	CollectionName string `yaml:"collection_name" env:"QDRANT_COLLECTION"`

	// EmbeddingDims is the vector size of collections created by the store.
	// Qdrant needs it up front; zero is adopted from an existing collection.
	EmbeddingDims int `yaml:"embedding_dims" env:"QDRANT_EMBEDDING_DIMS"`

	// Metric is the distance function of created collections.
	Metric vectorstore.DistanceMetric `yaml:"metric" env:"QDRANT_METRIC"`

	// Timeout bounds every request that arrives without its own deadline.
	Timeout time.Duration `yaml:"timeout" env:"QDRANT_TIMEOUT"`

	// Whether to perform version compatibility checks between client and server.
	CheckCompatibility bool `yaml:"check_compatibility" env:"QDRANT_CHECK_COMPATIBILITY"`
}

// DefaultConfig provides sensible defaults for most use cases.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       DefaultHost,
		Port:           DefaultGRPCPort,
		CollectionName: DefaultCollectionName,
		Metric:         vectorstore.Cosine,
		Timeout:        DefaultTimeout,
	}
}

// FromEndpoint returns a default config pre-filled with a specific host.
func FromEndpoint(host string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = host
	return cfg
}

// Builder-style helpers
func (c *Config) WithApiKey(key string) *Config {
	c.ApiKey = key
	return c
}

func (c *Config) WithPort(port int) *Config {
	c.Port = port
	return c
}

func (c *Config) WithCollection(name string) *Config {
	c.CollectionName = name
	return c
}

func (c *Config) WithEmbeddingDims(dims int) *Config {
	c.EmbeddingDims = dims
	return c
}

func (c *Config) WithMetric(m vectorstore.DistanceMetric) *Config {
	c.Metric = m
	return c
}

func (c *Config) WithTimeout(d time.Duration) *Config {
	c.Timeout = d
	return c
}

func (c *Config) WithCompatibilityCheck(enabled bool) *Config {
	c.CheckCompatibility = enabled
	return c
}

func (c Config) withDefaults() Config {
	if c.Endpoint == "" {
		c.Endpoint = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultGRPCPort
	}
	if c.CollectionName == "" {
		c.CollectionName = DefaultCollectionName
	}
	if c.Metric == "" {
		c.Metric = vectorstore.Cosine
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
