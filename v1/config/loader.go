package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML file on top of Default. ${VAR} references in the file
// are expanded from the environment before parsing.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("config: %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of Default, then applies the
// environment fallbacks and validates the result. Unknown keys are errors.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode: %w", err)
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv fills credentials the file left empty from the environment:
// OPENAI_API_KEY for the embedder and the LLM, OPENROUTER_API_KEY for
// OpenRouter and CHROMA_AUTH_TOKEN for Chroma.
func (c *Config) ApplyEnv() {
	fallback(&c.Embedder.APIKey, "OPENAI_API_KEY")
	fallback(&c.LLM.APIKey, "OPENAI_API_KEY")
	fallback(&c.LLM.OpenRouter.APIKey, "OPENROUTER_API_KEY")
	fallback(&c.VectorStore.Chroma.BearerToken, "CHROMA_AUTH_TOKEN")
}

func fallback(field *string, env string) {
	if *field != "" {
		return
	}
	if v, ok := os.LookupEnv(env); ok {
		*field = v
	}
}

// Validate checks the cross-section settings. Section-level checks happen
// when each client is built.
func (c *Config) Validate() error {
	switch c.VectorStore.Provider {
	case ProviderChroma, ProviderQdrant, ProviderChromem:
	default:
		return fmt.Errorf("config: unknown vector store provider %q", c.VectorStore.Provider)
	}
	if dims := c.Embedder.Dimensions; dims > 0 {
		if d := c.storeDims(); d > 0 && d != dims {
			return fmt.Errorf("config: embedder produces %d dimensions, vector store expects %d", dims, d)
		}
	}
	return nil
}

func (c *Config) storeDims() int {
	switch c.VectorStore.Provider {
	case ProviderQdrant:
		return c.VectorStore.Qdrant.EmbeddingDims
	case ProviderChromem:
		return c.VectorStore.Chromem.EmbeddingDims
	default:
		return c.VectorStore.Chroma.EmbeddingDims
	}
}
