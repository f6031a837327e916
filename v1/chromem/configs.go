package chromem

import "github.com/Aleph-Alpha/agentmem/v1/vectorstore"

const DefaultCollectionName = "mem0"

// Config selects the active collection and, optionally, a directory the
// database is persisted to.
type Config struct {
	// PersistDir keeps the database on disk when set. Empty means memory only.
	PersistDir string `yaml:"persist_dir" env:"CHROMEM_PERSIST_DIR"`

	// Compress gzips persisted documents.
	Compress bool `yaml:"compress" env:"CHROMEM_COMPRESS"`

	CollectionName string `yaml:"collection_name" env:"CHROMEM_COLLECTION"`

	// EmbeddingDims is enforced on insert, update and search when positive.
	EmbeddingDims int `yaml:"embedding_dims" env:"CHROMEM_EMBEDDING_DIMS"`
}

// DefaultConfig returns an in-memory store on collection "mem0".
func DefaultConfig() *Config {
	return &Config{CollectionName: DefaultCollectionName}
}

func (c *Config) WithPersistDir(dir string, compress bool) *Config {
	c.PersistDir = dir
	c.Compress = compress
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

func (c Config) withDefaults() Config {
	if c.CollectionName == "" {
		c.CollectionName = DefaultCollectionName
	}
	return c
}

// metric is fixed: chromem-go normalizes embeddings and ranks by cosine
// similarity only.
const metric = vectorstore.Cosine
