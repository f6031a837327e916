package embedding

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL      = "https://api.openai.com/v1"
	DefaultModel        = "text-embedding-3-small"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRetries   = 0
	DefaultCacheMaxCost = 64 << 20
	DefaultBatchSize    = 512
	DefaultConcurrency  = 4
)

// Config selects the OpenAI-compatible embeddings endpoint and model.
//
// BaseURL must point at the API root (".../v1"); the client appends
// "/embeddings" itself.
type Config struct {
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`

	// APIKey falls back to OPENAI_API_KEY when empty.
	APIKey string `yaml:"api_key" env:"OPENAI_API_KEY"`

	Model string `yaml:"model" env:"EMBEDDING_MODEL"`

	// Dimensions asks the model for shorter embeddings. Zero keeps the
	// model's native size.
	Dimensions int `yaml:"dimensions" env:"EMBEDDING_DIMS"`

	Timeout time.Duration `yaml:"timeout" env:"EMBEDDING_HTTP_TIMEOUT"`

	// MaxRetries enables the SDK's own retries. Zero sends each request once.
	MaxRetries int `yaml:"max_retries" env:"EMBEDDING_MAX_RETRIES"`

	// CacheMaxCost is the byte budget of the embedding cache. Zero
	// disables caching.
	CacheMaxCost int64 `yaml:"cache_max_cost" env:"EMBEDDING_CACHE_MAX_COST"`

	// BatchSize caps the inputs per request; larger batches are split and
	// up to Concurrency requests run at once.
	BatchSize   int `yaml:"batch_size" env:"EMBEDDING_BATCH_SIZE"`
	Concurrency int `yaml:"concurrency" env:"EMBEDDING_CONCURRENCY"`
}

// DefaultConfig returns the OpenAI defaults without a cache.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
		BatchSize:   DefaultBatchSize,
		Concurrency: DefaultConcurrency,
	}
}

// NewConfig reads the configuration from environment variables, starting
// from DefaultConfig.
func NewConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("EMBEDDING_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("EMBEDDING_DIMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Dimensions = n
		}
	}
	if v := os.Getenv("EMBEDDING_HTTP_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Timeout = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("EMBEDDING_CACHE_MAX_COST"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.CacheMaxCost = n
		}
	}
	if v := os.Getenv("EMBEDDING_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.BatchSize = n
		}
	}
	if v := os.Getenv("EMBEDDING_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Concurrency = n
		}
	}
	return cfg
}

func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = key
	return c
}

func (c *Config) WithModel(model string, dims int) *Config {
	c.Model = model
	c.Dimensions = dims
	return c
}

func (c *Config) WithCache(maxCost int64) *Config {
	c.CacheMaxCost = maxCost
	return c
}

func (c *Config) WithBatching(size, concurrency int) *Config {
	c.BatchSize = size
	c.Concurrency = concurrency
	return c
}

// Validate reports missing or inconsistent fields. It runs after the
// environment fallback for the API key.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("embedding: model is required")
	}
	if c.Dimensions < 0 {
		return fmt.Errorf("embedding: dimensions must not be negative, got %d", c.Dimensions)
	}
	if c.APIKey == "" {
		return fmt.Errorf("embedding: missing api key (set OPENAI_API_KEY)")
	}
	return nil
}

// resolved returns a copy with defaults and the OPENAI_API_KEY fallback
// applied.
func (c Config) resolved() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return c
}
