package chroma

import (
	"fmt"
	"strings"
	"time"

	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

const (
	DefaultHost           = "localhost"
	DefaultPort           = 8000
	DefaultScheme         = "http"
	DefaultCollectionName = "mem0"
	DefaultBasePath       = "/api/v1"
	DefaultConnectTimeout = 10 * time.Second
	DefaultReadTimeout    = 30 * time.Second
	DefaultProbeTimeout   = 15 * time.Second
	DefaultMaxIdleConns   = 16
)

// Config holds everything needed to reach a Chroma server and select the
// active collection.
type Config struct {
	// Host is the Chroma server host name.
	Host string `yaml:"host" env:"CHROMA_HOST"`

	// Port is the Chroma HTTP port.
	Port int `yaml:"port" env:"CHROMA_PORT"`

	// Scheme is "http" or "https".
	Scheme string `yaml:"scheme" env:"CHROMA_SCHEME"`

	// Endpoint, when set, replaces Scheme, Host and Port with a full base
	// URL such as "https://chroma.internal:8443".
	Endpoint string `yaml:"endpoint" env:"CHROMA_ENDPOINT"`

	// BasePath is the API prefix in front of /collections.
	BasePath string `yaml:"base_path" env:"CHROMA_BASE_PATH"`

	// CollectionName is the active collection.
	CollectionName string `yaml:"collection_name" env:"CHROMA_COLLECTION"`

	// EmbeddingDims is the expected embedding length. Zero means unknown;
	// a positive value is enforced on insert, update and search.
	EmbeddingDims int `yaml:"embedding_dims" env:"CHROMA_EMBEDDING_DIMS"`

	// Metric is the distance function of collections created by this store.
	Metric vectorstore.DistanceMetric `yaml:"metric" env:"CHROMA_METRIC"`

	// BearerToken is sent as "Authorization: Bearer <token>" when set.
	BearerToken string `yaml:"bearer_token" env:"CHROMA_AUTH_TOKEN"`

	// ConnectTimeout bounds TCP connection establishment.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"CHROMA_CONNECT_TIMEOUT"`

	// ReadTimeout bounds the wait for response headers once a request is sent.
	ReadTimeout time.Duration `yaml:"read_timeout" env:"CHROMA_READ_TIMEOUT"`

	// ProbeTimeout bounds the best-effort collection probe run by NewStore.
	ProbeTimeout time.Duration `yaml:"probe_timeout" env:"CHROMA_PROBE_TIMEOUT"`

	// MaxIdleConns caps the idle keep-alive connections kept to the server.
	MaxIdleConns int `yaml:"max_idle_conns" env:"CHROMA_MAX_IDLE_CONNS"`
}

// DefaultConfig returns the defaults: localhost:8000, collection "mem0",
// cosine metric, 10s connect and 30s read timeouts.
func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultHost,
		Port:           DefaultPort,
		Scheme:         DefaultScheme,
		BasePath:       DefaultBasePath,
		CollectionName: DefaultCollectionName,
		Metric:         vectorstore.Cosine,
		ConnectTimeout: DefaultConnectTimeout,
		ReadTimeout:    DefaultReadTimeout,
		ProbeTimeout:   DefaultProbeTimeout,
		MaxIdleConns:   DefaultMaxIdleConns,
	}
}

// FromEndpoint returns DefaultConfig pointed at a full base URL.
func FromEndpoint(endpoint string) *Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	return cfg
}

func (c *Config) WithHost(host string, port int) *Config {
	c.Host = host
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

func (c *Config) WithBearerToken(token string) *Config {
	c.BearerToken = token
	return c
}

func (c *Config) WithTimeouts(connect, read time.Duration) *Config {
	c.ConnectTimeout = connect
	c.ReadTimeout = read
	return c
}

// withDefaults returns a copy of c with zero fields replaced by defaults.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Host == "" {
		c.Host = d.Host
	}
	if c.Port == 0 {
		c.Port = d.Port
	}
	if c.Scheme == "" {
		c.Scheme = d.Scheme
	}
	if c.BasePath == "" {
		c.BasePath = d.BasePath
	}
	if c.CollectionName == "" {
		c.CollectionName = d.CollectionName
	}
	if c.Metric == "" {
		c.Metric = d.Metric
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = d.ConnectTimeout
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = d.ProbeTimeout
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = d.MaxIdleConns
	}
	return c
}

// BaseURL returns the URL every request path is appended to, e.g.
// "http://localhost:8000/api/v1".
func (c Config) BaseURL() string {
	base := c.Endpoint
	if base == "" {
		base = fmt.Sprintf("%s://%s:%d", c.Scheme, c.Host, c.Port)
	}
	base = strings.TrimRight(base, "/")
	if c.BasePath != "" {
		base += "/" + strings.Trim(c.BasePath, "/")
	}
	return base
}
