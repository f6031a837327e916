package llm

import (
	"fmt"
	"os"
	"time"
)

const (
	DefaultBaseURL           = "https://api.openai.com/v1"
	DefaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel             = "gpt-4o-mini"
	DefaultTemperature       = 0.1
	DefaultMaxTokens         = 2000
	DefaultTopP              = 0.1
	DefaultTimeout           = 300 * time.Second
	DefaultMaxRetries        = 0
)

// Config selects the chat completion endpoint and sampling parameters.
type Config struct {
	Model       string  `yaml:"model" env:"LLM_MODEL"`
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopP        float64 `yaml:"top_p"`

	// APIKey falls back to OPENAI_API_KEY. It is ignored in OpenRouter mode.
	APIKey  string `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL string `yaml:"base_url" env:"OPENAI_BASE_URL"`

	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// OpenRouterConfig applies when OPENROUTER_API_KEY is set in the
// environment or APIKey is set here.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key" env:"OPENROUTER_API_KEY"`
	BaseURL string `yaml:"base_url"`

	// Models lists fallback models. With more than one model and a Route,
	// both are sent as-is; otherwise the first model replaces Config.Model.
	Models []string `yaml:"models"`
	Route  string   `yaml:"route"`

	// SiteURL and AppName are sent as HTTP-Referer and X-Title.
	SiteURL string `yaml:"site_url"`
	AppName string `yaml:"app_name"`
}

// DefaultConfig returns gpt-4o-mini with low temperature and top_p.
func DefaultConfig() *Config {
	return &Config{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
		BaseURL:     DefaultBaseURL,
		Timeout:     DefaultTimeout,
		MaxRetries:  DefaultMaxRetries,
	}
}

func (c *Config) WithModel(model string) *Config {
	c.Model = model
	return c
}

func (c *Config) WithAPIKey(key string) *Config {
	c.APIKey = key
	return c
}

func (c *Config) WithBaseURL(url string) *Config {
	c.BaseURL = url
	return c
}

func (c *Config) WithSampling(temperature, topP float64, maxTokens int) *Config {
	c.Temperature = temperature
	c.TopP = topP
	c.MaxTokens = maxTokens
	return c
}

// UseOpenRouter reports whether requests go to OpenRouter.
func (c Config) UseOpenRouter() bool {
	return c.OpenRouter.APIKey != ""
}

// resolved applies defaults and the environment fallbacks.
func (c Config) resolved() Config {
	d := DefaultConfig()
	if c.OpenRouter.APIKey == "" {
		c.OpenRouter.APIKey = os.Getenv("OPENROUTER_API_KEY")
	}
	if c.UseOpenRouter() {
		if c.OpenRouter.BaseURL == "" {
			c.OpenRouter.BaseURL = DefaultOpenRouterBaseURL
		}
	} else {
		if c.APIKey == "" {
			c.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if c.BaseURL == "" {
			c.BaseURL = d.BaseURL
		}
		if c.Model == "" {
			c.Model = d.Model
		}
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = d.MaxTokens
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	return c
}

func (c Config) validate() error {
	if c.UseOpenRouter() {
		if c.Model == "" && len(c.OpenRouter.Models) == 0 {
			return fmt.Errorf("llm: openrouter requires a model or a models list")
		}
		return nil
	}
	if c.APIKey == "" {
		return fmt.Errorf("llm: api key not provided in config or OPENAI_API_KEY/OPENROUTER_API_KEY")
	}
	return nil
}

func (c Config) endpoint() (baseURL, apiKey string) {
	if c.UseOpenRouter() {
		return c.OpenRouter.BaseURL, c.OpenRouter.APIKey
	}
	return c.BaseURL, c.APIKey
}
