package llm

import "go.uber.org/fx"

// FXModule provides *Client and LLM. A *Config must be supplied.
var FXModule = fx.Module("llm",
	fx.Provide(
		NewClientWithDI,
		func(c *Client) LLM { return c },
	),
)

// LLMParams groups the dependencies of NewClientWithDI.
type LLMParams struct {
	fx.In

	Config *Config
	Logger Logger `optional:"true"`
}

func NewClientWithDI(p LLMParams) (*Client, error) {
	return NewClient(p.Config, p.Logger)
}
