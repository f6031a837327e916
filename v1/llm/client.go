package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// Client implements LLM over the OpenAI chat completions API, or over
// OpenRouter when an OpenRouter key is configured.
type Client struct {
	api    openai.Client
	cfg    Config
	logger Logger

	// extra is appended to every request; it carries OpenRouter routing.
	extra []option.RequestOption
}

// NewClient resolves cfg against the environment and builds the client.
func NewClient(cfg *Config, logger Logger) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	resolved := cfg.resolved()
	if err := resolved.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = nopLogger{}
	}

	baseURL, apiKey := resolved.endpoint()
	opts := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(resolved.Timeout),
		option.WithMaxRetries(resolved.MaxRetries),
	}

	var extra []option.RequestOption
	if resolved.UseOpenRouter() {
		or := resolved.OpenRouter
		if or.SiteURL != "" {
			opts = append(opts, option.WithHeader("HTTP-Referer", or.SiteURL))
		}
		if or.AppName != "" {
			opts = append(opts, option.WithHeader("X-Title", or.AppName))
		}
		if len(or.Models) > 0 {
			resolved.Model = or.Models[0]
		}
		if len(or.Models) > 1 && or.Route != "" {
			extra = append(extra,
				option.WithJSONSet("models", or.Models),
				option.WithJSONSet("route", or.Route),
			)
		}
	}

	return &Client{
		api:    openai.NewClient(opts...),
		cfg:    resolved,
		logger: logger,
		extra:  extra,
	}, nil
}

// Model returns the model name sent with each request.
func (c *Client) Model() string { return c.cfg.Model }

// GenerateResponse sends one chat completion request and returns the first
// choice. Tool calls are only reported when the request carries tools.
func (c *Client) GenerateResponse(ctx context.Context, req Request) (Response, error) {
	if len(req.Messages) == 0 {
		return Response{}, errors.New("llm: at least one message is required")
	}

	params, err := c.buildParams(req)
	if err != nil {
		return Response{}, err
	}

	completion, err := c.api.Chat.Completions.New(ctx, params, c.extra...)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return Response{}, fmt.Errorf("llm: chat completion: http %d: %w", apiErr.StatusCode, err)
		}
		return Response{}, fmt.Errorf("llm: chat completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return Response{}, errors.New("llm: response has no choices")
	}

	msg := completion.Choices[0].Message
	resp := Response{Content: msg.Content}
	if len(req.Tools) == 0 {
		return resp, nil
	}
	for _, tc := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: c.parseArguments(tc.Function.Name, tc.Function.Arguments),
		})
	}
	return resp, nil
}

func (c *Client) buildParams(req Request) (openai.ChatCompletionNewParams, error) {
	messages, err := buildMessages(req.Messages)
	if err != nil {
		return openai.ChatCompletionNewParams{}, err
	}

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       c.cfg.Model,
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		TopP:        openai.Float(c.cfg.TopP),
	}

	switch req.ResponseFormat {
	case "":
	case ResponseFormatJSON:
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	default:
		return params, fmt.Errorf("llm: unsupported response format %q", req.ResponseFormat)
	}

	if len(req.Tools) == 0 {
		return params, nil
	}

	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, t := range req.Tools {
		fn := shared.FunctionDefinitionParam{
			Name:       t.Name,
			Parameters: shared.FunctionParameters(t.Parameters),
		}
		if t.Description != "" {
			fn.Description = openai.String(t.Description)
		}
		tools[i] = openai.ChatCompletionToolParam{Function: fn}
	}
	params.Tools = tools
	params.ToolChoice = toolChoice(req.ToolChoice)
	return params, nil
}

func buildMessages(in []Message) ([]openai.ChatCompletionMessageParamUnion, error) {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(in))
	for _, m := range in {
		switch m.Role {
		case RoleSystem:
			out = append(out, openai.SystemMessage(m.Content))
		case RoleUser:
			out = append(out, openai.UserMessage(m.Content))
		case RoleAssistant:
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			return nil, fmt.Errorf("llm: unsupported message role %q", m.Role)
		}
	}
	return out, nil
}

func toolChoice(choice string) openai.ChatCompletionToolChoiceOptionUnionParam {
	switch choice {
	case "", ToolChoiceAuto:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(ToolChoiceAuto)}
	case ToolChoiceNone, ToolChoiceRequired:
		return openai.ChatCompletionToolChoiceOptionUnionParam{OfAuto: openai.String(choice)}
	default:
		return openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{Name: choice},
			},
		}
	}
}

// parseArguments decodes a tool call's JSON arguments. Unparseable
// arguments are logged and yield an empty payload.
func (c *Client) parseArguments(name, raw string) payload.Payload {
	if raw == "" {
		return payload.Payload{}
	}
	args, err := payload.DecodeJSON([]byte(raw))
	if err != nil {
		c.logger.Warn("llm: could not parse tool call arguments", err, map[string]interface{}{
			"tool": name,
		})
		return payload.Payload{}
	}
	return args
}
