package llm

import (
	"context"

	"github.com/Aleph-Alpha/agentmem/v1/payload"
)

// Message roles accepted by chat completion APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ResponseFormatJSON asks the model for a single JSON object.
const ResponseFormatJSON = "json_object"

// Tool choice modes. Any other non-empty value names the tool the model
// must call.
const (
	ToolChoiceAuto     = "auto"
	ToolChoiceNone     = "none"
	ToolChoiceRequired = "required"
)

// LLM generates chat completions.
type LLM interface {
	GenerateResponse(ctx context.Context, req Request) (Response, error)
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Tool describes a function the model may call. Parameters is a JSON
// schema object.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

type Request struct {
	Messages []Message

	// ResponseFormat is empty for free text or ResponseFormatJSON.
	ResponseFormat string

	Tools []Tool

	// ToolChoice defaults to ToolChoiceAuto when Tools is non-empty.
	ToolChoice string
}

// ToolCall is a function call requested by the model. Scalar arguments keep
// their JSON kind; objects and arrays are Opaque JSON text.
type ToolCall struct {
	ID        string
	Name      string
	Arguments payload.Payload
}

type Response struct {
	Content   string
	ToolCalls []ToolCall
}

// Logger defines the logging calls the LLM client makes.
// *logger.LoggerClient satisfies it.
type Logger interface {
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
}

var _ LLM = (*Client)(nil)

type nopLogger struct{}

func (nopLogger) Debug(string, error, ...map[string]interface{}) {}
func (nopLogger) Warn(string, error, ...map[string]interface{})  {}
