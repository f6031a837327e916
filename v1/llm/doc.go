// Package llm generates chat completions for memory extraction and update
// decisions.
//
// Client talks to the OpenAI chat completions API through openai-go. When
// OPENROUTER_API_KEY is set (or OpenRouterConfig.APIKey), requests go to
// https://openrouter.ai/api/v1 instead, with optional HTTP-Referer and
// X-Title headers and model fallback routing.
//
//	client, err := llm.NewClient(llm.DefaultConfig(), log)
//	resp, err := client.GenerateResponse(ctx, llm.Request{
//	    Messages: []llm.Message{
//	        {Role: llm.RoleSystem, Content: prompt},
//	        {Role: llm.RoleUser, Content: conversation},
//	    },
//	    ResponseFormat: llm.ResponseFormatJSON,
//	})
//
// Tool call arguments are decoded into payload.Payload: strings, integers,
// floats and booleans keep their kind, nested objects and arrays are kept
// as Opaque JSON text, and nulls are dropped.
package llm
