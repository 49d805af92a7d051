package llm

import (
	"context"
	"encoding/json"
)

// Provider is the abstraction over the external model vendors.
// Callers hand it a prompt and, optionally, a response schema; they get
// back structured JSON that has already passed schema validation.
type Provider interface {
	// Generate sends a single request to the model. When the request
	// carries a Schema, the provider asks the vendor for structured
	// output and validates the result against that schema before
	// returning it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured with.
	ModelID() string
}

// Request describes one model invocation.
type Request struct {
	// System sets the model's role. For script generation this frames
	// the model as an educational content author.
	System string

	// Messages is the conversation. Script generation is single-turn,
	// so this is normally one user message holding the rendered prompt.
	Messages []Message

	// Schema, when set, requests structured JSON output conforming to
	// the definition. When nil the raw text comes back as the Content.
	Schema *Schema

	// MaxTokens caps the response length.
	MaxTokens int

	// Temperature in [0, 1]. Zero means deterministic.
	Temperature float64
}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role identifies a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema the response must conform to.
type Schema struct {
	// Name identifies the schema (tool name for Anthropic, schema name
	// for OpenAI). Kebab-case, e.g. "teaching-script".
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema as a map.
	Definition map[string]any
}

// Response is the model's output.
type Response struct {
	// Content is the generated output. With a Schema set, this is the
	// schema-validated JSON object; otherwise the raw text.
	Content json.RawMessage

	// Usage reports token consumption.
	Usage Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end", "max_tokens", or "error".
	StopReason string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
