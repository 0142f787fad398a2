package engine

import (
	"context"
	"fmt"
)

// MessageRole represents the role of a chat message.
type MessageRole string

const (
	RoleSystem    MessageRole = "system"
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleTool      MessageRole = "tool"
)

// ChatMessage is the provider-agnostic message we pass around.
type ChatMessage struct {
	Role    MessageRole
	Content string
	// Name carries the tool call ID for tool messages (providers use it to
	// match tool results to tool_calls).
	Name string
	// ToolCalls stores the calls made by this assistant message. Providers
	// require them when the transcript is converted back to wire format.
	ToolCalls []ToolCall
}

// Validate checks if the ChatMessage is valid.
func (m ChatMessage) Validate() error {
	switch m.Role {
	case RoleSystem, RoleUser, RoleAssistant, RoleTool:
	default:
		return fmt.Errorf("invalid message role: %s", m.Role)
	}
	if m.Role == RoleTool && m.Name == "" {
		return fmt.Errorf("tool messages must have a Name field")
	}
	return nil
}

// Usage holds token accounting returned by providers.
type Usage struct {
	Prompt     int
	Completion int
	Total      int
}

// ToolCall represents a function/tool the assistant requested.
// Args is the serialized JSON argument bag exactly as the model produced it;
// parsing happens at the registry dispatch boundary.
type ToolCall struct {
	ID   string // provider tool call ID; synthesized if the provider omits it
	Name string
	Args string
}

// ToolResult is the uniform outcome of one tool invocation. Dispatch never
// fails with a Go error: parse failures, unknown tools, validation failures
// and executor errors all arrive here with IsError set.
type ToolResult struct {
	CallID  string
	Content string
	IsError bool
	// Display carries optional presentation metadata the executor wants to
	// surface (e.g. a file path or a match count). The loop passes it through.
	Display map[string]string
}

// LLMResponse is a normalized result of one chat call.
type LLMResponse struct {
	Assistant    ChatMessage
	ToolCalls    []ToolCall
	Usage        Usage
	FinishReason string // "stop" | "length" | "tool_calls" | "content_filter"
}

// LLMClient abstracts the chosen SDK (OpenAI, Anthropic, etc.)
type LLMClient interface {
	Chat(ctx context.Context, model string, messages []ChatMessage, toolSchemas []ToolSchema, opts ChatOptions) (LLMResponse, error)
}

// ChatOptions keeps knobs forwarded to the SDK and the retry layer.
type ChatOptions struct {
	Temperature     float32
	MaxOutputTokens int
	RetryPolicy     *RetryPolicy // nil = DefaultRetryPolicy
}

// ToolSchema is the JSON schema the provider expects for function calling.
type ToolSchema struct {
	Name        string
	Description string
	JSONSchema  string // raw JSON string
}
