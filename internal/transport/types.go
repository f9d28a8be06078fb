package transport

import (
	"encoding/json"

	"github.com/toolgauge/toolgauge/internal/models"
)

// ChatMessage is one entry in a chat-completion conversation. Role is one of
// system, user, assistant, or tool. A tool-role message answers the tool call
// identified by ToolCallID.
type ChatMessage struct {
	Role       string     `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a structured invocation request produced by the remote model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type,omitempty"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names the function and carries its arguments as a JSON-encoded
// string, which may or may not parse depending on the model.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a callable-tool descriptor in the request's tools array.
type Tool struct {
	Type     string       `json:"type"`
	Function ToolFunction `json:"function"`
}

// ToolFunction describes a single callable function and its parameter schema.
type ToolFunction struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// ResponseFormat forces the response shape when the endpoint supports it.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is a fully-formed chat-completion request.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Tools          []Tool          `json:"tools,omitempty"`
	ToolChoice     string          `json:"tool_choice,omitempty"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is a chat-completion response. Streamed calls are reconstructed
// into this same shape before being returned.
type ChatResponse struct {
	ID      string        `json:"id,omitempty"`
	Object  string        `json:"object,omitempty"`
	Created int64         `json:"created,omitempty"`
	Model   string        `json:"model,omitempty"`
	Choices []Choice      `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
	Error   *APIErrorBody `json:"error,omitempty"`

	// StreamChunks counts the SSE chunks merged into this response.
	// Zero for blocking calls.
	StreamChunks int `json:"-"`
}

// Choice is one completion candidate.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// Usage reports token accounting when the endpoint provides it.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// APIErrorBody is the error object some gateways return inside a 200 body
// when the requested model cannot be served.
type APIErrorBody struct {
	Message string          `json:"message"`
	Type    string          `json:"type,omitempty"`
	Code    json.RawMessage `json:"code,omitempty"`
}

// FirstMessage returns the message of the first choice, or nil when the
// response carries no choices.
func (r *ChatResponse) FirstMessage() *ChatMessage {
	if len(r.Choices) == 0 {
		return nil
	}
	return &r.Choices[0].Message
}

// FirstContent returns the assistant text of the first choice, or "".
func (r *ChatResponse) FirstContent() string {
	if m := r.FirstMessage(); m != nil {
		return m.Content
	}
	return ""
}

// FirstToolCalls returns the tool calls of the first choice, or nil.
func (r *ChatResponse) FirstToolCalls() []ToolCall {
	if m := r.FirstMessage(); m != nil {
		return m.ToolCalls
	}
	return nil
}

// modelList is the envelope of the model-listing endpoint.
type modelList struct {
	Object string             `json:"object,omitempty"`
	Data   []models.ModelInfo `json:"data"`
}
