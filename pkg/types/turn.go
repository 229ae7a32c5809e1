// Package types defines the shared data types used across WebPilot:
// conversation turns, roles, and tool invocation requests.
package types

import "encoding/json"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleSystem is the system prompt role
	RoleSystem Role = "system"

	// RoleUser is a human message
	RoleUser Role = "user"

	// RoleAssistant is a planner response
	RoleAssistant Role = "assistant"

	// RoleTool is a tool execution observation
	RoleTool Role = "tool"
)

// ToolCall is a single tool invocation requested by the planner.
type ToolCall struct {
	// ID is the planner-assigned identifier linking the call to its result
	ID string `json:"id"`

	// Name is the registered tool name (e.g. "browser_navigate")
	Name string `json:"name"`

	// Arguments is the raw JSON argument object for the tool
	Arguments json.RawMessage `json:"arguments"`
}

// Turn is one message in a conversation. Turns are immutable once created;
// a session's history is an ordered sequence of turns.
type Turn struct {
	// Role is the author of this turn
	Role Role `json:"role"`

	// Content is the textual body of the turn
	Content string `json:"content"`

	// ToolCalls holds the tool invocations requested by an assistant turn.
	// Empty for all other roles.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool turn back to the assistant tool call it answers
	ToolCallID string `json:"tool_call_id,omitempty"`

	// ToolName is the name of the tool that produced a tool turn
	ToolName string `json:"tool_name,omitempty"`
}

// NewUserTurn creates a user turn with the given text.
func NewUserTurn(content string) Turn {
	return Turn{Role: RoleUser, Content: content}
}

// NewAssistantTurn creates a plain assistant turn with no tool calls.
func NewAssistantTurn(content string) Turn {
	return Turn{Role: RoleAssistant, Content: content}
}

// NewAssistantToolTurn creates an assistant turn carrying tool call requests.
func NewAssistantToolTurn(content string, calls []ToolCall) Turn {
	return Turn{Role: RoleAssistant, Content: content, ToolCalls: calls}
}

// NewToolTurn creates a tool-result turn for the given tool call.
func NewToolTurn(callID, toolName, content string) Turn {
	return Turn{Role: RoleTool, Content: content, ToolCallID: callID, ToolName: toolName}
}

// IsToolRequest reports whether this turn asks for tool execution.
func (t Turn) IsToolRequest() bool {
	return t.Role == RoleAssistant && len(t.ToolCalls) > 0
}
