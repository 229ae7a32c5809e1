package openai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/types"
)

func TestNewProviderRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	_, err := NewProvider("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")
}

func TestNewProviderOptions(t *testing.T) {
	p, err := NewProvider("sk-test",
		WithModel("gpt-4o-mini"),
		WithBaseURL("http://localhost:8080/v1"),
	)
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o-mini", p.GetModel())
	assert.Equal(t, "http://localhost:8080/v1", p.GetBaseURL())
}

func TestConvertTurnsRoles(t *testing.T) {
	turns := []types.Turn{
		types.NewUserTurn("find the pricing page"),
		types.NewAssistantTurn("done"),
	}

	messages := convertTurns("you browse the web", turns)
	require.Len(t, messages, 3)
	require.NotNil(t, messages[0].OfSystem)
	require.NotNil(t, messages[1].OfUser)
	require.NotNil(t, messages[2].OfAssistant)
}

func TestConvertTurnsToolCallRound(t *testing.T) {
	calls := []types.ToolCall{
		{ID: "call_1", Name: "browser_navigate", Arguments: json.RawMessage(`{"url":"https://example.com"}`)},
		{ID: "call_2", Name: "browser_extract", Arguments: json.RawMessage(`{}`)},
	}
	turns := []types.Turn{
		types.NewUserTurn("open example.com"),
		types.NewAssistantToolTurn("", calls),
		types.NewToolTurn("call_1", "browser_navigate", "Navigation successful"),
		types.NewToolTurn("call_2", "browser_extract", "Page: Example"),
	}

	messages := convertTurns("", turns)
	require.Len(t, messages, 4)

	assistant := messages[1].OfAssistant
	require.NotNil(t, assistant)
	require.Len(t, assistant.ToolCalls, 2)
	assert.Equal(t, "call_1", assistant.ToolCalls[0].ID)
	assert.Equal(t, "browser_navigate", assistant.ToolCalls[0].Function.Name)
	assert.Equal(t, `{"url":"https://example.com"}`, assistant.ToolCalls[0].Function.Arguments)
	assert.Equal(t, "call_2", assistant.ToolCalls[1].ID)

	// Tool results must carry the call ID they answer so the API can
	// pair each observation with its request.
	data, err := json.Marshal(messages[2])
	require.NoError(t, err)
	var toolMsg map[string]any
	require.NoError(t, json.Unmarshal(data, &toolMsg))
	assert.Equal(t, "tool", toolMsg["role"])
	assert.Equal(t, "call_1", toolMsg["tool_call_id"])
	assert.Equal(t, "Navigation successful", toolMsg["content"])
}

func TestConvertTurnsAssistantToolCallWireFormat(t *testing.T) {
	turns := []types.Turn{
		types.NewAssistantToolTurn("checking", []types.ToolCall{
			{ID: "call_9", Name: "browser_click", Arguments: json.RawMessage(`{"selector":"#go"}`)},
		}),
	}

	messages := convertTurns("", turns)
	require.Len(t, messages, 1)

	data, err := json.Marshal(messages[0])
	require.NoError(t, err)
	var msg map[string]any
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, "assistant", msg["role"])
	assert.Equal(t, "checking", msg["content"])

	toolCalls, ok := msg["tool_calls"].([]any)
	require.True(t, ok)
	require.Len(t, toolCalls, 1)
	call := toolCalls[0].(map[string]any)
	assert.Equal(t, "call_9", call["id"])
	assert.Equal(t, "function", call["type"])
	fn := call["function"].(map[string]any)
	assert.Equal(t, "browser_click", fn["name"])
	assert.Equal(t, `{"selector":"#go"}`, fn["arguments"])
}

func TestConvertToolDefs(t *testing.T) {
	defs := []tools.Definition{
		{
			Name:        "browser_navigate",
			Description: "Navigate the browser to a URL",
			Schema: tools.BaseToolSchema(map[string]interface{}{
				"url": map[string]interface{}{"type": "string"},
			}, []string{"url"}),
		},
	}

	params := convertToolDefs(defs)
	require.Len(t, params, 1)
	assert.Equal(t, "browser_navigate", params[0].Function.Name)

	data, err := json.Marshal(params[0])
	require.NoError(t, err)
	var tool map[string]any
	require.NoError(t, json.Unmarshal(data, &tool))
	assert.Equal(t, "function", tool["type"])
	fn := tool["function"].(map[string]any)
	assert.Equal(t, "browser_navigate", fn["name"])
	assert.Equal(t, "Navigate the browser to a URL", fn["description"])
	schema := fn["parameters"].(map[string]any)
	assert.Equal(t, "object", schema["type"])
}
