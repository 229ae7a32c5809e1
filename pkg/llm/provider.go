// Package llm provides abstractions for planner (LLM) integration.
//
// Providers handle API communication and return a Completion: either final
// assistant text or a set of tool call requests. The agent layer owns
// conversation state, tool dispatch, and loop control, which keeps providers
// reusable and independently testable.
//
// Example usage:
//
//	provider, err := openai.NewProvider(
//	    os.Getenv("OPENAI_API_KEY"),
//	    openai.WithModel("gpt-4o"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	completion, err := provider.Complete(ctx, systemPrompt, turns, toolDefs)
package llm

import (
	"context"

	"github.com/webpilot/webpilot/pkg/agent/tools"
	"github.com/webpilot/webpilot/pkg/types"
)

// Completion is a single planner response: final text, tool call requests,
// or both (text accompanying tool calls is kept as planner commentary).
type Completion struct {
	// Text is the assistant's textual content, possibly empty when the
	// planner only requests tools
	Text string

	// ToolCalls holds the requested tool invocations for this round
	ToolCalls []types.ToolCall
}

// HasToolCalls reports whether the planner asked for tool execution.
func (c *Completion) HasToolCalls() bool {
	return len(c.ToolCalls) > 0
}

// Provider defines the interface for planner integrations.
type Provider interface {
	// Complete sends the system prompt, the full turn sequence, and the
	// tool catalog to the planner and returns its response.
	//
	// The turn sequence may contain tool-result turns from earlier rounds
	// of the same job; providers must support this multi-turn tool-result
	// continuation.
	Complete(ctx context.Context, systemPrompt string, turns []types.Turn, toolDefs []tools.Definition) (*Completion, error)

	// GetModel returns the model name being used.
	GetModel() string

	// GetBaseURL returns the base URL being used for API requests.
	GetBaseURL() string
}
