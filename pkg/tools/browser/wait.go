package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// WaitTool waits for an element to reach a given state.
type WaitTool struct {
	manager *Manager
}

// NewWaitTool creates a new wait tool.
func NewWaitTool(manager *Manager) *WaitTool {
	return &WaitTool{manager: manager}
}

// Name returns the tool name.
func (t *WaitTool) Name() string {
	return "browser_wait"
}

// Description returns the tool description.
func (t *WaitTool) Description() string {
	return "Wait for an element matching a CSS selector to reach a state, e.g. after a click that loads content dynamically."
}

// Schema returns the tool's JSON schema.
func (t *WaitTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector of the element to wait for",
			},
			"state": map[string]interface{}{
				"type":        "string",
				"description": "State to wait for: 'visible' (default), 'hidden', 'attached', or 'detached'",
			},
			"timeout_ms": map[string]interface{}{
				"type":        "number",
				"description": "Timeout in milliseconds (default 30000)",
			},
		},
		[]string{"selector"},
	)
}

type waitInput struct {
	Selector  string  `json:"selector"`
	State     string  `json:"state"`
	TimeoutMS float64 `json:"timeout_ms"`
}

// Execute waits for the element.
func (t *WaitTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input waitInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}

	if input.Selector == "" {
		return "", fmt.Errorf("selector is required")
	}
	state := input.State
	if state == "" {
		state = "visible"
	}
	if !validWaitStates[state] {
		return "", fmt.Errorf("invalid state value: %s (must be 'attached', 'detached', 'visible', or 'hidden')", state)
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	if err := t.manager.WaitFor(input.Selector, state, effectiveTimeout(t.manager, input.TimeoutMS)); err != nil {
		return "", err
	}
	return fmt.Sprintf("Element matching %q is now %s", input.Selector, state), nil
}
