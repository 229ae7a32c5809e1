package browser

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/webpilot/webpilot/pkg/agent/tools"
)

// TypeTool fills an input element with text.
type TypeTool struct {
	manager *Manager
}

// NewTypeTool creates a new type tool.
func NewTypeTool(manager *Manager) *TypeTool {
	return &TypeTool{manager: manager}
}

// Name returns the tool name.
func (t *TypeTool) Name() string {
	return "browser_type"
}

// Description returns the tool description.
func (t *TypeTool) Description() string {
	return "Type text into an input element identified by a CSS selector, replacing its current value. Optionally press Enter afterwards to submit."
}

// Schema returns the tool's JSON schema.
func (t *TypeTool) Schema() map[string]interface{} {
	return tools.BaseToolSchema(
		map[string]interface{}{
			"selector": map[string]interface{}{
				"type":        "string",
				"description": "CSS selector of the input element",
			},
			"text": map[string]interface{}{
				"type":        "string",
				"description": "Text to type into the element",
			},
			"press_enter": map[string]interface{}{
				"type":        "boolean",
				"description": "Press Enter after typing, e.g. to submit a search form (default false)",
			},
			"timeout_ms": map[string]interface{}{
				"type":        "number",
				"description": "Timeout in milliseconds waiting for the element (default 30000)",
			},
		},
		[]string{"selector", "text"},
	)
}

type typeInput struct {
	Selector   string  `json:"selector"`
	Text       string  `json:"text"`
	PressEnter bool    `json:"press_enter"`
	TimeoutMS  float64 `json:"timeout_ms"`
}

// Execute fills the element.
func (t *TypeTool) Execute(ctx context.Context, arguments json.RawMessage) (string, error) {
	var input typeInput
	if err := json.Unmarshal(arguments, &input); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}

	if input.Selector == "" {
		return "", fmt.Errorf("selector is required")
	}

	if err := t.manager.Acquire(ctx); err != nil {
		return "", err
	}
	defer t.manager.Release()

	err := t.manager.Fill(input.Selector, input.Text, input.PressEnter, effectiveTimeout(t.manager, input.TimeoutMS))
	if err != nil {
		return "", err
	}

	if input.PressEnter {
		return fmt.Sprintf("Typed %q into element matching %q and pressed Enter", input.Text, input.Selector), nil
	}
	return fmt.Sprintf("Typed %q into element matching %q", input.Text, input.Selector), nil
}
